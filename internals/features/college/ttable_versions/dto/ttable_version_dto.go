// file: internals/features/college/ttable_versions/dto/ttable_version_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"kampusku_backend/internals/features/college/errs"
	m "kampusku_backend/internals/features/college/ttable_versions/model"
	service "kampusku_backend/internals/features/college/ttable_versions/service"
)

const scheduleDateLayout = "2006-01-02"

/* =========================================================
 * REQUESTS
 * ========================================================= */

// Create (JSON)
type CreateTtableVersionRequest struct {
	// Wajib: gedung pemilik versi
	TtableVersionBuildingID uuid.UUID `json:"ttable_version_building_id" validate:"required"`

	// Wajib untuk daily (YYYY-MM-DD); kosongkan untuk standard
	TtableVersionScheduleDate *string `json:"ttable_version_schedule_date" validate:"omitempty,datetime=2006-01-02"`

	TtableVersionType string `json:"ttable_version_type" validate:"required,oneof=standard daily"`

	// Opsional: metadata bebas (sumber import, nama file, dst.)
	TtableVersionMeta datatypes.JSON `json:"ttable_version_meta" validate:"omitempty"`
}

// Filter / List (JSON body)
type FilterTtableVersionRequest struct {
	BuildingID  *uuid.UUID `json:"building_id" validate:"omitempty"`
	StatusID    *int       `json:"status_id" validate:"omitempty,oneof=1 2 3"`
	Type        *string    `json:"type" validate:"omitempty,oneof=standard daily"`
	DateFrom    *string    `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo      *string    `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	IsCommitted *bool      `json:"is_committed" validate:"omitempty"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type TtableVersionResponse struct {
	TtableVersionID         uuid.UUID `json:"ttable_version_id"`
	TtableVersionBuildingID uuid.UUID `json:"ttable_version_building_id"`

	TtableVersionScheduleDate *string `json:"ttable_version_schedule_date,omitempty"`

	TtableVersionType     string `json:"ttable_version_type"`
	TtableVersionStatusID int    `json:"ttable_version_status_id"`

	TtableVersionCreatedBy   uuid.UUID `json:"ttable_version_created_by"`
	TtableVersionIsCommitted bool      `json:"ttable_version_is_committed"`

	TtableVersionMeta datatypes.JSON `json:"ttable_version_meta,omitempty"`

	TtableVersionCreatedAt      time.Time `json:"ttable_version_created_at"`
	TtableVersionLastModifiedAt time.Time `json:"ttable_version_last_modified_at"`
}

/* =========================================================
 * HELPERS
 * ========================================================= */

func (r CreateTtableVersionRequest) ToInput(createdBy uuid.UUID) (service.CreateVersionInput, error) {
	in := service.CreateVersionInput{
		BuildingID: r.TtableVersionBuildingID,
		Type:       m.VersionType(r.TtableVersionType),
		CreatedBy:  createdBy,
		Meta:       r.TtableVersionMeta,
	}
	if r.TtableVersionScheduleDate != nil {
		d, err := time.Parse(scheduleDateLayout, *r.TtableVersionScheduleDate)
		if err != nil {
			return service.CreateVersionInput{}, errs.ErrInvalidInput
		}
		in.ScheduleDate = &d
	}
	return in, nil
}

func (r FilterTtableVersionRequest) ToFilter() (service.ListFilter, error) {
	f := service.ListFilter{
		BuildingID:  r.BuildingID,
		IsCommitted: r.IsCommitted,
	}
	if r.StatusID != nil {
		st := m.VersionStatus(*r.StatusID)
		f.StatusID = &st
	}
	if r.Type != nil {
		vt := m.VersionType(*r.Type)
		f.Type = &vt
	}
	if r.DateFrom != nil {
		d, err := time.Parse(scheduleDateLayout, *r.DateFrom)
		if err != nil {
			return service.ListFilter{}, errs.ErrInvalidInput
		}
		f.DateFrom = &d
	}
	if r.DateTo != nil {
		d, err := time.Parse(scheduleDateLayout, *r.DateTo)
		if err != nil {
			return service.ListFilter{}, errs.ErrInvalidInput
		}
		f.DateTo = &d
	}
	return f, nil
}

func NewTtableVersionResponse(mdl m.TtableVersionModel) TtableVersionResponse {
	resp := TtableVersionResponse{
		TtableVersionID:             mdl.TtableVersionID,
		TtableVersionBuildingID:     mdl.TtableVersionBuildingID,
		TtableVersionType:           string(mdl.TtableVersionType),
		TtableVersionStatusID:       int(mdl.TtableVersionStatusID),
		TtableVersionCreatedBy:      mdl.TtableVersionCreatedBy,
		TtableVersionIsCommitted:    mdl.TtableVersionIsCommitted,
		TtableVersionMeta:           mdl.TtableVersionMeta,
		TtableVersionCreatedAt:      mdl.TtableVersionCreatedAt,
		TtableVersionLastModifiedAt: mdl.TtableVersionLastModifiedAt,
	}
	if mdl.TtableVersionScheduleDate != nil {
		d := mdl.TtableVersionScheduleDate.Format(scheduleDateLayout)
		resp.TtableVersionScheduleDate = &d
	}
	return resp
}

func NewTtableVersionResponses(models []m.TtableVersionModel) []TtableVersionResponse {
	out := make([]TtableVersionResponse, 0, len(models))
	for _, mdl := range models {
		out = append(out, NewTtableVersionResponse(mdl))
	}
	return out
}
