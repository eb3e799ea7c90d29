// file: internals/features/college/ttable_versions/service/version_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/college/errs"
	refModel "kampusku_backend/internals/features/college/references/model"
	m "kampusku_backend/internals/features/college/ttable_versions/model"
)

/* =========================
   Service & Constructor
   ========================= */

type VersionService struct {
	DB *gorm.DB
}

func NewVersionService(db *gorm.DB) *VersionService {
	return &VersionService{DB: db}
}

/* =========================
   Create
   ========================= */

type CreateVersionInput struct {
	BuildingID   uuid.UUID
	ScheduleDate *time.Time // wajib untuk daily, harus kosong untuk standard
	Type         m.VersionType
	CreatedBy    uuid.UUID
	Meta         datatypes.JSON
}

// Create membuat versi baru berstatus pending. Duplikat pending untuk
// scope yang sama ditolak sebagai input tidak valid, bukan konflik —
// pemanggil seharusnya melanjutkan versi yang sudah ada.
func (s *VersionService) Create(ctx context.Context, in CreateVersionInput) (*m.TtableVersionModel, error) {
	if !in.Type.Valid() || in.BuildingID == uuid.Nil || in.CreatedBy == uuid.Nil {
		return nil, errs.ErrInvalidInput
	}
	if in.Type == m.VersionTypeDaily && in.ScheduleDate == nil {
		return nil, errs.ErrInvalidInput
	}
	if in.Type == m.VersionTypeStandard && in.ScheduleDate != nil {
		return nil, errs.ErrInvalidInput
	}

	var ver m.TtableVersionModel
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		var building refModel.BuildingModel
		if err := tx.Where("building_id = ?", in.BuildingID).First(&building).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}

		dup := tx.Model(&m.TtableVersionModel{}).
			Where("ttable_version_building_id = ? AND ttable_version_type = ? AND ttable_version_status_id = ?",
				in.BuildingID, in.Type, m.VersionPending)
		if in.ScheduleDate == nil {
			dup = dup.Where("ttable_version_schedule_date IS NULL")
		} else {
			dup = dup.Where("ttable_version_schedule_date = ?", *in.ScheduleDate)
		}
		var cnt int64
		if err := dup.Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return errs.ErrInvalidInput
		}

		ver = m.TtableVersionModel{
			TtableVersionID:           uuid.New(),
			TtableVersionBuildingID:   in.BuildingID,
			TtableVersionScheduleDate: in.ScheduleDate,
			TtableVersionType:         in.Type,
			TtableVersionStatusID:     m.VersionPending,
			TtableVersionCreatedBy:    in.CreatedBy,
			TtableVersionMeta:         in.Meta,
		}
		return tx.Create(&ver).Error
	})
	if err != nil {
		if errs.IsUniqueViolation(err) {
			// race dengan create lain di scope yang sama
			return nil, errs.ErrInvalidInput
		}
		return nil, classify("versions.create", err)
	}
	return &ver, nil
}

/* =========================
   Read
   ========================= */

func (s *VersionService) GetByID(ctx context.Context, id uuid.UUID) (*m.TtableVersionModel, error) {
	var ver m.TtableVersionModel
	err := s.DB.WithContext(ctx).
		Where("ttable_version_id = ?", id).
		First(&ver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Storage("versions.get", err)
	}
	return &ver, nil
}

// GetAccepted: lookup read-only untuk versi yang sedang berlaku.
// Maksimal satu per (building, type) — dijaga ux_ttable_versions_accepted.
func (s *VersionService) GetAccepted(ctx context.Context, buildingID uuid.UUID, vtype m.VersionType) (*m.TtableVersionModel, error) {
	if !vtype.Valid() || buildingID == uuid.Nil {
		return nil, errs.ErrInvalidInput
	}
	var ver m.TtableVersionModel
	err := s.DB.WithContext(ctx).
		Where("ttable_version_building_id = ? AND ttable_version_type = ? AND ttable_version_status_id = ?",
			buildingID, vtype, m.VersionAccepted).
		First(&ver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Storage("versions.get_accepted", err)
	}
	return &ver, nil
}

/* =========================
   List (filter + paginasi)
   ========================= */

type ListFilter struct {
	BuildingID  *uuid.UUID
	StatusID    *m.VersionStatus
	Type        *m.VersionType
	DateFrom    *time.Time
	DateTo      *time.Time
	IsCommitted *bool
}

func (s *VersionService) List(ctx context.Context, f ListFilter, page, perPage int) ([]m.TtableVersionModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	q := s.DB.WithContext(ctx).Model(&m.TtableVersionModel{})
	if f.BuildingID != nil {
		q = q.Where("ttable_version_building_id = ?", *f.BuildingID)
	}
	if f.StatusID != nil {
		q = q.Where("ttable_version_status_id = ?", *f.StatusID)
	}
	if f.Type != nil {
		q = q.Where("ttable_version_type = ?", *f.Type)
	}
	if f.DateFrom != nil {
		q = q.Where("ttable_version_schedule_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("ttable_version_schedule_date <= ?", *f.DateTo)
	}
	if f.IsCommitted != nil {
		q = q.Where("ttable_version_is_committed = ?", *f.IsCommitted)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.Storage("versions.list", err)
	}

	var rows []m.TtableVersionModel
	err := q.Order("ttable_version_created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errs.Storage("versions.list", err)
	}
	return rows, total, nil
}
