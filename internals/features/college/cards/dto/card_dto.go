// file: internals/features/college/cards/dto/card_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "kampusku_backend/internals/features/college/cards/model"
	service "kampusku_backend/internals/features/college/cards/service"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

// Satu pelajaran di kartu (JSON)
type CardSlotRequest struct {
	CardDetailDisciplineID uuid.UUID `json:"card_detail_discipline_id" validate:"required"`
	CardDetailTeacherID    uuid.UUID `json:"card_detail_teacher_id" validate:"required"`

	// Nomor pasangan dalam hari (1..n) dan hari dalam minggu (1=Senin .. 7=Minggu)
	CardDetailPosition int `json:"card_detail_position" validate:"required,min=1,max=20"`
	CardDetailWeekDay  int `json:"card_detail_week_day" validate:"required,min=1,max=7"`

	// Opsional: ruangan; kosong = belum ditentukan (tidak ikut cek ruangan)
	CardDetailAud string `json:"card_detail_aud" validate:"omitempty,max=50"`
}

// Save (JSON)
type SaveCardRequest struct {
	CardTtableVersionID uuid.UUID         `json:"card_ttable_version_id" validate:"required"`
	CardGroupID         uuid.UUID         `json:"card_group_id" validate:"required"`
	Assignments         []CardSlotRequest `json:"assignments" validate:"required,min=1,dive"`
}

// Rollback kartu ke baris history lama (JSON)
type RollbackCardRequest struct {
	CardTtableVersionID uuid.UUID `json:"card_ttable_version_id" validate:"required"`
	CardGroupID         uuid.UUID `json:"card_group_id" validate:"required"`
	CardHistID          uuid.UUID `json:"card_hist_id" validate:"required"`
}

// Bulk add — feed dari importer (JSON)
type BulkGroupRequest struct {
	CardGroupID uuid.UUID         `json:"card_group_id" validate:"required"`
	Assignments []CardSlotRequest `json:"assignments" validate:"required,min=1,dive"`
}

type BulkAddRequest struct {
	CardTtableVersionID uuid.UUID          `json:"card_ttable_version_id" validate:"required"`
	Cards               []BulkGroupRequest `json:"cards" validate:"required,min=1,dive"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type CardHistoryResponse struct {
	CardHistID              uuid.UUID `json:"card_hist_id"`
	CardHistTtableVersionID uuid.UUID `json:"card_hist_ttable_version_id"`
	CardHistGroupID         uuid.UUID `json:"card_hist_group_id"`
	CardHistIsCurrent       bool      `json:"card_hist_is_current"`
	CardHistStatusID        int       `json:"card_hist_status_id"`
	CardHistCreatedBy       uuid.UUID `json:"card_hist_created_by"`
	CardHistCreatedAt       time.Time `json:"card_hist_created_at"`
}

type CardDetailResponse struct {
	CardDetailID           uuid.UUID `json:"card_detail_id"`
	CardDetailDisciplineID uuid.UUID `json:"card_detail_discipline_id"`
	CardDetailTeacherID    uuid.UUID `json:"card_detail_teacher_id"`
	CardDetailPosition     int       `json:"card_detail_position"`
	CardDetailWeekDay      int       `json:"card_detail_week_day"`
	CardDetailAud          string    `json:"card_detail_aud,omitempty"`
}

type CardResponse struct {
	History CardHistoryResponse  `json:"history"`
	Details []CardDetailResponse `json:"details"`
}

/* =========================================================
 * HELPERS
 * ========================================================= */

func toAssignments(slots []CardSlotRequest) []service.SlotAssignment {
	out := make([]service.SlotAssignment, 0, len(slots))
	for _, s := range slots {
		out = append(out, service.SlotAssignment{
			DisciplineID: s.CardDetailDisciplineID,
			TeacherID:    s.CardDetailTeacherID,
			Position:     s.CardDetailPosition,
			WeekDay:      s.CardDetailWeekDay,
			Aud:          s.CardDetailAud,
		})
	}
	return out
}

func (r SaveCardRequest) ToAssignments() []service.SlotAssignment {
	return toAssignments(r.Assignments)
}

func (r BulkAddRequest) ToGroupAssignments() []service.GroupAssignments {
	out := make([]service.GroupAssignments, 0, len(r.Cards))
	for _, c := range r.Cards {
		out = append(out, service.GroupAssignments{
			GroupID:     c.CardGroupID,
			Assignments: toAssignments(c.Assignments),
		})
	}
	return out
}

func NewCardHistoryResponse(mdl m.CardStateHistoryModel) CardHistoryResponse {
	return CardHistoryResponse{
		CardHistID:              mdl.CardHistID,
		CardHistTtableVersionID: mdl.CardHistTtableVersionID,
		CardHistGroupID:         mdl.CardHistGroupID,
		CardHistIsCurrent:       mdl.CardHistIsCurrent,
		CardHistStatusID:        int(mdl.CardHistStatusID),
		CardHistCreatedBy:       mdl.CardHistCreatedBy,
		CardHistCreatedAt:       mdl.CardHistCreatedAt,
	}
}

func NewCardHistoryResponses(models []m.CardStateHistoryModel) []CardHistoryResponse {
	out := make([]CardHistoryResponse, 0, len(models))
	for _, mdl := range models {
		out = append(out, NewCardHistoryResponse(mdl))
	}
	return out
}

func NewCardDetailResponses(models []m.CardStateDetailModel) []CardDetailResponse {
	out := make([]CardDetailResponse, 0, len(models))
	for _, mdl := range models {
		out = append(out, CardDetailResponse{
			CardDetailID:           mdl.CardDetailID,
			CardDetailDisciplineID: mdl.CardDetailDisciplineID,
			CardDetailTeacherID:    mdl.CardDetailTeacherID,
			CardDetailPosition:     mdl.CardDetailPosition,
			CardDetailWeekDay:      mdl.CardDetailWeekDay,
			CardDetailAud:          mdl.CardDetailAud,
		})
	}
	return out
}

func NewCardResponse(card service.Card) CardResponse {
	return CardResponse{
		History: NewCardHistoryResponse(card.History),
		Details: NewCardDetailResponses(card.Details),
	}
}
