// file: internals/features/college/cards/model/card_state_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =======================================================
   Enum status kartu
   ======================================================= */

type CardStatus int

const (
	CardDraft    CardStatus = 1
	CardSaved    CardStatus = 2
	CardAccepted CardStatus = 3
)

/* =======================================================
   CardStateHistoryModel — map ke tabel cards_states_history

   Append-only: setiap save membuat baris baru; baris lama
   tidak pernah diubah selain flag is_current. Tepat satu
   baris current per (version, group) — dijaga index parsial
   ux_cards_history_current.
   ======================================================= */

type CardStateHistoryModel struct {
	CardHistID uuid.UUID `json:"card_hist_id" gorm:"type:uuid;primaryKey;column:card_hist_id"`

	CardHistTtableVersionID uuid.UUID `json:"card_hist_ttable_version_id" gorm:"type:uuid;not null;index;column:card_hist_ttable_version_id"`
	CardHistGroupID         uuid.UUID `json:"card_hist_group_id" gorm:"type:uuid;not null;index;column:card_hist_group_id"`

	CardHistIsCurrent bool       `json:"card_hist_is_current" gorm:"type:boolean;not null;default:false;column:card_hist_is_current"`
	CardHistStatusID  CardStatus `json:"card_hist_status_id" gorm:"type:int;not null;default:1;column:card_hist_status_id"`

	CardHistCreatedBy uuid.UUID `json:"card_hist_created_by" gorm:"type:uuid;not null;column:card_hist_created_by"`
	CardHistCreatedAt time.Time `json:"card_hist_created_at" gorm:"column:card_hist_created_at;not null;autoCreateTime"`
}

func (CardStateHistoryModel) TableName() string { return "cards_states_history" }

func (m *CardStateHistoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.CardHistID == uuid.Nil {
		m.CardHistID = uuid.New()
	}
	return nil
}

/* =======================================================
   CardStateDetailModel — map ke tabel cards_states_details

   version_id / group_id / is_current didenormalisasi dari
   history (di-maintain dalam transaksi yang sama) supaya
   index parsial slot guru/ruangan bisa menolak race yang
   lolos dari pengecekan in-memory.
   ======================================================= */

type CardStateDetailModel struct {
	CardDetailID uuid.UUID `json:"card_detail_id" gorm:"type:uuid;primaryKey;column:card_detail_id"`

	CardDetailCardHistID uuid.UUID `json:"card_detail_card_hist_id" gorm:"type:uuid;not null;index;column:card_detail_card_hist_id"`

	// Denormalisasi dari history
	CardDetailTtableVersionID uuid.UUID `json:"card_detail_ttable_version_id" gorm:"type:uuid;not null;index;column:card_detail_ttable_version_id"`
	CardDetailGroupID         uuid.UUID `json:"card_detail_group_id" gorm:"type:uuid;not null;column:card_detail_group_id"`
	CardDetailIsCurrent       bool      `json:"card_detail_is_current" gorm:"type:boolean;not null;default:false;column:card_detail_is_current"`

	// Isi pelajaran
	CardDetailDisciplineID uuid.UUID `json:"card_detail_discipline_id" gorm:"type:uuid;not null;column:card_detail_discipline_id"`
	CardDetailTeacherID    uuid.UUID `json:"card_detail_teacher_id" gorm:"type:uuid;not null;column:card_detail_teacher_id"`
	CardDetailPosition     int       `json:"card_detail_position" gorm:"type:int;not null;column:card_detail_position"`
	CardDetailWeekDay      int       `json:"card_detail_week_day" gorm:"type:int;not null;column:card_detail_week_day"` // 1..7
	CardDetailAud          string    `json:"card_detail_aud" gorm:"type:text;not null;default:'';column:card_detail_aud"`
}

func (CardStateDetailModel) TableName() string { return "cards_states_details" }

func (m *CardStateDetailModel) BeforeCreate(tx *gorm.DB) error {
	if m.CardDetailID == uuid.Nil {
		m.CardDetailID = uuid.New()
	}
	return nil
}
