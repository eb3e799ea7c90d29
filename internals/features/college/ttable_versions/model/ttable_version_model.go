// file: internals/features/college/ttable_versions/model/ttable_version_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =======================================================
   Enum status & tipe versi
   ======================================================= */

type VersionStatus int

const (
	VersionAccepted   VersionStatus = 1
	VersionPending    VersionStatus = 2
	VersionDeprecated VersionStatus = 3
)

type VersionType string

const (
	VersionTypeStandard VersionType = "standard" // template mingguan
	VersionTypeDaily    VersionType = "daily"    // jadwal untuk satu tanggal
)

func (t VersionType) Valid() bool {
	return t == VersionTypeStandard || t == VersionTypeDaily
}

/* =======================================================
   TtableVersionModel — map ke tabel ttable_versions
   ======================================================= */

type TtableVersionModel struct {
	// PK
	TtableVersionID uuid.UUID `json:"ttable_version_id" gorm:"type:uuid;primaryKey;column:ttable_version_id"`

	// Scope
	TtableVersionBuildingID uuid.UUID `json:"ttable_version_building_id" gorm:"type:uuid;not null;index;column:ttable_version_building_id"`

	// NULL untuk tipe standard (berlaku tiap minggu)
	TtableVersionScheduleDate *time.Time `json:"ttable_version_schedule_date,omitempty" gorm:"type:date;column:ttable_version_schedule_date"`

	TtableVersionType     VersionType   `json:"ttable_version_type" gorm:"type:text;not null;column:ttable_version_type"`
	TtableVersionStatusID VersionStatus `json:"ttable_version_status_id" gorm:"type:int;not null;default:2;column:ttable_version_status_id"`

	// Audit
	TtableVersionCreatedBy   uuid.UUID `json:"ttable_version_created_by" gorm:"type:uuid;not null;column:ttable_version_created_by"`
	TtableVersionIsCommitted bool      `json:"ttable_version_is_committed" gorm:"type:boolean;not null;default:false;column:ttable_version_is_committed"`

	// Metadata bebas (sumber import, nama file, dst.)
	TtableVersionMeta datatypes.JSON `json:"ttable_version_meta,omitempty" gorm:"type:jsonb;column:ttable_version_meta"`

	TtableVersionCreatedAt      time.Time `json:"ttable_version_created_at" gorm:"column:ttable_version_created_at;not null;autoCreateTime"`
	TtableVersionLastModifiedAt time.Time `json:"ttable_version_last_modified_at" gorm:"column:ttable_version_last_modified_at;not null;autoUpdateTime"`
}

func (TtableVersionModel) TableName() string { return "ttable_versions" }

func (m *TtableVersionModel) BeforeCreate(tx *gorm.DB) error {
	if m.TtableVersionID == uuid.Nil {
		m.TtableVersionID = uuid.New()
	}
	return nil
}
