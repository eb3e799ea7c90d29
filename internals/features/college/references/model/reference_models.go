// file: internals/features/college/references/model/reference_models.go
package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =======================================================
   Data referensi (read-only dari sisi engine):
   gedung, grup, pengajar, mata kuliah. CRUD-nya milik
   service lain; engine hanya lookup.
   ======================================================= */

type BuildingModel struct {
	BuildingID   uuid.UUID `json:"building_id" gorm:"type:uuid;primaryKey;column:building_id"`
	BuildingName string    `json:"building_name" gorm:"type:text;not null;column:building_name"`
}

func (BuildingModel) TableName() string { return "buildings" }

func (m *BuildingModel) BeforeCreate(tx *gorm.DB) error {
	if m.BuildingID == uuid.Nil {
		m.BuildingID = uuid.New()
	}
	return nil
}

type GroupModel struct {
	GroupID         uuid.UUID `json:"group_id" gorm:"type:uuid;primaryKey;column:group_id"`
	GroupBuildingID uuid.UUID `json:"group_building_id" gorm:"type:uuid;not null;index;column:group_building_id"`
	GroupName       string    `json:"group_name" gorm:"type:text;not null;column:group_name"`
	GroupIsActive   bool      `json:"group_is_active" gorm:"type:boolean;not null;default:true;column:group_is_active"`
}

func (GroupModel) TableName() string { return "groups" }

func (m *GroupModel) BeforeCreate(tx *gorm.DB) error {
	if m.GroupID == uuid.Nil {
		m.GroupID = uuid.New()
	}
	return nil
}

type TeacherModel struct {
	TeacherID  uuid.UUID `json:"teacher_id" gorm:"type:uuid;primaryKey;column:teacher_id"`
	TeacherFio string    `json:"teacher_fio" gorm:"type:text;not null;column:teacher_fio"`
}

func (TeacherModel) TableName() string { return "teachers" }

func (m *TeacherModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeacherID == uuid.Nil {
		m.TeacherID = uuid.New()
	}
	return nil
}

type DisciplineModel struct {
	DisciplineID    uuid.UUID `json:"discipline_id" gorm:"type:uuid;primaryKey;column:discipline_id"`
	DisciplineTitle string    `json:"discipline_title" gorm:"type:text;not null;column:discipline_title"`
}

func (DisciplineModel) TableName() string { return "disciplines" }

func (m *DisciplineModel) BeforeCreate(tx *gorm.DB) error {
	if m.DisciplineID == uuid.Nil {
		m.DisciplineID = uuid.New()
	}
	return nil
}
