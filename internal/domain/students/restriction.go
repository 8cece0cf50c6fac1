package students

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestrictionType string

const (
	RestrictionTypeProvincial RestrictionType = "Provincial"
	RestrictionTypeFederal    RestrictionType = "Federal"
)

// Restriction is a catalogue entry keyed by its code (SINR, SSR, SSRN, WTHD, PTSSR, PTWTHD, ...).
type Restriction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Code            string          `gorm:"column:restriction_code;not null;uniqueIndex" json:"restriction_code"`
	Description     string          `gorm:"column:description;not null" json:"description"`
	RestrictionType RestrictionType `gorm:"column:restriction_type;not null" json:"restriction_type"`
	// Actions lists the blocked student actions (e.g. "stop_full_time_apply").
	Actions string `gorm:"column:action_type" json:"action_type"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Restriction) TableName() string { return "restrictions" }

// StudentRestriction is never hard-deleted: resolution and deletion are audited state changes.
type StudentRestriction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	StudentID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"student_id"`
	RestrictionID uuid.UUID    `gorm:"type:uuid;not null;index" json:"restriction_id"`
	Restriction   *Restriction `gorm:"foreignKey:RestrictionID" json:"restriction,omitempty"`
	ApplicationID *uuid.UUID   `gorm:"type:uuid;index" json:"application_id,omitempty"`

	IsActive bool `gorm:"column:is_active;not null;index" json:"is_active"`

	CreationNote   string     `gorm:"column:creation_note" json:"creation_note,omitempty"`
	ResolutionNote string     `gorm:"column:resolution_note" json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy     *uuid.UUID `gorm:"type:uuid;column:resolved_by" json:"resolved_by,omitempty"`
	DeletionNote   string     `gorm:"column:deletion_note" json:"deletion_note,omitempty"`
	DeletedBy      *uuid.UUID `gorm:"type:uuid;column:deleted_by" json:"deleted_by,omitempty"`

	CreatedBy *uuid.UUID     `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudentRestriction) TableName() string { return "student_restrictions" }
