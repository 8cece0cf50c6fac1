package institutions

import (
	"time"

	"github.com/google/uuid"
)

// Location is an institution campus. Applications bind to it once designated.
type Location struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InstitutionID uuid.UUID `gorm:"type:uuid;not null;index" json:"institution_id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	IsDesignated  bool      `gorm:"column:is_designated;not null" json:"is_designated"`
	IsActive      bool      `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Location) TableName() string { return "institution_locations" }

// Accepted reports whether applications may be submitted against the location.
func (l *Location) Accepted() bool {
	return l != nil && l.IsActive && l.IsDesignated
}

type EducationProgram struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InstitutionID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"institution_id"`
	Name             string     `gorm:"column:name;not null" json:"name"`
	IsActive         bool       `gorm:"column:is_active;not null" json:"is_active"`
	EffectiveEndDate *time.Time `gorm:"column:effective_end_date;type:date" json:"effective_end_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EducationProgram) TableName() string { return "education_programs" }

// IsExpired reports whether the program's effective end date is on or before now.
func (p *EducationProgram) IsExpired(now time.Time) bool {
	if p == nil || p.EffectiveEndDate == nil {
		return false
	}
	return !p.EffectiveEndDate.After(now)
}
