package applications

import (
	"time"

	"github.com/google/uuid"
)

// ProgramYear scopes applications; its prefix seeds application numbers (e.g. "2324").
type ProgramYear struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Prefix    string    `gorm:"column:program_year_prefix;not null;uniqueIndex" json:"program_year_prefix"`
	Label     string    `gorm:"column:program_year;not null" json:"program_year"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null" json:"end_date"`
	Active    bool      `gorm:"column:active;not null" json:"active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ProgramYear) TableName() string { return "program_years" }
