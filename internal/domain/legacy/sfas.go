package legacy

import (
	"time"

	"github.com/google/uuid"
)

// SFASIndividual is a student record imported from the legacy aid system.
type SFASIndividual struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SIN       string    `gorm:"column:sin;not null;index" json:"sin"`
	BirthDate time.Time `gorm:"column:birth_date;type:date;not null" json:"birth_date"`
	LastName  string    `gorm:"column:last_name;not null" json:"last_name"`
}

func (SFASIndividual) TableName() string { return "sfas_individuals" }

// SFASApplication is a legacy full-time application.
type SFASApplication struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IndividualID   uuid.UUID `gorm:"type:uuid;not null;index" json:"individual_id"`
	StartDate      time.Time `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate        time.Time `gorm:"column:end_date;type:date;not null" json:"end_date"`
	WithdrawalDate *time.Time `gorm:"column:withdrawal_date;type:date" json:"withdrawal_date,omitempty"`
}

func (SFASApplication) TableName() string { return "sfas_applications" }

// SFASPartTimeApplication is a legacy part-time application.
type SFASPartTimeApplication struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IndividualID uuid.UUID `gorm:"type:uuid;not null;index" json:"individual_id"`
	StartDate    time.Time `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate      time.Time `gorm:"column:end_date;type:date;not null" json:"end_date"`
}

func (SFASPartTimeApplication) TableName() string { return "sfas_part_time_applications" }
