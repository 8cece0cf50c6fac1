package students

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Student is the aid applicant. Identity fields used by legacy lookups live here.
type Student struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name;not null" json:"last_name"`
	BirthDate time.Time `gorm:"column:birth_date;type:date;not null" json:"birth_date"`

	SINValidationID *uuid.UUID     `gorm:"type:uuid;column:sin_validation_id" json:"sin_validation_id,omitempty"`
	SINValidation   *SINValidation `gorm:"foreignKey:SINValidationID" json:"sin_validation,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Student) TableName() string { return "students" }

// SINValidation is the latest result of the external SIN verification feed.
type SINValidation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	SIN           string     `gorm:"column:sin;not null" json:"sin"`
	IsValidSIN    *bool      `gorm:"column:is_valid_sin" json:"is_valid_sin,omitempty"`
	TemporarySIN  bool       `gorm:"column:temporary_sin;not null" json:"temporary_sin"`
	SINExpiryDate *time.Time `gorm:"column:sin_expiry_date;type:date" json:"sin_expiry_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SINValidation) TableName() string { return "sin_validations" }

// NormalizedSIN strips separators from the stored SIN.
func (v *SINValidation) NormalizedSIN() string {
	if v == nil {
		return ""
	}
	return strings.NewReplacer(" ", "", "-", "").Replace(v.SIN)
}
