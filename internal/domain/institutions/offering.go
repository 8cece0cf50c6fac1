package institutions

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OfferingStatus string

const (
	OfferingStatusApproved               OfferingStatus = "Approved"
	OfferingStatusCreationPending        OfferingStatus = "Creation pending"
	OfferingStatusCreationDeclined       OfferingStatus = "Creation declined"
	OfferingStatusChangeUnderReview      OfferingStatus = "Change under review"
	OfferingStatusChangeAwaitingApproval OfferingStatus = "Change awaiting approval"
	OfferingStatusChangeOverwritten      OfferingStatus = "Change overwritten"
	OfferingStatusChangeDeclined         OfferingStatus = "Change declined"
)

type OfferingIntensity string

const (
	OfferingIntensityFullTime OfferingIntensity = "Full Time"
	OfferingIntensityPartTime OfferingIntensity = "Part Time"
)

type OfferingType string

const (
	OfferingTypePublic             OfferingType = "Public"
	OfferingTypePrivate            OfferingType = "Private"
	OfferingTypeScholasticStanding OfferingType = "Scholastic Standing"
)

// StudyBreak is one break period inside an offering, inclusive on both ends.
type StudyBreak struct {
	BreakStartDate time.Time `json:"breakStartDate"`
	BreakEndDate   time.Time `json:"breakEndDate"`
}

// Offering is one instance of a program at a location. ParentOfferingID roots a change
// chain (self for a fresh offering); PrecedingOfferingID is the offering a change replaces.
type Offering struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name          string    `gorm:"column:offering_name;not null" json:"offering_name"`
	ProgramID     uuid.UUID `gorm:"type:uuid;not null;index" json:"program_id"`
	LocationID    uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	ProgramYearID *uuid.UUID `gorm:"type:uuid;index" json:"program_year_id,omitempty"`

	StudyStartDate time.Time      `gorm:"column:study_start_date;type:date;not null" json:"study_start_date"`
	StudyEndDate   time.Time      `gorm:"column:study_end_date;type:date;not null" json:"study_end_date"`
	StudyBreaks    datatypes.JSON `gorm:"column:study_breaks" json:"study_breaks"`

	Intensity OfferingIntensity `gorm:"column:offering_intensity;not null" json:"offering_intensity"`
	Status    OfferingStatus    `gorm:"column:offering_status;not null;index" json:"offering_status"`
	Type      OfferingType      `gorm:"column:offering_type;not null" json:"offering_type"`

	ParentOfferingID    *uuid.UUID `gorm:"type:uuid;column:parent_offering_id;index" json:"parent_offering_id,omitempty"`
	PrecedingOfferingID *uuid.UUID `gorm:"type:uuid;column:preceding_offering_id;index" json:"preceding_offering_id,omitempty"`

	SubmittedBy *uuid.UUID `gorm:"type:uuid;column:submitted_by" json:"submitted_by,omitempty"`
	AssessedBy  *uuid.UUID `gorm:"type:uuid;column:assessed_by" json:"assessed_by,omitempty"`
	AssessedAt  *time.Time `gorm:"column:assessed_at" json:"assessed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Offering) TableName() string { return "education_programs_offerings" }

// Breaks decodes the study break JSON column. An empty column yields no breaks.
func (o *Offering) Breaks() ([]StudyBreak, error) {
	if o == nil || len(o.StudyBreaks) == 0 {
		return nil, nil
	}
	var out []StudyBreak
	if err := json.Unmarshal(o.StudyBreaks, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeBreaks serializes breaks for the study_breaks column.
func EncodeBreaks(breaks []StudyBreak) (datatypes.JSON, error) {
	if breaks == nil {
		breaks = []StudyBreak{}
	}
	raw, err := json.Marshal(breaks)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
