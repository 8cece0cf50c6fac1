package applications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StandingChangeType string

const (
	StandingWithdrewFromProgram   StandingChangeType = "Student withdrew from program"
	StandingDidNotCompleteProgram StandingChangeType = "Student did not complete program"
	StandingCompletedEarly        StandingChangeType = "Student completed program early"
	StandingSchoolTransfer        StandingChangeType = "School transfer"
)

// Withdrawal and NonCompletion are the two report kinds that feed restriction escalation.
func (t StandingChangeType) Withdrawal() bool    { return t == StandingWithdrewFromProgram }
func (t StandingChangeType) NonCompletion() bool { return t == StandingDidNotCompleteProgram }

// ShortensStudy reports whether the report carries a new, earlier study end date.
func (t StandingChangeType) ShortensStudy() bool {
	return t == StandingWithdrewFromProgram || t == StandingCompletedEarly
}

// ScholasticStanding is an institution's report on a student's progress in a study period.
type ScholasticStanding struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ApplicationID uuid.UUID          `gorm:"type:uuid;not null;index" json:"application_id"`
	StudentID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"student_id"`
	ChangeType    StandingChangeType `gorm:"column:change_type;not null" json:"change_type"`
	// Intensity of the reported offering; escalation differs for part-time.
	Intensity string `gorm:"column:offering_intensity;not null;index" json:"offering_intensity"`

	UnsuccessfulWeeks int        `gorm:"column:unsuccessful_weeks;not null" json:"unsuccessful_weeks"`
	NewStudyEndDate   *time.Time `gorm:"column:new_study_end_date;type:date" json:"new_study_end_date,omitempty"`

	ReferenceOfferingID uuid.UUID      `gorm:"type:uuid;column:reference_offering_id;not null" json:"reference_offering_id"`
	SubmittedData       datatypes.JSON `gorm:"column:submitted_data" json:"submitted_data"`
	Note                string         `gorm:"column:note" json:"note,omitempty"`

	SubmittedBy uuid.UUID `gorm:"type:uuid;column:submitted_by;not null" json:"submitted_by"`
	SubmittedAt time.Time `gorm:"column:submitted_date;not null" json:"submitted_date"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (ScholasticStanding) TableName() string { return "student_scholastic_standings" }
