package applications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft       Status = "Draft"
	StatusSubmitted   Status = "Submitted"
	StatusInProgress  Status = "In Progress"
	StatusAssessment  Status = "Assessment"
	StatusEnrolment   Status = "Enrolment"
	StatusCompleted   Status = "Completed"
	StatusCancelled   Status = "Cancelled"
	StatusOverwritten Status = "Overwritten"
	// StatusEdited marks a row that carries a post-completion change request, not a live application.
	StatusEdited Status = "Edited"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusOverwritten
}

// Overwritable reports whether a resubmission replaces the row instead of being rejected.
func (s Status) Overwritable() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusAssessment, StatusEnrolment:
		return true
	default:
		return false
	}
}

type PIRStatus string

const (
	PIRStatusRequired    PIRStatus = "Required"
	PIRStatusNotRequired PIRStatus = "Not Required"
	PIRStatusCompleted   PIRStatus = "Completed"
	PIRStatusDeclined    PIRStatus = "Declined"
)

// PIRDeniedReasonOther requires free-text in PIRDeniedOtherDesc.
const PIRDeniedReasonOther = 1

type ChangeRequestStatus string

const (
	ChangeRequestInProgressWithStudent ChangeRequestStatus = "In progress with student"
	ChangeRequestInProgressWithSABC    ChangeRequestStatus = "In progress with StudentAid BC"
	ChangeRequestApproved              ChangeRequestStatus = "Approved"
	ChangeRequestDeclined              ChangeRequestStatus = "Declined"
	ChangeRequestCancelled             ChangeRequestStatus = "Cancelled"
)

// Pending reports whether the change request still blocks a new one.
func (s ChangeRequestStatus) Pending() bool {
	return s == ChangeRequestInProgressWithStudent || s == ChangeRequestInProgressWithSABC
}

// Application is one student's aid request for one program year. ApplicationNumber is
// shared by every row of an overwrite chain; exactly one row of the chain is live.
type Application struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ApplicationNumber *string    `gorm:"column:application_number;index" json:"application_number,omitempty"`
	ProgramYearID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"program_year_id"`
	StudentID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	LocationID        *uuid.UUID `gorm:"type:uuid;index" json:"location_id,omitempty"`

	Status          Status     `gorm:"column:application_status;not null;index" json:"application_status"`
	StatusUpdatedAt time.Time  `gorm:"column:application_status_updated_on;not null" json:"application_status_updated_on"`
	SubmittedAt     *time.Time `gorm:"column:submitted_date" json:"submitted_date,omitempty"`
	IsArchived      bool       `gorm:"column:is_archived;not null" json:"is_archived"`

	Data datatypes.JSON `gorm:"column:data" json:"data"`

	CurrentAssessmentID *uuid.UUID `gorm:"type:uuid;column:current_assessment_id" json:"current_assessment_id,omitempty"`

	PIRStatus          *PIRStatus `gorm:"column:pir_status" json:"pir_status,omitempty"`
	PIRDeniedReasonID  *int       `gorm:"column:pir_denied_reason_id" json:"pir_denied_reason_id,omitempty"`
	PIRDeniedOtherDesc string     `gorm:"column:pir_denied_other_desc" json:"pir_denied_other_desc,omitempty"`

	// Change request (post-completion appeal) rows point back at the live application.
	PrecedingApplicationID *uuid.UUID           `gorm:"type:uuid;column:preceding_application_id;index" json:"preceding_application_id,omitempty"`
	ChangeRequestStatus    *ChangeRequestStatus `gorm:"column:change_request_status;index" json:"change_request_status,omitempty"`

	CreatedBy *uuid.UUID `gorm:"type:uuid;column:creator" json:"creator,omitempty"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid;column:modifier" json:"modifier,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

func (a *Application) Number() string {
	if a == nil || a.ApplicationNumber == nil {
		return ""
	}
	return *a.ApplicationNumber
}
