package applications

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentTrigger string

const (
	TriggerOriginalAssessment        AssessmentTrigger = "Original assessment"
	TriggerStudentAppeal             AssessmentTrigger = "Student appeal"
	TriggerOfferingChange            AssessmentTrigger = "Offering change"
	TriggerScholasticStandingChange  AssessmentTrigger = "Scholastic standing change"
	TriggerApplicationOfferingChange AssessmentTrigger = "Application offering change"
)

type AssessmentStatus string

const (
	AssessmentStatusPending               AssessmentStatus = "Pending"
	AssessmentStatusCompleted             AssessmentStatus = "Completed"
	AssessmentStatusCancellationRequested AssessmentStatus = "Cancellation requested"
	AssessmentStatusCancelled             AssessmentStatus = "Cancelled"
)

type NOAApprovalStatus string

const (
	NOARequired  NOAApprovalStatus = "Required"
	NOACompleted NOAApprovalStatus = "Completed"
)

// StudentAssessment is one evaluation pass of an application against an offering.
// Rows are never deleted; the application's current_assessment_id selects the live one.
type StudentAssessment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ApplicationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"application_id"`
	TriggerType   AssessmentTrigger `gorm:"column:trigger_type;not null;index" json:"trigger_type"`
	OfferingID    *uuid.UUID        `gorm:"type:uuid;column:offering_id;index" json:"offering_id,omitempty"`

	Status            AssessmentStatus   `gorm:"column:student_assessment_status;not null;index" json:"student_assessment_status"`
	StatusUpdatedAt   time.Time          `gorm:"column:student_assessment_status_updated_on;not null" json:"student_assessment_status_updated_on"`
	NOAApprovalStatus *NOAApprovalStatus `gorm:"column:noa_approval_status" json:"noa_approval_status,omitempty"`

	ScholasticStandingID    *uuid.UUID `gorm:"type:uuid;column:student_scholastic_standing_id" json:"student_scholastic_standing_id,omitempty"`
	OfferingChangeRequestID *uuid.UUID `gorm:"type:uuid;column:application_offering_change_request_id" json:"application_offering_change_request_id,omitempty"`

	SubmittedAt    time.Time  `gorm:"column:submitted_date;not null" json:"submitted_date"`
	SubmittedBy    *uuid.UUID `gorm:"type:uuid;column:submitted_by" json:"submitted_by,omitempty"`
	AssessmentDate *time.Time `gorm:"column:assessment_date" json:"assessment_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StudentAssessment) TableName() string { return "student_assessments" }
