package applications

import (
	"time"

	"github.com/google/uuid"
)

type OfferingChangeStatus string

const (
	OfferingChangeInProgressWithStudent OfferingChangeStatus = "In progress with student"
	OfferingChangeInProgressWithSABC    OfferingChangeStatus = "In progress with StudentAid BC"
	OfferingChangeDeclinedByStudent     OfferingChangeStatus = "Declined by student"
	OfferingChangeDeclinedBySABC        OfferingChangeStatus = "Declined by StudentAid BC"
	OfferingChangeApproved              OfferingChangeStatus = "Approved"
	OfferingChangeCancelled             OfferingChangeStatus = "Cancelled"
)

// Pending reports whether the request still awaits a decision.
func (s OfferingChangeStatus) Pending() bool {
	return s == OfferingChangeInProgressWithStudent || s == OfferingChangeInProgressWithSABC
}

// ApplicationOfferingChangeRequest tracks an institution's request to swap the offering
// of a single completed application.
type ApplicationOfferingChangeRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ApplicationID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"application_id"`
	ActiveOfferingID      uuid.UUID            `gorm:"type:uuid;not null" json:"active_offering_id"`
	RequestedOfferingID   uuid.UUID            `gorm:"type:uuid;not null" json:"requested_offering_id"`
	Status                OfferingChangeStatus `gorm:"column:application_offering_change_request_status;not null;index" json:"application_offering_change_request_status"`
	Reason                string               `gorm:"column:reason;not null" json:"reason"`
	StudentConsent        *bool                `gorm:"column:student_consent" json:"student_consent,omitempty"`
	StudentActionedAt     *time.Time           `gorm:"column:student_actioned_date" json:"student_actioned_date,omitempty"`
	AssessedNote          string               `gorm:"column:assessed_note" json:"assessed_note,omitempty"`
	AssessedBy            *uuid.UUID           `gorm:"type:uuid;column:assessed_by" json:"assessed_by,omitempty"`
	AssessedAt            *time.Time           `gorm:"column:assessed_date" json:"assessed_date,omitempty"`
	CreatedBy             uuid.UUID            `gorm:"type:uuid;column:creator;not null" json:"creator"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ApplicationOfferingChangeRequest) TableName() string {
	return "application_offering_change_requests"
}
