package common

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationMessageType string

const (
	MessageStudentRestrictionAdded        NotificationMessageType = "student_restriction_added"
	MessageMinistryApplicationEditedLimit NotificationMessageType = "ministry_application_edited_too_many_times"
	MessageStudentOfferingChangeRequested NotificationMessageType = "student_application_offering_change_requested"
	MessageInstitutionOfferingChangeDone  NotificationMessageType = "institution_offering_change_assessed"
)

// Notification is queued inside the owning transaction and dispatched after commit.
// DispatchedAt stays nil until the external dispatcher delivers it.
type Notification struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MessageType NotificationMessageType `gorm:"column:message_type;not null;index" json:"message_type"`
	UserID      *uuid.UUID              `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`
	// DedupeKey makes one-time notifications idempotent (checked before insert).
	DedupeKey string         `gorm:"column:dedupe_key;index" json:"dedupe_key,omitempty"`
	Payload   datatypes.JSON `gorm:"column:message_payload" json:"message_payload"`

	DispatchedAt *time.Time `gorm:"column:date_sent" json:"date_sent,omitempty"`
	Attempts     int        `gorm:"column:attempts;not null" json:"attempts"`

	CreatedBy *uuid.UUID `gorm:"type:uuid;column:creator" json:"creator,omitempty"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
