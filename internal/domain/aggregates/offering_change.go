package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var OfferingChangeAggregateContract = Contract{
	Name:      "Institutions.OfferingChangeAggregate",
	Tx:        TxOwnedByAggregate,
	Writes:    []string{"RequestChange", "AssessChangeRequest"},
	Notifying: []string{"AssessChangeRequest"},
}

// OfferingChangeAggregate owns the request/approve/decline workflow of a modified offering.
type OfferingChangeAggregate interface {
	Aggregate

	// RequestChange proposes new study dates for an approved offering.
	RequestChange(ctx context.Context, in RequestOfferingChangeInput) (RequestOfferingChangeResult, error)

	// AssessChangeRequest approves or declines a proposed offering. Approval reassesses completed
	// applications and cancels in-flight ones bound to the replaced offering.
	AssessChangeRequest(ctx context.Context, in AssessOfferingChangeInput) (AssessOfferingChangeResult, error)
}

type StudyBreakInput struct {
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required"`
}

type RequestOfferingChangeInput struct {
	LocationID     uuid.UUID
	OfferingID     uuid.UUID
	Name           string            `validate:"max=300"`
	StudyStartDate time.Time         `validate:"required"`
	StudyEndDate   time.Time         `validate:"required"`
	Breaks         []StudyBreakInput `validate:"dive"`
	Reason         string            `validate:"required,max=1000"`
	UserID         uuid.UUID
}

type RequestOfferingChangeResult struct {
	OfferingID          uuid.UUID
	PrecedingOfferingID uuid.UUID
	ParentOfferingID    uuid.UUID
	Status              string
}

type AssessOfferingChangeInput struct {
	// OfferingID is the proposed offering awaiting approval.
	OfferingID uuid.UUID
	Approve    bool
	Note       string `validate:"required,max=2000"`
	UserID     uuid.UUID
}

type AssessOfferingChangeResult struct {
	OfferingID               uuid.UUID
	PrecedingOfferingID      uuid.UUID
	Status                   string
	ReassessedApplicationIDs []uuid.UUID
	CancelledApplicationIDs  []uuid.UUID
	NotificationIDs          []uuid.UUID
}
