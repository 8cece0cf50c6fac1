package aggregates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ApplicationAggregateContract covers application status, overwrite chains, current
// assessment pointers and the restrictions they trigger.
var ApplicationAggregateContract = Contract{
	Name: "Applications.ApplicationAggregate",
	Tx:   TxOwnedByAggregate,
	Writes: []string{
		"SaveDraft", "Submit", "Cancel",
		"SubmitChangeRequest", "CancelChangeRequest", "AssessChangeRequest",
		"SetOfferingForProgramInfoRequest", "SetDeniedReasonForProgramInfoRequest",
		"ConfirmAssessment", "TransitionStatus", "SaveScholasticStanding",
		"CreateApplicationOfferingChange", "StudentRespondOfferingChange", "AssessApplicationOfferingChange",
	},
	Notifying: []string{
		"Submit", "SubmitChangeRequest", "AssessChangeRequest",
		"SetOfferingForProgramInfoRequest", "TransitionStatus", "SaveScholasticStanding",
		"CreateApplicationOfferingChange", "AssessApplicationOfferingChange",
	},
}

// ApplicationAggregate owns the application lifecycle state machine.
//
// Overlap validation and ownership lookups run before the transaction; a failure there
// leaves no state behind. Write method failures return *aggregates.Error with codes:
// CodeNotFound, CodeInvalidState, CodeValidation, CodeConflict, CodeRetryable, CodeInternal.
type ApplicationAggregate interface {
	Aggregate

	// SaveDraft creates the student's single draft or updates its payload.
	SaveDraft(ctx context.Context, in SaveDraftInput) (ApplicationResult, error)

	// Submit moves a draft to Submitted, or overwrites a live application with a new row.
	Submit(ctx context.Context, in SubmitApplicationInput) (ApplicationResult, error)

	Cancel(ctx context.Context, in CancelApplicationInput) (ApplicationResult, error)

	// SubmitChangeRequest records a post-completion change request as a new Edited row.
	SubmitChangeRequest(ctx context.Context, in SubmitChangeRequestInput) (ApplicationResult, error)
	CancelChangeRequest(ctx context.Context, in CancelChangeRequestInput) (ApplicationResult, error)
	// AssessChangeRequest approves (the change row becomes the live application) or declines.
	AssessChangeRequest(ctx context.Context, in AssessChangeRequestInput) (ApplicationResult, error)

	SetOfferingForProgramInfoRequest(ctx context.Context, in CompleteProgramInfoInput) (ApplicationResult, error)
	SetDeniedReasonForProgramInfoRequest(ctx context.Context, in DenyProgramInfoInput) (ApplicationResult, error)

	// ConfirmAssessment records the student's NOA confirmation and moves Assessment to Enrolment.
	ConfirmAssessment(ctx context.Context, in ConfirmAssessmentInput) (ApplicationResult, error)

	// TransitionStatus applies a workflow-engine transition guarded by the expected from-status.
	TransitionStatus(ctx context.Context, in TransitionStatusInput) (ApplicationResult, error)

	// SaveScholasticStanding persists an institution report, reassesses on a shortened study
	// period and escalates restrictions.
	SaveScholasticStanding(ctx context.Context, in SaveScholasticStandingInput) (ScholasticStandingResult, error)

	CreateApplicationOfferingChange(ctx context.Context, in CreateApplicationOfferingChangeInput) (ApplicationOfferingChangeResult, error)
	StudentRespondOfferingChange(ctx context.Context, in RespondApplicationOfferingChangeInput) (ApplicationOfferingChangeResult, error)
	AssessApplicationOfferingChange(ctx context.Context, in AssessApplicationOfferingChangeInput) (ApplicationOfferingChangeResult, error)
}

type SaveDraftInput struct {
	StudentID     uuid.UUID
	ProgramYearID uuid.UUID
	// ApplicationID is nil when creating the draft.
	ApplicationID *uuid.UUID
	Data          json.RawMessage
	UserID        uuid.UUID
}

type SubmitApplicationInput struct {
	StudentID     uuid.UUID
	ApplicationID uuid.UUID
	ProgramYearID uuid.UUID
	Data          json.RawMessage
	UserID        uuid.UUID
}

type CancelApplicationInput struct {
	StudentID     uuid.UUID
	ApplicationID uuid.UUID
	UserID        uuid.UUID
}

type SubmitChangeRequestInput struct {
	StudentID     uuid.UUID
	ApplicationID uuid.UUID
	ProgramYearID uuid.UUID
	Data          json.RawMessage
	UserID        uuid.UUID
}

type CancelChangeRequestInput struct {
	StudentID uuid.UUID
	// ChangeRequestID is the id of the Edited application row.
	ChangeRequestID uuid.UUID
	UserID          uuid.UUID
}

type AssessChangeRequestInput struct {
	ChangeRequestID uuid.UUID
	Approve         bool
	Note            string `validate:"required,max=2000"`
	UserID          uuid.UUID
}

type CompleteProgramInfoInput struct {
	LocationID    uuid.UUID
	ApplicationID uuid.UUID
	OfferingID    uuid.UUID
	UserID        uuid.UUID
}

type DenyProgramInfoInput struct {
	LocationID    uuid.UUID
	ApplicationID uuid.UUID
	ReasonID      int `validate:"gt=0"`
	OtherReason   string
	UserID        uuid.UUID
}

type ConfirmAssessmentInput struct {
	StudentID    uuid.UUID
	AssessmentID uuid.UUID
	UserID       uuid.UUID
}

type TransitionStatusInput struct {
	ApplicationID uuid.UUID
	From          string `validate:"required"`
	To            string `validate:"required"`
	UserID        uuid.UUID
}

type ApplicationResult struct {
	ApplicationID       uuid.UUID
	ApplicationNumber   string
	Status              string
	PIRStatus           string
	CurrentAssessmentID *uuid.UUID
	// ReplacedApplicationID is the row a submission overwrote or a change request replaced.
	ReplacedApplicationID *uuid.UUID
	ChangeRequestStatus   string
	NotificationIDs       []uuid.UUID
}

type SaveScholasticStandingInput struct {
	LocationID        uuid.UUID
	ApplicationID     uuid.UUID
	ChangeType        string `validate:"required"`
	UnsuccessfulWeeks int    `validate:"gte=0,lte=520"`
	NewStudyEndDate   *time.Time
	Data              json.RawMessage
	Note              string `validate:"max=2000"`
	UserID            uuid.UUID
}

type ScholasticStandingResult struct {
	ScholasticStandingID uuid.UUID
	ApplicationID        uuid.UUID
	// AssessmentID and AdjustedOfferingID are set when the report shortened the study period.
	AssessmentID       *uuid.UUID
	AdjustedOfferingID *uuid.UUID
	RestrictionCodes   []string
	NotificationIDs    []uuid.UUID
}

type CreateApplicationOfferingChangeInput struct {
	LocationID          uuid.UUID
	ApplicationID       uuid.UUID
	RequestedOfferingID uuid.UUID
	Reason              string `validate:"required,max=1000"`
	UserID              uuid.UUID
}

type RespondApplicationOfferingChangeInput struct {
	StudentID uuid.UUID
	RequestID uuid.UUID
	Consent   bool
	UserID    uuid.UUID
}

type AssessApplicationOfferingChangeInput struct {
	RequestID uuid.UUID
	Approve   bool
	Note      string `validate:"required,max=2000"`
	UserID    uuid.UUID
}

type ApplicationOfferingChangeResult struct {
	RequestID       uuid.UUID
	ApplicationID   uuid.UUID
	Status          string
	AssessmentID    *uuid.UUID
	NotificationIDs []uuid.UUID
}
