package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var RestrictionAggregateContract = Contract{
	Name:   "Students.RestrictionAggregate",
	Tx:     TxOwnedByAggregate,
	Writes: []string{"Resolve", "Delete"},
}

// RestrictionAggregate resolves or soft-deletes student restrictions. Both require a note.
type RestrictionAggregate interface {
	Aggregate

	Resolve(ctx context.Context, in ChangeRestrictionInput) (RestrictionResult, error)
	Delete(ctx context.Context, in ChangeRestrictionInput) (RestrictionResult, error)
}

type ChangeRestrictionInput struct {
	StudentID            uuid.UUID
	StudentRestrictionID uuid.UUID
	Note                 string `validate:"required,max=2000"`
	UserID               uuid.UUID
}

type RestrictionResult struct {
	StudentRestrictionID uuid.UUID
	IsActive             bool
	ChangedAt            time.Time
}
