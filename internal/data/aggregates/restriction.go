package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/data/repos"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

type RestrictionAggregateDeps struct {
	Base BaseDeps

	StudentRestrictions repos.StudentRestrictionRepo
	Notes               repos.NoteRepo
}

type restrictionAggregate struct {
	deps RestrictionAggregateDeps
}

func NewRestrictionAggregate(deps RestrictionAggregateDeps) domainagg.RestrictionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &restrictionAggregate{deps: deps}
}

func (a *restrictionAggregate) Contract() domainagg.Contract {
	return domainagg.RestrictionAggregateContract
}

func (a *restrictionAggregate) Resolve(ctx context.Context, in domainagg.ChangeRestrictionInput) (domainagg.RestrictionResult, error) {
	const op = "Students.Restriction.Resolve"
	return a.change(ctx, op, in, "Restriction resolved", a.deps.StudentRestrictions.Resolve, true)
}

// Delete soft-deletes the restriction. Inactive restrictions may be deleted too.
func (a *restrictionAggregate) Delete(ctx context.Context, in domainagg.ChangeRestrictionInput) (domainagg.RestrictionResult, error) {
	const op = "Students.Restriction.Delete"
	return a.change(ctx, op, in, "Restriction deleted", a.deps.StudentRestrictions.SoftDelete, false)
}

type restrictionWrite func(dbc dbctx.Context, id uuid.UUID, note string, by uuid.UUID, at time.Time) (bool, error)

func (a *restrictionAggregate) change(ctx context.Context, op string, in domainagg.ChangeRestrictionInput, verb string, write restrictionWrite, requireActive bool) (domainagg.RestrictionResult, error) {
	var out domainagg.RestrictionResult
	if in.StudentID == uuid.Nil || in.StudentRestrictionID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id and student_restriction_id are required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	if a.deps.StudentRestrictions == nil || a.deps.Notes == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "restriction aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		row, err := a.deps.StudentRestrictions.GetForStudent(dbc, in.StudentRestrictionID, in.StudentID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, fmt.Sprintf("student restriction not found: %s", in.StudentRestrictionID))
		}
		if requireActive && !row.IsActive {
			return domainagg.InvalidState(op, "restriction is already resolved")
		}
		now := a.deps.Base.Now()
		ok, err := write(dbc, row.ID, in.Note, in.UserID, now)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "restriction changed concurrently"); err != nil {
			return err
		}
		if err := writeNote(dbc, a.deps.Notes, common.NoteSubjectStudent, row.StudentID, common.NoteTypeRestriction,
			fmt.Sprintf("%s (%s): %s", verb, restrictionCode(row), in.Note), in.UserID); err != nil {
			return err
		}
		out = domainagg.RestrictionResult{StudentRestrictionID: row.ID, IsActive: false, ChangedAt: now}
		return nil
	})
	return out, err
}

func restrictionCode(row *types.StudentRestriction) string {
	if row.Restriction == nil {
		return row.RestrictionID.String()
	}
	return row.Restriction.Code
}
