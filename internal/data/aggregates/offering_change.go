package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/aid/studyperiod"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	instdomain "github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

type OfferingChangeAggregateDeps struct {
	Base  BaseDeps
	Rules rules.Rules
	// RejectUnexpiredProgram keeps the long-standing check that refuses a change while the
	// program has not expired. Turning it off rejects expired programs instead.
	RejectUnexpiredProgram bool

	Offerings    repos.OfferingRepo
	Programs     repos.ProgramRepo
	Locations    repos.LocationRepo
	Applications repos.ApplicationRepo
	Assessments  repos.AssessmentRepo
	Notes        repos.NoteRepo

	Restrictions *RestrictionAssessor
}

type offeringChangeAggregate struct {
	deps OfferingChangeAggregateDeps
	// lifecycle reuses the application status and assessment writers.
	lifecycle *applicationAggregate
}

func NewOfferingChangeAggregate(deps OfferingChangeAggregateDeps) domainagg.OfferingChangeAggregate {
	deps.Base = deps.Base.withDefaults()
	return &offeringChangeAggregate{
		deps: deps,
		lifecycle: &applicationAggregate{deps: ApplicationAggregateDeps{
			Base:         deps.Base,
			Rules:        deps.Rules,
			Applications: deps.Applications,
			Assessments:  deps.Assessments,
		}},
	}
}

func (a *offeringChangeAggregate) Contract() domainagg.Contract {
	return domainagg.OfferingChangeAggregateContract
}

func (a *offeringChangeAggregate) configured() bool {
	d := a.deps
	return d.Offerings != nil && d.Programs != nil && d.Locations != nil && d.Applications != nil &&
		d.Assessments != nil && d.Notes != nil && d.Restrictions != nil
}

func (a *offeringChangeAggregate) RequestChange(ctx context.Context, in domainagg.RequestOfferingChangeInput) (domainagg.RequestOfferingChangeResult, error) {
	const op = "Institutions.OfferingChange.RequestChange"
	var out domainagg.RequestOfferingChangeResult
	if in.LocationID == uuid.Nil || in.OfferingID == uuid.Nil {
		return out, domainagg.Validation(op, "location_id and offering_id are required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "offering change aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		original, err := a.deps.Offerings.LockByID(dbc, in.OfferingID)
		if err != nil {
			return err
		}
		if original == nil || original.LocationID != in.LocationID {
			return domainagg.NotFound(op, fmt.Sprintf("offering not found: %s", in.OfferingID))
		}
		if original.Status != instdomain.OfferingStatusApproved {
			return domainagg.InvalidState(op, fmt.Sprintf("offering is %s, only approved offerings can change", original.Status))
		}
		program, err := a.deps.Programs.GetByID(dbc, original.ProgramID)
		if err != nil {
			return err
		}
		if program == nil {
			return InvariantError(fmt.Sprintf("program %s of offering missing", original.ProgramID))
		}
		now := a.deps.Base.Now()
		if err := a.checkProgram(op, program, now); err != nil {
			return err
		}

		breaks := make([]studyperiod.Break, 0, len(in.Breaks))
		stored := make([]instdomain.StudyBreak, 0, len(in.Breaks))
		for _, b := range in.Breaks {
			breaks = append(breaks, studyperiod.Break{Start: b.Start, End: b.End})
			stored = append(stored, instdomain.StudyBreak{BreakStartDate: b.Start, BreakEndDate: b.End})
		}
		fullTime := original.Intensity == instdomain.OfferingIntensityFullTime
		if problems := studyperiod.Validate(in.StudyStartDate, in.StudyEndDate, breaks, fullTime, a.deps.Rules.StudyPeriod); len(problems) > 0 {
			return domainagg.Validation(op, strings.Join(problems, "; "))
		}
		encoded, err := instdomain.EncodeBreaks(stored)
		if err != nil {
			return err
		}

		parent := original.ID
		if original.ParentOfferingID != nil {
			parent = *original.ParentOfferingID
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = original.Name
		}
		proposed := &types.Offering{
			ID:                  uuid.New(),
			Name:                name,
			ProgramID:           original.ProgramID,
			LocationID:          original.LocationID,
			ProgramYearID:       original.ProgramYearID,
			StudyStartDate:      in.StudyStartDate,
			StudyEndDate:        in.StudyEndDate,
			StudyBreaks:         encoded,
			Intensity:           original.Intensity,
			Status:              instdomain.OfferingStatusChangeAwaitingApproval,
			Type:                original.Type,
			ParentOfferingID:    &parent,
			PrecedingOfferingID: &original.ID,
			SubmittedBy:         uuidPtr(in.UserID),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if _, err := a.deps.Offerings.Create(dbc, []*types.Offering{proposed}); err != nil {
			return err
		}
		if err := a.setOfferingStatus(dbc, original.ID, instdomain.OfferingStatusApproved, instdomain.OfferingStatusChangeUnderReview, nil); err != nil {
			return err
		}
		if err := a.institutionNote(dbc, original.LocationID, "Offering change requested: "+in.Reason, in.UserID); err != nil {
			return err
		}
		out = domainagg.RequestOfferingChangeResult{
			OfferingID:          proposed.ID,
			PrecedingOfferingID: original.ID,
			ParentOfferingID:    parent,
			Status:              string(proposed.Status),
		}
		return nil
	})
	return out, err
}

// checkProgram requires an active program. With RejectUnexpiredProgram the change is refused
// while the program is still effective; otherwise an expired program is refused.
func (a *offeringChangeAggregate) checkProgram(op string, program *types.EducationProgram, now time.Time) error {
	if !program.IsActive {
		return domainagg.InvalidState(op, "program is not active")
	}
	expired := program.IsExpired(now)
	if a.deps.RejectUnexpiredProgram && !expired {
		return domainagg.InvalidState(op, "program is not expired")
	}
	if !a.deps.RejectUnexpiredProgram && expired {
		return domainagg.InvalidState(op, "program is expired")
	}
	return nil
}

func (a *offeringChangeAggregate) AssessChangeRequest(ctx context.Context, in domainagg.AssessOfferingChangeInput) (domainagg.AssessOfferingChangeResult, error) {
	const op = "Institutions.OfferingChange.AssessChangeRequest"
	var out domainagg.AssessOfferingChangeResult
	if in.OfferingID == uuid.Nil {
		return out, domainagg.Validation(op, "offering_id is required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "offering change aggregate repos not configured", nil)
	}

	fx := &effects{}
	err := executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		proposed, err := a.deps.Offerings.LockByID(dbc, in.OfferingID)
		if err != nil {
			return err
		}
		if proposed == nil {
			return domainagg.NotFound(op, fmt.Sprintf("offering not found: %s", in.OfferingID))
		}
		if proposed.Status != instdomain.OfferingStatusChangeAwaitingApproval || proposed.PrecedingOfferingID == nil {
			return domainagg.InvalidState(op, fmt.Sprintf("offering is %s, not awaiting change approval", proposed.Status))
		}
		preceding, err := a.deps.Offerings.LockByID(dbc, *proposed.PrecedingOfferingID)
		if err != nil {
			return err
		}
		if preceding == nil {
			return InvariantError(fmt.Sprintf("preceding offering %s missing", *proposed.PrecedingOfferingID))
		}
		now := a.deps.Base.Now()
		assessed := map[string]interface{}{
			"assessed_by": uuidPtr(in.UserID),
			"assessed_at": now,
		}

		out = domainagg.AssessOfferingChangeResult{
			OfferingID:          proposed.ID,
			PrecedingOfferingID: preceding.ID,
		}
		if !in.Approve {
			if err := a.setOfferingStatus(dbc, proposed.ID, instdomain.OfferingStatusChangeAwaitingApproval, instdomain.OfferingStatusChangeDeclined, assessed); err != nil {
				return err
			}
			if err := a.setOfferingStatus(dbc, preceding.ID, instdomain.OfferingStatusChangeUnderReview, instdomain.OfferingStatusApproved, nil); err != nil {
				return err
			}
			out.Status = string(instdomain.OfferingStatusChangeDeclined)
			return a.institutionNote(dbc, proposed.LocationID, "Offering change declined: "+in.Note, in.UserID)
		}

		if err := a.setOfferingStatus(dbc, proposed.ID, instdomain.OfferingStatusChangeAwaitingApproval, instdomain.OfferingStatusApproved, assessed); err != nil {
			return err
		}
		if err := a.setOfferingStatus(dbc, preceding.ID, instdomain.OfferingStatusChangeUnderReview, instdomain.OfferingStatusChangeOverwritten, nil); err != nil {
			return err
		}
		out.Status = string(instdomain.OfferingStatusApproved)

		impacted, err := a.deps.Applications.ListByCurrentOffering(dbc, preceding.ID)
		if err != nil {
			return err
		}
		for _, app := range impacted {
			if app.Status == appdomain.StatusCompleted {
				if _, err := a.lifecycle.createCurrentAssessment(dbc, app, newAssessment{
					trigger:    appdomain.TriggerOfferingChange,
					offeringID: &proposed.ID,
					userID:     in.UserID,
				}, now); err != nil {
					return err
				}
				if err := a.deps.Restrictions.AssessSIN(dbc, app.StudentID, proposed.StudyEndDate, &app.ID, in.UserID, now, fx); err != nil {
					return err
				}
				out.ReassessedApplicationIDs = append(out.ReassessedApplicationIDs, app.ID)
				continue
			}
			if err := a.lifecycle.setStatus(dbc, app, []appdomain.Status{app.Status}, appdomain.StatusCancelled, in.UserID, now); err != nil {
				return err
			}
			if err := a.lifecycle.requestAssessmentCancellation(dbc, app.CurrentAssessmentID, now); err != nil {
				return err
			}
			out.CancelledApplicationIDs = append(out.CancelledApplicationIDs, app.ID)
		}
		return a.institutionNote(dbc, proposed.LocationID, "Offering change approved: "+in.Note, in.UserID)
	})
	if err != nil {
		return domainagg.AssessOfferingChangeResult{}, err
	}
	out.NotificationIDs = fx.ids()
	if len(out.ReassessedApplicationIDs) > 0 || len(out.CancelledApplicationIDs) > 0 {
		a.deps.Base.Log.Info("offering change applied",
			"offering_id", out.OfferingID,
			"reassessed", len(out.ReassessedApplicationIDs),
			"cancelled", len(out.CancelledApplicationIDs),
		)
	}
	return out, nil
}

func (a *offeringChangeAggregate) setOfferingStatus(dbc dbctx.Context, id uuid.UUID, from, to instdomain.OfferingStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{}
	for k, v := range extra {
		updates[k] = v
	}
	updates["offering_status"] = to
	updates["updated_at"] = a.deps.Base.Now()
	ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "education_programs_offerings", "offering_status", id, statusStrings(from), updates)
	if err != nil {
		return err
	}
	return RequireCASSuccess(ok, "offering status changed concurrently")
}

func (a *offeringChangeAggregate) institutionNote(dbc dbctx.Context, locationID uuid.UUID, text string, by uuid.UUID) error {
	loc, err := a.deps.Locations.GetByID(dbc, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return InvariantError(fmt.Sprintf("location %s missing", locationID))
	}
	return writeNote(dbc, a.deps.Notes, common.NoteSubjectInstitution, loc.InstitutionID, common.NoteTypeProgram, text, by)
}
