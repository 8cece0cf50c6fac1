package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/aid/overlap"
	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

type ApplicationAggregateDeps struct {
	Base  BaseDeps
	Rules rules.Rules

	Applications    repos.ApplicationRepo
	Assessments     repos.AssessmentRepo
	ProgramYears    repos.ProgramYearRepo
	Offerings       repos.OfferingRepo
	Locations       repos.LocationRepo
	Students        repos.StudentRepo
	Standings       repos.ScholasticStandingRepo
	OfferingChanges repos.OfferingChangeRequestRepo
	Sequences       repos.SequenceRepo
	Notes           repos.NoteRepo
	Notifications   repos.NotificationRepo

	Restrictions *RestrictionAssessor
	Overlap      *overlap.Checker
}

type applicationAggregate struct {
	deps ApplicationAggregateDeps
}

func NewApplicationAggregate(deps ApplicationAggregateDeps) domainagg.ApplicationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &applicationAggregate{deps: deps}
}

func (a *applicationAggregate) Contract() domainagg.Contract {
	return domainagg.ApplicationAggregateContract
}

func (a *applicationAggregate) configured() bool {
	d := a.deps
	return d.Applications != nil && d.Assessments != nil && d.ProgramYears != nil && d.Offerings != nil &&
		d.Locations != nil && d.Students != nil && d.Sequences != nil && d.Notifications != nil &&
		d.Notes != nil && d.Restrictions != nil
}

func (a *applicationAggregate) now() time.Time {
	return a.deps.Base.Now()
}

func (a *applicationAggregate) SaveDraft(ctx context.Context, in domainagg.SaveDraftInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.SaveDraft"
	var out domainagg.ApplicationResult
	if in.StudentID == uuid.Nil || in.ProgramYearID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id and program_year_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}
	payload, err := appdomain.ParsePayload(in.Data)
	if err != nil {
		return out, domainagg.Validation(op, "application data is not a JSON document")
	}
	data, err := payload.JSON()
	if err != nil {
		return out, domainagg.Validation(op, err.Error())
	}

	fx := &effects{}
	err = executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		py, err := a.deps.ProgramYears.GetByID(dbc, in.ProgramYearID)
		if err != nil {
			return err
		}
		if py == nil || !py.Active {
			return domainagg.NotFound(op, "program year not found or inactive")
		}
		now := a.now()

		if in.ApplicationID == nil {
			existing, err := a.deps.Applications.GetDraftByStudent(dbc, in.StudentID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domainagg.Validation(op, "student already has a draft application")
			}
			row := &types.Application{
				ID:              uuid.New(),
				ProgramYearID:   in.ProgramYearID,
				StudentID:       in.StudentID,
				LocationID:      payload.SelectedLocation,
				Status:          appdomain.StatusDraft,
				StatusUpdatedAt: now,
				Data:            data,
				CreatedBy:       uuidPtr(in.UserID),
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if _, err := a.deps.Applications.Create(dbc, []*types.Application{row}); err != nil {
				return err
			}
			out = applicationResult(row, nil)
			return nil
		}

		app, err := a.lockForStudent(dbc, op, *in.ApplicationID, in.StudentID)
		if err != nil {
			return err
		}
		if app.Status != appdomain.StatusDraft {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s, only drafts can be saved", app.Status))
		}
		if app.ProgramYearID != in.ProgramYearID {
			return domainagg.Validation(op, "program year does not match the draft")
		}
		if err := a.deps.Applications.UpdateFields(dbc, app.ID, map[string]interface{}{
			"data":        data,
			"location_id": payload.SelectedLocation,
			"modifier":    uuidPtr(in.UserID),
		}); err != nil {
			return err
		}
		app.Data = data
		app.LocationID = payload.SelectedLocation
		out = applicationResult(app, nil)
		return nil
	})
	return out, err
}

// cancellable lists the statuses a student may cancel from.
var cancellable = []appdomain.Status{
	appdomain.StatusDraft,
	appdomain.StatusSubmitted,
	appdomain.StatusInProgress,
	appdomain.StatusAssessment,
	appdomain.StatusEnrolment,
}

func (a *applicationAggregate) Cancel(ctx context.Context, in domainagg.CancelApplicationInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.Cancel"
	var out domainagg.ApplicationResult
	if in.StudentID == uuid.Nil || in.ApplicationID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id and application_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		app, err := a.lockForStudent(dbc, op, in.ApplicationID, in.StudentID)
		if err != nil {
			return err
		}
		if !statusIn(app.Status, cancellable...) {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s and can no longer be cancelled", app.Status))
		}
		now := a.now()
		if err := a.setStatus(dbc, app, cancellable, appdomain.StatusCancelled, in.UserID, now); err != nil {
			return err
		}
		if err := a.requestAssessmentCancellation(dbc, app.CurrentAssessmentID, now); err != nil {
			return err
		}
		out = applicationResult(app, nil)
		return nil
	})
	return out, err
}

func (a *applicationAggregate) lockForStudent(dbc dbctx.Context, op string, applicationID, studentID uuid.UUID) (*types.Application, error) {
	app, err := a.deps.Applications.LockByID(dbc, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil || app.StudentID != studentID {
		return nil, domainagg.NotFound(op, fmt.Sprintf("application not found: %s", applicationID))
	}
	return app, nil
}

// lockForLocation scopes an institution's access to applications at its location.
func (a *applicationAggregate) lockForLocation(dbc dbctx.Context, op string, applicationID, locationID uuid.UUID) (*types.Application, error) {
	app, err := a.deps.Applications.LockByID(dbc, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil || app.LocationID == nil || *app.LocationID != locationID {
		return nil, domainagg.NotFound(op, fmt.Sprintf("application not found: %s", applicationID))
	}
	return app, nil
}

// setStatus moves app to status, failing with a conflict when a concurrent writer moved it
// out of from first.
func (a *applicationAggregate) setStatus(dbc dbctx.Context, app *types.Application, from []appdomain.Status, to appdomain.Status, userID uuid.UUID, now time.Time) error {
	ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "applications", "application_status", app.ID, statusStrings(from...), map[string]any{
		"application_status":            to,
		"application_status_updated_on": now,
		"modifier":                      uuidPtr(userID),
		"updated_at":                    now,
	})
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "application status changed concurrently"); err != nil {
		return err
	}
	app.Status = to
	app.StatusUpdatedAt = now
	return nil
}

func (a *applicationAggregate) requestAssessmentCancellation(dbc dbctx.Context, assessmentID *uuid.UUID, now time.Time) error {
	if assessmentID == nil || *assessmentID == uuid.Nil {
		return nil
	}
	return a.deps.Assessments.UpdateFields(dbc, *assessmentID, map[string]interface{}{
		"student_assessment_status":            appdomain.AssessmentStatusCancellationRequested,
		"student_assessment_status_updated_on": now,
	})
}

type newAssessment struct {
	trigger                 appdomain.AssessmentTrigger
	offeringID              *uuid.UUID
	scholasticStandingID    *uuid.UUID
	offeringChangeRequestID *uuid.UUID
	userID                  uuid.UUID
}

// createCurrentAssessment inserts the assessment, then points the application at it.
func (a *applicationAggregate) createCurrentAssessment(dbc dbctx.Context, app *types.Application, na newAssessment, now time.Time) (*types.StudentAssessment, error) {
	row := &types.StudentAssessment{
		ID:                      uuid.New(),
		ApplicationID:           app.ID,
		TriggerType:             na.trigger,
		OfferingID:              na.offeringID,
		Status:                  appdomain.AssessmentStatusPending,
		StatusUpdatedAt:         now,
		ScholasticStandingID:    na.scholasticStandingID,
		OfferingChangeRequestID: na.offeringChangeRequestID,
		SubmittedAt:             now,
		SubmittedBy:             uuidPtr(na.userID),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if _, err := a.deps.Assessments.Create(dbc, []*types.StudentAssessment{row}); err != nil {
		return nil, err
	}
	if err := a.deps.Applications.UpdateFields(dbc, app.ID, map[string]interface{}{
		"current_assessment_id": row.ID,
		"updated_at":            now,
	}); err != nil {
		return nil, err
	}
	app.CurrentAssessmentID = &row.ID
	return row, nil
}

func (a *applicationAggregate) currentAssessment(dbc dbctx.Context, app *types.Application) (*types.StudentAssessment, error) {
	if app.CurrentAssessmentID == nil {
		return nil, nil
	}
	return a.deps.Assessments.GetByID(dbc, *app.CurrentAssessmentID)
}

// currentOffering loads the offering of the application's current assessment.
func (a *applicationAggregate) currentOffering(dbc dbctx.Context, op string, app *types.Application) (*types.StudentAssessment, *types.Offering, error) {
	asmt, err := a.currentAssessment(dbc, app)
	if err != nil {
		return nil, nil, err
	}
	if asmt == nil || asmt.OfferingID == nil {
		return asmt, nil, domainagg.InvalidState(op, "application has no assessed offering")
	}
	off, err := a.deps.Offerings.GetByID(dbc, *asmt.OfferingID)
	if err != nil {
		return nil, nil, err
	}
	if off == nil {
		return nil, nil, InvariantError(fmt.Sprintf("offering %s of current assessment missing", *asmt.OfferingID))
	}
	return asmt, off, nil
}

func statusIn(s appdomain.Status, set ...appdomain.Status) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

func applicationResult(app *types.Application, fx *effects) domainagg.ApplicationResult {
	out := domainagg.ApplicationResult{
		ApplicationID:       app.ID,
		ApplicationNumber:   app.Number(),
		Status:              string(app.Status),
		CurrentAssessmentID: app.CurrentAssessmentID,
		NotificationIDs:     fx.ids(),
	}
	if app.PIRStatus != nil {
		out.PIRStatus = string(*app.PIRStatus)
	}
	if app.ChangeRequestStatus != nil {
		out.ChangeRequestStatus = string(*app.ChangeRequestStatus)
	}
	return out
}
