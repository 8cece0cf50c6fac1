package aggregates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/aid/appnumber"
	"github.com/yungbote/studentaid-backend/internal/aid/overlap"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	instdomain "github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

// submission is everything resolved before the transaction opens.
type submission struct {
	app      *types.Application
	payload  appdomain.Payload
	offering *types.Offering
	location *types.Location
	period   overlap.Period
}

func (a *applicationAggregate) Submit(ctx context.Context, in domainagg.SubmitApplicationInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.Submit"
	var out domainagg.ApplicationResult
	if in.StudentID == uuid.Nil || in.ApplicationID == uuid.Nil || in.ProgramYearID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id, application_id and program_year_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	read := dbctx.Context{Ctx: ctx}
	app, err := a.deps.Applications.GetForStudent(read, in.ApplicationID, in.StudentID)
	if err != nil {
		return out, MapError(op, err)
	}
	if app == nil {
		return out, domainagg.NotFound(op, fmt.Sprintf("application not found: %s", in.ApplicationID))
	}
	if app.Status != appdomain.StatusDraft && !app.Status.Overwritable() {
		return out, domainagg.InvalidState(op, fmt.Sprintf("application is %s and cannot be submitted", app.Status))
	}
	if app.ProgramYearID != in.ProgramYearID {
		return out, domainagg.Validation(op, "program year does not match the application")
	}
	sub, err := a.prepareSubmission(ctx, op, app, in.Data)
	if err != nil {
		return out, err
	}
	if err := a.checkOverlap(ctx, op, in.StudentID, sub.period, app.Number()); err != nil {
		return out, err
	}

	fx := &effects{}
	err = executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		locked, err := a.lockForStudent(dbc, op, app.ID, in.StudentID)
		if err != nil {
			return err
		}
		if locked.Status != app.Status {
			return ConflictError("application status changed while submitting")
		}
		now := a.now()
		var target *types.Application
		var replaced *uuid.UUID
		if locked.Status == appdomain.StatusDraft {
			target, err = a.submitDraft(dbc, locked, sub, in.UserID, now)
		} else {
			target, err = a.overwrite(dbc, locked, sub, in.UserID, now, fx)
			replaced = &locked.ID
		}
		if err != nil {
			return err
		}
		if _, err := a.createCurrentAssessment(dbc, target, newAssessment{
			trigger:    appdomain.TriggerOriginalAssessment,
			offeringID: offeringIDOf(sub.offering),
			userID:     in.UserID,
		}, now); err != nil {
			return err
		}
		if sub.offering != nil {
			if err := a.deps.Restrictions.AssessSIN(dbc, in.StudentID, sub.offering.StudyEndDate, &target.ID, in.UserID, now, fx); err != nil {
				return err
			}
		}
		out = applicationResult(target, fx)
		out.ReplacedApplicationID = replaced
		return nil
	})
	return out, err
}

// prepareSubmission resolves the payload's offering and location and derives the study period.
func (a *applicationAggregate) prepareSubmission(ctx context.Context, op string, app *types.Application, raw []byte) (submission, error) {
	sub := submission{app: app}
	payload, err := appdomain.ParsePayload(raw)
	if err != nil {
		return sub, domainagg.Validation(op, "application data is not a JSON document")
	}
	sub.payload = payload
	read := dbctx.Context{Ctx: ctx}

	if payload.SelectedOffering != nil {
		off, err := a.deps.Offerings.GetByID(read, *payload.SelectedOffering)
		if err != nil {
			return sub, MapError(op, err)
		}
		if off == nil {
			return sub, domainagg.NotFound(op, fmt.Sprintf("offering not found: %s", *payload.SelectedOffering))
		}
		if err := checkOfferingFits(op, off, app.ProgramYearID, payload); err != nil {
			return sub, err
		}
		sub.offering = off
		sub.period = overlap.Period{Start: off.StudyStartDate, End: off.StudyEndDate}
	} else {
		if payload.StudyStartDate == nil || payload.StudyEndDate == nil {
			return sub, domainagg.Validation(op, "study start and end dates are required when no offering is selected")
		}
		sub.period = overlap.Period{Start: *payload.StudyStartDate, End: *payload.StudyEndDate}
	}
	if sub.period.End.Before(sub.period.Start) {
		return sub, domainagg.Validation(op, "study end date is before the start date")
	}

	locationID := payload.SelectedLocation
	if sub.offering != nil {
		locationID = &sub.offering.LocationID
	}
	if locationID == nil {
		return sub, domainagg.Validation(op, "a location must be selected")
	}
	loc, err := a.deps.Locations.GetByID(read, *locationID)
	if err != nil {
		return sub, MapError(op, err)
	}
	if loc == nil {
		return sub, domainagg.NotFound(op, fmt.Sprintf("location not found: %s", *locationID))
	}
	if !loc.Accepted() {
		return sub, domainagg.Validation(op, "the selected location is not designated for student aid")
	}
	sub.location = loc
	return sub, nil
}

// checkOfferingFits rejects an offering that cannot back the application.
func checkOfferingFits(op string, off *types.Offering, programYearID uuid.UUID, payload appdomain.Payload) error {
	if off.Status != instdomain.OfferingStatusApproved {
		return domainagg.Validation(op, fmt.Sprintf("offering is %s, not approved", off.Status))
	}
	if off.ProgramYearID != nil && *off.ProgramYearID != programYearID {
		return domainagg.Validation(op, "offering belongs to a different program year")
	}
	if payload.SelectedLocation != nil && *payload.SelectedLocation != off.LocationID {
		return domainagg.Validation(op, "offering is not at the selected location")
	}
	if payload.SelectedProgram != nil && *payload.SelectedProgram != off.ProgramID {
		return domainagg.Validation(op, "offering does not belong to the selected program")
	}
	if payload.Intensity != "" && payload.Intensity != off.Intensity {
		return domainagg.Validation(op, "offering intensity does not match the application")
	}
	return nil
}

// checkOverlap runs the three-source overlap validation. excludeNumber skips the
// application chain being resubmitted.
func (a *applicationAggregate) checkOverlap(ctx context.Context, op string, studentID uuid.UUID, period overlap.Period, excludeNumber string) error {
	if a.deps.Overlap == nil {
		return nil
	}
	student, err := a.deps.Students.GetByID(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return MapError(op, err)
	}
	if student == nil {
		return domainagg.NotFound(op, fmt.Sprintf("student not found: %s", studentID))
	}
	err = a.deps.Overlap.Check(ctx, overlap.Request{
		StudentID:         student.ID,
		SIN:               student.SINValidation.NormalizedSIN(),
		BirthDate:         student.BirthDate,
		LastName:          student.LastName,
		Period:            period,
		ApplicationNumber: excludeNumber,
	})
	if err == nil {
		return nil
	}
	var conflict *overlap.Conflict
	if errors.As(err, &conflict) {
		for _, src := range conflict.Sources {
			a.deps.Base.Hooks.IncOverlapRejection(src)
		}
		return domainagg.Validation(op, conflict.Error())
	}
	return MapError(op, err)
}

func (a *applicationAggregate) submitDraft(dbc dbctx.Context, app *types.Application, sub submission, userID uuid.UUID, now time.Time) (*types.Application, error) {
	number, err := a.nextApplicationNumber(dbc, app.ProgramYearID)
	if err != nil {
		return nil, err
	}
	data, err := sub.payload.JSON()
	if err != nil {
		return nil, ValidationError(err.Error())
	}
	pir := pirStatusFor(sub.offering)
	if err := a.deps.Applications.UpdateFields(dbc, app.ID, map[string]interface{}{
		"application_number": number,
		"data":               data,
		"location_id":        sub.location.ID,
		"pir_status":         pir,
		"submitted_date":     now,
		"modifier":           uuidPtr(userID),
	}); err != nil {
		return nil, err
	}
	if err := a.setStatus(dbc, app, []appdomain.Status{appdomain.StatusDraft}, appdomain.StatusSubmitted, userID, now); err != nil {
		return nil, err
	}
	app.ApplicationNumber = &number
	app.Data = data
	app.LocationID = &sub.location.ID
	app.PIRStatus = &pir
	app.SubmittedAt = &now
	return app, nil
}

// overwrite freezes the live row and inserts its replacement under the same application
// number. The old row must leave the live set before the new one enters it.
func (a *applicationAggregate) overwrite(dbc dbctx.Context, old *types.Application, sub submission, userID uuid.UUID, now time.Time, fx *effects) (*types.Application, error) {
	overwritable := []appdomain.Status{
		appdomain.StatusSubmitted, appdomain.StatusInProgress, appdomain.StatusAssessment, appdomain.StatusEnrolment,
	}
	oldID := old.ID
	oldAssessment := old.CurrentAssessmentID
	if err := a.setStatus(dbc, old, overwritable, appdomain.StatusOverwritten, userID, now); err != nil {
		return nil, err
	}
	if err := a.requestAssessmentCancellation(dbc, oldAssessment, now); err != nil {
		return nil, err
	}

	data, err := sub.payload.JSON()
	if err != nil {
		return nil, ValidationError(err.Error())
	}
	pir := pirStatusFor(sub.offering)
	row := &types.Application{
		ID:                uuid.New(),
		ApplicationNumber: old.ApplicationNumber,
		ProgramYearID:     old.ProgramYearID,
		StudentID:         old.StudentID,
		LocationID:        &sub.location.ID,
		Status:            appdomain.StatusSubmitted,
		StatusUpdatedAt:   now,
		SubmittedAt:       &now,
		Data:              data,
		PIRStatus:         &pir,
		CreatedBy:         uuidPtr(userID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := a.deps.Applications.Create(dbc, []*types.Application{row}); err != nil {
		return nil, err
	}
	a.deps.Base.Log.Info("application overwritten", "application_number", old.Number(), "previous_application_id", oldID, "application_id", row.ID)

	if err := a.notifyExcessiveEdits(dbc, row, userID, now, fx); err != nil {
		return nil, err
	}
	return row, nil
}

// notifyExcessiveEdits queues a single ministry notification once an application number has
// been overwritten more times than the configured threshold.
func (a *applicationAggregate) notifyExcessiveEdits(dbc dbctx.Context, app *types.Application, userID uuid.UUID, now time.Time, fx *effects) error {
	edits, err := a.deps.Applications.CountByNumberAndStatus(dbc, app.Number(), []appdomain.Status{appdomain.StatusOverwritten})
	if err != nil {
		return err
	}
	if edits <= int64(a.deps.Rules.Applications.EditNotificationThreshold) {
		return nil
	}
	return queueNotification(dbc, a.deps.Notifications, fx, notificationRow{
		MessageType: common.MessageMinistryApplicationEditedLimit,
		DedupeKey:   "application-edited-limit:" + app.Number(),
		Payload: map[string]any{
			"applicationNumber": app.Number(),
			"applicationId":     app.ID.String(),
			"editCount":         edits,
		},
		CreatedBy: userID,
	}, now)
}

func (a *applicationAggregate) nextApplicationNumber(dbc dbctx.Context, programYearID uuid.UUID) (string, error) {
	py, err := a.deps.ProgramYears.GetByID(dbc, programYearID)
	if err != nil {
		return "", err
	}
	if py == nil {
		return "", InvariantError(fmt.Sprintf("program year %s missing", programYearID))
	}
	n, err := a.deps.Sequences.Next(dbc, appnumber.SequenceName(py.Prefix))
	if err != nil {
		return "", err
	}
	number, err := appnumber.Format(py.Prefix, n, a.deps.Rules.Applications.NumberLength)
	if err != nil {
		return "", InvariantError(err.Error())
	}
	return number, nil
}

func pirStatusFor(off *types.Offering) appdomain.PIRStatus {
	if off == nil {
		return appdomain.PIRStatusRequired
	}
	return appdomain.PIRStatusNotRequired
}

func offeringIDOf(off *types.Offering) *uuid.UUID {
	if off == nil {
		return nil
	}
	id := off.ID
	return &id
}
