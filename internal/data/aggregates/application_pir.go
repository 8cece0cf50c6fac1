package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

func (a *applicationAggregate) SetOfferingForProgramInfoRequest(ctx context.Context, in domainagg.CompleteProgramInfoInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.SetOfferingForProgramInfoRequest"
	var out domainagg.ApplicationResult
	if in.LocationID == uuid.Nil || in.ApplicationID == uuid.Nil || in.OfferingID == uuid.Nil {
		return out, domainagg.Validation(op, "location_id, application_id and offering_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	fx := &effects{}
	err := executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		app, err := a.lockForLocation(dbc, op, in.ApplicationID, in.LocationID)
		if err != nil {
			return err
		}
		if err := requirePIRPending(op, app); err != nil {
			return err
		}
		off, err := a.deps.Offerings.GetForLocation(dbc, in.OfferingID, in.LocationID)
		if err != nil {
			return err
		}
		if off == nil {
			return domainagg.NotFound(op, fmt.Sprintf("offering not found: %s", in.OfferingID))
		}
		payload, err := appdomain.ParsePayload([]byte(app.Data))
		if err != nil {
			return domainagg.Validation(op, "stored application data is not a JSON document")
		}
		// The institution picks the offering, so the student's location choice no longer binds.
		payload.SelectedLocation = nil
		payload.SelectedOffering = nil
		if err := checkOfferingFits(op, off, app.ProgramYearID, payload); err != nil {
			return err
		}
		asmt, err := a.currentAssessment(dbc, app)
		if err != nil {
			return err
		}
		if asmt == nil {
			return InvariantError("submitted application has no current assessment")
		}
		now := a.now()
		if err := a.deps.Assessments.UpdateFields(dbc, asmt.ID, map[string]interface{}{
			"offering_id": off.ID,
		}); err != nil {
			return err
		}
		completed := appdomain.PIRStatusCompleted
		if err := a.deps.Applications.UpdateFields(dbc, app.ID, map[string]interface{}{
			"pir_status": completed,
			"modifier":   uuidPtr(in.UserID),
		}); err != nil {
			return err
		}
		app.PIRStatus = &completed
		if err := a.deps.Restrictions.AssessSIN(dbc, app.StudentID, off.StudyEndDate, &app.ID, in.UserID, now, fx); err != nil {
			return err
		}
		out = applicationResult(app, fx)
		return nil
	})
	return out, err
}

func (a *applicationAggregate) SetDeniedReasonForProgramInfoRequest(ctx context.Context, in domainagg.DenyProgramInfoInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.SetDeniedReasonForProgramInfoRequest"
	var out domainagg.ApplicationResult
	if in.LocationID == uuid.Nil || in.ApplicationID == uuid.Nil {
		return out, domainagg.Validation(op, "location_id and application_id are required")
	}
	if err := validateInput(op, in); err != nil {
		return out, domainagg.Validation(op, "a program information request denial reason is required")
	}
	other := strings.TrimSpace(in.OtherReason)
	if in.ReasonID == appdomain.PIRDeniedReasonOther && other == "" {
		return out, domainagg.Validation(op, "a description is required when the denial reason is other")
	}
	if in.ReasonID != appdomain.PIRDeniedReasonOther {
		other = ""
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		app, err := a.lockForLocation(dbc, op, in.ApplicationID, in.LocationID)
		if err != nil {
			return err
		}
		if err := requirePIRPending(op, app); err != nil {
			return err
		}
		declined := appdomain.PIRStatusDeclined
		reason := in.ReasonID
		if err := a.deps.Applications.UpdateFields(dbc, app.ID, map[string]interface{}{
			"pir_status":            declined,
			"pir_denied_reason_id":  reason,
			"pir_denied_other_desc": other,
			"modifier":              uuidPtr(in.UserID),
		}); err != nil {
			return err
		}
		app.PIRStatus = &declined
		app.PIRDeniedReasonID = &reason
		app.PIRDeniedOtherDesc = other
		out = applicationResult(app, nil)
		return nil
	})
	return out, err
}

func requirePIRPending(op string, app *types.Application) error {
	if app.Status != appdomain.StatusSubmitted {
		return domainagg.InvalidState(op, fmt.Sprintf("application is %s, not submitted", app.Status))
	}
	if app.PIRStatus == nil || *app.PIRStatus != appdomain.PIRStatusRequired {
		return domainagg.InvalidState(op, "program information request is not pending")
	}
	return nil
}

func (a *applicationAggregate) ConfirmAssessment(ctx context.Context, in domainagg.ConfirmAssessmentInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.ConfirmAssessment"
	var out domainagg.ApplicationResult
	if in.StudentID == uuid.Nil || in.AssessmentID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id and assessment_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		asmt, err := a.deps.Assessments.GetByID(dbc, in.AssessmentID)
		if err != nil {
			return err
		}
		if asmt == nil {
			return domainagg.NotFound(op, fmt.Sprintf("assessment not found: %s", in.AssessmentID))
		}
		app, err := a.lockForStudent(dbc, op, asmt.ApplicationID, in.StudentID)
		if err != nil {
			if domainagg.IsCode(err, domainagg.CodeNotFound) {
				return domainagg.NotFound(op, fmt.Sprintf("assessment not found: %s", in.AssessmentID))
			}
			return err
		}
		if app.CurrentAssessmentID == nil || *app.CurrentAssessmentID != asmt.ID {
			return domainagg.InvalidState(op, "only the current assessment can be confirmed")
		}
		if app.Status != appdomain.StatusAssessment {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s, not in assessment", app.Status))
		}
		now := a.now()
		if err := a.deps.Assessments.UpdateFields(dbc, asmt.ID, map[string]interface{}{
			"noa_approval_status": appdomain.NOACompleted,
		}); err != nil {
			return err
		}
		if err := a.setStatus(dbc, app, []appdomain.Status{appdomain.StatusAssessment}, appdomain.StatusEnrolment, in.UserID, now); err != nil {
			return err
		}
		out = applicationResult(app, nil)
		return nil
	})
	return out, err
}

// workflowTransitions lists the moves an external workflow engine may request. Assessment to
// Enrolment is reserved for the student's NOA confirmation.
var workflowTransitions = map[appdomain.Status]appdomain.Status{
	appdomain.StatusSubmitted:  appdomain.StatusInProgress,
	appdomain.StatusInProgress: appdomain.StatusAssessment,
	appdomain.StatusEnrolment:  appdomain.StatusCompleted,
}

func (a *applicationAggregate) TransitionStatus(ctx context.Context, in domainagg.TransitionStatusInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.TransitionStatus"
	var out domainagg.ApplicationResult
	if in.ApplicationID == uuid.Nil {
		return out, domainagg.Validation(op, "application_id is required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	from, to := appdomain.Status(in.From), appdomain.Status(in.To)
	if next, ok := workflowTransitions[from]; !ok || next != to {
		return out, domainagg.Validation(op, fmt.Sprintf("transition %s -> %s is not allowed", from, to))
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		app, err := a.deps.Applications.LockByID(dbc, in.ApplicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return domainagg.NotFound(op, fmt.Sprintf("application not found: %s", in.ApplicationID))
		}
		if app.Status != from {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s, expected %s", app.Status, from))
		}
		now := a.now()
		if to == appdomain.StatusAssessment && app.PIRStatus != nil && *app.PIRStatus == appdomain.PIRStatusRequired {
			return domainagg.InvalidState(op, "program information request is still pending")
		}
		if err := a.setStatus(dbc, app, []appdomain.Status{from}, to, in.UserID, now); err != nil {
			return err
		}
		if app.CurrentAssessmentID != nil {
			updates := map[string]interface{}{}
			switch to {
			case appdomain.StatusAssessment:
				updates["noa_approval_status"] = appdomain.NOARequired
				updates["assessment_date"] = now
			case appdomain.StatusCompleted:
				updates["student_assessment_status"] = appdomain.AssessmentStatusCompleted
				updates["student_assessment_status_updated_on"] = now
			}
			if len(updates) > 0 {
				if err := a.deps.Assessments.UpdateFields(dbc, *app.CurrentAssessmentID, updates); err != nil {
					return err
				}
			}
		}
		out = applicationResult(app, nil)
		return nil
	})
	return out, err
}
