package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/aid/overlap"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	instdomain "github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

// CreateApplicationOfferingChange lets an institution propose another offering for one
// completed application. The student must consent before the ministry assesses it.
func (a *applicationAggregate) CreateApplicationOfferingChange(ctx context.Context, in domainagg.CreateApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error) {
	const op = "Applications.Application.CreateApplicationOfferingChange"
	var out domainagg.ApplicationOfferingChangeResult
	if in.LocationID == uuid.Nil || in.ApplicationID == uuid.Nil || in.RequestedOfferingID == uuid.Nil {
		return out, domainagg.Validation(op, "location_id, application_id and requested_offering_id are required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	if a.deps.OfferingChanges == nil || !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	read := dbctx.Context{Ctx: ctx}
	app, err := a.deps.Applications.GetByID(read, in.ApplicationID)
	if err != nil {
		return out, MapError(op, err)
	}
	if app == nil || app.LocationID == nil || *app.LocationID != in.LocationID {
		return out, domainagg.NotFound(op, fmt.Sprintf("application not found: %s", in.ApplicationID))
	}
	requested, err := a.deps.Offerings.GetForLocation(read, in.RequestedOfferingID, in.LocationID)
	if err != nil {
		return out, MapError(op, err)
	}
	if requested == nil {
		return out, domainagg.NotFound(op, fmt.Sprintf("offering not found: %s", in.RequestedOfferingID))
	}
	if app.Status != appdomain.StatusCompleted {
		return out, domainagg.InvalidState(op, fmt.Sprintf("application is %s, not completed", app.Status))
	}
	if err := a.checkOverlap(ctx, op, app.StudentID, overlap.Period{Start: requested.StudyStartDate, End: requested.StudyEndDate}, app.Number()); err != nil {
		return out, err
	}

	fx := &effects{}
	err = executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		locked, err := a.lockForLocation(dbc, op, app.ID, in.LocationID)
		if err != nil {
			return err
		}
		if locked.Status != appdomain.StatusCompleted {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s, not completed", locked.Status))
		}
		pending, err := a.deps.OfferingChanges.GetPendingByApplication(dbc, locked.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return domainagg.InvalidState(op, "an offering change is already in progress for this application")
		}
		_, active, err := a.currentOffering(dbc, op, locked)
		if err != nil {
			return err
		}
		if active.ID == requested.ID {
			return domainagg.Validation(op, "the requested offering is already the assessed offering")
		}
		if requested.Intensity != active.Intensity {
			return domainagg.Validation(op, "the requested offering must keep the offering intensity")
		}
		if err := checkOfferingFits(op, requested, locked.ProgramYearID, appdomain.Payload{}); err != nil {
			return err
		}

		now := a.now()
		req := &types.ApplicationOfferingChangeRequest{
			ID:                  uuid.New(),
			ApplicationID:       locked.ID,
			ActiveOfferingID:    active.ID,
			RequestedOfferingID: requested.ID,
			Status:              appdomain.OfferingChangeInProgressWithStudent,
			Reason:              in.Reason,
			CreatedBy:           in.UserID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if _, err := a.deps.OfferingChanges.Create(dbc, []*types.ApplicationOfferingChangeRequest{req}); err != nil {
			return err
		}
		student, err := a.deps.Students.GetByID(dbc, locked.StudentID)
		if err != nil {
			return err
		}
		if student != nil {
			if err := queueNotification(dbc, a.deps.Notifications, fx, notificationRow{
				MessageType: common.MessageStudentOfferingChangeRequested,
				UserID:      uuidPtr(student.UserID),
				Payload: map[string]any{
					"applicationNumber": locked.Number(),
					"requestId":         req.ID.String(),
				},
				CreatedBy: in.UserID,
			}, now); err != nil {
				return err
			}
		}
		out = offeringChangeResult(req, fx)
		return nil
	})
	return out, err
}

func (a *applicationAggregate) StudentRespondOfferingChange(ctx context.Context, in domainagg.RespondApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error) {
	const op = "Applications.Application.StudentRespondOfferingChange"
	var out domainagg.ApplicationOfferingChangeResult
	if in.StudentID == uuid.Nil || in.RequestID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id and request_id are required")
	}
	if a.deps.OfferingChanges == nil || !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		req, err := a.deps.OfferingChanges.LockByID(dbc, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domainagg.NotFound(op, fmt.Sprintf("offering change request not found: %s", in.RequestID))
		}
		app, err := a.deps.Applications.GetForStudent(dbc, req.ApplicationID, in.StudentID)
		if err != nil {
			return err
		}
		if app == nil {
			return domainagg.NotFound(op, fmt.Sprintf("offering change request not found: %s", in.RequestID))
		}
		if req.Status != appdomain.OfferingChangeInProgressWithStudent {
			return domainagg.InvalidState(op, fmt.Sprintf("offering change request is %s", req.Status))
		}
		next := appdomain.OfferingChangeDeclinedByStudent
		if in.Consent {
			next = appdomain.OfferingChangeInProgressWithSABC
		}
		now := a.now()
		consent := in.Consent
		if err := a.setOfferingChangeStatus(dbc, req, appdomain.OfferingChangeInProgressWithStudent, next, map[string]any{
			"student_consent":       consent,
			"student_actioned_date": now,
		}); err != nil {
			return err
		}
		req.StudentConsent = &consent
		req.StudentActionedAt = &now
		out = offeringChangeResult(req, nil)
		return nil
	})
	return out, err
}

func (a *applicationAggregate) AssessApplicationOfferingChange(ctx context.Context, in domainagg.AssessApplicationOfferingChangeInput) (domainagg.ApplicationOfferingChangeResult, error) {
	const op = "Applications.Application.AssessApplicationOfferingChange"
	var out domainagg.ApplicationOfferingChangeResult
	if in.RequestID == uuid.Nil {
		return out, domainagg.Validation(op, "request_id is required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	if a.deps.OfferingChanges == nil || !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	fx := &effects{}
	err := executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		req, err := a.deps.OfferingChanges.LockByID(dbc, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domainagg.NotFound(op, fmt.Sprintf("offering change request not found: %s", in.RequestID))
		}
		if req.Status != appdomain.OfferingChangeInProgressWithSABC {
			return domainagg.InvalidState(op, fmt.Sprintf("offering change request is %s", req.Status))
		}
		now := a.now()
		assessed := map[string]any{
			"assessed_note": in.Note,
			"assessed_by":   uuidPtr(in.UserID),
			"assessed_date": now,
		}
		if !in.Approve {
			if err := a.setOfferingChangeStatus(dbc, req, appdomain.OfferingChangeInProgressWithSABC, appdomain.OfferingChangeDeclinedBySABC, assessed); err != nil {
				return err
			}
			if err := a.notifyOfferingChangeAssessed(dbc, req, in.UserID, fx); err != nil {
				return err
			}
			out = offeringChangeResult(req, fx)
			return nil
		}

		app, err := a.deps.Applications.LockByID(dbc, req.ApplicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return InvariantError("offering change request has no application")
		}
		if app.Status != appdomain.StatusCompleted {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s, not completed", app.Status))
		}
		requested, err := a.deps.Offerings.GetByID(dbc, req.RequestedOfferingID)
		if err != nil {
			return err
		}
		if requested == nil || requested.Status != instdomain.OfferingStatusApproved {
			return domainagg.Validation(op, "the requested offering is no longer approved")
		}
		if err := a.setOfferingChangeStatus(dbc, req, appdomain.OfferingChangeInProgressWithSABC, appdomain.OfferingChangeApproved, assessed); err != nil {
			return err
		}
		asmt, err := a.createCurrentAssessment(dbc, app, newAssessment{
			trigger:                 appdomain.TriggerApplicationOfferingChange,
			offeringID:              &requested.ID,
			offeringChangeRequestID: &req.ID,
			userID:                  in.UserID,
		}, now)
		if err != nil {
			return err
		}
		if err := a.deps.Restrictions.AssessSIN(dbc, app.StudentID, requested.StudyEndDate, &app.ID, in.UserID, now, fx); err != nil {
			return err
		}
		if err := a.notifyOfferingChangeAssessed(dbc, req, in.UserID, fx); err != nil {
			return err
		}
		out = offeringChangeResult(req, fx)
		out.AssessmentID = &asmt.ID
		return nil
	})
	return out, err
}

func (a *applicationAggregate) notifyOfferingChangeAssessed(dbc dbctx.Context, req *types.ApplicationOfferingChangeRequest, userID uuid.UUID, fx *effects) error {
	return queueNotification(dbc, a.deps.Notifications, fx, notificationRow{
		MessageType: common.MessageInstitutionOfferingChangeDone,
		UserID:      uuidPtr(req.CreatedBy),
		Payload: map[string]any{
			"requestId": req.ID.String(),
			"status":    string(req.Status),
		},
		CreatedBy: userID,
	}, a.now())
}

func (a *applicationAggregate) setOfferingChangeStatus(dbc dbctx.Context, req *types.ApplicationOfferingChangeRequest, from, to appdomain.OfferingChangeStatus, extra map[string]any) error {
	updates := map[string]any{"application_offering_change_request_status": to}
	updates["updated_at"] = a.now()
	for k, v := range extra {
		updates[k] = v
	}
	ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "application_offering_change_requests",
		"application_offering_change_request_status", req.ID, statusStrings(from), updates)
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "offering change request changed concurrently"); err != nil {
		return err
	}
	req.Status = to
	return nil
}

func offeringChangeResult(req *types.ApplicationOfferingChangeRequest, fx *effects) domainagg.ApplicationOfferingChangeResult {
	return domainagg.ApplicationOfferingChangeResult{
		RequestID:       req.ID,
		ApplicationID:   req.ApplicationID,
		Status:          string(req.Status),
		NotificationIDs: fx.ids(),
	}
}
