package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

var pendingChangeStatuses = []appdomain.ChangeRequestStatus{
	appdomain.ChangeRequestInProgressWithStudent,
	appdomain.ChangeRequestInProgressWithSABC,
}

func (a *applicationAggregate) SubmitChangeRequest(ctx context.Context, in domainagg.SubmitChangeRequestInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.SubmitChangeRequest"
	var out domainagg.ApplicationResult
	if in.StudentID == uuid.Nil || in.ApplicationID == uuid.Nil || in.ProgramYearID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id, application_id and program_year_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	read := dbctx.Context{Ctx: ctx}
	original, err := a.deps.Applications.GetForStudent(read, in.ApplicationID, in.StudentID)
	if err != nil {
		return out, MapError(op, err)
	}
	if original == nil {
		return out, domainagg.NotFound(op, fmt.Sprintf("application not found: %s", in.ApplicationID))
	}
	if err := a.checkChangeRequestAllowed(read, op, original); err != nil {
		return out, err
	}
	if original.ProgramYearID != in.ProgramYearID {
		return out, domainagg.Validation(op, "program year does not match the application")
	}
	sub, err := a.prepareSubmission(ctx, op, original, in.Data)
	if err != nil {
		return out, err
	}
	if original.LocationID != nil && sub.location.ID != *original.LocationID {
		return out, domainagg.Validation(op, "a change request cannot move the application to another location")
	}
	if sub.offering != nil {
		_, current, err := a.currentOffering(read, op, original)
		if err != nil {
			return out, MapError(op, err)
		}
		if current.ID != sub.offering.ID {
			return out, domainagg.Validation(op, "a change request must keep the assessed offering")
		}
	}
	if err := a.checkOverlap(ctx, op, in.StudentID, sub.period, original.Number()); err != nil {
		return out, err
	}

	err = executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		locked, err := a.lockForStudent(dbc, op, original.ID, in.StudentID)
		if err != nil {
			return err
		}
		if err := a.checkChangeRequestAllowed(dbc, op, locked); err != nil {
			return err
		}
		data, err := sub.payload.JSON()
		if err != nil {
			return ValidationError(err.Error())
		}
		now := a.now()
		status := appdomain.ChangeRequestInProgressWithSABC
		row := &types.Application{
			ID:                     uuid.New(),
			ApplicationNumber:      locked.ApplicationNumber,
			ProgramYearID:          locked.ProgramYearID,
			StudentID:              locked.StudentID,
			LocationID:             locked.LocationID,
			Status:                 appdomain.StatusEdited,
			StatusUpdatedAt:        now,
			SubmittedAt:            &now,
			Data:                   data,
			PrecedingApplicationID: &locked.ID,
			ChangeRequestStatus:    &status,
			CreatedBy:              uuidPtr(in.UserID),
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if _, err := a.deps.Applications.Create(dbc, []*types.Application{row}); err != nil {
			return err
		}
		out = applicationResult(row, nil)
		out.ReplacedApplicationID = &locked.ID
		return nil
	})
	return out, err
}

// checkChangeRequestAllowed requires a completed, unarchived application with no change
// request in progress.
func (a *applicationAggregate) checkChangeRequestAllowed(dbc dbctx.Context, op string, app *types.Application) error {
	if app.Status != appdomain.StatusCompleted || app.IsArchived {
		return domainagg.InvalidState(op, "change requests are only accepted for completed, unarchived applications")
	}
	pending, err := a.deps.Applications.GetPendingChangeRequest(dbc, app.ID)
	if err != nil {
		return err
	}
	if pending != nil {
		return domainagg.InvalidState(op, "a change request is already in progress")
	}
	return nil
}

func (a *applicationAggregate) CancelChangeRequest(ctx context.Context, in domainagg.CancelChangeRequestInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.CancelChangeRequest"
	var out domainagg.ApplicationResult
	if in.StudentID == uuid.Nil || in.ChangeRequestID == uuid.Nil {
		return out, domainagg.Validation(op, "student_id and change_request_id are required")
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		row, err := a.lockForStudent(dbc, op, in.ChangeRequestID, in.StudentID)
		if err != nil {
			return err
		}
		if row.PrecedingApplicationID == nil || row.ChangeRequestStatus == nil {
			return domainagg.NotFound(op, fmt.Sprintf("change request not found: %s", in.ChangeRequestID))
		}
		if !row.ChangeRequestStatus.Pending() {
			return domainagg.InvalidState(op, fmt.Sprintf("change request is %s", *row.ChangeRequestStatus))
		}
		if err := a.setChangeRequestStatus(dbc, row, appdomain.ChangeRequestCancelled, in.UserID); err != nil {
			return err
		}
		out = applicationResult(row, nil)
		return nil
	})
	return out, err
}

func (a *applicationAggregate) AssessChangeRequest(ctx context.Context, in domainagg.AssessChangeRequestInput) (domainagg.ApplicationResult, error) {
	const op = "Applications.Application.AssessChangeRequest"
	var out domainagg.ApplicationResult
	if in.ChangeRequestID == uuid.Nil {
		return out, domainagg.Validation(op, "change_request_id is required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, nil, func(dbc dbctx.Context) error {
		row, err := a.deps.Applications.LockByID(dbc, in.ChangeRequestID)
		if err != nil {
			return err
		}
		if row == nil || row.PrecedingApplicationID == nil || row.ChangeRequestStatus == nil {
			return domainagg.NotFound(op, fmt.Sprintf("change request not found: %s", in.ChangeRequestID))
		}
		if *row.ChangeRequestStatus != appdomain.ChangeRequestInProgressWithSABC {
			return domainagg.InvalidState(op, fmt.Sprintf("change request is %s", *row.ChangeRequestStatus))
		}
		now := a.now()
		noteText := "Change request declined: " + in.Note

		if in.Approve {
			original, err := a.deps.Applications.LockByID(dbc, *row.PrecedingApplicationID)
			if err != nil {
				return err
			}
			if original == nil {
				return InvariantError("change request has no preceding application")
			}
			if original.Status != appdomain.StatusCompleted {
				return domainagg.InvalidState(op, fmt.Sprintf("original application is %s, not completed", original.Status))
			}
			_, off, err := a.currentOffering(dbc, op, original)
			if err != nil {
				return err
			}
			if err := a.setStatus(dbc, original, []appdomain.Status{appdomain.StatusCompleted}, appdomain.StatusOverwritten, in.UserID, now); err != nil {
				return err
			}
			if err := a.setStatus(dbc, row, []appdomain.Status{appdomain.StatusEdited}, appdomain.StatusCompleted, in.UserID, now); err != nil {
				return err
			}
			if err := a.setChangeRequestStatus(dbc, row, appdomain.ChangeRequestApproved, in.UserID); err != nil {
				return err
			}
			if _, err := a.createCurrentAssessment(dbc, row, newAssessment{
				trigger:    appdomain.TriggerStudentAppeal,
				offeringID: &off.ID,
				userID:     in.UserID,
			}, now); err != nil {
				return err
			}
			out = applicationResult(row, nil)
			out.ReplacedApplicationID = &original.ID
			noteText = "Change request approved: " + in.Note
		} else {
			if err := a.setChangeRequestStatus(dbc, row, appdomain.ChangeRequestDeclined, in.UserID); err != nil {
				return err
			}
			out = applicationResult(row, nil)
		}
		return writeNote(dbc, a.deps.Notes, common.NoteSubjectStudent, row.StudentID, common.NoteTypeApplication, noteText, in.UserID)
	})
	return out, err
}

func (a *applicationAggregate) setChangeRequestStatus(dbc dbctx.Context, row *types.Application, to appdomain.ChangeRequestStatus, userID uuid.UUID) error {
	ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, "applications", "change_request_status", row.ID, statusStrings(pendingChangeStatuses...), map[string]any{
		"change_request_status": to,
		"modifier":              uuidPtr(userID),
		"updated_at":            a.now(),
	})
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "change request changed concurrently"); err != nil {
		return err
	}
	row.ChangeRequestStatus = &to
	return nil
}
