package aggregates_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
)

func TestSaveDraftAllowsOneDraftPerStudent(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Draft")
	id := h.draft(t, s.ID, json.RawMessage(`{"firstName":"Sam"}`))

	_, err := h.apps.SaveDraft(h.ctx, domainagg.SaveDraftInput{
		StudentID:     s.ID,
		ProgramYearID: h.programYear.ID,
		Data:          json.RawMessage(`{}`),
	})
	requireCode(t, err, domainagg.CodeValidation)

	res, err := h.apps.SaveDraft(h.ctx, domainagg.SaveDraftInput{
		StudentID:     s.ID,
		ProgramYearID: h.programYear.ID,
		ApplicationID: &id,
		Data:          json.RawMessage(`{"firstName":"Alex"}`),
	})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if res.ApplicationID != id || res.Status != string(appdomain.StatusDraft) {
		t.Fatalf("unexpected draft result: %+v", res)
	}
	var drafts int64
	h.db.Model(&types.Application{}).Where("student_id = ? AND application_status = ?", s.ID, appdomain.StatusDraft).Count(&drafts)
	if drafts != 1 {
		t.Fatalf("drafts: want=1 got=%d", drafts)
	}
}

func TestSaveDraftRejectsUnknownProgramYear(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Year")
	_, err := h.apps.SaveDraft(h.ctx, domainagg.SaveDraftInput{StudentID: s.ID, ProgramYearID: uuid.New()})
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestSubmitDraftAssignsNumberAndOriginalAssessment(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Submit")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")

	res := h.submitNew(t, s.ID, off)
	if res.Status != string(appdomain.StatusSubmitted) {
		t.Fatalf("status: want=Submitted got=%s", res.Status)
	}
	if res.ApplicationNumber != "2024000001" {
		t.Fatalf("application number: got=%s", res.ApplicationNumber)
	}
	if res.PIRStatus != string(appdomain.PIRStatusNotRequired) {
		t.Fatalf("pir status: got=%s", res.PIRStatus)
	}
	if res.CurrentAssessmentID == nil {
		t.Fatalf("expected a current assessment")
	}
	asmt := h.assessment(t, *res.CurrentAssessmentID)
	if asmt.TriggerType != appdomain.TriggerOriginalAssessment || asmt.OfferingID == nil || *asmt.OfferingID != off.ID {
		t.Fatalf("unexpected assessment: %+v", asmt)
	}
	if last := h.hooks.Last(); last.Name != "Applications.Application.Submit" || last.Status != "success" {
		t.Fatalf("unexpected hook event: %+v", last)
	}
}

func TestResubmitOverwritesAndKeepsNumber(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Overwrite")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
	first := h.submitNew(t, s.ID, off)

	second, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
		StudentID:     s.ID,
		ApplicationID: first.ApplicationID,
		ProgramYearID: h.programYear.ID,
		Data:          h.payload(t, off),
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ApplicationID == first.ApplicationID {
		t.Fatalf("resubmission must create a new row")
	}
	if second.ApplicationNumber != first.ApplicationNumber {
		t.Fatalf("number: want=%s got=%s", first.ApplicationNumber, second.ApplicationNumber)
	}
	if second.ReplacedApplicationID == nil || *second.ReplacedApplicationID != first.ApplicationID {
		t.Fatalf("replaced id: %+v", second.ReplacedApplicationID)
	}

	old := h.application(t, first.ApplicationID)
	if old.Status != appdomain.StatusOverwritten {
		t.Fatalf("old status: want=Overwritten got=%s", old.Status)
	}
	if !old.StatusUpdatedAt.Equal(h.now) {
		t.Fatalf("old status_updated_on not refreshed: %s", old.StatusUpdatedAt)
	}
	if a := h.assessment(t, *first.CurrentAssessmentID); a.Status != appdomain.AssessmentStatusCancellationRequested {
		t.Fatalf("old assessment status: got=%s", a.Status)
	}

	var live int64
	h.db.Model(&types.Application{}).
		Where("application_number = ? AND application_status NOT IN ?", first.ApplicationNumber, []string{"Overwritten", "Cancelled", "Edited", "Draft"}).
		Count(&live)
	if live != 1 {
		t.Fatalf("live rows for number: want=1 got=%d", live)
	}
}

func TestResubmitQueuesEditNotificationOnce(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Edits")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
	current := h.submitNew(t, s.ID, off).ApplicationID

	for i := 0; i < 6; i++ {
		res, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
			StudentID:     s.ID,
			ApplicationID: current,
			ProgramYearID: h.programYear.ID,
			Data:          h.payload(t, off),
		})
		if err != nil {
			t.Fatalf("resubmit %d: %v", i, err)
		}
		current = res.ApplicationID
	}
	if n := h.countNotifications(t, string(common.MessageMinistryApplicationEditedLimit)); n != 1 {
		t.Fatalf("edit notifications: want=1 got=%d", n)
	}
}

func TestSubmitRejectsOverlappingStudyPeriod(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Overlap")
	existing := h.offering(t, institutions.OfferingIntensityFullTime, "2024-01-01", "2024-04-30")
	h.seedApp(t, s.ID, "2023000009", appdomain.StatusSubmitted, existing)

	overlapping := h.offering(t, institutions.OfferingIntensityFullTime, "2024-04-15", "2024-08-31")
	data := h.payload(t, overlapping)
	id := h.draft(t, s.ID, data)
	_, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
		StudentID:     s.ID,
		ApplicationID: id,
		ProgramYearID: h.programYear.ID,
		Data:          data,
	})
	requireCode(t, err, domainagg.CodeValidation)
	if len(h.hooks.Overlaps) != 1 || h.hooks.Overlaps[0] != "local" {
		t.Fatalf("overlap hooks: %+v", h.hooks.Overlaps)
	}
	if app := h.application(t, id); app.Status != appdomain.StatusDraft {
		t.Fatalf("rejected draft must stay a draft, got %s", app.Status)
	}

	adjacent := h.offering(t, institutions.OfferingIntensityFullTime, "2024-05-01", "2024-08-31")
	data = h.payload(t, adjacent)
	if _, err := h.apps.SaveDraft(h.ctx, domainagg.SaveDraftInput{
		StudentID:     s.ID,
		ProgramYearID: h.programYear.ID,
		ApplicationID: &id,
		Data:          data,
	}); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if _, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
		StudentID:     s.ID,
		ApplicationID: id,
		ProgramYearID: h.programYear.ID,
		Data:          data,
	}); err != nil {
		t.Fatalf("adjacent period should be accepted: %v", err)
	}
}

func TestSubmitCreatesSINRestrictionOnce(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Temporary")
	expiry := h.date(t, "2024-10-01")
	repoSIN(t, h, s, &expiry)
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")

	first := h.submitNew(t, s.ID, off)
	if len(first.NotificationIDs) != 1 {
		t.Fatalf("notifications: want=1 got=%d", len(first.NotificationIDs))
	}
	if _, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
		StudentID:     s.ID,
		ApplicationID: first.ApplicationID,
		ProgramYearID: h.programYear.ID,
		Data:          h.payload(t, off),
	}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if n := h.activeRestrictions(t, s.ID, "SINR"); n != 1 {
		t.Fatalf("active SINR: want=1 got=%d", n)
	}
	if len(h.hooks.Restrictions) != 1 || h.hooks.Restrictions[0] != "SINR" {
		t.Fatalf("restriction hooks: %+v", h.hooks.Restrictions)
	}
}

func TestCancelCascadesToAssessment(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Cancel")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
	res := h.submitNew(t, s.ID, off)

	out, err := h.apps.Cancel(h.ctx, domainagg.CancelApplicationInput{StudentID: s.ID, ApplicationID: res.ApplicationID})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.Status != string(appdomain.StatusCancelled) {
		t.Fatalf("status: got=%s", out.Status)
	}
	if a := h.assessment(t, *res.CurrentAssessmentID); a.Status != appdomain.AssessmentStatusCancellationRequested {
		t.Fatalf("assessment status: got=%s", a.Status)
	}
	_, err = h.apps.Cancel(h.ctx, domainagg.CancelApplicationInput{StudentID: s.ID, ApplicationID: res.ApplicationID})
	requireCode(t, err, domainagg.CodeInvalidState)

	_, err = h.apps.Cancel(h.ctx, domainagg.CancelApplicationInput{StudentID: uuid.New(), ApplicationID: res.ApplicationID})
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestProgramInfoRequestFlow(t *testing.T) {
	h := newHarness(t)
	data := json.RawMessage(`{"selectedLocation":"` + h.location.ID.String() + `","studyStartDate":"2024-09-01","studyEndDate":"2024-12-20"}`)

	submitPIR := func(lastName string) (*types.Student, domainagg.ApplicationResult) {
		s := h.student(t, lastName)
		id := h.draft(t, s.ID, data)
		res, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
			StudentID:     s.ID,
			ApplicationID: id,
			ProgramYearID: h.programYear.ID,
			Data:          data,
		})
		if err != nil {
			t.Fatalf("submit without offering: %v", err)
		}
		if res.PIRStatus != string(appdomain.PIRStatusRequired) {
			t.Fatalf("pir status: got=%s", res.PIRStatus)
		}
		return s, res
	}

	t.Run("deny other requires text", func(t *testing.T) {
		_, res := submitPIR("Deny")
		_, err := h.apps.SetDeniedReasonForProgramInfoRequest(h.ctx, domainagg.DenyProgramInfoInput{
			LocationID:    h.location.ID,
			ApplicationID: res.ApplicationID,
			ReasonID:      appdomain.PIRDeniedReasonOther,
		})
		requireCode(t, err, domainagg.CodeValidation)

		out, err := h.apps.SetDeniedReasonForProgramInfoRequest(h.ctx, domainagg.DenyProgramInfoInput{
			LocationID:    h.location.ID,
			ApplicationID: res.ApplicationID,
			ReasonID:      appdomain.PIRDeniedReasonOther,
			OtherReason:   "Program is not offered this term",
		})
		if err != nil {
			t.Fatalf("deny: %v", err)
		}
		if out.PIRStatus != string(appdomain.PIRStatusDeclined) {
			t.Fatalf("pir status: got=%s", out.PIRStatus)
		}
		_, err = h.apps.SetDeniedReasonForProgramInfoRequest(h.ctx, domainagg.DenyProgramInfoInput{
			LocationID:    h.location.ID,
			ApplicationID: res.ApplicationID,
			ReasonID:      2,
		})
		requireCode(t, err, domainagg.CodeInvalidState)
	})

	t.Run("complete binds the offering", func(t *testing.T) {
		_, res := submitPIR("Complete")
		off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
		out, err := h.apps.SetOfferingForProgramInfoRequest(h.ctx, domainagg.CompleteProgramInfoInput{
			LocationID:    h.location.ID,
			ApplicationID: res.ApplicationID,
			OfferingID:    off.ID,
		})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if out.PIRStatus != string(appdomain.PIRStatusCompleted) {
			t.Fatalf("pir status: got=%s", out.PIRStatus)
		}
		a := h.assessment(t, *res.CurrentAssessmentID)
		if a.OfferingID == nil || *a.OfferingID != off.ID {
			t.Fatalf("assessment offering not bound: %+v", a.OfferingID)
		}
	})

	t.Run("wrong location is not found", func(t *testing.T) {
		_, res := submitPIR("Elsewhere")
		_, err := h.apps.SetOfferingForProgramInfoRequest(h.ctx, domainagg.CompleteProgramInfoInput{
			LocationID:    uuid.New(),
			ApplicationID: res.ApplicationID,
			OfferingID:    uuid.New(),
		})
		requireCode(t, err, domainagg.CodeNotFound)
	})
}

func TestConfirmAssessmentOnlyFromAssessment(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Noa")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
	res := h.submitNew(t, s.ID, off)
	confirm := domainagg.ConfirmAssessmentInput{StudentID: s.ID, AssessmentID: *res.CurrentAssessmentID}

	_, err := h.apps.ConfirmAssessment(h.ctx, confirm)
	requireCode(t, err, domainagg.CodeInvalidState)

	for _, step := range [][2]appdomain.Status{
		{appdomain.StatusSubmitted, appdomain.StatusInProgress},
		{appdomain.StatusInProgress, appdomain.StatusAssessment},
	} {
		if _, err := h.apps.TransitionStatus(h.ctx, domainagg.TransitionStatusInput{
			ApplicationID: res.ApplicationID,
			From:          string(step[0]),
			To:            string(step[1]),
		}); err != nil {
			t.Fatalf("transition %s -> %s: %v", step[0], step[1], err)
		}
	}
	_, err = h.apps.TransitionStatus(h.ctx, domainagg.TransitionStatusInput{
		ApplicationID: res.ApplicationID,
		From:          string(appdomain.StatusAssessment),
		To:            string(appdomain.StatusEnrolment),
	})
	requireCode(t, err, domainagg.CodeValidation)

	out, err := h.apps.ConfirmAssessment(h.ctx, confirm)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if out.Status != string(appdomain.StatusEnrolment) {
		t.Fatalf("status: got=%s", out.Status)
	}
	a := h.assessment(t, *res.CurrentAssessmentID)
	if a.NOAApprovalStatus == nil || *a.NOAApprovalStatus != appdomain.NOACompleted {
		t.Fatalf("noa status: %+v", a.NOAApprovalStatus)
	}
}

func TestChangeRequestLifecycle(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Change")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
	original, _ := h.completed(t, s.ID, "2024100001", off)

	submit := domainagg.SubmitChangeRequestInput{
		StudentID:     s.ID,
		ApplicationID: original.ID,
		ProgramYearID: h.programYear.ID,
		Data:          h.payload(t, off),
	}
	change, err := h.apps.SubmitChangeRequest(h.ctx, submit)
	if err != nil {
		t.Fatalf("submit change request: %v", err)
	}
	if change.Status != string(appdomain.StatusEdited) || change.ChangeRequestStatus != string(appdomain.ChangeRequestInProgressWithSABC) {
		t.Fatalf("unexpected change request: %+v", change)
	}
	_, err = h.apps.SubmitChangeRequest(h.ctx, submit)
	requireCode(t, err, domainagg.CodeInvalidState)

	_, err = h.apps.AssessChangeRequest(h.ctx, domainagg.AssessChangeRequestInput{ChangeRequestID: change.ApplicationID, Approve: true})
	requireCode(t, err, domainagg.CodeValidation)

	approved, err := h.apps.AssessChangeRequest(h.ctx, domainagg.AssessChangeRequestInput{
		ChangeRequestID: change.ApplicationID,
		Approve:         true,
		Note:            "Income corrected",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != string(appdomain.StatusCompleted) || approved.ChangeRequestStatus != string(appdomain.ChangeRequestApproved) {
		t.Fatalf("unexpected approval: %+v", approved)
	}
	if got := h.application(t, original.ID).Status; got != appdomain.StatusOverwritten {
		t.Fatalf("original status: got=%s", got)
	}
	a := h.assessment(t, *approved.CurrentAssessmentID)
	if a.TriggerType != appdomain.TriggerStudentAppeal || a.OfferingID == nil || *a.OfferingID != off.ID {
		t.Fatalf("unexpected appeal assessment: %+v", a)
	}
	notes, err := h.repos.Notes.ListBySubject(dbctxOf(h), string(common.NoteSubjectStudent), s.ID)
	if err != nil || len(notes) != 1 {
		t.Fatalf("student notes: %d %v", len(notes), err)
	}
}

func TestCancelChangeRequest(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Withdrawn")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20")
	original, _ := h.completed(t, s.ID, "2024100002", off)

	change, err := h.apps.SubmitChangeRequest(h.ctx, domainagg.SubmitChangeRequestInput{
		StudentID:     s.ID,
		ApplicationID: original.ID,
		ProgramYearID: h.programYear.ID,
		Data:          h.payload(t, off),
	})
	if err != nil {
		t.Fatalf("submit change request: %v", err)
	}
	out, err := h.apps.CancelChangeRequest(h.ctx, domainagg.CancelChangeRequestInput{StudentID: s.ID, ChangeRequestID: change.ApplicationID})
	if err != nil {
		t.Fatalf("cancel change request: %v", err)
	}
	if out.ChangeRequestStatus != string(appdomain.ChangeRequestCancelled) {
		t.Fatalf("change request status: got=%s", out.ChangeRequestStatus)
	}
	_, err = h.apps.CancelChangeRequest(h.ctx, domainagg.CancelChangeRequestInput{StudentID: s.ID, ChangeRequestID: change.ApplicationID})
	requireCode(t, err, domainagg.CodeInvalidState)
}
