package aggregates_test

import (
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
)

func TestApplicationOfferingChangeApproved(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Moved")
	active := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-03", "2024-12-20")
	requested := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-16", "2024-12-20")
	app, original := h.completed(t, s.ID, "2024400001", active)

	in := domainagg.CreateApplicationOfferingChangeInput{
		LocationID:          h.location.ID,
		ApplicationID:       app.ID,
		RequestedOfferingID: requested.ID,
		Reason:              "Late start",
		UserID:              uuid.New(),
	}
	created, err := h.apps.CreateApplicationOfferingChange(h.ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != string(appdomain.OfferingChangeInProgressWithStudent) || len(created.NotificationIDs) != 1 {
		t.Fatalf("unexpected create result: %+v", created)
	}
	_, err = h.apps.CreateApplicationOfferingChange(h.ctx, in)
	requireCode(t, err, domainagg.CodeInvalidState)

	_, err = h.apps.AssessApplicationOfferingChange(h.ctx, domainagg.AssessApplicationOfferingChangeInput{
		RequestID: created.RequestID,
		Approve:   true,
		Note:      "Too early",
		UserID:    uuid.New(),
	})
	requireCode(t, err, domainagg.CodeInvalidState)

	_, err = h.apps.StudentRespondOfferingChange(h.ctx, domainagg.RespondApplicationOfferingChangeInput{
		StudentID: uuid.New(),
		RequestID: created.RequestID,
		Consent:   true,
	})
	requireCode(t, err, domainagg.CodeNotFound)

	consented, err := h.apps.StudentRespondOfferingChange(h.ctx, domainagg.RespondApplicationOfferingChangeInput{
		StudentID: s.ID,
		RequestID: created.RequestID,
		Consent:   true,
		UserID:    s.UserID,
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if consented.Status != string(appdomain.OfferingChangeInProgressWithSABC) {
		t.Fatalf("status after consent: %s", consented.Status)
	}

	assessed, err := h.apps.AssessApplicationOfferingChange(h.ctx, domainagg.AssessApplicationOfferingChangeInput{
		RequestID: created.RequestID,
		Approve:   true,
		Note:      "Approved",
		UserID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if assessed.Status != string(appdomain.OfferingChangeApproved) || assessed.AssessmentID == nil {
		t.Fatalf("unexpected assess result: %+v", assessed)
	}
	cur := h.application(t, app.ID).CurrentAssessmentID
	if cur == nil || *cur != *assessed.AssessmentID || *cur == original.ID {
		t.Fatalf("approved change must become the current assessment")
	}
	asmt := h.assessment(t, *cur)
	if asmt.TriggerType != appdomain.TriggerApplicationOfferingChange || asmt.OfferingID == nil || *asmt.OfferingID != requested.ID {
		t.Fatalf("unexpected assessment: trigger=%s offering=%v", asmt.TriggerType, asmt.OfferingID)
	}
}

func TestApplicationOfferingChangeDeclinedByStudent(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Stayed")
	active := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-03", "2024-12-20")
	partTime := h.offering(t, institutions.OfferingIntensityPartTime, "2024-09-16", "2024-12-20")
	requested := h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-16", "2024-12-20")
	app, original := h.completed(t, s.ID, "2024400002", active)

	in := domainagg.CreateApplicationOfferingChangeInput{
		LocationID:          h.location.ID,
		ApplicationID:       app.ID,
		RequestedOfferingID: partTime.ID,
		Reason:              "Switch intensity",
		UserID:              uuid.New(),
	}
	_, err := h.apps.CreateApplicationOfferingChange(h.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	in.RequestedOfferingID = requested.ID
	created, err := h.apps.CreateApplicationOfferingChange(h.ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	declined, err := h.apps.StudentRespondOfferingChange(h.ctx, domainagg.RespondApplicationOfferingChangeInput{
		StudentID: s.ID,
		RequestID: created.RequestID,
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if declined.Status != string(appdomain.OfferingChangeDeclinedByStudent) {
		t.Fatalf("status: %s", declined.Status)
	}
	if cur := h.application(t, app.ID).CurrentAssessmentID; cur == nil || *cur != original.ID {
		t.Fatalf("declined change must not reassess")
	}

	if _, err := h.apps.CreateApplicationOfferingChange(h.ctx, in); err != nil {
		t.Fatalf("a declined request must not block a new one: %v", err)
	}
}
