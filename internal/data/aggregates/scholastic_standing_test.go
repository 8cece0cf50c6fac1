package aggregates_test

import (
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
)

func TestScholasticStandingCumulativeUnsuccessfulWeeks(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Weeks")
	first, _ := h.completed(t, s.ID, "2024200001", h.offering(t, institutions.OfferingIntensityFullTime, "2023-09-01", "2023-12-15"))
	second, _ := h.completed(t, s.ID, "2024200002", h.offering(t, institutions.OfferingIntensityFullTime, "2024-01-08", "2024-04-26"))

	res, err := h.apps.SaveScholasticStanding(h.ctx, domainagg.SaveScholasticStandingInput{
		LocationID:        h.location.ID,
		ApplicationID:     first.ID,
		ChangeType:        string(appdomain.StandingDidNotCompleteProgram),
		UnsuccessfulWeeks: 40,
	})
	if err != nil {
		t.Fatalf("first report: %v", err)
	}
	if len(res.RestrictionCodes) != 0 {
		t.Fatalf("first report should not restrict, got %v", res.RestrictionCodes)
	}

	res, err = h.apps.SaveScholasticStanding(h.ctx, domainagg.SaveScholasticStandingInput{
		LocationID:        h.location.ID,
		ApplicationID:     second.ID,
		ChangeType:        string(appdomain.StandingDidNotCompleteProgram),
		UnsuccessfulWeeks: 30,
	})
	if err != nil {
		t.Fatalf("second report: %v", err)
	}
	if len(res.RestrictionCodes) != 1 || res.RestrictionCodes[0] != "SSR" {
		t.Fatalf("second report codes: %v", res.RestrictionCodes)
	}
	if n := h.activeRestrictions(t, s.ID, "SSR"); n != 1 {
		t.Fatalf("active SSR: want=1 got=%d", n)
	}
	if res.AssessmentID != nil {
		t.Fatalf("non-completion must not reassess")
	}
}

func TestScholasticStandingWithdrawalAdjustsOffering(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Withdrew")
	off := h.offering(t, institutions.OfferingIntensityFullTime, "2023-09-01", "2023-12-16", institutions.StudyBreak{
		BreakStartDate: h.date(t, "2023-12-01"),
		BreakEndDate:   h.date(t, "2023-12-16"),
	})
	app, _ := h.completed(t, s.ID, "2024200003", off)

	in := domainagg.SaveScholasticStandingInput{
		LocationID:    h.location.ID,
		ApplicationID: app.ID,
		ChangeType:    string(appdomain.StandingWithdrewFromProgram),
	}
	_, err := h.apps.SaveScholasticStanding(h.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	late := h.date(t, "2023-12-20")
	in.NewStudyEndDate = &late
	_, err = h.apps.SaveScholasticStanding(h.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	end := h.date(t, "2023-12-05")
	in.NewStudyEndDate = &end
	res, err := h.apps.SaveScholasticStanding(h.ctx, in)
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if res.AdjustedOfferingID == nil || res.AssessmentID == nil {
		t.Fatalf("withdrawal must reassess on an adjusted offering: %+v", res)
	}
	adjusted := h.loadOffering(t, *res.AdjustedOfferingID)
	if !adjusted.StudyEndDate.Equal(end) || adjusted.Type != institutions.OfferingTypeScholasticStanding {
		t.Fatalf("unexpected adjusted offering: end=%s type=%s", adjusted.StudyEndDate, adjusted.Type)
	}
	if adjusted.PrecedingOfferingID == nil || *adjusted.PrecedingOfferingID != off.ID {
		t.Fatalf("adjusted offering must chain to the original")
	}
	breaks, err := adjusted.Breaks()
	if err != nil || len(breaks) != 1 {
		t.Fatalf("breaks: %v %v", breaks, err)
	}
	if !breaks[0].BreakEndDate.Equal(end) {
		t.Fatalf("break end: want=%s got=%s", end, breaks[0].BreakEndDate)
	}

	current := h.application(t, app.ID)
	if current.CurrentAssessmentID == nil || *current.CurrentAssessmentID != *res.AssessmentID {
		t.Fatalf("scholastic standing assessment must become current")
	}
	if a := h.assessment(t, *res.AssessmentID); a.TriggerType != appdomain.TriggerScholasticStandingChange {
		t.Fatalf("trigger: got=%s", a.TriggerType)
	}
	if len(res.RestrictionCodes) != 1 || res.RestrictionCodes[0] != "WTHD" {
		t.Fatalf("codes: %v", res.RestrictionCodes)
	}

	_, err = h.apps.SaveScholasticStanding(h.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)
}

func TestScholasticStandingPartTimeBundleOnEveryReport(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "PartTime")
	for i, number := range []string{"2024200004", "2024200005"} {
		start, end := "2023-09-01", "2023-12-15"
		if i == 1 {
			start, end = "2024-01-08", "2024-04-26"
		}
		app, _ := h.completed(t, s.ID, number, h.offering(t, institutions.OfferingIntensityPartTime, start, end))
		res, err := h.apps.SaveScholasticStanding(h.ctx, domainagg.SaveScholasticStandingInput{
			LocationID:        h.location.ID,
			ApplicationID:     app.ID,
			ChangeType:        string(appdomain.StandingDidNotCompleteProgram),
			UnsuccessfulWeeks: 2,
		})
		if err != nil {
			t.Fatalf("report %d: %v", i, err)
		}
		if len(res.RestrictionCodes) != 2 {
			t.Fatalf("report %d codes: %v", i, res.RestrictionCodes)
		}
		if len(res.NotificationIDs) != 2 {
			t.Fatalf("report %d notifications: %d", i, len(res.NotificationIDs))
		}
	}
	if n := h.activeRestrictions(t, s.ID, "PTSSR"); n != 2 {
		t.Fatalf("active PTSSR: want=2 got=%d", n)
	}
}

func TestScholasticStandingRequiresCompletedApplication(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Pending")
	app, _ := h.seedApp(t, s.ID, "2024200006", appdomain.StatusAssessment, h.offering(t, institutions.OfferingIntensityFullTime, "2024-09-01", "2024-12-20"))

	_, err := h.apps.SaveScholasticStanding(h.ctx, domainagg.SaveScholasticStandingInput{
		LocationID:    h.location.ID,
		ApplicationID: app.ID,
		ChangeType:    string(appdomain.StandingSchoolTransfer),
	})
	requireCode(t, err, domainagg.CodeInvalidState)

	_, err = h.apps.SaveScholasticStanding(h.ctx, domainagg.SaveScholasticStandingInput{
		LocationID:    uuid.New(),
		ApplicationID: app.ID,
		ChangeType:    string(appdomain.StandingSchoolTransfer),
	})
	requireCode(t, err, domainagg.CodeNotFound)

	_, err = h.apps.SaveScholasticStanding(h.ctx, domainagg.SaveScholasticStandingInput{
		LocationID:    h.location.ID,
		ApplicationID: app.ID,
		ChangeType:    "Student moved abroad",
	})
	requireCode(t, err, domainagg.CodeValidation)
}
