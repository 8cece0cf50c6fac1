package aggregates_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/studentaid-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	repotestutil "github.com/yungbote/studentaid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

var restrictionCodes = []string{"SINR", "SSR", "SSRN", "WTHD", "PTSSR", "PTWTHD"}

// harness wires every aggregate against one in-memory database.
type harness struct {
	ctx   context.Context
	db    *gorm.DB
	repos *repos.Set
	hooks *aggtestutil.HooksRecorder
	now   time.Time

	appDeps      aggregates.ApplicationAggregateDeps
	apps         domainagg.ApplicationAggregate
	offerings    domainagg.OfferingChangeAggregate
	restrictions domainagg.RestrictionAggregate

	programYear *types.ProgramYear
	location    *types.Location
	program     *types.EducationProgram
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	set := repos.NewSet(db, log)
	r := rules.Default()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	hooks := &aggtestutil.HooksRecorder{}
	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: hooks,
		Now:   func() time.Time { return now },
	}
	assessor := aggregates.NewRestrictionAssessor(set, r.Restrictions, log)

	h := &harness{ctx: ctx, db: db, repos: set, hooks: hooks, now: now}
	h.appDeps = aggregates.ApplicationAggregateDeps{
		Base:            base,
		Rules:           r,
		Applications:    set.Applications,
		Assessments:     set.Assessments,
		ProgramYears:    set.ProgramYears,
		Offerings:       set.Offerings,
		Locations:       set.Locations,
		Students:        set.Students,
		Standings:       set.Standings,
		OfferingChanges: set.OfferingChanges,
		Sequences:       set.Sequences,
		Notes:           set.Notes,
		Notifications:   set.Notifications,
		Restrictions:    assessor,
		Overlap:         aggregates.NewOverlapChecker(log, false, set.Applications, set.SFAS),
	}
	h.apps = aggregates.NewApplicationAggregate(h.appDeps)
	h.offerings = aggregates.NewOfferingChangeAggregate(aggregates.OfferingChangeAggregateDeps{
		Base:                   base,
		Rules:                  r,
		RejectUnexpiredProgram: true,
		Offerings:              set.Offerings,
		Programs:               set.Programs,
		Locations:              set.Locations,
		Applications:           set.Applications,
		Assessments:            set.Assessments,
		Notes:                  set.Notes,
		Restrictions:           assessor,
	})
	h.restrictions = aggregates.NewRestrictionAggregate(aggregates.RestrictionAggregateDeps{
		Base:                base,
		StudentRestrictions: set.StudentRestrictions,
		Notes:               set.Notes,
	})

	repotestutil.SeedRestrictionCatalogue(t, ctx, db, restrictionCodes...)
	h.programYear = repotestutil.SeedProgramYear(t, ctx, db, "2024")
	h.location = repotestutil.SeedLocation(t, ctx, db, true)
	expired := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	h.program = repotestutil.SeedProgram(t, ctx, db, h.location.InstitutionID, &expired)
	return h
}

func (h *harness) date(t *testing.T, s string) time.Time {
	return repotestutil.Date(t, s)
}

func (h *harness) student(t *testing.T, lastName string) *types.Student {
	return repotestutil.SeedStudent(t, h.ctx, h.db, lastName)
}

func (h *harness) offering(t *testing.T, intensity institutions.OfferingIntensity, start, end string, breaks ...institutions.StudyBreak) *types.Offering {
	return repotestutil.SeedOffering(t, h.ctx, h.db, h.program.ID, h.location.ID, intensity, h.date(t, start), h.date(t, end), breaks...)
}

func (h *harness) payload(t *testing.T, off *types.Offering) json.RawMessage {
	t.Helper()
	doc := map[string]any{
		"selectedLocation": h.location.ID.String(),
		"selectedProgram":  h.program.ID.String(),
		"selectedOffering": off.ID.String(),
		"firstName":        "Sam",
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

// draft saves a new draft for the student and returns its id.
func (h *harness) draft(t *testing.T, studentID uuid.UUID, data json.RawMessage) uuid.UUID {
	t.Helper()
	res, err := h.apps.SaveDraft(h.ctx, domainagg.SaveDraftInput{
		StudentID:     studentID,
		ProgramYearID: h.programYear.ID,
		Data:          data,
		UserID:        uuid.New(),
	})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	return res.ApplicationID
}

// submitNew drafts and submits an application bound to off.
func (h *harness) submitNew(t *testing.T, studentID uuid.UUID, off *types.Offering) domainagg.ApplicationResult {
	t.Helper()
	data := h.payload(t, off)
	id := h.draft(t, studentID, data)
	res, err := h.apps.Submit(h.ctx, domainagg.SubmitApplicationInput{
		StudentID:     studentID,
		ApplicationID: id,
		ProgramYearID: h.programYear.ID,
		Data:          data,
		UserID:        uuid.New(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return res
}

// completed seeds a completed application whose current assessment uses off.
func (h *harness) completed(t *testing.T, studentID uuid.UUID, number string, off *types.Offering) (*types.Application, *types.StudentAssessment) {
	return h.seedApp(t, studentID, number, appdomain.StatusCompleted, off)
}

func (h *harness) seedApp(t *testing.T, studentID uuid.UUID, number string, status appdomain.Status, off *types.Offering) (*types.Application, *types.StudentAssessment) {
	t.Helper()
	var offeringID *uuid.UUID
	if off != nil {
		offeringID = &off.ID
	}
	return repotestutil.SeedApplication(t, h.ctx, h.db, studentID, h.programYear.ID, number, status, &h.location.ID, offeringID)
}

func (h *harness) application(t *testing.T, id uuid.UUID) *types.Application {
	t.Helper()
	var row types.Application
	if err := h.db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("load application %s: %v", id, err)
	}
	return &row
}

func (h *harness) assessment(t *testing.T, id uuid.UUID) *types.StudentAssessment {
	t.Helper()
	var row types.StudentAssessment
	if err := h.db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("load assessment %s: %v", id, err)
	}
	return &row
}

func (h *harness) loadOffering(t *testing.T, id uuid.UUID) *types.Offering {
	t.Helper()
	var row types.Offering
	if err := h.db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("load offering %s: %v", id, err)
	}
	return &row
}

func (h *harness) activeRestrictions(t *testing.T, studentID uuid.UUID, code string) int64 {
	t.Helper()
	n, err := h.repos.StudentRestrictions.CountByCodes(dbctxOf(h), studentID, []string{code}, true)
	if err != nil {
		t.Fatalf("count restrictions: %v", err)
	}
	return n
}

func (h *harness) countNotifications(t *testing.T, messageType string) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(&types.Notification{}).Where("message_type = ?", messageType).Count(&n).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !domainagg.IsCode(err, code) {
		t.Fatalf("expected %s error, got %q: %v", code, domainagg.CodeOf(err), err)
	}
}

func dbctxOf(h *harness) dbctx.Context {
	return dbctx.Context{Ctx: h.ctx}
}

// repoSIN gives the student a temporary SIN expiring at expiry.
func repoSIN(t *testing.T, h *harness, s *types.Student, expiry *time.Time) {
	t.Helper()
	repotestutil.SeedSINValidation(t, h.ctx, h.db, s, "123 456 789", true, expiry)
}
