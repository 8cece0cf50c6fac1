package applications

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/data/repos/testutil"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

func TestApplicationRepoQueries(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewApplicationRepo(db, testutil.Logger(t))

	student := testutil.SeedStudent(t, ctx, tx, "Doe")
	py := testutil.SeedProgramYear(t, ctx, tx, "2024")
	loc := testutil.SeedLocation(t, ctx, tx, true)
	prog := testutil.SeedProgram(t, ctx, tx, loc.InstitutionID, nil)
	off := testutil.SeedOffering(t, ctx, tx, prog.ID, loc.ID, institutions.OfferingIntensityFullTime,
		testutil.Date(t, "2024-01-01"), testutil.Date(t, "2024-04-30"))

	draft, _ := testutil.SeedApplication(t, ctx, tx, student.ID, py.ID, "", appdomain.StatusDraft, nil, nil)
	live, _ := testutil.SeedApplication(t, ctx, tx, student.ID, py.ID, "2024000001", appdomain.StatusCompleted, &loc.ID, &off.ID)
	testutil.SeedApplication(t, ctx, tx, student.ID, py.ID, "2024000002", appdomain.StatusSubmitted, &loc.ID, nil)
	testutil.SeedApplication(t, ctx, tx, student.ID, py.ID, "2024000003", appdomain.StatusCancelled, &loc.ID, &off.ID)

	got, err := repo.GetDraftByStudent(dbc, student.ID)
	if err != nil || got == nil || got.ID != draft.ID {
		t.Fatalf("GetDraftByStudent: got=%+v err=%v", got, err)
	}
	if other, _ := repo.GetForStudent(dbc, live.ID, uuid.New()); other != nil {
		t.Fatalf("GetForStudent must scope by student")
	}

	candidates, err := repo.ListOverlapCandidates(dbc, student.ID, "")
	if err != nil {
		t.Fatalf("ListOverlapCandidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("ListOverlapCandidates: want=2 got=%d (%+v)", len(candidates), candidates)
	}
	withDates := 0
	for _, c := range candidates {
		if c.StudyStart != nil && c.StudyEnd != nil {
			withDates++
			if !c.StudyStart.Equal(testutil.Date(t, "2024-01-01")) {
				t.Fatalf("candidate start: %v", c.StudyStart)
			}
		}
	}
	if withDates != 1 {
		t.Fatalf("expected exactly one candidate with a resolved offering, got %d", withDates)
	}

	excluded, err := repo.ListOverlapCandidates(dbc, student.ID, "2024000001")
	if err != nil || len(excluded) != 1 {
		t.Fatalf("ListOverlapCandidates exclude: err=%v len=%d", err, len(excluded))
	}

	impacted, err := repo.ListByCurrentOffering(dbc, off.ID)
	if err != nil {
		t.Fatalf("ListByCurrentOffering: %v", err)
	}
	if len(impacted) != 1 || impacted[0].ID != live.ID {
		t.Fatalf("ListByCurrentOffering: unexpected %+v", impacted)
	}

	n, err := repo.CountByNumberAndStatus(dbc, "2024000001", []appdomain.Status{appdomain.StatusCompleted})
	if err != nil || n != 1 {
		t.Fatalf("CountByNumberAndStatus: n=%d err=%v", n, err)
	}
}

func TestApplicationRepoOneDraftPerStudent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewApplicationRepo(db, testutil.Logger(t))

	student := testutil.SeedStudent(t, ctx, tx, "Doe")
	py := testutil.SeedProgramYear(t, ctx, tx, "2024")
	first, _ := testutil.SeedApplication(t, ctx, tx, student.ID, py.ID, "", appdomain.StatusDraft, nil, nil)

	dup := *first
	dup.ID = uuid.New()
	if _, err := repo.Create(dbc, []*appdomain.Application{&dup}); err == nil {
		t.Fatalf("expected unique violation for a second draft")
	}
}
