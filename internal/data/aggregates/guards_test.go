package aggregates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	repotestutil "github.com/yungbote/studentaid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestStatusStrings(t *testing.T) {
	got := statusStrings(appdomain.StatusSubmitted, appdomain.StatusInProgress)
	if len(got) != 2 || got[0] != "Submitted" || got[1] != "In Progress" {
		t.Fatalf("unexpected statuses: %+v", got)
	}
}

func TestCASGuardUpdateByStatus(t *testing.T) {
	ctx := context.Background()
	db := repotestutil.DB(t)
	student := repotestutil.SeedStudent(t, ctx, db, "Guard")
	py := repotestutil.SeedProgramYear(t, ctx, db, "2024")
	app, _ := repotestutil.SeedApplication(t, ctx, db, student.ID, py.ID, "2024000001", appdomain.StatusSubmitted, nil, nil)

	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: ctx}
	ok, err := guard.UpdateByStatus(dbc, "applications", "application_status", app.ID,
		statusStrings(appdomain.StatusSubmitted), map[string]any{"application_status": appdomain.StatusInProgress, "updated_at": time.Now().UTC()})
	if err != nil || !ok {
		t.Fatalf("first update: ok=%v err=%v", ok, err)
	}
	ok, err = guard.UpdateByStatus(dbc, "applications", "application_status", app.ID,
		statusStrings(appdomain.StatusSubmitted), map[string]any{"application_status": appdomain.StatusCancelled})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if ok {
		t.Fatalf("stale status should not update")
	}

	var row types.Application
	if err := db.First(&row, "id = ?", app.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.Status != appdomain.StatusInProgress {
		t.Fatalf("status: want=%s got=%s", appdomain.StatusInProgress, row.Status)
	}

	if _, err := guard.UpdateByStatus(dbc, "applications", "application_status", uuid.Nil, []string{"x"}, nil); err == nil {
		t.Fatalf("expected validation error for nil id")
	}
}
