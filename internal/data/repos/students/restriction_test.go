package students

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

func TestStudentRestrictionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	student := testutil.SeedStudent(t, ctx, tx, "Doe")
	catalogue := testutil.SeedRestrictionCatalogue(t, ctx, tx, "SSR", "SSRN", "WTHD")

	codes, err := NewRestrictionRepo(db, log).GetByCodes(dbc, []string{"SSR", "WTHD", "NOPE"})
	if err != nil {
		t.Fatalf("GetByCodes: %v", err)
	}
	if len(codes) != 2 || codes["SSR"] == nil || codes["NOPE"] != nil {
		t.Fatalf("GetByCodes: unexpected %+v", codes)
	}

	repo := NewStudentRestrictionRepo(db, log)
	now := time.Now().UTC()
	rows, err := repo.Create(dbc, []*types.StudentRestriction{
		{ID: uuid.New(), StudentID: student.ID, RestrictionID: catalogue["SSR"].ID, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), StudentID: student.ID, RestrictionID: catalogue["WTHD"].ID, IsActive: true, CreatedAt: now, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n, err := repo.CountByCodes(dbc, student.ID, []string{"SSR", "SSRN"}, true); err != nil || n != 1 {
		t.Fatalf("CountByCodes active: n=%d err=%v", n, err)
	}

	by := uuid.New()
	ok, err := repo.Resolve(dbc, rows[0].ID, "resolved after review", by, now)
	if err != nil || !ok {
		t.Fatalf("Resolve: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.Resolve(dbc, rows[0].ID, "again", by, now); ok {
		t.Fatalf("Resolve: second resolve must report false")
	}
	if n, _ := repo.CountByCodes(dbc, student.ID, []string{"SSR", "SSRN"}, true); n != 0 {
		t.Fatalf("CountByCodes active after resolve: %d", n)
	}
	if n, _ := repo.CountByCodes(dbc, student.ID, []string{"SSR", "SSRN"}, false); n != 1 {
		t.Fatalf("CountByCodes historical after resolve: %d", n)
	}

	ok, err = repo.SoftDelete(dbc, rows[1].ID, "added in error", by, now)
	if err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%v err=%v", ok, err)
	}
	if n, _ := repo.CountByCodes(dbc, student.ID, []string{"WTHD"}, false); n != 0 {
		t.Fatalf("soft-deleted restriction must not count, got %d", n)
	}
	var raw types.StudentRestriction
	if err := tx.Unscoped().Where("id = ?", rows[1].ID).Take(&raw).Error; err != nil {
		t.Fatalf("soft-deleted row must remain: %v", err)
	}
	if raw.DeletionNote != "added in error" || raw.DeletedBy == nil || !raw.DeletedAt.Valid {
		t.Fatalf("deletion audit missing: %+v", raw)
	}

	list, err := repo.ListByStudent(dbc, student.ID, false)
	if err != nil || len(list) != 1 || list[0].Restriction == nil || list[0].Restriction.Code != "SSR" {
		t.Fatalf("ListByStudent: err=%v list=%+v", err, list)
	}
}
