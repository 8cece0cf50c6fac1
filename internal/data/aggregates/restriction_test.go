package aggregates_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
)

func (h *harness) seedRestriction(t *testing.T, studentID uuid.UUID, code string) *types.StudentRestriction {
	t.Helper()
	catalogue, err := h.repos.Restrictions.GetByCodes(dbctxOf(h), []string{code})
	if err != nil || catalogue[code] == nil {
		t.Fatalf("catalogue %s: %v", code, err)
	}
	now := time.Now().UTC()
	row := &types.StudentRestriction{
		ID:            uuid.New(),
		StudentID:     studentID,
		RestrictionID: catalogue[code].ID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.db.Create(row).Error; err != nil {
		t.Fatalf("seed restriction: %v", err)
	}
	return row
}

func TestResolveRestriction(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Resolved")
	row := h.seedRestriction(t, s.ID, "SSR")

	in := domainagg.ChangeRestrictionInput{
		StudentID:            s.ID,
		StudentRestrictionID: row.ID,
		UserID:               uuid.New(),
	}
	_, err := h.restrictions.Resolve(h.ctx, in)
	requireCode(t, err, domainagg.CodeValidation)

	in.Note = "Appeal granted"
	res, err := h.restrictions.Resolve(h.ctx, in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.IsActive || res.StudentRestrictionID != row.ID || !res.ChangedAt.Equal(h.now) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if n := h.activeRestrictions(t, s.ID, "SSR"); n != 0 {
		t.Fatalf("active SSR after resolve: %d", n)
	}

	var note types.Note
	if err := h.db.Where("subject_type = ? AND subject_id = ?", common.NoteSubjectStudent, s.ID).First(&note).Error; err != nil {
		t.Fatalf("load note: %v", err)
	}
	if note.NoteType != common.NoteTypeRestriction || !strings.Contains(note.Description, "SSR") {
		t.Fatalf("unexpected note: %+v", note)
	}

	_, err = h.restrictions.Resolve(h.ctx, in)
	requireCode(t, err, domainagg.CodeInvalidState)

	in.StudentID = h.student(t, "Other").ID
	_, err = h.restrictions.Resolve(h.ctx, in)
	requireCode(t, err, domainagg.CodeNotFound)
}

func TestDeleteRestriction(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "Deleted")
	row := h.seedRestriction(t, s.ID, "WTHD")

	in := domainagg.ChangeRestrictionInput{
		StudentID:            s.ID,
		StudentRestrictionID: row.ID,
		Note:                 "Created in error",
		UserID:               uuid.New(),
	}
	if _, err := h.restrictions.Resolve(h.ctx, in); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := h.restrictions.Delete(h.ctx, in); err != nil {
		t.Fatalf("delete resolved restriction: %v", err)
	}

	var kept types.StudentRestriction
	if err := h.db.Unscoped().First(&kept, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("soft deleted row must remain: %v", err)
	}
	if !kept.DeletedAt.Valid || kept.DeletionNote != "Created in error" {
		t.Fatalf("deletion not audited: %+v", kept)
	}

	_, err := h.restrictions.Delete(h.ctx, in)
	requireCode(t, err, domainagg.CodeNotFound)
}
