package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/data/repos"
	repotestutil "github.com/yungbote/studentaid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

type recordingSender struct {
	sent []uuid.UUID
	err  error
}

func (s *recordingSender) Send(_ context.Context, n *types.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n.ID)
	return nil
}

func seedNotification(t *testing.T, repo repos.NotificationRepo, createdAt time.Time, attempts int) *types.Notification {
	t.Helper()
	userID := uuid.New()
	rows, err := repo.Create(dbctx.Context{Ctx: context.Background()}, []*types.Notification{{
		MessageType: common.MessageStudentRestrictionAdded,
		UserID:      &userID,
		Attempts:    attempts,
		CreatedAt:   createdAt,
	}})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return rows[0]
}

func loadNotification(t *testing.T, repo repos.NotificationRepo, id uuid.UUID) *types.Notification {
	t.Helper()
	rows, err := repo.GetByIDs(dbctx.Context{Ctx: context.Background()}, []uuid.UUID{id})
	if err != nil || len(rows) != 1 {
		t.Fatalf("load notification: rows=%d err=%v", len(rows), err)
	}
	return rows[0]
}

func TestNotificationDelivererSendsOnce(t *testing.T) {
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	repo := repos.NewNotificationRepo(db, log)
	sender := &recordingSender{}
	d := NewNotificationDeliverer(log, repo, sender, 3)
	n := seedNotification(t, repo, time.Now().UTC(), 0)

	res, err := d.Deliver(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if !res.Delivered || res.Skipped {
		t.Fatalf("unexpected result: %+v", res)
	}
	row := loadNotification(t, repo, n.ID)
	if row.DispatchedAt == nil || row.Attempts != 1 {
		t.Fatalf("expected dispatched row with 1 attempt, got %+v", row)
	}

	res, err = d.Deliver(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("second Deliver: %v", err)
	}
	if !res.Skipped || res.Reason != "already_dispatched" {
		t.Fatalf("redelivery should be skipped, got %+v", res)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
}

func TestNotificationDelivererSendFailureKeepsRowPending(t *testing.T) {
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	repo := repos.NewNotificationRepo(db, log)
	sender := &recordingSender{err: errors.New("gateway down")}
	d := NewNotificationDeliverer(log, repo, sender, 2)
	n := seedNotification(t, repo, time.Now().UTC(), 0)

	if _, err := d.Deliver(context.Background(), n.ID); err == nil {
		t.Fatalf("expected send failure")
	}
	if err := d.ConsumeQueue(context.Background(), n.ID); err == nil {
		t.Fatalf("expected send failure through the queue adapter")
	}
	row := loadNotification(t, repo, n.ID)
	if row.DispatchedAt != nil || row.Attempts != 2 {
		t.Fatalf("expected pending row with 2 attempts, got %+v", row)
	}

	res, err := d.Deliver(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("exhausted Deliver: %v", err)
	}
	if !res.Skipped || res.Reason != "attempts_exhausted" {
		t.Fatalf("expected attempts_exhausted, got %+v", res)
	}
}

func TestNotificationDelivererUnknownID(t *testing.T) {
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	d := NewNotificationDeliverer(log, repos.NewNotificationRepo(db, log), &recordingSender{}, 0)

	res, err := d.Deliver(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if !res.Skipped || res.Reason != "not_found" {
		t.Fatalf("expected not_found skip, got %+v", res)
	}
}

func TestNotificationSweeperRepublishesStaleRows(t *testing.T) {
	db := repotestutil.DB(t)
	log := repotestutil.Logger(t)
	repo := repos.NewNotificationRepo(db, log)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	stale := seedNotification(t, repo, now.Add(-10*time.Minute), 0)
	seedNotification(t, repo, now.Add(-10*time.Second), 0)
	seedNotification(t, repo, now.Add(-time.Hour), 5)
	sent := seedNotification(t, repo, now.Add(-time.Hour), 1)
	if err := repo.MarkDispatched(dbctx.Context{Ctx: context.Background()}, sent.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("MarkDispatched: %v", err)
	}

	pub := &recordingPublisher{}
	sweeper := NewNotificationSweeper(log, repo, pub, time.Minute, 5)
	n, err := sweeper.SweepOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if n != 1 || len(pub.batches) != 1 || len(pub.batches[0]) != 1 || pub.batches[0][0] != stale.ID {
		t.Fatalf("expected only the stale row republished, got n=%d batches=%v", n, pub.batches)
	}

	pub.err = errors.New("down")
	if _, err := sweeper.SweepOnce(context.Background(), now); err == nil {
		t.Fatalf("expected publish failure to surface")
	}
}
