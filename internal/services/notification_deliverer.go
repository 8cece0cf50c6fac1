package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/data/repos"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/temporalx/notifydispatch"
)

// NotificationSender hands one notification to the outbound channel (mail gateway, SMS).
type NotificationSender interface {
	Send(ctx context.Context, n *types.Notification) error
}

type logSender struct {
	log *logger.Logger
}

// NewLogNotificationSender records deliveries in the structured log only.
func NewLogNotificationSender(baseLog *logger.Logger) NotificationSender {
	return &logSender{log: baseLog.With("service", "LogNotificationSender")}
}

func (s *logSender) Send(_ context.Context, n *types.Notification) error {
	s.log.Info("notification sent", "notification_id", n.ID, "message_type", n.MessageType, "user_id", n.UserID)
	return nil
}

// NotificationDeliverer loads a committed notification, sends it once and stamps date_sent.
// Both the Temporal activity and the redis consumer deliver through it.
type NotificationDeliverer struct {
	repo        repos.NotificationRepo
	sender      NotificationSender
	log         *logger.Logger
	maxAttempts int
	now         func() time.Time
}

var _ notifydispatch.Deliverer = (*NotificationDeliverer)(nil)

func NewNotificationDeliverer(baseLog *logger.Logger, repo repos.NotificationRepo, sender NotificationSender, maxAttempts int) *NotificationDeliverer {
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &NotificationDeliverer{
		repo:        repo,
		sender:      sender,
		log:         baseLog.With("service", "NotificationDeliverer"),
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (d *NotificationDeliverer) Deliver(ctx context.Context, id uuid.UUID) (notifydispatch.DeliverResult, error) {
	res := notifydispatch.DeliverResult{NotificationID: id.String()}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := d.repo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return res, err
	}
	if len(rows) == 0 || rows[0] == nil {
		res.Skipped, res.Reason = true, "not_found"
		return res, nil
	}
	n := rows[0]
	if n.DispatchedAt != nil {
		res.Skipped, res.Reason = true, "already_dispatched"
		return res, nil
	}
	if n.Attempts >= d.maxAttempts {
		res.Skipped, res.Reason = true, "attempts_exhausted"
		d.log.Warn("notification abandoned", "notification_id", id, "attempts", n.Attempts)
		return res, nil
	}
	if err := d.repo.IncAttempts(dbc, id); err != nil {
		return res, err
	}
	if err := d.sender.Send(ctx, n); err != nil {
		return res, fmt.Errorf("send notification %s: %w", id, err)
	}
	if err := d.repo.MarkDispatched(dbc, id, d.now()); err != nil {
		return res, err
	}
	res.Delivered = true
	return res, nil
}

// ConsumeQueue adapts Deliver to the redis queue handler signature.
func (d *NotificationDeliverer) ConsumeQueue(ctx context.Context, id uuid.UUID) error {
	_, err := d.Deliver(ctx, id)
	return err
}

// NotificationSweeper republishes rows that missed their post-commit publish.
type NotificationSweeper struct {
	repo        repos.NotificationRepo
	pub         NotificationPublisher
	log         *logger.Logger
	grace       time.Duration
	maxAttempts int
	batch       int
}

func NewNotificationSweeper(baseLog *logger.Logger, repo repos.NotificationRepo, pub NotificationPublisher, grace time.Duration, maxAttempts int) *NotificationSweeper {
	if grace <= 0 {
		grace = time.Minute
	}
	return &NotificationSweeper{
		repo:        repo,
		pub:         pub,
		log:         baseLog.With("service", "NotificationSweeper"),
		grace:       grace,
		maxAttempts: maxAttempts,
		batch:       200,
	}
}

// SweepOnce publishes undispatched rows older than the grace period and returns how many.
func (s *NotificationSweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.repo.ListUndispatched(dbctx.Context{Ctx: ctx}, now.Add(-s.grace), s.maxAttempts, s.batch)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	if err := s.pub.Publish(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *NotificationSweeper) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := s.SweepOnce(ctx, now.UTC())
				if err != nil {
					s.log.Warn("notification sweep failed", "error", err)
					continue
				}
				if n > 0 {
					s.log.Info("notification sweep republished", "count", n)
				}
			}
		}
	}()
}
