package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/studentaid-backend/internal/clients/redis"
	"github.com/yungbote/studentaid-backend/internal/observability"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/temporalx/notifydispatch"
)

// NotificationPublisher hands committed notification ids to the dispatcher. It is only
// called after the owning transaction committed; a failure never undoes the write.
type NotificationPublisher interface {
	Publish(ctx context.Context, ids []uuid.UUID) error
	Channel() string
}

type noopPublisher struct{}

func NewNoopNotificationPublisher() NotificationPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, []uuid.UUID) error { return nil }
func (noopPublisher) Channel() string                            { return "noop" }

// WorkflowStarter is the part of the Temporal client the publisher needs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options temporalsdkclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (temporalsdkclient.WorkflowRun, error)
}

type temporalPublisher struct {
	log       *logger.Logger
	starter   WorkflowStarter
	taskQueue string
	metrics   *observability.Metrics
}

// NewTemporalNotificationPublisher starts one dispatch workflow per notification id.
func NewTemporalNotificationPublisher(baseLog *logger.Logger, starter WorkflowStarter, taskQueue string, metrics *observability.Metrics) NotificationPublisher {
	return &temporalPublisher{
		log:       baseLog.With("service", "TemporalNotificationPublisher"),
		starter:   starter,
		taskQueue: taskQueue,
		metrics:   metrics,
	}
}

func (p *temporalPublisher) Channel() string { return "temporal" }

func (p *temporalPublisher) Publish(ctx context.Context, ids []uuid.UUID) error {
	if p.starter == nil {
		return fmt.Errorf("temporal not configured (TEMPORAL_ADDRESS)")
	}
	var errs []error
	for _, id := range ids {
		opts := temporalsdkclient.StartWorkflowOptions{
			ID:                    notifydispatch.WorkflowID(id),
			TaskQueue:             p.taskQueue,
			WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		}
		_, err := p.starter.ExecuteWorkflow(ctx, opts, notifydispatch.WorkflowName, id.String())
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if err != nil && !errors.As(err, &started) {
			p.metrics.IncNotificationDispatch(p.Channel(), "error")
			errs = append(errs, fmt.Errorf("notification %s: %w", id, err))
			continue
		}
		p.metrics.IncNotificationDispatch(p.Channel(), "success")
	}
	return errors.Join(errs...)
}

type queuePublisher struct {
	queue   redis.NotificationQueue
	metrics *observability.Metrics
}

// NewQueueNotificationPublisher pushes ids onto the redis notification queue.
func NewQueueNotificationPublisher(queue redis.NotificationQueue, metrics *observability.Metrics) NotificationPublisher {
	return &queuePublisher{queue: queue, metrics: metrics}
}

func (p *queuePublisher) Channel() string { return "redis" }

func (p *queuePublisher) Publish(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if p.queue == nil {
		return fmt.Errorf("redis notification queue not configured (REDIS_ADDR)")
	}
	if err := p.queue.Enqueue(ctx, ids); err != nil {
		p.metrics.IncNotificationDispatch(p.Channel(), "error")
		return err
	}
	p.metrics.IncNotificationDispatch(p.Channel(), "success")
	return nil
}

// publishAfterCommit logs and swallows publish failures: the rows stay undispatched and
// the sweeper picks them up.
func publishAfterCommit(ctx context.Context, log *logger.Logger, pub NotificationPublisher, op string, ids []uuid.UUID) {
	if pub == nil || len(ids) == 0 {
		return
	}
	if err := pub.Publish(ctx, ids); err != nil {
		log.Warn("notification publish failed", "op", op, "channel", pub.Channel(), "count", len(ids), "error", err)
	}
}
