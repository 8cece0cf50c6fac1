package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/studentaid-backend/internal/platform/envutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// NotificationQueue is a redis list of committed notification ids waiting for delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, ids []uuid.UUID) error
	// Consume blocks, handing each dequeued id to handle until ctx is cancelled. An id whose
	// handler fails is re-enqueued behind the pending ids.
	Consume(ctx context.Context, handle func(ctx context.Context, id uuid.UUID) error) error
	Client() goredis.UniversalClient
	Close() error
}

type notificationQueue struct {
	log  *logger.Logger
	rdb  goredis.UniversalClient
	key  string
	poll time.Duration
}

// NewNotificationQueue connects to REDIS_ADDR. It returns nil, nil when REDIS_ADDR is unset.
func NewNotificationQueue(log *logger.Logger) (NotificationQueue, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		log.Warn("REDIS_ADDR not set; redis notification queue disabled")
		return nil, nil
	}
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:       []string{addr},
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewNotificationQueueWithClient(log, rdb, envutil.String("REDIS_NOTIFICATION_QUEUE", "studentaid:notifications")), nil
}

func NewNotificationQueueWithClient(log *logger.Logger, rdb goredis.UniversalClient, key string) NotificationQueue {
	if key == "" {
		key = "studentaid:notifications"
	}
	return &notificationQueue{
		log:  log.With("client", "RedisNotificationQueue"),
		rdb:  rdb,
		key:  key,
		poll: 5 * time.Second,
	}
}

func (q *notificationQueue) Enqueue(ctx context.Context, ids []uuid.UUID) error {
	if q == nil || q.rdb == nil {
		return fmt.Errorf("redis notification queue not initialized")
	}
	if len(ids) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return q.rdb.LPush(ctx, q.key, values...).Err()
}

func (q *notificationQueue) Consume(ctx context.Context, handle func(ctx context.Context, id uuid.UUID) error) error {
	if q == nil || q.rdb == nil {
		return fmt.Errorf("redis notification queue not initialized")
	}
	if handle == nil {
		return fmt.Errorf("handler required")
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.rdb.BRPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.log.Warn("redis dequeue failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) != 2 {
			continue
		}
		id, err := uuid.Parse(res[1])
		if err != nil {
			q.log.Warn("dropping malformed notification id", "value", res[1])
			continue
		}
		if err := handle(ctx, id); err != nil {
			q.log.Warn("notification handler failed; requeueing", "notification_id", id, "error", err)
			if rerr := q.rdb.LPush(context.Background(), q.key, id.String()).Err(); rerr != nil {
				q.log.Error("notification requeue failed", "notification_id", id, "error", rerr)
			}
		}
	}
}

func (q *notificationQueue) Client() goredis.UniversalClient {
	if q == nil {
		return nil
	}
	return q.rdb
}

func (q *notificationQueue) Close() error {
	if q == nil || q.rdb == nil {
		return nil
	}
	return q.rdb.Close()
}
