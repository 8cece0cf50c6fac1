package app

import (
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/studentaid-backend/internal/clients/redis"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/temporalx"
)

// Clients are the optional outbound connections. Either may be nil when unconfigured.
type Clients struct {
	Temporal temporalsdkclient.Client
	Queue    redis.NotificationQueue
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.NotificationChannel == "auto" || cfg.NotificationChannel == "temporal" {
		tc, err := temporalx.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init temporal client: %w", err)
		}
		out.Temporal = tc
	}
	if cfg.NotificationChannel == "auto" || cfg.NotificationChannel == "redis" {
		q, err := redis.NewNotificationQueue(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis notification queue: %w", err)
		}
		out.Queue = q
	}
	return out, nil
}

func (c Clients) Close() {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Queue != nil {
		_ = c.Queue.Close()
	}
}
