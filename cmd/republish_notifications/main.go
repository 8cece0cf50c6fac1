package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/studentaid-backend/internal/app"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

// republish_notifications hands undispatched notification rows to the configured publisher.
func main() {
	var dryRun bool
	var limit int
	var olderThan time.Duration
	var envFile string
	flag.BoolVar(&dryRun, "dry-run", false, "print pending notifications without publishing")
	flag.IntVar(&limit, "limit", 500, "maximum rows to publish")
	flag.DurationVar(&olderThan, "older-than", 2*time.Minute, "only rows created at least this long ago")
	flag.StringVar(&envFile, "env", ".env", "optional env file")
	flag.Parse()

	_ = godotenv.Load(envFile)

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	maxAttempts := application.Cfg.NotificationMaxAttempts
	rows, err := application.Repos.Notifications.ListUndispatched(dbctx.Context{Ctx: ctx}, time.Now().UTC().Add(-olderThan), maxAttempts, limit)
	if err != nil {
		fmt.Printf("load notifications: %v\n", err)
		os.Exit(1)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row == nil || row.ID == uuid.Nil {
			continue
		}
		if dryRun {
			fmt.Printf("pending %s type=%s attempts=%d created=%s\n", row.ID, row.MessageType, row.Attempts, row.CreatedAt.Format(time.RFC3339))
		}
		ids = append(ids, row.ID)
	}
	if dryRun || len(ids) == 0 {
		fmt.Printf("%d pending notifications\n", len(ids))
		return
	}

	pub := application.Services.Publisher
	if err := pub.Publish(ctx, ids); err != nil {
		fmt.Printf("publish via %s: %v\n", pub.Channel(), err)
		os.Exit(1)
	}
	fmt.Printf("published %d notifications via %s\n", len(ids), pub.Channel())
}
