package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/studentaid-backend/internal/app"
)

func main() {
	// .env is optional; real deployments inject the environment.
	_ = godotenv.Load()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(); err != nil {
		application.Log.Error("start background workers", "error", err)
		return
	}
	if err := application.Run(ctx); err != nil {
		application.Log.Error("http server stopped", "error", err)
	}
}
