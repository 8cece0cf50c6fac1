package app

import (
	"strings"
	"time"

	"github.com/yungbote/studentaid-backend/internal/platform/envutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	Port        string
	MetricsAddr string

	JWTSecretKey string

	// BypassSubmitValidations skips the cross-source study period overlap check.
	BypassSubmitValidations bool
	// RejectUnexpiredProgram keeps the offering change program expiry check as deployed.
	RejectUnexpiredProgram bool

	// NotificationChannel is auto, temporal, redis or noop. Auto prefers temporal, then redis.
	NotificationChannel     string
	NotificationMaxAttempts int
	NotificationSweepEvery  time.Duration
	NotificationSweepGrace  time.Duration
	RunNotificationWorkers  bool

	AutoMigrate bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		ServiceName: envutil.String("SERVICE_NAME", "studentaid-api"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("VERSION", "dev"),
		Port:        envutil.String("PORT", "8080"),
		MetricsAddr: envutil.String("METRICS_ADDR", ""),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		BypassSubmitValidations: envutil.Bool("BYPASS_APPLICATION_SUBMIT_VALIDATIONS", false),
		RejectUnexpiredProgram:  envutil.Bool("OFFERING_CHANGE_REJECT_UNEXPIRED_PROGRAM", true),

		NotificationChannel:     strings.ToLower(envutil.String("NOTIFICATION_CHANNEL", "auto")),
		NotificationMaxAttempts: envutil.Int("NOTIFICATION_MAX_ATTEMPTS", 8),
		NotificationSweepEvery:  envutil.Seconds("NOTIFICATION_SWEEP_INTERVAL_SECONDS", 60),
		NotificationSweepGrace:  envutil.Seconds("NOTIFICATION_SWEEP_GRACE_SECONDS", 120),
		RunNotificationWorkers:  envutil.Bool("RUN_NOTIFICATION_WORKERS", true),

		AutoMigrate: envutil.Bool("POSTGRES_AUTO_MIGRATE", true),
	}
	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "defaultsecret"
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set; using the development secret")
		}
	}
	if cfg.BypassSubmitValidations && log != nil {
		log.Warn("BYPASS_APPLICATION_SUBMIT_VALIDATIONS is on; overlap checks are skipped")
	}
	return cfg
}
