package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/studentaid-backend/internal/data/db"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	httpserver "github.com/yungbote/studentaid-backend/internal/http"
	"github.com/yungbote/studentaid-backend/internal/observability"
	"github.com/yungbote/studentaid-backend/internal/platform/envutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    *repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		if err := db.EnsureIndexes(theDB); err != nil {
			log.Sync()
			return nil, fmt.Errorf("postgres indexes: %w", err)
		}
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	repoSet := repos.NewSet(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, repoSet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        repoSet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background notification workers and metric collectors.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	if a.Clients.Queue != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Queue.Client())
	}

	if !a.Cfg.RunNotificationWorkers {
		return nil
	}
	switch a.Services.Publisher.Channel() {
	case "temporal":
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Services.Deliverer)
		if err != nil {
			return err
		}
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
	case "redis":
		go func() {
			if err := a.Clients.Queue.Consume(ctx, a.Services.Deliverer.ConsumeQueue); err != nil && ctx.Err() == nil {
				a.Log.Error("notification queue consumer stopped", "error", err)
			}
		}()
	}
	if a.Services.Publisher.Channel() != "noop" {
		a.Services.Sweeper.Start(ctx, a.Cfg.NotificationSweepEvery)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &httpserver.Server{Engine: a.Router}
	a.Log.Info("http server listening", "port", a.Cfg.Port)
	return srv.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
