package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/data/aggregates"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/observability"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/services"
	"github.com/yungbote/studentaid-backend/internal/temporalx"
)

type Services struct {
	Auth           services.AuthService
	Applications   services.ApplicationService
	OfferingChange services.OfferingChangeService
	Restrictions   services.RestrictionService

	Publisher services.NotificationPublisher
	Deliverer *services.NotificationDeliverer
	Sweeper   *services.NotificationSweeper
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repoSet *repos.Set, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	aidRules := rules.Load(log)
	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	assessor := aggregates.NewRestrictionAssessor(repoSet, aidRules.Restrictions, log)

	appAgg := aggregates.NewApplicationAggregate(aggregates.ApplicationAggregateDeps{
		Base:            base,
		Rules:           aidRules,
		Applications:    repoSet.Applications,
		Assessments:     repoSet.Assessments,
		ProgramYears:    repoSet.ProgramYears,
		Offerings:       repoSet.Offerings,
		Locations:       repoSet.Locations,
		Students:        repoSet.Students,
		Standings:       repoSet.Standings,
		OfferingChanges: repoSet.OfferingChanges,
		Sequences:       repoSet.Sequences,
		Notes:           repoSet.Notes,
		Notifications:   repoSet.Notifications,
		Restrictions:    assessor,
		Overlap:         aggregates.NewOverlapChecker(log, cfg.BypassSubmitValidations, repoSet.Applications, repoSet.SFAS),
	})
	offeringAgg := aggregates.NewOfferingChangeAggregate(aggregates.OfferingChangeAggregateDeps{
		Base:                   base,
		Rules:                  aidRules,
		RejectUnexpiredProgram: cfg.RejectUnexpiredProgram,
		Offerings:              repoSet.Offerings,
		Programs:               repoSet.Programs,
		Locations:              repoSet.Locations,
		Applications:           repoSet.Applications,
		Assessments:            repoSet.Assessments,
		Notes:                  repoSet.Notes,
		Restrictions:           assessor,
	})
	restrictionAgg := aggregates.NewRestrictionAggregate(aggregates.RestrictionAggregateDeps{
		Base:                base,
		StudentRestrictions: repoSet.StudentRestrictions,
		Notes:               repoSet.Notes,
	})

	if err := domainagg.CheckContracts(appAgg, offeringAgg, restrictionAgg); err != nil {
		return Services{}, fmt.Errorf("aggregate contracts: %w", err)
	}

	pub, err := wirePublisher(log, cfg, clients, metrics)
	if err != nil {
		return Services{}, err
	}
	log.Info("notification publisher selected", "channel", pub.Channel())

	return Services{
		Auth:           services.NewAuthService(log, cfg.JWTSecretKey),
		Applications:   services.NewApplicationService(log, appAgg, pub),
		OfferingChange: services.NewOfferingChangeService(log, offeringAgg, pub),
		Restrictions:   services.NewRestrictionService(log, restrictionAgg),
		Publisher:      pub,
		Deliverer:      services.NewNotificationDeliverer(log, repoSet.Notifications, services.NewLogNotificationSender(log), cfg.NotificationMaxAttempts),
		Sweeper:        services.NewNotificationSweeper(log, repoSet.Notifications, pub, cfg.NotificationSweepGrace, cfg.NotificationMaxAttempts),
	}, nil
}

func wirePublisher(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) (services.NotificationPublisher, error) {
	switch cfg.NotificationChannel {
	case "noop":
		return services.NewNoopNotificationPublisher(), nil
	case "temporal":
		if clients.Temporal == nil {
			return nil, fmt.Errorf("NOTIFICATION_CHANNEL=temporal requires TEMPORAL_ADDRESS")
		}
	case "redis":
		if clients.Queue == nil {
			return nil, fmt.Errorf("NOTIFICATION_CHANNEL=redis requires REDIS_ADDR")
		}
	case "auto":
	default:
		return nil, fmt.Errorf("unknown NOTIFICATION_CHANNEL %q", cfg.NotificationChannel)
	}
	if clients.Temporal != nil {
		return services.NewTemporalNotificationPublisher(log, clients.Temporal, temporalx.LoadConfig().TaskQueue, metrics), nil
	}
	if clients.Queue != nil {
		return services.NewQueueNotificationPublisher(clients.Queue, metrics), nil
	}
	log.Warn("no notification transport configured; notifications stay queued in the database")
	return services.NewNoopNotificationPublisher(), nil
}
