package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/studentaid-backend/internal/http"
	httpH "github.com/yungbote/studentaid-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studentaid-backend/internal/http/middleware"
	"github.com/yungbote/studentaid-backend/internal/observability"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Student     *httpH.StudentHandler
	Institution *httpH.InstitutionHandler
	Ministry    *httpH.MinistryHandler
	Workflow    *httpH.WorkflowHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Student:     httpH.NewStudentHandler(log, services.Applications),
		Institution: httpH.NewInstitutionHandler(log, services.Applications, services.OfferingChange),
		Ministry:    httpH.NewMinistryHandler(log, services.Applications, services.OfferingChange, services.Restrictions),
		Workflow:    httpH.NewWorkflowHandler(services.Applications),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        cfg.ServiceName,
		AuthMiddleware:     middleware.Auth,
		StudentHandler:     handlers.Student,
		InstitutionHandler: handlers.Institution,
		MinistryHandler:    handlers.Ministry,
		WorkflowHandler:    handlers.Workflow,
		HealthHandler:      handlers.Health,
	})
}
