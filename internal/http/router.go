package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studentaid-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studentaid-backend/internal/http/middleware"
	"github.com/yungbote/studentaid-backend/internal/observability"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/services"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	StudentHandler     *httpH.StudentHandler
	InstitutionHandler *httpH.InstitutionHandler
	MinistryHandler    *httpH.MinistryHandler
	WorkflowHandler    *httpH.WorkflowHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	} else {
		api.Use(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "authentication not configured", "code": "unauthorized"},
			})
		})
	}

	role := func(roles ...string) gin.HandlerFunc {
		if cfg.AuthMiddleware == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return cfg.AuthMiddleware.RequireRole(roles...)
	}

	// Students
	if h := cfg.StudentHandler; h != nil {
		students := api.Group("/students", role(services.RoleStudent))
		students.POST("/application-drafts", h.CreateDraft)
		students.PUT("/application-drafts/:id", h.UpdateDraft)
		students.POST("/applications/:id/submit", h.Submit)
		students.POST("/applications/:id/cancel", h.Cancel)
		students.POST("/applications/:id/change-requests", h.SubmitChangeRequest)
		students.POST("/change-requests/:id/cancel", h.CancelChangeRequest)
		students.POST("/assessments/:id/confirm", h.ConfirmAssessment)
		students.POST("/application-offering-changes/:id/respond", h.RespondOfferingChange)
	}

	// Institutions
	if h := cfg.InstitutionHandler; h != nil {
		inst := api.Group("/institutions", role(services.RoleInstitution))
		inst.POST("/applications/:id/program-info/complete", h.CompleteProgramInfoRequest)
		inst.POST("/applications/:id/program-info/deny", h.DenyProgramInfoRequest)
		inst.POST("/applications/:id/scholastic-standings", h.SaveScholasticStanding)
		inst.POST("/applications/:id/offering-changes", h.CreateApplicationOfferingChange)
		inst.POST("/offerings/:id/change-requests", h.RequestOfferingChange)
	}

	// Ministry
	if h := cfg.MinistryHandler; h != nil {
		aest := api.Group("/aest", role(services.RoleMinistry))
		aest.POST("/offerings/:id/change-requests/assess", h.AssessOfferingChange)
		aest.POST("/change-requests/:id/assess", h.AssessChangeRequest)
		aest.POST("/application-offering-changes/:id/assess", h.AssessApplicationOfferingChange)
		aest.POST("/students/:id/restrictions/:restrictionId/resolve", h.ResolveRestriction)
		aest.DELETE("/students/:id/restrictions/:restrictionId", h.DeleteRestriction)
	}

	// Workflow engine
	if h := cfg.WorkflowHandler; h != nil {
		wf := api.Group("/workflow", role(services.RoleSystem))
		wf.PATCH("/applications/:id/status", h.TransitionStatus)
	}

	return r
}
