package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	httpH "github.com/yungbote/studentaid-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studentaid-backend/internal/http/middleware"
	"github.com/yungbote/studentaid-backend/internal/observability"
	"github.com/yungbote/studentaid-backend/internal/platform/ctxutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/services"
)

type cancelOnlyApps struct {
	services.ApplicationService
	calls int
}

func (f *cancelOnlyApps) Cancel(_ context.Context, in domainagg.CancelApplicationInput) (domainagg.ApplicationResult, error) {
	f.calls++
	return domainagg.ApplicationResult{ApplicationID: in.ApplicationID, Status: "Cancelled"}, nil
}

func TestRouterEnforcesRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	auth := services.NewAuthService(log, "secret")
	apps := &cancelOnlyApps{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	r := NewRouter(RouterConfig{
		Log:                log,
		Metrics:            metrics,
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, auth),
		StudentHandler:     httpH.NewStudentHandler(log, apps),
		InstitutionHandler: httpH.NewInstitutionHandler(log, apps, nil),
		HealthHandler:      httpH.NewHealthHandler(nil),
	})

	student, err := auth.IssueToken(ctxutil.RequestData{UserID: uuid.New(), StudentID: uuid.New(), Role: services.RoleStudent}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	institution, err := auth.IssueToken(ctxutil.RequestData{UserID: uuid.New(), LocationID: uuid.New(), Role: services.RoleInstitution}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cancelPath := "/api/students/applications/" + uuid.NewString() + "/cancel"
	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"institution", institution, http.StatusForbidden},
		{"student", student, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, cancelPath, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
	if apps.calls != 1 {
		t.Fatalf("expected one cancel call, got %d", apps.calls)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "studentaid_api_requests_total") {
		t.Fatalf("metrics endpoint missing api counters: %d", rec.Code)
	}
}
