package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/platform/ctxutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/services"
)

func TestAuthMiddlewareRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := services.NewAuthService(logger.Nop(), "secret")
	am := NewAuthMiddleware(logger.Nop(), auth)

	studentID := uuid.New()
	var seen *ctxutil.RequestData
	r := gin.New()
	r.GET("/students", am.RequireAuth(), am.RequireRole(services.RoleStudent), func(c *gin.Context) {
		seen = ctxutil.GetRequestData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	studentToken, err := auth.IssueToken(ctxutil.RequestData{UserID: uuid.New(), StudentID: studentID, Role: services.RoleStudent}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ministryToken, err := auth.IssueToken(ctxutil.RequestData{UserID: uuid.New(), Role: services.RoleMinistry}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + ministryToken, http.StatusForbidden},
		{"student", "Bearer " + studentToken, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
		if tc.want == http.StatusForbidden && !strings.Contains(rec.Body.String(), `"code":"forbidden"`) {
			t.Fatalf("%s: body = %s", tc.name, rec.Body.String())
		}
		if tc.want == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"code":"unauthorized"`) {
			t.Fatalf("%s: body = %s", tc.name, rec.Body.String())
		}
	}
	if seen == nil || seen.StudentID != studentID {
		t.Fatalf("student id not attached to the request: %+v", seen)
	}
}
