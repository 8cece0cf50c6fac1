package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/platform/apierr"
	"github.com/yungbote/studentaid-backend/internal/platform/ctxutil"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	as := NewAuthService(logger.Nop(), "secret")
	want := ctxutil.RequestData{UserID: uuid.New(), StudentID: uuid.New(), Role: RoleStudent}
	token, err := as.IssueToken(want, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := as.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	got := ctxutil.GetRequestData(ctx)
	if got == nil || *got != want {
		t.Fatalf("request data = %+v, want %+v", got, want)
	}
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	as := NewAuthService(logger.Nop(), "secret")
	other := NewAuthService(logger.Nop(), "other-secret")

	forged, err := other.IssueToken(ctxutil.RequestData{UserID: uuid.New(), Role: RoleMinistry}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	expired, err := as.IssueToken(ctxutil.RequestData{UserID: uuid.New(), Role: RoleMinistry}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	noLocation, err := as.IssueToken(ctxutil.RequestData{UserID: uuid.New(), Role: RoleInstitution}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	unknownRole, err := as.IssueToken(ctxutil.RequestData{UserID: uuid.New(), Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"forged":       forged,
		"expired":      expired,
		"no location":  noLocation,
		"unknown role": unknownRole,
	}
	for name, token := range cases {
		_, err := as.SetContextFromToken(context.Background(), token)
		if err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
		if ae, ok := apierr.As(err); !ok || ae.Status != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 api error, got %v", name, err)
		}
	}
}
