package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClampBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{6, time.Second},
	}
	for _, tc := range cases {
		if got := ClampBackoff(100*time.Millisecond, time.Second, tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: want=%s got=%s", tc.attempt, tc.want, got)
		}
	}
}

func TestIsRetryableRPC(t *testing.T) {
	if IsRetryableRPC(nil) {
		t.Fatalf("nil is not retryable")
	}
	if !IsRetryableRPC(status.Error(codes.Unavailable, "down")) {
		t.Fatalf("unavailable should retry")
	}
	if IsRetryableRPC(status.Error(codes.PermissionDenied, "no")) {
		t.Fatalf("permission denied should not retry")
	}
	if !IsRetryableRPC(context.DeadlineExceeded) {
		t.Fatalf("plain deadline should retry")
	}
	if IsRetryableRPC(errors.New("boom")) {
		t.Fatalf("plain error should not retry")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	t.Setenv("TEMPORAL_NAMESPACE", "")
	t.Setenv("TEMPORAL_TASK_QUEUE", "aid-q")
	cfg := LoadConfig()
	if cfg.Address != "" || cfg.Namespace != "studentaid" || cfg.TaskQueue != "aid-q" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
