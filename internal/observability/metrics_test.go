package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAggregateOperation("application.submit", "success", time.Millisecond)
	m.IncAggregateConflict("application.submit")
	m.IncRestrictionCreated("SSR")
	m.IncNotificationDispatch("temporal", "success")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("nil metrics handler: want=503 got=%d", rec.Code)
	}
}

func TestMetricsRecordsAggregateOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveAggregateOperation("application.submit", "success", 5*time.Millisecond)
	m.ObserveAggregateOperation("application.submit", "validation", 2*time.Millisecond)
	m.IncAggregateConflict("application.submit")
	m.IncRestrictionCreated("SINR")

	if got := testutil.ToFloat64(m.aggregateOps.WithLabelValues("application.submit", "success")); got != 1 {
		t.Fatalf("success ops: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("application.submit")); got != 1 {
		t.Fatalf("conflicts: want=1 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `studentaid_restrictions_created_total{code="SINR"} 1`) {
		t.Fatalf("exposition missing restriction counter:\n%s", body)
	}
}
