package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/studentaid-backend/internal/observability"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
	IncRestrictionCreated(code string)
	IncNotificationQueued(messageType string)
	IncOverlapRejection(source string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
func (noopHooks) IncRestrictionCreated(string)                   {}
func (noopHooks) IncNotificationQueued(string)                   {}
func (noopHooks) IncOverlapRejection(string)                     {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates aggregate hooks backed by Prometheus metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *observabilityHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}

func (h *observabilityHooks) IncRestrictionCreated(code string) {
	h.metrics.IncRestrictionCreated(code)
}

func (h *observabilityHooks) IncNotificationQueued(messageType string) {
	h.metrics.IncNotificationQueued(messageType)
}

func (h *observabilityHooks) IncOverlapRejection(source string) {
	h.metrics.IncOverlapRejection(source)
}
