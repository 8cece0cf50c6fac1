package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/studentaid-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations    []OperationEvent
	Conflicts     []string
	Retries       []string
	Restrictions  []string
	Notifications []string
	Overlaps      []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{
		Name:     name,
		Status:   status,
		Duration: dur,
	})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

func (h *HooksRecorder) IncRestrictionCreated(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Restrictions = append(h.Restrictions, code)
}

func (h *HooksRecorder) IncNotificationQueued(messageType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Notifications = append(h.Notifications, messageType)
}

func (h *HooksRecorder) IncOverlapRejection(source string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Overlaps = append(h.Overlaps, source)
}

// Last returns the most recent operation event, or the zero value.
func (h *HooksRecorder) Last() OperationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Operations) == 0 {
		return OperationEvent{}
	}
	return h.Operations[len(h.Operations)-1]
}
