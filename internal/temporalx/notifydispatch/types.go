package notifydispatch

import (
	"context"

	"github.com/google/uuid"
)

const (
	WorkflowName    = "notification_dispatch"
	ActivityDeliver = "notification_deliver"
)

// WorkflowID keys one dispatch workflow per notification, so a second publish of the same
// id is rejected by Temporal instead of sending twice.
func WorkflowID(notificationID uuid.UUID) string {
	return "notification-" + notificationID.String()
}

// DeliverResult reports what one delivery attempt did.
type DeliverResult struct {
	NotificationID string `json:"notification_id"`
	Delivered      bool   `json:"delivered"`
	// Skipped is set when the row is gone or was already dispatched.
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Deliverer sends one persisted notification and marks it dispatched.
type Deliverer interface {
	Deliver(ctx context.Context, notificationID uuid.UUID) (DeliverResult, error)
}
