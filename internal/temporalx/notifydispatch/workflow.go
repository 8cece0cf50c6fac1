package notifydispatch

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow delivers one notification. Delivery failures are retried by the activity retry
// policy; the committed aggregate write is never affected.
func Workflow(ctx workflow.Context, notificationID string) (DeliverResult, error) {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return DeliverResult{}, temporal.NewNonRetryableApplicationError("missing notification id", "invalid_input", nil)
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        5 * time.Minute,
			MaximumAttempts:        8,
			NonRetryableErrorTypes: []string{"invalid_input"},
		},
	})

	var out DeliverResult
	if err := workflow.ExecuteActivity(ctx, ActivityDeliver, notificationID).Get(ctx, &out); err != nil {
		return out, fmt.Errorf("notification %s: %w", notificationID, err)
	}
	workflow.GetLogger(ctx).Info("notification dispatch finished",
		"notification_id", notificationID, "delivered", out.Delivered, "skipped", out.Skipped)
	return out, nil
}
