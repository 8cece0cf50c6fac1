package notifydispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type Activities struct {
	Log       *logger.Logger
	Deliverer Deliverer
}

func (a *Activities) Deliver(ctx context.Context, notificationID string) (DeliverResult, error) {
	res := DeliverResult{NotificationID: strings.TrimSpace(notificationID)}
	if a == nil || a.Deliverer == nil {
		return res, fmt.Errorf("notifydispatch: activity not configured")
	}
	id, err := uuid.Parse(res.NotificationID)
	if err != nil || id == uuid.Nil {
		return res, temporal.NewNonRetryableApplicationError("invalid notification id", "invalid_input", err)
	}
	out, err := a.Deliverer.Deliver(ctx, id)
	if err != nil {
		if a.Log != nil {
			a.Log.Warn("notification delivery failed", "notification_id", id, "error", err)
		}
		return res, err
	}
	out.NotificationID = res.NotificationID
	return out, nil
}
