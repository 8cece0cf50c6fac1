package aggregates

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studentaid-backend/internal/data/repos"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

// effects collects what a write queued. It is reported only once the transaction commits;
// a rolled-back write leaves nothing to publish.
type effects struct {
	notificationIDs   []uuid.UUID
	notificationTypes []string
	restrictionCodes  []string
}

func (fx *effects) report(h Hooks) {
	for _, code := range fx.restrictionCodes {
		h.IncRestrictionCreated(code)
	}
	for _, mt := range fx.notificationTypes {
		h.IncNotificationQueued(mt)
	}
}

func (fx *effects) ids() []uuid.UUID {
	if fx == nil || len(fx.notificationIDs) == 0 {
		return nil
	}
	return append([]uuid.UUID(nil), fx.notificationIDs...)
}

type notificationRow struct {
	MessageType common.NotificationMessageType
	UserID      *uuid.UUID
	DedupeKey   string
	Payload     map[string]any
	CreatedBy   uuid.UUID
}

// queueNotification persists a notification in the caller's transaction. A non-empty
// dedupe key that already exists is a no-op.
func queueNotification(dbc dbctx.Context, repo repos.NotificationRepo, fx *effects, n notificationRow, now time.Time) error {
	if n.DedupeKey != "" {
		exists, err := repo.ExistsByDedupeKey(dbc, n.DedupeKey)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}
	payload := datatypes.JSON(`{}`)
	if n.Payload != nil {
		raw, err := json.Marshal(n.Payload)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(raw)
	}
	row := &types.Notification{
		ID:          uuid.New(),
		MessageType: n.MessageType,
		UserID:      n.UserID,
		DedupeKey:   n.DedupeKey,
		Payload:     payload,
		CreatedBy:   uuidPtr(n.CreatedBy),
		CreatedAt:   now,
	}
	if _, err := repo.Create(dbc, []*types.Notification{row}); err != nil {
		return err
	}
	fx.notificationIDs = append(fx.notificationIDs, row.ID)
	fx.notificationTypes = append(fx.notificationTypes, string(n.MessageType))
	return nil
}

func writeNote(dbc dbctx.Context, repo repos.NoteRepo, subject common.NoteSubject, subjectID uuid.UUID, noteType common.NoteType, text string, by uuid.UUID) error {
	_, err := repo.Create(dbc, []*types.Note{{
		SubjectType: subject,
		SubjectID:   subjectID,
		NoteType:    noteType,
		Description: text,
		CreatedBy:   uuidPtr(by),
	}})
	return err
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
