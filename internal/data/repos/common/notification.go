package common

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Notification) ([]*types.Notification, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Notification, error)
	ExistsByDedupeKey(dbc dbctx.Context, key string) (bool, error)
	// ListUndispatched returns rows created at or before createdBefore that still have
	// delivery attempts left, oldest first.
	ListUndispatched(dbc dbctx.Context, createdBefore time.Time, maxAttempts, limit int) ([]*types.Notification, error)
	MarkDispatched(dbc dbctx.Context, id uuid.UUID, at time.Time) error
	IncAttempts(dbc dbctx.Context, id uuid.UUID) error
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(dbc dbctx.Context, rows []*types.Notification) ([]*types.Notification, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Notification{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notificationRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Notification, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Notification
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) ExistsByDedupeKey(dbc dbctx.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Notification{}).
		Where("dedupe_key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *notificationRepo) ListUndispatched(dbc dbctx.Context, createdBefore time.Time, maxAttempts, limit int) ([]*types.Notification, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Notification
	q := t.WithContext(dbc.Ctx).
		Where("date_sent IS NULL AND created_at <= ?", createdBefore).
		Order("created_at ASC")
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) MarkDispatched(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Notification{}).
		Where("id = ? AND date_sent IS NULL", id).
		Update("date_sent", at).Error
}

func (r *notificationRepo) IncAttempts(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Notification{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
