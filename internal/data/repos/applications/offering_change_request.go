package applications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type OfferingChangeRequestRepo interface {
	Create(dbc dbctx.Context, rows []*types.ApplicationOfferingChangeRequest) ([]*types.ApplicationOfferingChangeRequest, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ApplicationOfferingChangeRequest, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ApplicationOfferingChangeRequest, error)
	GetPendingByApplication(dbc dbctx.Context, applicationID uuid.UUID) (*types.ApplicationOfferingChangeRequest, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type offeringChangeRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfferingChangeRequestRepo(db *gorm.DB, baseLog *logger.Logger) OfferingChangeRequestRepo {
	return &offeringChangeRequestRepo{db: db, log: baseLog.With("repo", "OfferingChangeRequestRepo")}
}

func (r *offeringChangeRequestRepo) Create(dbc dbctx.Context, rows []*types.ApplicationOfferingChangeRequest) ([]*types.ApplicationOfferingChangeRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ApplicationOfferingChangeRequest{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *offeringChangeRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ApplicationOfferingChangeRequest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ApplicationOfferingChangeRequest
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offeringChangeRequestRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ApplicationOfferingChangeRequest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ApplicationOfferingChangeRequest
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offeringChangeRequestRepo) GetPendingByApplication(dbc dbctx.Context, applicationID uuid.UUID) (*types.ApplicationOfferingChangeRequest, error) {
	if applicationID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ApplicationOfferingChangeRequest
	if err := t.WithContext(dbc.Ctx).
		Where("application_id = ? AND application_offering_change_request_status IN ?", applicationID, []appdomain.OfferingChangeStatus{
			appdomain.OfferingChangeInProgressWithStudent,
			appdomain.OfferingChangeInProgressWithSABC,
		}).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offeringChangeRequestRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ApplicationOfferingChangeRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}
