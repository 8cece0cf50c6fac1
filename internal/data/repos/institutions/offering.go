package institutions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	instdomain "github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type OfferingRepo interface {
	Create(dbc dbctx.Context, rows []*types.Offering) ([]*types.Offering, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offering, error)
	// GetForLocation scopes the lookup to the acting institution location.
	GetForLocation(dbc dbctx.Context, id, locationID uuid.UUID) (*types.Offering, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Offering, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// GetPendingChange returns the change awaiting approval that precedes from id, if any.
	GetPendingChange(dbc dbctx.Context, precedingID uuid.UUID) (*types.Offering, error)
}

type offeringRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfferingRepo(db *gorm.DB, baseLog *logger.Logger) OfferingRepo {
	return &offeringRepo{db: db, log: baseLog.With("repo", "OfferingRepo")}
}

func (r *offeringRepo) Create(dbc dbctx.Context, rows []*types.Offering) ([]*types.Offering, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Offering{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *offeringRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offering, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Offering
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offeringRepo) GetForLocation(dbc dbctx.Context, id, locationID uuid.UUID) (*types.Offering, error) {
	if id == uuid.Nil || locationID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Offering
	if err := t.WithContext(dbc.Ctx).
		Where("id = ? AND location_id = ?", id, locationID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offeringRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Offering, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Offering
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

func (r *offeringRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Offering{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *offeringRepo) GetPendingChange(dbc dbctx.Context, precedingID uuid.UUID) (*types.Offering, error) {
	if precedingID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Offering
	if err := t.WithContext(dbc.Ctx).
		Where("preceding_offering_id = ? AND offering_status = ?", precedingID, instdomain.OfferingStatusChangeAwaitingApproval).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
