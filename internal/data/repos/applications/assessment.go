package applications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type AssessmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.StudentAssessment) ([]*types.StudentAssessment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StudentAssessment, error)
	ListByApplication(dbc dbctx.Context, applicationID uuid.UUID) ([]*types.StudentAssessment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(dbc dbctx.Context, rows []*types.StudentAssessment) ([]*types.StudentAssessment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.StudentAssessment{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assessmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StudentAssessment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.StudentAssessment
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *assessmentRepo) ListByApplication(dbc dbctx.Context, applicationID uuid.UUID) ([]*types.StudentAssessment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.StudentAssessment
	if applicationID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("application_id = ?", applicationID).
		Order("submitted_date ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.StudentAssessment{}).
		Where("id = ?", id).
		Updates(updates).Error
}
