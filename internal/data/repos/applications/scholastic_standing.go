package applications

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type ScholasticStandingRepo interface {
	Create(dbc dbctx.Context, rows []*types.ScholasticStanding) ([]*types.ScholasticStanding, error)
	GetByApplication(dbc dbctx.Context, applicationID uuid.UUID) (*types.ScholasticStanding, error)
	// SumUnsuccessfulWeeks totals unsuccessful weeks over the student's reports of one intensity.
	SumUnsuccessfulWeeks(dbc dbctx.Context, studentID uuid.UUID, intensity string) (int, error)
}

type scholasticStandingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScholasticStandingRepo(db *gorm.DB, baseLog *logger.Logger) ScholasticStandingRepo {
	return &scholasticStandingRepo{db: db, log: baseLog.With("repo", "ScholasticStandingRepo")}
}

func (r *scholasticStandingRepo) Create(dbc dbctx.Context, rows []*types.ScholasticStanding) ([]*types.ScholasticStanding, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ScholasticStanding{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *scholasticStandingRepo) GetByApplication(dbc dbctx.Context, applicationID uuid.UUID) (*types.ScholasticStanding, error) {
	if applicationID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ScholasticStanding
	if err := t.WithContext(dbc.Ctx).
		Where("application_id = ?", applicationID).
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

func (r *scholasticStandingRepo) SumUnsuccessfulWeeks(dbc dbctx.Context, studentID uuid.UUID, intensity string) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var total int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.ScholasticStanding{}).
		Select("COALESCE(SUM(unsuccessful_weeks), 0)").
		Where("student_id = ? AND offering_intensity = ?", studentID, intensity).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}
