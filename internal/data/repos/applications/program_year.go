package applications

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type ProgramYearRepo interface {
	Create(dbc dbctx.Context, rows []*types.ProgramYear) ([]*types.ProgramYear, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProgramYear, error)
}

type programYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramYearRepo(db *gorm.DB, baseLog *logger.Logger) ProgramYearRepo {
	return &programYearRepo{db: db, log: baseLog.With("repo", "ProgramYearRepo")}
}

func (r *programYearRepo) Create(dbc dbctx.Context, rows []*types.ProgramYear) ([]*types.ProgramYear, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ProgramYear{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *programYearRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProgramYear, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ProgramYear
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
