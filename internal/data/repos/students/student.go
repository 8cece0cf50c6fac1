package students

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type StudentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Student) ([]*types.Student, error)
	// GetByID preloads the latest SIN validation.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Student, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Student, error)
	CreateSINValidation(dbc dbctx.Context, row *types.SINValidation) error
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{db: db, log: baseLog.With("repo", "StudentRepo")}
}

func (r *studentRepo) Create(dbc dbctx.Context, rows []*types.Student) ([]*types.Student, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Student{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *studentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Student, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Student
	if err := t.WithContext(dbc.Ctx).
		Preload("SINValidation").
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *studentRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Student, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Student
	if err := t.WithContext(dbc.Ctx).
		Preload("SINValidation").
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// CreateSINValidation stores a validation and makes it the student's current one.
func (r *studentRepo) CreateSINValidation(dbc dbctx.Context, row *types.SINValidation) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Student{}).
		Where("id = ?", row.StudentID).
		Update("sin_validation_id", row.ID).Error
}
