package students

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type RestrictionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Restriction) ([]*types.Restriction, error)
	// GetByCodes returns the catalogue entries keyed by code; unknown codes are absent.
	GetByCodes(dbc dbctx.Context, codes []string) (map[string]*types.Restriction, error)
}

type restrictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRestrictionRepo(db *gorm.DB, baseLog *logger.Logger) RestrictionRepo {
	return &restrictionRepo{db: db, log: baseLog.With("repo", "RestrictionRepo")}
}

func (r *restrictionRepo) Create(dbc dbctx.Context, rows []*types.Restriction) ([]*types.Restriction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Restriction{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *restrictionRepo) GetByCodes(dbc dbctx.Context, codes []string) (map[string]*types.Restriction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[string]*types.Restriction{}
	if len(codes) == 0 {
		return out, nil
	}
	var rows []*types.Restriction
	if err := t.WithContext(dbc.Ctx).Where("restriction_code IN ?", codes).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Code] = row
	}
	return out, nil
}

type StudentRestrictionRepo interface {
	Create(dbc dbctx.Context, rows []*types.StudentRestriction) ([]*types.StudentRestriction, error)
	GetForStudent(dbc dbctx.Context, id, studentID uuid.UUID) (*types.StudentRestriction, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID, activeOnly bool) ([]*types.StudentRestriction, error)
	// CountByCodes counts the student's restrictions with any of codes; soft-deleted rows never count.
	CountByCodes(dbc dbctx.Context, studentID uuid.UUID, codes []string, activeOnly bool) (int64, error)
	Resolve(dbc dbctx.Context, id uuid.UUID, note string, by uuid.UUID, at time.Time) (bool, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID, note string, by uuid.UUID, at time.Time) (bool, error)
}

type studentRestrictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRestrictionRepo(db *gorm.DB, baseLog *logger.Logger) StudentRestrictionRepo {
	return &studentRestrictionRepo{db: db, log: baseLog.With("repo", "StudentRestrictionRepo")}
}

func (r *studentRestrictionRepo) Create(dbc dbctx.Context, rows []*types.StudentRestriction) ([]*types.StudentRestriction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.StudentRestriction{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *studentRestrictionRepo) GetForStudent(dbc dbctx.Context, id, studentID uuid.UUID) (*types.StudentRestriction, error) {
	if id == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.StudentRestriction
	if err := t.WithContext(dbc.Ctx).
		Preload("Restriction").
		Where("id = ? AND student_id = ?", id, studentID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *studentRestrictionRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID, activeOnly bool) ([]*types.StudentRestriction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.StudentRestriction
	q := t.WithContext(dbc.Ctx).Preload("Restriction").Where("student_id = ?", studentID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *studentRestrictionRepo) CountByCodes(dbc dbctx.Context, studentID uuid.UUID, codes []string, activeOnly bool) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if studentID == uuid.Nil || len(codes) == 0 {
		return 0, nil
	}
	trimmed := make([]string, 0, len(codes))
	for _, c := range codes {
		trimmed = append(trimmed, strings.TrimSpace(c))
	}
	q := t.WithContext(dbc.Ctx).
		Model(&types.StudentRestriction{}).
		Joins("JOIN restrictions ON restrictions.id = student_restrictions.restriction_id").
		Where("student_restrictions.student_id = ? AND restrictions.restriction_code IN ?", studentID, trimmed)
	if activeOnly {
		q = q.Where("student_restrictions.is_active = ?", true)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Resolve deactivates an active restriction. It reports false when the row was not active.
func (r *studentRestrictionRepo) Resolve(dbc dbctx.Context, id uuid.UUID, note string, by uuid.UUID, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.StudentRestriction{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"is_active":       false,
			"resolution_note": note,
			"resolved_by":     by,
			"resolved_at":     at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete records the deletion audit fields, then soft deletes the row.
func (r *studentRestrictionRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID, note string, by uuid.UUID, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.StudentRestriction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":     false,
			"deletion_note": note,
			"deleted_by":    by,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.StudentRestriction{}).Error; err != nil {
		return false, err
	}
	return true, nil
}
