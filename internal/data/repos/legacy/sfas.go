package legacy

import (
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// Identity matches a student to imported legacy records.
type Identity struct {
	SIN       string
	BirthDate time.Time
	LastName  string
}

// SFASRepo reads the read-only data imported from the legacy aid system.
type SFASRepo interface {
	// HasFullTimeOverlap ignores withdrawn legacy applications.
	HasFullTimeOverlap(dbc dbctx.Context, who Identity, start, end time.Time) (bool, error)
	HasPartTimeOverlap(dbc dbctx.Context, who Identity, start, end time.Time) (bool, error)
}

type sfasRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSFASRepo(db *gorm.DB, baseLog *logger.Logger) SFASRepo {
	return &sfasRepo{db: db, log: baseLog.With("repo", "SFASRepo")}
}

func (r *sfasRepo) HasFullTimeOverlap(dbc dbctx.Context, who Identity, start, end time.Time) (bool, error) {
	return r.overlaps(dbc, &types.SFASApplication{}, "sfas_applications", who, start, end, "sfas_applications.withdrawal_date IS NULL")
}

func (r *sfasRepo) HasPartTimeOverlap(dbc dbctx.Context, who Identity, start, end time.Time) (bool, error) {
	return r.overlaps(dbc, &types.SFASPartTimeApplication{}, "sfas_part_time_applications", who, start, end, "")
}

func (r *sfasRepo) overlaps(dbc dbctx.Context, model any, table string, who Identity, start, end time.Time, extra string) (bool, error) {
	sin := strings.TrimSpace(who.SIN)
	if sin == "" {
		return false, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Model(model).
		Joins("JOIN sfas_individuals ON sfas_individuals.id = "+table+".individual_id").
		Where("sfas_individuals.sin = ?", sin).
		Where("sfas_individuals.birth_date = ?", dateOnly(who.BirthDate)).
		Where("LOWER(sfas_individuals.last_name) = ?", strings.ToLower(strings.TrimSpace(who.LastName))).
		Where(table+".start_date <= ? AND "+table+".end_date >= ?", dateOnly(end), dateOnly(start))
	if extra != "" {
		q = q.Where(extra)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
