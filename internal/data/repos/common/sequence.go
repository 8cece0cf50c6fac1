package common

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// SequenceRepo issues strictly serialized counters. Next must run inside the caller's
// transaction: the row lock is held until commit, so concurrent callers queue behind it.
type SequenceRepo interface {
	Next(dbc dbctx.Context, name string) (int64, error)
}

type sequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSequenceRepo(db *gorm.DB, baseLog *logger.Logger) SequenceRepo {
	return &sequenceRepo{db: db, log: baseLog.With("repo", "SequenceRepo")}
}

func (r *sequenceRepo) Next(dbc dbctx.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("sequence name is required")
	}
	if dbc.Tx == nil {
		return 0, fmt.Errorf("sequence %q requires a transaction", name)
	}
	t := dbc.Tx.WithContext(dbc.Ctx)

	if err := t.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.SequenceControl{Name: name, Value: 0}).Error; err != nil {
		return 0, err
	}

	var row types.SequenceControl
	if err := t.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sequence_name = ?", name).
		Take(&row).Error; err != nil {
		return 0, err
	}
	next := row.Value + 1
	if err := t.Model(&types.SequenceControl{}).
		Where("sequence_name = ?", name).
		Update("sequence_number", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
