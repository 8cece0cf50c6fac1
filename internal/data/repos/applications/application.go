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

// OverlapCandidate is a live application of a student with its current offering dates.
// StudyStart/StudyEnd are nil while the offering is unresolved.
type OverlapCandidate struct {
	ApplicationID uuid.UUID
	PIRStatus     *string
	StudyStart    *time.Time
	StudyEnd      *time.Time
}

type ApplicationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Application) ([]*types.Application, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Application, error)
	// GetForStudent returns nil when the application does not belong to the student.
	GetForStudent(dbc dbctx.Context, id, studentID uuid.UUID) (*types.Application, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Application, error)
	GetDraftByStudent(dbc dbctx.Context, studentID uuid.UUID) (*types.Application, error)
	// CountByNumberAndStatus counts rows of an application-number chain in the given statuses.
	CountByNumberAndStatus(dbc dbctx.Context, number string, statuses []appdomain.Status) (int64, error)
	GetPendingChangeRequest(dbc dbctx.Context, precedingID uuid.UUID) (*types.Application, error)
	// ListByCurrentOffering returns live applications whose current assessment uses offeringID.
	ListByCurrentOffering(dbc dbctx.Context, offeringID uuid.UUID) ([]*types.Application, error)
	ListOverlapCandidates(dbc dbctx.Context, studentID uuid.UUID, excludeNumber string) ([]OverlapCandidate, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

// Statuses that never take part in overlap or offering-change impact.
var notLiveStatuses = []appdomain.Status{
	appdomain.StatusDraft,
	appdomain.StatusCancelled,
	appdomain.StatusOverwritten,
	appdomain.StatusEdited,
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) Create(dbc dbctx.Context, rows []*types.Application) ([]*types.Application, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Application{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *applicationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Application, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Application
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *applicationRepo) GetForStudent(dbc dbctx.Context, id, studentID uuid.UUID) (*types.Application, error) {
	if id == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Application
	if err := t.WithContext(dbc.Ctx).
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

func (r *applicationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Application, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Application
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

func (r *applicationRepo) GetDraftByStudent(dbc dbctx.Context, studentID uuid.UUID) (*types.Application, error) {
	if studentID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Application
	if err := t.WithContext(dbc.Ctx).
		Where("student_id = ? AND application_status = ?", studentID, appdomain.StatusDraft).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *applicationRepo) CountByNumberAndStatus(dbc dbctx.Context, number string, statuses []appdomain.Status) (int64, error) {
	if number == "" || len(statuses) == 0 {
		return 0, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Application{}).
		Where("application_number = ? AND application_status IN ?", number, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *applicationRepo) GetPendingChangeRequest(dbc dbctx.Context, precedingID uuid.UUID) (*types.Application, error) {
	if precedingID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Application
	if err := t.WithContext(dbc.Ctx).
		Where("preceding_application_id = ? AND change_request_status IN ?", precedingID, []appdomain.ChangeRequestStatus{
			appdomain.ChangeRequestInProgressWithStudent,
			appdomain.ChangeRequestInProgressWithSABC,
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

func (r *applicationRepo) ListByCurrentOffering(dbc dbctx.Context, offeringID uuid.UUID) ([]*types.Application, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Application
	if offeringID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Joins("JOIN student_assessments ON student_assessments.id = applications.current_assessment_id").
		Where("student_assessments.offering_id = ?", offeringID).
		Where("applications.application_status NOT IN ?", notLiveStatuses).
		Order("applications.created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) ListOverlapCandidates(dbc dbctx.Context, studentID uuid.UUID, excludeNumber string) ([]OverlapCandidate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []OverlapCandidate
	q := t.WithContext(dbc.Ctx).
		Table("applications").
		Select(`applications.id AS application_id,
			applications.pir_status AS pir_status,
			education_programs_offerings.study_start_date AS study_start,
			education_programs_offerings.study_end_date AS study_end`).
		Joins("LEFT JOIN student_assessments ON student_assessments.id = applications.current_assessment_id").
		Joins("LEFT JOIN education_programs_offerings ON education_programs_offerings.id = student_assessments.offering_id").
		Where("applications.student_id = ?", studentID).
		Where("applications.application_status NOT IN ?", notLiveStatuses)
	if excludeNumber != "" {
		q = q.Where("(applications.application_number IS NULL OR applications.application_number <> ?)", excludeNumber)
	}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Application{}).
		Where("id = ?", id).
		Updates(updates).Error
}
