package aggregates

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/aid/restrictions"
	"github.com/yungbote/studentaid-backend/internal/aid/rules"
	"github.com/yungbote/studentaid-backend/internal/data/repos"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

// RestrictionAssessor creates restrictions inside the caller's transaction. Every decision
// re-reads the student's restrictions right before inserting, so repeated calls never
// duplicate an active restriction.
type RestrictionAssessor struct {
	Students            repos.StudentRepo
	Catalogue           repos.RestrictionRepo
	StudentRestrictions repos.StudentRestrictionRepo
	Standings           repos.ScholasticStandingRepo
	Notifications       repos.NotificationRepo
	Rules               rules.Restrictions
	Log                 *logger.Logger
}

func NewRestrictionAssessor(r *repos.Set, rs rules.Restrictions, baseLog *logger.Logger) *RestrictionAssessor {
	return &RestrictionAssessor{
		Students:            r.Students,
		Catalogue:           r.Restrictions,
		StudentRestrictions: r.StudentRestrictions,
		Standings:           r.Standings,
		Notifications:       r.Notifications,
		Rules:               rs,
		Log:                 baseLog.With("component", "RestrictionAssessor"),
	}
}

// AssessSIN runs whenever an offering is bound to an assessment.
func (a *RestrictionAssessor) AssessSIN(dbc dbctx.Context, studentID uuid.UUID, studyEnd time.Time, applicationID *uuid.UUID, userID uuid.UUID, now time.Time, fx *effects) error {
	student, err := a.Students.GetByID(dbc, studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return InvariantError(fmt.Sprintf("student %s missing while assessing SIN restriction", studentID))
	}
	active, err := a.StudentRestrictions.CountByCodes(dbc, studentID, []string{a.Rules.SIN}, true)
	if err != nil {
		return err
	}
	if !restrictions.DecideSIN(student.SINValidation, studyEnd, active > 0) {
		return nil
	}
	return a.create(dbc, student, []string{a.Rules.SIN}, applicationID, userID, "Temporary SIN expires before the end of the study period.", now, fx)
}

// AssessScholasticStanding escalates restrictions for a persisted report. The report must
// already be saved so that it counts towards the cumulative unsuccessful weeks.
func (a *RestrictionAssessor) AssessScholasticStanding(dbc dbctx.Context, standing *types.ScholasticStanding, userID uuid.UUID, now time.Time, fx *effects) ([]string, error) {
	if standing == nil {
		return nil, nil
	}
	var codes []string
	if institutions.OfferingIntensity(standing.Intensity) == institutions.OfferingIntensityPartTime {
		codes = restrictions.PartTimeBundle(standing.ChangeType, a.Rules)
	} else {
		if !standing.ChangeType.Withdrawal() && !standing.ChangeType.NonCompletion() {
			return nil, nil
		}
		in, err := a.fullTimeHistory(dbc, standing)
		if err != nil {
			return nil, err
		}
		codes = restrictions.DecideFullTime(in, a.Rules)
	}
	if len(codes) == 0 {
		return nil, nil
	}
	student, err := a.Students.GetByID(dbc, standing.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, InvariantError(fmt.Sprintf("student %s missing while assessing scholastic standing", standing.StudentID))
	}
	appID := standing.ApplicationID
	if err := a.create(dbc, student, codes, &appID, userID, string(standing.ChangeType), now, fx); err != nil {
		return nil, err
	}
	return codes, nil
}

func (a *RestrictionAssessor) fullTimeHistory(dbc dbctx.Context, standing *types.ScholasticStanding) (restrictions.FullTimeInput, error) {
	in := restrictions.FullTimeInput{ChangeType: standing.ChangeType}
	var err error
	if in.TotalUnsuccessfulWeeks, err = a.Standings.SumUnsuccessfulWeeks(dbc, standing.StudentID, string(institutions.OfferingIntensityFullTime)); err != nil {
		return in, err
	}
	stepUp, err := a.StudentRestrictions.CountByCodes(dbc, standing.StudentID, restrictions.StepUpCodes(a.Rules), false)
	if err != nil {
		return in, err
	}
	escalated, err := a.StudentRestrictions.CountByCodes(dbc, standing.StudentID, []string{a.Rules.StepUpEscalated}, true)
	if err != nil {
		return in, err
	}
	withdrawal, err := a.StudentRestrictions.CountByCodes(dbc, standing.StudentID, []string{a.Rules.Withdrawal}, true)
	if err != nil {
		return in, err
	}
	in.HasStepUp = stepUp > 0
	in.HasActiveEscalated = escalated > 0
	in.HasActiveWithdrawal = withdrawal > 0
	return in, nil
}

// create inserts one restriction per code, then one notification per restriction.
func (a *RestrictionAssessor) create(dbc dbctx.Context, student *types.Student, codes []string, applicationID *uuid.UUID, userID uuid.UUID, note string, now time.Time, fx *effects) error {
	catalogue, err := a.Catalogue.GetByCodes(dbc, codes)
	if err != nil {
		return err
	}
	rows := make([]*types.StudentRestriction, 0, len(codes))
	for _, code := range codes {
		entry := catalogue[code]
		if entry == nil {
			return InvariantError(fmt.Sprintf("restriction %q missing from catalogue", code))
		}
		rows = append(rows, &types.StudentRestriction{
			ID:            uuid.New(),
			StudentID:     student.ID,
			RestrictionID: entry.ID,
			ApplicationID: applicationID,
			IsActive:      true,
			CreationNote:  note,
			CreatedBy:     uuidPtr(userID),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	if _, err := a.StudentRestrictions.Create(dbc, rows); err != nil {
		return err
	}
	for i, row := range rows {
		err := queueNotification(dbc, a.Notifications, fx, notificationRow{
			MessageType: common.MessageStudentRestrictionAdded,
			UserID:      uuidPtr(student.UserID),
			Payload: map[string]any{
				"studentRestrictionId": row.ID.String(),
				"restrictionCode":      codes[i],
			},
			CreatedBy: userID,
		}, now)
		if err != nil {
			return err
		}
	}
	fx.restrictionCodes = append(fx.restrictionCodes, codes...)
	if a.Log != nil {
		a.Log.Info("restrictions created", "student_id", student.ID, "codes", codes)
	}
	return nil
}
