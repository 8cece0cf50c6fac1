package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studentaid-backend/internal/aid/studyperiod"
	types "github.com/yungbote/studentaid-backend/internal/domain"
	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	appdomain "github.com/yungbote/studentaid-backend/internal/domain/applications"
	instdomain "github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/platform/dbctx"
)

var standingChangeTypes = map[appdomain.StandingChangeType]bool{
	appdomain.StandingWithdrewFromProgram:   true,
	appdomain.StandingDidNotCompleteProgram: true,
	appdomain.StandingCompletedEarly:        true,
	appdomain.StandingSchoolTransfer:        true,
}

func (a *applicationAggregate) SaveScholasticStanding(ctx context.Context, in domainagg.SaveScholasticStandingInput) (domainagg.ScholasticStandingResult, error) {
	const op = "Applications.Application.SaveScholasticStanding"
	var out domainagg.ScholasticStandingResult
	if in.LocationID == uuid.Nil || in.ApplicationID == uuid.Nil {
		return out, domainagg.Validation(op, "location_id and application_id are required")
	}
	if err := validateInput(op, in); err != nil {
		return out, err
	}
	changeType := appdomain.StandingChangeType(in.ChangeType)
	if !standingChangeTypes[changeType] {
		return out, domainagg.Validation(op, fmt.Sprintf("unknown scholastic standing change type %q", in.ChangeType))
	}
	if changeType.ShortensStudy() && in.NewStudyEndDate == nil {
		return out, domainagg.Validation(op, "a new study end date is required for this change type")
	}
	if a.deps.Standings == nil || !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}
	submitted := datatypes.JSON(`{}`)
	if len(in.Data) > 0 {
		submitted = datatypes.JSON(in.Data)
	}

	fx := &effects{}
	err := executeWrite(ctx, a.deps.Base, op, fx, func(dbc dbctx.Context) error {
		app, err := a.lockForLocation(dbc, op, in.ApplicationID, in.LocationID)
		if err != nil {
			return err
		}
		if app.Status != appdomain.StatusCompleted {
			return domainagg.InvalidState(op, fmt.Sprintf("application is %s, not completed", app.Status))
		}
		existing, err := a.deps.Standings.GetByApplication(dbc, app.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.Validation(op, "a scholastic standing was already reported for this application")
		}
		_, off, err := a.currentOffering(dbc, op, app)
		if err != nil {
			return err
		}
		if in.NewStudyEndDate != nil && changeType.ShortensStudy() {
			end := *in.NewStudyEndDate
			if !end.After(off.StudyStartDate) || end.After(off.StudyEndDate) {
				return domainagg.Validation(op, "the new study end date must fall inside the offering's study period")
			}
		}

		now := a.now()
		standing := &types.ScholasticStanding{
			ID:                  uuid.New(),
			ApplicationID:       app.ID,
			StudentID:           app.StudentID,
			ChangeType:          changeType,
			Intensity:           string(off.Intensity),
			UnsuccessfulWeeks:   in.UnsuccessfulWeeks,
			ReferenceOfferingID: off.ID,
			SubmittedData:       submitted,
			Note:                in.Note,
			SubmittedBy:         in.UserID,
			SubmittedAt:         now,
			CreatedAt:           now,
		}
		if changeType.ShortensStudy() {
			end := *in.NewStudyEndDate
			standing.NewStudyEndDate = &end
		}
		if _, err := a.deps.Standings.Create(dbc, []*types.ScholasticStanding{standing}); err != nil {
			return err
		}
		out.ScholasticStandingID = standing.ID
		out.ApplicationID = app.ID

		if changeType.ShortensStudy() {
			adjusted, err := a.adjustedOffering(dbc, off, *standing.NewStudyEndDate, in.UserID)
			if err != nil {
				return err
			}
			asmt, err := a.createCurrentAssessment(dbc, app, newAssessment{
				trigger:              appdomain.TriggerScholasticStandingChange,
				offeringID:           &adjusted.ID,
				scholasticStandingID: &standing.ID,
				userID:               in.UserID,
			}, now)
			if err != nil {
				return err
			}
			out.AssessmentID = &asmt.ID
			out.AdjustedOfferingID = &adjusted.ID
		}

		codes, err := a.deps.Restrictions.AssessScholasticStanding(dbc, standing, in.UserID, now, fx)
		if err != nil {
			return err
		}
		out.RestrictionCodes = codes
		out.NotificationIDs = fx.ids()
		return nil
	})
	return out, err
}

// adjustedOffering copies off with the study period cut at newEnd. Breaks are recomputed
// without re-applying the funded-period validation.
func (a *applicationAggregate) adjustedOffering(dbc dbctx.Context, off *types.Offering, newEnd time.Time, userID uuid.UUID) (*types.Offering, error) {
	stored, err := off.Breaks()
	if err != nil {
		return nil, InvariantError(fmt.Sprintf("offering %s has unreadable study breaks: %v", off.ID, err))
	}
	breaks := make([]studyperiod.Break, 0, len(stored))
	for _, b := range stored {
		breaks = append(breaks, studyperiod.Break{Start: b.BreakStartDate, End: b.BreakEndDate})
	}
	res := studyperiod.Adjust(off.StudyStartDate, newEnd, breaks, a.deps.Rules.StudyPeriod)
	kept := make([]instdomain.StudyBreak, 0, len(res.Breaks))
	for _, b := range res.Breaks {
		kept = append(kept, instdomain.StudyBreak{BreakStartDate: b.Start, BreakEndDate: b.End})
	}
	encoded, err := instdomain.EncodeBreaks(kept)
	if err != nil {
		return nil, err
	}
	parent := off.ID
	if off.ParentOfferingID != nil {
		parent = *off.ParentOfferingID
	}
	preceding := off.ID
	now := a.now()
	row := &types.Offering{
		ID:                  uuid.New(),
		Name:                off.Name,
		ProgramID:           off.ProgramID,
		LocationID:          off.LocationID,
		ProgramYearID:       off.ProgramYearID,
		StudyStartDate:      off.StudyStartDate,
		StudyEndDate:        newEnd,
		StudyBreaks:         encoded,
		Intensity:           off.Intensity,
		Status:              instdomain.OfferingStatusApproved,
		Type:                instdomain.OfferingTypeScholasticStanding,
		ParentOfferingID:    &parent,
		PrecedingOfferingID: &preceding,
		SubmittedBy:         uuidPtr(userID),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := a.deps.Offerings.Create(dbc, []*types.Offering{row}); err != nil {
		return nil, err
	}
	a.deps.Base.Log.Debug("scholastic standing offering created",
		"offering_id", row.ID, "preceding_offering_id", off.ID, "funded_weeks", res.FundedWeeks)
	return row, nil
}
