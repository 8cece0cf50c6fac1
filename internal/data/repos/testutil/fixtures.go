package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/studentaid-backend/internal/domain"
	"github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/domain/students"
)

// Date parses a YYYY-MM-DD literal as a UTC date.
func Date(tb testing.TB, s string) time.Time {
	tb.Helper()
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		tb.Fatalf("parse date %q: %v", s, err)
	}
	return t
}

func SeedStudent(tb testing.TB, ctx context.Context, tx *gorm.DB, lastName string) *types.Student {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.Student{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		FirstName: "Sam",
		LastName:  lastName,
		BirthDate: time.Date(2000, 2, 14, 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

// SeedSINValidation attaches a SIN validation to the student and makes it current.
func SeedSINValidation(tb testing.TB, ctx context.Context, tx *gorm.DB, s *types.Student, sin string, temporary bool, expiry *time.Time) *types.SINValidation {
	tb.Helper()
	v := &types.SINValidation{
		ID:            uuid.New(),
		StudentID:     s.ID,
		SIN:           sin,
		TemporarySIN:  temporary,
		SINExpiryDate: expiry,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed sin validation: %v", err)
	}
	if err := tx.WithContext(ctx).Model(&types.Student{}).Where("id = ?", s.ID).Update("sin_validation_id", v.ID).Error; err != nil {
		tb.Fatalf("link sin validation: %v", err)
	}
	s.SINValidationID = &v.ID
	s.SINValidation = v
	return v
}

// SeedRestrictionCatalogue inserts one catalogue entry per code.
func SeedRestrictionCatalogue(tb testing.TB, ctx context.Context, tx *gorm.DB, codes ...string) map[string]*types.Restriction {
	tb.Helper()
	out := map[string]*types.Restriction{}
	for _, code := range codes {
		r := &types.Restriction{
			ID:              uuid.New(),
			Code:            code,
			Description:     code + " restriction",
			RestrictionType: students.RestrictionTypeProvincial,
			CreatedAt:       time.Now().UTC(),
		}
		if err := tx.WithContext(ctx).Create(r).Error; err != nil {
			tb.Fatalf("seed restriction %s: %v", code, err)
		}
		out[code] = r
	}
	return out
}

func SeedProgramYear(tb testing.TB, ctx context.Context, tx *gorm.DB, prefix string) *types.ProgramYear {
	tb.Helper()
	py := &types.ProgramYear{
		ID:        uuid.New(),
		Prefix:    prefix,
		Label:     prefix,
		StartDate: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(py).Error; err != nil {
		tb.Fatalf("seed program year: %v", err)
	}
	return py
}

func SeedLocation(tb testing.TB, ctx context.Context, tx *gorm.DB, designated bool) *types.Location {
	tb.Helper()
	now := time.Now().UTC()
	l := &types.Location{
		ID:            uuid.New(),
		InstitutionID: uuid.New(),
		Name:          "Main campus",
		IsDesignated:  designated,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed location: %v", err)
	}
	return l
}

func SeedProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, institutionID uuid.UUID, effectiveEnd *time.Time) *types.EducationProgram {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.EducationProgram{
		ID:               uuid.New(),
		InstitutionID:    institutionID,
		Name:             "Applied Science",
		IsActive:         true,
		EffectiveEndDate: effectiveEnd,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed program: %v", err)
	}
	return p
}

// SeedOffering creates an approved offering; breaks are start/end pairs.
func SeedOffering(tb testing.TB, ctx context.Context, tx *gorm.DB, programID, locationID uuid.UUID, intensity institutions.OfferingIntensity, start, end time.Time, breaks ...institutions.StudyBreak) *types.Offering {
	tb.Helper()
	raw, err := institutions.EncodeBreaks(breaks)
	if err != nil {
		tb.Fatalf("encode breaks: %v", err)
	}
	now := time.Now().UTC()
	o := &types.Offering{
		ID:             uuid.New(),
		Name:           "Fall intake",
		ProgramID:      programID,
		LocationID:     locationID,
		StudyStartDate: start,
		StudyEndDate:   end,
		StudyBreaks:    raw,
		Intensity:      intensity,
		Status:         institutions.OfferingStatusApproved,
		Type:           institutions.OfferingTypePublic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.ParentOfferingID = &o.ID
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed offering: %v", err)
	}
	return o
}

// SeedApplication inserts an application in the given status with an original assessment
// bound to offeringID (nil leaves the offering unresolved).
func SeedApplication(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, programYearID uuid.UUID, number string, status applications.Status, locationID, offeringID *uuid.UUID) (*types.Application, *types.StudentAssessment) {
	tb.Helper()
	now := time.Now().UTC()
	app := &types.Application{
		ID:              uuid.New(),
		ProgramYearID:   programYearID,
		StudentID:       studentID,
		LocationID:      locationID,
		Status:          status,
		StatusUpdatedAt: now,
		Data:            datatypes.JSON(`{}`),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if number != "" {
		n := number
		app.ApplicationNumber = &n
		app.SubmittedAt = &now
	}
	if err := tx.WithContext(ctx).Create(app).Error; err != nil {
		tb.Fatalf("seed application: %v", err)
	}
	if status == applications.StatusDraft {
		return app, nil
	}
	a := &types.StudentAssessment{
		ID:              uuid.New(),
		ApplicationID:   app.ID,
		TriggerType:     applications.TriggerOriginalAssessment,
		OfferingID:      offeringID,
		Status:          applications.AssessmentStatusPending,
		StatusUpdatedAt: now,
		SubmittedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == applications.StatusCompleted {
		a.Status = applications.AssessmentStatusCompleted
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	if err := tx.WithContext(ctx).Model(&types.Application{}).Where("id = ?", app.ID).Update("current_assessment_id", a.ID).Error; err != nil {
		tb.Fatalf("link assessment: %v", err)
	}
	app.CurrentAssessmentID = &a.ID
	return app, a
}
