package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studentaid-backend/internal/data/repos/applications"
	"github.com/yungbote/studentaid-backend/internal/data/repos/common"
	"github.com/yungbote/studentaid-backend/internal/data/repos/institutions"
	"github.com/yungbote/studentaid-backend/internal/data/repos/legacy"
	"github.com/yungbote/studentaid-backend/internal/data/repos/students"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
)

type StudentRepo = students.StudentRepo
type RestrictionRepo = students.RestrictionRepo
type StudentRestrictionRepo = students.StudentRestrictionRepo

type LocationRepo = institutions.LocationRepo
type ProgramRepo = institutions.ProgramRepo
type OfferingRepo = institutions.OfferingRepo

type ProgramYearRepo = applications.ProgramYearRepo
type ApplicationRepo = applications.ApplicationRepo
type AssessmentRepo = applications.AssessmentRepo
type ScholasticStandingRepo = applications.ScholasticStandingRepo
type OfferingChangeRequestRepo = applications.OfferingChangeRequestRepo

type NoteRepo = common.NoteRepo
type NotificationRepo = common.NotificationRepo
type SequenceRepo = common.SequenceRepo

type SFASRepo = legacy.SFASRepo

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return students.NewStudentRepo(db, baseLog)
}
func NewRestrictionRepo(db *gorm.DB, baseLog *logger.Logger) RestrictionRepo {
	return students.NewRestrictionRepo(db, baseLog)
}
func NewStudentRestrictionRepo(db *gorm.DB, baseLog *logger.Logger) StudentRestrictionRepo {
	return students.NewStudentRestrictionRepo(db, baseLog)
}

func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	return institutions.NewLocationRepo(db, baseLog)
}
func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return institutions.NewProgramRepo(db, baseLog)
}
func NewOfferingRepo(db *gorm.DB, baseLog *logger.Logger) OfferingRepo {
	return institutions.NewOfferingRepo(db, baseLog)
}

func NewProgramYearRepo(db *gorm.DB, baseLog *logger.Logger) ProgramYearRepo {
	return applications.NewProgramYearRepo(db, baseLog)
}
func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return applications.NewApplicationRepo(db, baseLog)
}
func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return applications.NewAssessmentRepo(db, baseLog)
}
func NewScholasticStandingRepo(db *gorm.DB, baseLog *logger.Logger) ScholasticStandingRepo {
	return applications.NewScholasticStandingRepo(db, baseLog)
}
func NewOfferingChangeRequestRepo(db *gorm.DB, baseLog *logger.Logger) OfferingChangeRequestRepo {
	return applications.NewOfferingChangeRequestRepo(db, baseLog)
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return common.NewNoteRepo(db, baseLog)
}
func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return common.NewNotificationRepo(db, baseLog)
}
func NewSequenceRepo(db *gorm.DB, baseLog *logger.Logger) SequenceRepo {
	return common.NewSequenceRepo(db, baseLog)
}

func NewSFASRepo(db *gorm.DB, baseLog *logger.Logger) SFASRepo {
	return legacy.NewSFASRepo(db, baseLog)
}

// Set bundles every repo over one database handle.
type Set struct {
	Students            StudentRepo
	Restrictions        RestrictionRepo
	StudentRestrictions StudentRestrictionRepo

	Locations LocationRepo
	Programs  ProgramRepo
	Offerings OfferingRepo

	ProgramYears    ProgramYearRepo
	Applications    ApplicationRepo
	Assessments     AssessmentRepo
	Standings       ScholasticStandingRepo
	OfferingChanges OfferingChangeRequestRepo

	Notes         NoteRepo
	Notifications NotificationRepo
	Sequences     SequenceRepo

	SFAS SFASRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) *Set {
	return &Set{
		Students:            NewStudentRepo(db, baseLog),
		Restrictions:        NewRestrictionRepo(db, baseLog),
		StudentRestrictions: NewStudentRestrictionRepo(db, baseLog),

		Locations: NewLocationRepo(db, baseLog),
		Programs:  NewProgramRepo(db, baseLog),
		Offerings: NewOfferingRepo(db, baseLog),

		ProgramYears:    NewProgramYearRepo(db, baseLog),
		Applications:    NewApplicationRepo(db, baseLog),
		Assessments:     NewAssessmentRepo(db, baseLog),
		Standings:       NewScholasticStandingRepo(db, baseLog),
		OfferingChanges: NewOfferingChangeRequestRepo(db, baseLog),

		Notes:         NewNoteRepo(db, baseLog),
		Notifications: NewNotificationRepo(db, baseLog),
		Sequences:     NewSequenceRepo(db, baseLog),

		SFAS: NewSFASRepo(db, baseLog),
	}
}
