package domain

import (
	"github.com/yungbote/studentaid-backend/internal/domain/applications"
	"github.com/yungbote/studentaid-backend/internal/domain/common"
	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
	"github.com/yungbote/studentaid-backend/internal/domain/legacy"
	"github.com/yungbote/studentaid-backend/internal/domain/students"
)

type Student = students.Student
type SINValidation = students.SINValidation
type Restriction = students.Restriction
type StudentRestriction = students.StudentRestriction

type Location = institutions.Location
type EducationProgram = institutions.EducationProgram
type Offering = institutions.Offering
type StudyBreak = institutions.StudyBreak

type ProgramYear = applications.ProgramYear
type Application = applications.Application
type StudentAssessment = applications.StudentAssessment
type ScholasticStanding = applications.ScholasticStanding
type ApplicationOfferingChangeRequest = applications.ApplicationOfferingChangeRequest

type Note = common.Note
type Notification = common.Notification
type SequenceControl = common.SequenceControl

type SFASIndividual = legacy.SFASIndividual
type SFASApplication = legacy.SFASApplication
type SFASPartTimeApplication = legacy.SFASPartTimeApplication

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&Student{},
		&SINValidation{},
		&Restriction{},
		&StudentRestriction{},

		&Location{},
		&EducationProgram{},
		&Offering{},

		&ProgramYear{},
		&Application{},
		&StudentAssessment{},
		&ScholasticStanding{},
		&ApplicationOfferingChangeRequest{},

		&Note{},
		&Notification{},
		&SequenceControl{},

		&SFASIndividual{},
		&SFASApplication{},
		&SFASPartTimeApplication{},
	}
}
