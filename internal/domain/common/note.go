package common

import (
	"time"

	"github.com/google/uuid"
)

type NoteSubject string

const (
	NoteSubjectStudent     NoteSubject = "student"
	NoteSubjectInstitution NoteSubject = "institution"
)

type NoteType string

const (
	NoteTypeGeneral     NoteType = "General"
	NoteTypeRestriction NoteType = "Restriction"
	NoteTypeProgram     NoteType = "Program"
	NoteTypeApplication NoteType = "Application"
)

// Note is an audit note attached to a student or institution.
type Note struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SubjectType NoteSubject `gorm:"column:subject_type;not null;index:idx_note_subject,priority:1" json:"subject_type"`
	SubjectID   uuid.UUID   `gorm:"type:uuid;column:subject_id;not null;index:idx_note_subject,priority:2" json:"subject_id"`
	NoteType    NoteType    `gorm:"column:note_type;not null" json:"note_type"`
	Description string      `gorm:"column:description;not null" json:"description"`

	CreatedBy *uuid.UUID `gorm:"type:uuid;column:creator" json:"creator,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (Note) TableName() string { return "notes" }
