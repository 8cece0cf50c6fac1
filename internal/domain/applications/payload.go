package applications

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studentaid-backend/internal/domain/institutions"
)

const payloadDateLayout = "2006-01-02"

// Payload is the dynamic form document with the fields the lifecycle reads promoted out.
// Everything else is carried verbatim in Raw for the forms subsystem.
type Payload struct {
	SelectedOffering *uuid.UUID
	SelectedProgram  *uuid.UUID
	SelectedLocation *uuid.UUID
	StudyStartDate   *time.Time
	StudyEndDate     *time.Time
	Intensity        institutions.OfferingIntensity
	Raw              map[string]any
}

// ParsePayload extracts the promoted fields from a raw form document.
func ParsePayload(raw json.RawMessage) (Payload, error) {
	p := Payload{Raw: map[string]any{}}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p.Raw); err != nil {
		return p, err
	}
	p.SelectedOffering = uuidField(p.Raw, "selectedOffering")
	p.SelectedProgram = uuidField(p.Raw, "selectedProgram")
	p.SelectedLocation = uuidField(p.Raw, "selectedLocation")
	p.StudyStartDate = dateField(p.Raw, "studystartDate", "studyStartDate")
	p.StudyEndDate = dateField(p.Raw, "studyendDate", "studyEndDate")
	if s, ok := p.Raw["howWillYouBeAttendingTheProgram"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "parttime", "part time", "part-time":
			p.Intensity = institutions.OfferingIntensityPartTime
		case "fulltime", "full time", "full-time":
			p.Intensity = institutions.OfferingIntensityFullTime
		}
	}
	return p, nil
}

// JSON returns the untouched document for the data column.
func (p Payload) JSON() (datatypes.JSON, error) {
	if p.Raw == nil {
		return datatypes.JSON(`{}`), nil
	}
	raw, err := json.Marshal(p.Raw)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func uuidField(m map[string]any, key string) *uuid.UUID {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

func dateField(m map[string]any, keys ...string) *time.Time {
	for _, key := range keys {
		s, ok := m[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		raw := strings.TrimSpace(s)
		if len(raw) > len(payloadDateLayout) {
			raw = raw[:len(payloadDateLayout)]
		}
		t, err := time.Parse(payloadDateLayout, raw)
		if err != nil {
			continue
		}
		return &t
	}
	return nil
}
