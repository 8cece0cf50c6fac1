package handlers

import (
	"time"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
)

type applicationResponse struct {
	ApplicationID         uuid.UUID  `json:"application_id"`
	ApplicationNumber     string     `json:"application_number,omitempty"`
	Status                string     `json:"status"`
	PIRStatus             string     `json:"pir_status,omitempty"`
	CurrentAssessmentID   *uuid.UUID `json:"current_assessment_id,omitempty"`
	ReplacedApplicationID *uuid.UUID `json:"replaced_application_id,omitempty"`
	ChangeRequestStatus   string     `json:"change_request_status,omitempty"`
}

func toApplicationResponse(res domainagg.ApplicationResult) applicationResponse {
	return applicationResponse{
		ApplicationID:         res.ApplicationID,
		ApplicationNumber:     res.ApplicationNumber,
		Status:                res.Status,
		PIRStatus:             res.PIRStatus,
		CurrentAssessmentID:   res.CurrentAssessmentID,
		ReplacedApplicationID: res.ReplacedApplicationID,
		ChangeRequestStatus:   res.ChangeRequestStatus,
	}
}

type scholasticStandingResponse struct {
	ScholasticStandingID uuid.UUID  `json:"scholastic_standing_id"`
	ApplicationID        uuid.UUID  `json:"application_id"`
	AssessmentID         *uuid.UUID `json:"assessment_id,omitempty"`
	AdjustedOfferingID   *uuid.UUID `json:"adjusted_offering_id,omitempty"`
	RestrictionCodes     []string   `json:"restriction_codes"`
}

func toScholasticStandingResponse(res domainagg.ScholasticStandingResult) scholasticStandingResponse {
	codes := res.RestrictionCodes
	if codes == nil {
		codes = []string{}
	}
	return scholasticStandingResponse{
		ScholasticStandingID: res.ScholasticStandingID,
		ApplicationID:        res.ApplicationID,
		AssessmentID:         res.AssessmentID,
		AdjustedOfferingID:   res.AdjustedOfferingID,
		RestrictionCodes:     codes,
	}
}

type applicationOfferingChangeResponse struct {
	RequestID     uuid.UUID  `json:"request_id"`
	ApplicationID uuid.UUID  `json:"application_id"`
	Status        string     `json:"status"`
	AssessmentID  *uuid.UUID `json:"assessment_id,omitempty"`
}

func toApplicationOfferingChangeResponse(res domainagg.ApplicationOfferingChangeResult) applicationOfferingChangeResponse {
	return applicationOfferingChangeResponse{
		RequestID:     res.RequestID,
		ApplicationID: res.ApplicationID,
		Status:        res.Status,
		AssessmentID:  res.AssessmentID,
	}
}

type offeringChangeResponse struct {
	OfferingID               uuid.UUID   `json:"offering_id"`
	PrecedingOfferingID      uuid.UUID   `json:"preceding_offering_id"`
	ParentOfferingID         *uuid.UUID  `json:"parent_offering_id,omitempty"`
	Status                   string      `json:"status"`
	ReassessedApplicationIDs []uuid.UUID `json:"reassessed_application_ids,omitempty"`
	CancelledApplicationIDs  []uuid.UUID `json:"cancelled_application_ids,omitempty"`
}

type restrictionResponse struct {
	StudentRestrictionID uuid.UUID `json:"student_restriction_id"`
	IsActive             bool      `json:"is_active"`
	ChangedAt            time.Time `json:"changed_at"`
}

func toRestrictionResponse(res domainagg.RestrictionResult) restrictionResponse {
	return restrictionResponse{
		StudentRestrictionID: res.StudentRestrictionID,
		IsActive:             res.IsActive,
		ChangedAt:            res.ChangedAt,
	}
}
