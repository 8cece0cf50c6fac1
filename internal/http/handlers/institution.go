package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/http/response"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/services"
)

// InstitutionHandler serves the institution portal, scoped to the token's location.
type InstitutionHandler struct {
	log       *logger.Logger
	apps      services.ApplicationService
	offerings services.OfferingChangeService
}

func NewInstitutionHandler(log *logger.Logger, apps services.ApplicationService, offerings services.OfferingChangeService) *InstitutionHandler {
	return &InstitutionHandler{log: log.With("handler", "InstitutionHandler"), apps: apps, offerings: offerings}
}

type completePIRRequest struct {
	OfferingID uuid.UUID `json:"offering_id" binding:"required"`
}

// POST /api/institutions/applications/:id/program-info/complete
func (h *InstitutionHandler) CompleteProgramInfoRequest(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req completePIRRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.CompleteProgramInfoRequest(c.Request.Context(), domainagg.CompleteProgramInfoInput{
		LocationID:    rd.LocationID,
		ApplicationID: appID,
		OfferingID:    req.OfferingID,
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "complete_program_info_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

type denyPIRRequest struct {
	ReasonID    int    `json:"reason_id" binding:"required"`
	OtherReason string `json:"other_reason"`
}

// POST /api/institutions/applications/:id/program-info/deny
func (h *InstitutionHandler) DenyProgramInfoRequest(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req denyPIRRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.DenyProgramInfoRequest(c.Request.Context(), domainagg.DenyProgramInfoInput{
		LocationID:    rd.LocationID,
		ApplicationID: appID,
		ReasonID:      req.ReasonID,
		OtherReason:   req.OtherReason,
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "deny_program_info_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

type studyBreakRequest struct {
	Start string `json:"break_start_date" binding:"required"`
	End   string `json:"break_end_date" binding:"required"`
}

type offeringChangeRequest struct {
	Name           string              `json:"offering_name"`
	StudyStartDate string              `json:"study_start_date" binding:"required"`
	StudyEndDate   string              `json:"study_end_date" binding:"required"`
	Breaks         []studyBreakRequest `json:"study_breaks"`
	Reason         string              `json:"reason" binding:"required"`
}

// POST /api/institutions/offerings/:id/change-requests
func (h *InstitutionHandler) RequestOfferingChange(c *gin.Context) {
	offeringID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req offeringChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := parseDate("study_start_date", req.StudyStartDate)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	end, err := parseDate("study_end_date", req.StudyEndDate)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	breaks := make([]domainagg.StudyBreakInput, 0, len(req.Breaks))
	for _, b := range req.Breaks {
		bs, err := parseDate("break_start_date", b.Start)
		if err != nil {
			response.RespondServiceError(c, "invalid_request", err)
			return
		}
		be, err := parseDate("break_end_date", b.End)
		if err != nil {
			response.RespondServiceError(c, "invalid_request", err)
			return
		}
		breaks = append(breaks, domainagg.StudyBreakInput{Start: bs, End: be})
	}
	rd := requestData(c)
	res, err := h.offerings.RequestChange(c.Request.Context(), domainagg.RequestOfferingChangeInput{
		LocationID:     rd.LocationID,
		OfferingID:     offeringID,
		Name:           req.Name,
		StudyStartDate: start,
		StudyEndDate:   end,
		Breaks:         breaks,
		Reason:         req.Reason,
		UserID:         rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "request_offering_change_failed", err)
		return
	}
	parent := res.ParentOfferingID
	response.RespondOK(c, gin.H{"offering": offeringChangeResponse{
		OfferingID:          res.OfferingID,
		PrecedingOfferingID: res.PrecedingOfferingID,
		ParentOfferingID:    &parent,
		Status:              res.Status,
	}})
}

type scholasticStandingRequest struct {
	ChangeType        string          `json:"change_type" binding:"required"`
	UnsuccessfulWeeks int             `json:"number_of_unsuccessful_weeks"`
	NewStudyEndDate   *string         `json:"date_of_withdrawal"`
	Data              json.RawMessage `json:"data"`
	Note              string          `json:"note"`
}

// POST /api/institutions/applications/:id/scholastic-standings
func (h *InstitutionHandler) SaveScholasticStanding(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req scholasticStandingRequest
	if !bindJSON(c, &req) {
		return
	}
	endDate, err := parseOptionalDate("date_of_withdrawal", req.NewStudyEndDate)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	rd := requestData(c)
	res, err := h.apps.SaveScholasticStanding(c.Request.Context(), domainagg.SaveScholasticStandingInput{
		LocationID:        rd.LocationID,
		ApplicationID:     appID,
		ChangeType:        req.ChangeType,
		UnsuccessfulWeeks: req.UnsuccessfulWeeks,
		NewStudyEndDate:   endDate,
		Data:              rawOrEmpty(req.Data),
		Note:              req.Note,
		UserID:            rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "save_scholastic_standing_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"scholastic_standing": toScholasticStandingResponse(res)})
}

type applicationOfferingChangeRequest struct {
	RequestedOfferingID uuid.UUID `json:"requested_offering_id" binding:"required"`
	Reason              string    `json:"reason" binding:"required"`
}

// POST /api/institutions/applications/:id/offering-changes
func (h *InstitutionHandler) CreateApplicationOfferingChange(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req applicationOfferingChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.CreateApplicationOfferingChange(c.Request.Context(), domainagg.CreateApplicationOfferingChangeInput{
		LocationID:          rd.LocationID,
		ApplicationID:       appID,
		RequestedOfferingID: req.RequestedOfferingID,
		Reason:              req.Reason,
		UserID:              rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "create_offering_change_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"request": toApplicationOfferingChangeResponse(res)})
}
