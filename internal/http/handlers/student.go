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

// StudentHandler serves the student portal. The student id always comes from the token.
type StudentHandler struct {
	log  *logger.Logger
	apps services.ApplicationService
}

func NewStudentHandler(log *logger.Logger, apps services.ApplicationService) *StudentHandler {
	return &StudentHandler{log: log.With("handler", "StudentHandler"), apps: apps}
}

type applicationDataRequest struct {
	ProgramYearID uuid.UUID       `json:"program_year_id" binding:"required"`
	Data          json.RawMessage `json:"data"`
}

// POST /api/students/application-drafts
func (h *StudentHandler) CreateDraft(c *gin.Context) {
	var req applicationDataRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.SaveDraft(c.Request.Context(), domainagg.SaveDraftInput{
		StudentID:     rd.StudentID,
		ProgramYearID: req.ProgramYearID,
		Data:          rawOrEmpty(req.Data),
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "save_draft_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// PUT /api/students/application-drafts/:id
func (h *StudentHandler) UpdateDraft(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req applicationDataRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.SaveDraft(c.Request.Context(), domainagg.SaveDraftInput{
		StudentID:     rd.StudentID,
		ProgramYearID: req.ProgramYearID,
		ApplicationID: &appID,
		Data:          rawOrEmpty(req.Data),
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "save_draft_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// POST /api/students/applications/:id/submit
func (h *StudentHandler) Submit(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req applicationDataRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.Submit(c.Request.Context(), domainagg.SubmitApplicationInput{
		StudentID:     rd.StudentID,
		ApplicationID: appID,
		ProgramYearID: req.ProgramYearID,
		Data:          rawOrEmpty(req.Data),
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "submit_application_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// POST /api/students/applications/:id/cancel
func (h *StudentHandler) Cancel(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rd := requestData(c)
	res, err := h.apps.Cancel(c.Request.Context(), domainagg.CancelApplicationInput{
		StudentID:     rd.StudentID,
		ApplicationID: appID,
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "cancel_application_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// POST /api/students/applications/:id/change-requests
func (h *StudentHandler) SubmitChangeRequest(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req applicationDataRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.SubmitChangeRequest(c.Request.Context(), domainagg.SubmitChangeRequestInput{
		StudentID:     rd.StudentID,
		ApplicationID: appID,
		ProgramYearID: req.ProgramYearID,
		Data:          rawOrEmpty(req.Data),
		UserID:        rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "submit_change_request_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// POST /api/students/change-requests/:id/cancel
func (h *StudentHandler) CancelChangeRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rd := requestData(c)
	res, err := h.apps.CancelChangeRequest(c.Request.Context(), domainagg.CancelChangeRequestInput{
		StudentID:       rd.StudentID,
		ChangeRequestID: requestID,
		UserID:          rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "cancel_change_request_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// POST /api/students/assessments/:id/confirm
func (h *StudentHandler) ConfirmAssessment(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rd := requestData(c)
	res, err := h.apps.ConfirmAssessment(c.Request.Context(), domainagg.ConfirmAssessmentInput{
		StudentID:    rd.StudentID,
		AssessmentID: assessmentID,
		UserID:       rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "confirm_assessment_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

type respondOfferingChangeRequest struct {
	Consent *bool `json:"consent" binding:"required"`
}

// POST /api/students/application-offering-changes/:id/respond
func (h *StudentHandler) RespondOfferingChange(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req respondOfferingChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.RespondApplicationOfferingChange(c.Request.Context(), domainagg.RespondApplicationOfferingChangeInput{
		StudentID: rd.StudentID,
		RequestID: requestID,
		Consent:   *req.Consent,
		UserID:    rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "respond_offering_change_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"request": toApplicationOfferingChangeResponse(res)})
}
