package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/http/response"
	"github.com/yungbote/studentaid-backend/internal/services"
)

// WorkflowHandler is called by the assessment workflow engine, not by people.
type WorkflowHandler struct {
	apps services.ApplicationService
}

func NewWorkflowHandler(apps services.ApplicationService) *WorkflowHandler {
	return &WorkflowHandler{apps: apps}
}

type transitionStatusRequest struct {
	From string `json:"from_status" binding:"required"`
	To   string `json:"to_status" binding:"required"`
}

// PATCH /api/workflow/applications/:id/status
func (h *WorkflowHandler) TransitionStatus(c *gin.Context) {
	appID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req transitionStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.apps.TransitionStatus(c.Request.Context(), domainagg.TransitionStatusInput{
		ApplicationID: appID,
		From:          req.From,
		To:            req.To,
		UserID:        requestData(c).UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "transition_status_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}
