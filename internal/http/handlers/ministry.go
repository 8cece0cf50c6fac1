package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/studentaid-backend/internal/domain/aggregates"
	"github.com/yungbote/studentaid-backend/internal/http/response"
	"github.com/yungbote/studentaid-backend/internal/platform/logger"
	"github.com/yungbote/studentaid-backend/internal/services"
)

// MinistryHandler serves the ministry (AEST) portal.
type MinistryHandler struct {
	log          *logger.Logger
	apps         services.ApplicationService
	offerings    services.OfferingChangeService
	restrictions services.RestrictionService
}

func NewMinistryHandler(log *logger.Logger, apps services.ApplicationService, offerings services.OfferingChangeService, restrictions services.RestrictionService) *MinistryHandler {
	return &MinistryHandler{
		log:          log.With("handler", "MinistryHandler"),
		apps:         apps,
		offerings:    offerings,
		restrictions: restrictions,
	}
}

type assessRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Note    string `json:"note" binding:"required"`
}

// POST /api/aest/offerings/:id/change-requests/assess
func (h *MinistryHandler) AssessOfferingChange(c *gin.Context) {
	offeringID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assessRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.offerings.AssessChange(c.Request.Context(), domainagg.AssessOfferingChangeInput{
		OfferingID: offeringID,
		Approve:    *req.Approve,
		Note:       req.Note,
		UserID:     rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "assess_offering_change_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"offering": offeringChangeResponse{
		OfferingID:               res.OfferingID,
		PrecedingOfferingID:      res.PrecedingOfferingID,
		Status:                   res.Status,
		ReassessedApplicationIDs: res.ReassessedApplicationIDs,
		CancelledApplicationIDs:  res.CancelledApplicationIDs,
	}})
}

// POST /api/aest/change-requests/:id/assess
func (h *MinistryHandler) AssessChangeRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assessRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.AssessChangeRequest(c.Request.Context(), domainagg.AssessChangeRequestInput{
		ChangeRequestID: requestID,
		Approve:         *req.Approve,
		Note:            req.Note,
		UserID:          rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "assess_change_request_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"application": toApplicationResponse(res)})
}

// POST /api/aest/application-offering-changes/:id/assess
func (h *MinistryHandler) AssessApplicationOfferingChange(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req assessRequest
	if !bindJSON(c, &req) {
		return
	}
	rd := requestData(c)
	res, err := h.apps.AssessApplicationOfferingChange(c.Request.Context(), domainagg.AssessApplicationOfferingChangeInput{
		RequestID: requestID,
		Approve:   *req.Approve,
		Note:      req.Note,
		UserID:    rd.UserID,
	})
	if err != nil {
		response.RespondServiceError(c, "assess_application_offering_change_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"request": toApplicationOfferingChangeResponse(res)})
}

type restrictionNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// POST /api/aest/students/:id/restrictions/:restrictionId/resolve
func (h *MinistryHandler) ResolveRestriction(c *gin.Context) {
	in, ok := h.restrictionInput(c)
	if !ok {
		return
	}
	res, err := h.restrictions.Resolve(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, "resolve_restriction_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"restriction": toRestrictionResponse(res)})
}

// DELETE /api/aest/students/:id/restrictions/:restrictionId
func (h *MinistryHandler) DeleteRestriction(c *gin.Context) {
	in, ok := h.restrictionInput(c)
	if !ok {
		return
	}
	res, err := h.restrictions.Delete(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, "delete_restriction_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"restriction": toRestrictionResponse(res)})
}

func (h *MinistryHandler) restrictionInput(c *gin.Context) (domainagg.ChangeRestrictionInput, bool) {
	studentID, ok := pathUUID(c, "id")
	if !ok {
		return domainagg.ChangeRestrictionInput{}, false
	}
	restrictionID, ok := pathUUID(c, "restrictionId")
	if !ok {
		return domainagg.ChangeRestrictionInput{}, false
	}
	var req restrictionNoteRequest
	if !bindJSON(c, &req) {
		return domainagg.ChangeRestrictionInput{}, false
	}
	return domainagg.ChangeRestrictionInput{
		StudentID:            studentID,
		StudentRestrictionID: restrictionID,
		Note:                 req.Note,
		UserID:               requestData(c).UserID,
	}, true
}
