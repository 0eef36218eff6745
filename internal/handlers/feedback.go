package handlers

import (
	"github.com/civicrules/civicpulse/internal/middleware"
	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedback  *services.FeedbackService
	lifecycle *services.LifecycleService
}

func NewFeedbackHandler(feedback *services.FeedbackService, lifecycle *services.LifecycleService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, lifecycle: lifecycle}
}

type submitFeedbackRequest struct {
	GrievanceID uint   `json:"grievance_id" binding:"required"`
	Rating      int    `json:"rating" binding:"required"`
	Comment     string `json:"comment"`
}

// Submit records the authenticated citizen's rating for a resolved grievance.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "grievance_id and rating are required")
		return
	}

	feedback, err := h.lifecycle.SubmitFeedback(req.GrievanceID, middleware.GetUserID(c), req.Rating, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

type reopenRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reopen resets the caller's grievance back to the start of its lifecycle.
func (h *FeedbackHandler) Reopen(c *gin.Context) {
	grievanceID, ok := parseIDParam(c, "grievanceId")
	if !ok {
		return
	}

	var req reopenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "reason is required")
		return
	}

	grievance, err := h.lifecycle.Reopen(grievanceID, middleware.GetUserID(c), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grievance)
}

// GetByGrievance returns the feedback attached to a grievance, if any.
func (h *FeedbackHandler) GetByGrievance(c *gin.Context) {
	grievanceID, ok := parseIDParam(c, "grievanceId")
	if !ok {
		return
	}

	feedback, err := h.feedback.GetByGrievance(grievanceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedback)
}

// ListByUser returns all feedback a citizen has submitted. Citizens can only
// read their own.
func (h *FeedbackHandler) ListByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if middleware.GetRole(c) == models.RoleCitizen && userID != middleware.GetUserID(c) {
		response.Forbidden(c, "cannot read another citizen's feedback")
		return
	}

	feedbacks, err := h.feedback.ListByUser(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedbacks)
}

// ListAll returns every feedback with grievance details (admin).
func (h *FeedbackHandler) ListAll(c *gin.Context) {
	feedbacks, err := h.feedback.ListAll()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedbacks)
}

// Pending returns resolved grievances still awaiting feedback (admin).
func (h *FeedbackHandler) Pending(c *gin.Context) {
	grievances, err := h.feedback.PendingFeedback()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grievances)
}

// Reopened returns feedback whose grievance was later reopened (admin).
func (h *FeedbackHandler) Reopened(c *gin.Context) {
	feedbacks, err := h.feedback.ListReopened()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedbacks)
}

// Stats returns the aggregate feedback statistics (admin).
func (h *FeedbackHandler) Stats(c *gin.Context) {
	stats, err := h.feedback.Stats()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Delete removes a feedback row (admin).
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.feedback.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}
