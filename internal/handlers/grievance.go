package handlers

import (
	"strconv"

	"github.com/civicrules/civicpulse/internal/middleware"
	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/gin-gonic/gin"
)

type GrievanceHandler struct {
	grievances *services.GrievanceService
	lifecycle  *services.LifecycleService
}

func NewGrievanceHandler(grievances *services.GrievanceService, lifecycle *services.LifecycleService) *GrievanceHandler {
	return &GrievanceHandler{grievances: grievances, lifecycle: lifecycle}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// Create submits a new grievance for the authenticated citizen.
func (h *GrievanceHandler) Create(c *gin.Context) {
	var req services.CreateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grievance, err := h.grievances.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grievance)
}

// List returns grievances matching the query filters. Citizens only ever see
// their own submissions.
func (h *GrievanceHandler) List(c *gin.Context) {
	var req services.ListGrievancesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if middleware.GetRole(c) == models.RoleCitizen {
		req.CitizenID = middleware.GetUserID(c)
	}

	result, err := h.grievances.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns a single grievance with citizen and officer details.
func (h *GrievanceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	grievance, err := h.grievances.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if middleware.GetRole(c) == models.RoleCitizen && grievance.CitizenID != middleware.GetUserID(c) {
		response.Forbidden(c, "not your grievance")
		return
	}
	response.Success(c, grievance)
}

type verifyRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Verify applies the admin verification decision.
func (h *GrievanceHandler) Verify(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grievance, err := h.lifecycle.Verify(id, req.Approved, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grievance)
}

type assignRequest struct {
	OfficerID uint `json:"officer_id" binding:"required"`
}

// Assign hands the grievance to an officer.
func (h *GrievanceHandler) Assign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "officer_id is required")
		return
	}

	grievance, err := h.lifecycle.Assign(id, req.OfficerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grievance)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves the grievance to a new status. The route restricts this
// to officers and admins; citizens act through feedback and reopen instead.
func (h *GrievanceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	grievance, err := h.lifecycle.UpdateStatus(id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grievance)
}

type remarksRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

// UpdateRemarks records the assigned officer's working notes.
func (h *GrievanceHandler) UpdateRemarks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "remarks is required")
		return
	}

	grievance, err := h.grievances.UpdateRemarks(id, middleware.GetUserID(c), req.Remarks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grievance)
}

// Delete removes a grievance (admin only, soft delete).
func (h *GrievanceHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.grievances.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": id})
}
