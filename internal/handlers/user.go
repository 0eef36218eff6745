package handlers

import (
	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns users of a role (default CITIZEN), admin only.
func (h *UserHandler) List(c *gin.Context) {
	role := c.DefaultQuery("role", models.RoleCitizen)
	users, err := h.users.ListByRole(role, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// Officers returns officer accounts, optionally filtered by department.
// Used by the assignment screen.
func (h *UserHandler) Officers(c *gin.Context) {
	users, err := h.users.ListByRole(models.RoleOfficer, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

// Create registers an account with an explicit role (admin only).
func (h *UserHandler) Create(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Register(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive activates or deactivates an account (admin only).
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "active is required")
		return
	}

	user, err := h.users.SetActive(id, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
