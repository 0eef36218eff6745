package handlers

import (
	"github.com/civicrules/civicpulse/internal/middleware"
	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/internal/utils"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users      *services.UserService
	expireHour int
}

func NewAuthHandler(users *services.UserService, expireHour int) *AuthHandler {
	return &AuthHandler{users: users, expireHour: expireHour}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates by email and password and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, h.expireHour)
	if err != nil {
		response.ServerError(c, "failed to generate token")
		return
	}

	services.LogInfo("Auth", "Login", "user logged in: "+user.Email, &user.ID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Success(c, loginResponse{Token: token, User: user})
}

// Register creates a citizen account. Role and department in the request are
// ignored on the public endpoint; officers and admins are created by an admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req.Role = models.RoleCitizen
	req.Department = ""

	user, err := h.users.Register(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
