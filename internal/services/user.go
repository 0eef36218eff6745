package services

import (
	"errors"
	"strings"
	"time"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/internal/utils"
	"github.com/civicrules/civicpulse/pkg/response"
	"gorm.io/gorm"
)

// UserService covers registration, authentication lookups, and the admin
// user-management operations.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func validRole(role string) bool {
	switch role {
	case models.RoleCitizen, models.RoleOfficer, models.RoleAdmin:
		return true
	}
	return false
}

// Register creates a new account. Role defaults to CITIZEN; officer and
// admin accounts are created by an admin through the same path.
func (s *UserService) Register(req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, response.NewBadRequest("email is required")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCitizen
	}
	if !validRole(role) {
		return nil, response.NewBadRequest("invalid role: " + req.Role)
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("email already registered")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:   req.FullName,
		Email:      email,
		Password:   hashed,
		Role:       role,
		Department: req.Department,
		IsActive:   true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	LogInfo("User", "Register", "account created: "+email, &user.ID, "", "", map[string]interface{}{"role": role})
	return user, nil
}

// Authenticate checks credentials and returns the user on success. Inactive
// accounts cannot log in.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, response.NewForbidden("account is deactivated")
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Model(&user).Update("last_login", now)

	return &user, nil
}

// GetByID loads a user.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// ListByRole returns users with the given role, optionally filtered to a
// department. Used by the admin assignment screen to list officers.
func (s *UserService) ListByRole(role, department string) ([]models.User, error) {
	if !validRole(role) {
		return nil, response.NewBadRequest("invalid role: " + role)
	}

	query := s.db.Where("role = ?", role)
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var users []models.User
	err := query.Order("full_name").Find(&users).Error
	return users, err
}

// SetActive activates or deactivates an account. Deactivated officers keep
// their existing assignments but cannot receive new ones.
func (s *UserService) SetActive(id uint, active bool) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.db.Model(user).Update("is_active", active).Error; err != nil {
		return nil, err
	}

	action := "Deactivate"
	if active {
		action = "Activate"
	}
	LogInfo("User", action, "account state changed: "+user.Email, &user.ID, "", "", nil)
	return user, nil
}
