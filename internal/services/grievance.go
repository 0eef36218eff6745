package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/pkg/response"
	"gorm.io/gorm"
)

// GrievanceService handles submission and retrieval. Lifecycle transitions
// live in LifecycleService.
type GrievanceService struct {
	db *gorm.DB
}

func NewGrievanceService(db *gorm.DB) *GrievanceService {
	return &GrievanceService{db: db}
}

type CreateGrievanceRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	ImagePath   string   `json:"image_path"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Create records a new citizen submission. Every grievance starts with both
// axes at PENDING.
func (s *GrievanceService) Create(citizenID uint, req *CreateGrievanceRequest) (*models.Grievance, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, response.NewBadRequest("title is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, response.NewBadRequest("category is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return nil, response.NewBadRequest("location is required")
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, response.NewBadRequest("latitude and longitude must be provided together")
	}

	grievance := &models.Grievance{
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Category:           req.Category,
		Location:           req.Location,
		ImagePath:          req.ImagePath,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Status:             models.StatusPending,
		VerificationStatus: models.VerificationPending,
		CitizenID:          citizenID,
	}

	if err := s.db.Create(grievance).Error; err != nil {
		return nil, err
	}

	LogInfo("Grievance", "Create", fmt.Sprintf("grievance %d submitted", grievance.ID), &citizenID, "", "", map[string]interface{}{
		"category": grievance.Category,
		"location": grievance.Location,
	})
	Notify(NewNotifyTask(grievance.ID, citizenID, "submitted", grievance.Category))
	return grievance, nil
}

// GetByID loads a grievance with its citizen and assigned officer.
func (s *GrievanceService) GetByID(id uint) (*models.Grievance, error) {
	var grievance models.Grievance
	err := s.db.Preload("Citizen").Preload("AssignedOfficer").First(&grievance, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("grievance not found")
		}
		return nil, err
	}
	return &grievance, nil
}

type ListGrievancesRequest struct {
	Status    string `form:"status"`
	Category  string `form:"category"`
	Location  string `form:"location"`
	CitizenID uint   `form:"citizen_id"`
	OfficerID uint   `form:"officer_id"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

type ListGrievancesResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.Grievance `json:"items"`
}

// List returns grievances matching the filters, newest first, paginated.
// An unknown status literal is rejected rather than silently matching nothing.
func (s *GrievanceService) List(req *ListGrievancesRequest) (*ListGrievancesResponse, error) {
	if req.Status != "" && !models.ValidStatus(req.Status) {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid status: %s", req.Status))
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Grievance{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Location != "" {
		query = query.Where("location = ?", req.Location)
	}
	if req.CitizenID != 0 {
		query = query.Where("citizen_id = ?", req.CitizenID)
	}
	if req.OfficerID != 0 {
		query = query.Where("assigned_officer_id = ?", req.OfficerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var grievances []models.Grievance
	offset := (req.Page - 1) * req.PageSize
	err := query.Preload("Citizen").Preload("AssignedOfficer").
		Offset(offset).Limit(req.PageSize).
		Order("created_at DESC, id DESC").
		Find(&grievances).Error
	if err != nil {
		return nil, err
	}

	return &ListGrievancesResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    grievances,
	}, nil
}

// ListByCitizen returns all grievances a citizen has submitted, newest first.
func (s *GrievanceService) ListByCitizen(citizenID uint) ([]models.Grievance, error) {
	var grievances []models.Grievance
	err := s.db.Where("citizen_id = ?", citizenID).
		Preload("AssignedOfficer").
		Order("created_at DESC, id DESC").
		Find(&grievances).Error
	return grievances, err
}

// ListByOfficer returns the grievances currently assigned to an officer.
func (s *GrievanceService) ListByOfficer(officerID uint) ([]models.Grievance, error) {
	var grievances []models.Grievance
	err := s.db.Where("assigned_officer_id = ?", officerID).
		Preload("Citizen").
		Order("created_at DESC, id DESC").
		Find(&grievances).Error
	return grievances, err
}

// UpdateRemarks lets the assigned officer record working notes.
func (s *GrievanceService) UpdateRemarks(id, officerID uint, remarks string) (*models.Grievance, error) {
	var grievance models.Grievance
	if err := s.db.First(&grievance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("grievance not found")
		}
		return nil, err
	}

	if grievance.AssignedOfficerID == nil || *grievance.AssignedOfficerID != officerID {
		return nil, response.NewForbidden("grievance is not assigned to you")
	}

	grievance.OfficerRemarks = remarks
	if err := s.db.Save(&grievance).Error; err != nil {
		return nil, err
	}
	return &grievance, nil
}

// Delete soft-deletes a grievance (admin only).
func (s *GrievanceService) Delete(id uint) error {
	result := s.db.Delete(&models.Grievance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("grievance not found")
	}
	return nil
}
