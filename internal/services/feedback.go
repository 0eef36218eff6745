package services

import (
	"errors"
	"math"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/pkg/response"
	"gorm.io/gorm"
)

// FeedbackService exposes the read paths and aggregate statistics over
// citizen feedback. Writes go through the lifecycle engine.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// GetByGrievance returns the single feedback for a grievance, if any.
func (s *FeedbackService) GetByGrievance(grievanceID uint) (*models.Feedback, error) {
	var feedback models.Feedback
	err := s.db.Where("grievance_id = ?", grievanceID).First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("no feedback for this grievance")
		}
		return nil, err
	}
	return &feedback, nil
}

// ListByUser returns all feedback submitted by a citizen.
func (s *FeedbackService) ListByUser(userID uint) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// ListAll returns all feedback, newest first, with grievance details.
func (s *FeedbackService) ListAll() ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.Preload("Grievance").Preload("User").
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// ListReopened returns feedback whose grievance was subsequently reopened.
func (s *FeedbackService) ListReopened() ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.Where("is_reopened = ?", true).
		Preload("Grievance").
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// Delete removes a feedback row (admin only).
func (s *FeedbackService) Delete(id uint) error {
	result := s.db.Delete(&models.Feedback{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("feedback not found")
	}
	return nil
}

// PendingFeedback returns resolved grievances that have no feedback yet,
// derived as a set difference rather than stored.
func (s *FeedbackService) PendingFeedback() ([]models.Grievance, error) {
	var resolved []models.Grievance
	if err := s.db.Where("status = ?", models.StatusResolved).
		Order("id").
		Find(&resolved).Error; err != nil {
		return nil, err
	}

	var withFeedback []uint
	if err := s.db.Model(&models.Feedback{}).Pluck("grievance_id", &withFeedback).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(withFeedback))
	for _, id := range withFeedback {
		seen[id] = true
	}

	pending := make([]models.Grievance, 0, len(resolved))
	for _, g := range resolved {
		if !seen[g.ID] {
			pending = append(pending, g)
		}
	}
	return pending, nil
}

// FeedbackStats aggregates satisfaction metrics for the admin dashboard.
type FeedbackStats struct {
	TotalFeedback      int64         `json:"total_feedback"`
	TotalResolved      int64         `json:"total_resolved"`
	PendingFeedback    int64         `json:"pending_feedback"`
	ReopenedCount      int64         `json:"reopened_count"`
	AverageRating      float64       `json:"average_rating"` // one decimal place
	FeedbackRate       int           `json:"feedback_rate"`  // percent, rounded
	RatingDistribution map[int]int64 `json:"rating_distribution"`
}

// Stats computes the feedback statistics from the current store snapshot.
// An empty store yields zeroed values, never an error.
func (s *FeedbackService) Stats() (*FeedbackStats, error) {
	var feedbacks []models.Feedback
	if err := s.db.Find(&feedbacks).Error; err != nil {
		return nil, err
	}

	stats := &FeedbackStats{
		TotalFeedback:      int64(len(feedbacks)),
		RatingDistribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var ratingSum int64
	for _, f := range feedbacks {
		stats.RatingDistribution[f.Rating]++
		ratingSum += int64(f.Rating)
		if f.IsReopened {
			stats.ReopenedCount++
		}
	}

	if len(feedbacks) > 0 {
		avg := float64(ratingSum) / float64(len(feedbacks))
		stats.AverageRating = math.Round(avg*10) / 10
	}

	if err := s.db.Model(&models.Grievance{}).
		Where("status = ?", models.StatusResolved).
		Count(&stats.TotalResolved).Error; err != nil {
		return nil, err
	}

	if stats.TotalResolved > 0 {
		rate := float64(stats.TotalFeedback) * 100 / float64(stats.TotalResolved)
		stats.FeedbackRate = int(math.Round(rate))
	}

	pending, err := s.PendingFeedback()
	if err != nil {
		return nil, err
	}
	stats.PendingFeedback = int64(len(pending))

	return stats, nil
}
