package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/pkg/response"
	"gorm.io/gorm"
)

// LifecycleService enforces the grievance state machine. Status and
// verification status are independent axes: verification is the admin
// quality gate, status is the citizen-visible progress state. Every
// operation checks its guards before touching the store, so a failed
// call leaves the grievance untouched.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

func (s *LifecycleService) getGrievance(id uint) (*models.Grievance, error) {
	var grievance models.Grievance
	if err := s.db.First(&grievance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("grievance not found")
		}
		return nil, err
	}
	return &grievance, nil
}

// Verify applies the admin verification gate. Approval only moves the
// verification axis; rejection also pushes the grievance status to REJECTED
// and requires a reason.
func (s *LifecycleService) Verify(id uint, approved bool, reason string) (*models.Grievance, error) {
	grievance, err := s.getGrievance(id)
	if err != nil {
		return nil, err
	}

	if grievance.VerificationStatus != models.VerificationPending {
		return nil, response.NewPreconditionFailed("grievance has already been verified")
	}

	if approved {
		grievance.VerificationStatus = models.VerificationApproved
		grievance.VerificationReason = reason
	} else {
		if strings.TrimSpace(reason) == "" {
			return nil, response.NewBadRequest("rejection reason is required")
		}
		grievance.VerificationStatus = models.VerificationRejected
		grievance.RejectionReason = reason
		grievance.Status = models.StatusRejected
	}

	if err := s.db.Save(grievance).Error; err != nil {
		return nil, err
	}

	s.logTransition(grievance, "Verify", fmt.Sprintf("verification set to %s", grievance.VerificationStatus))
	Notify(NewNotifyTask(grievance.ID, grievance.CitizenID, "verified", grievance.VerificationStatus))
	return grievance, nil
}

// Assign hands a verified grievance to an officer and moves it IN_PROGRESS.
// Re-assigning overwrites any previous officer.
func (s *LifecycleService) Assign(id, officerID uint) (*models.Grievance, error) {
	grievance, err := s.getGrievance(id)
	if err != nil {
		return nil, err
	}

	if !grievance.IsVerified() {
		return nil, response.NewPreconditionFailed("cannot assign an unverified grievance")
	}

	var officer models.User
	if err := s.db.First(&officer, officerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("officer not found")
		}
		return nil, err
	}
	if !officer.IsOfficer() {
		return nil, response.NewBadRequest("assignee must have the OFFICER role")
	}
	if !officer.IsActive {
		return nil, response.NewBadRequest("officer account is inactive")
	}

	grievance.AssignedOfficerID = &officer.ID
	grievance.Department = officer.Department
	grievance.Status = models.StatusInProgress

	if err := s.db.Save(grievance).Error; err != nil {
		return nil, err
	}
	grievance.AssignedOfficer = &officer

	s.logTransition(grievance, "Assign", fmt.Sprintf("assigned to officer %d (%s)", officer.ID, officer.Department))
	Notify(NewNotifyTask(grievance.ID, grievance.CitizenID, "assigned", officer.FullName))
	return grievance, nil
}

// UpdateStatus moves the grievance to newStatus. CLOSED and REJECTED are
// terminal; reopening is the only way out of them. Transitioning into
// RESOLVED always restamps ResolvedAt, overwriting any previous value.
func (s *LifecycleService) UpdateStatus(id uint, newStatus string) (*models.Grievance, error) {
	if !models.ValidStatus(newStatus) {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid status: %s", newStatus))
	}

	grievance, err := s.getGrievance(id)
	if err != nil {
		return nil, err
	}

	if models.TerminalStatus(grievance.Status) {
		return nil, response.NewPreconditionFailed(
			fmt.Sprintf("cannot update a %s grievance", grievance.Status))
	}

	grievance.Status = newStatus
	if newStatus == models.StatusResolved {
		now := time.Now()
		grievance.ResolvedAt = &now
	}

	if err := s.db.Save(grievance).Error; err != nil {
		return nil, err
	}

	s.logTransition(grievance, "UpdateStatus", fmt.Sprintf("status set to %s", newStatus))
	Notify(NewNotifyTask(grievance.ID, grievance.CitizenID, "status_changed", newStatus))
	return grievance, nil
}

// SubmitFeedback records the citizen's post-resolution rating. The feedback
// row and the grievance's FeedbackSubmitted flag are written in one
// transaction.
func (s *LifecycleService) SubmitFeedback(grievanceID, userID uint, rating int, comment string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, response.NewBadRequest("rating must be between 1 and 5")
	}

	grievance, err := s.getGrievance(grievanceID)
	if err != nil {
		return nil, err
	}

	if !grievance.IsResolved() {
		return nil, response.NewPreconditionFailed("feedback can only be submitted for resolved grievances")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Feedback{}).Where("grievance_id = ?", grievanceID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("feedback already submitted for this grievance")
	}

	feedback := &models.Feedback{
		GrievanceID: grievanceID,
		UserID:      userID,
		Rating:      rating,
		Comment:     comment,
		IsReopened:  false,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(feedback).Error; err != nil {
			return err
		}
		grievance.FeedbackSubmitted = true
		return tx.Save(grievance).Error
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(grievance, "SubmitFeedback", fmt.Sprintf("rating %d submitted", rating))
	Notify(NewNotifyTask(grievance.ID, grievance.CitizenID, "feedback", fmt.Sprintf("rating=%d", rating)))
	return feedback, nil
}

// Reopen resets a grievance to the start of its lifecycle. Only the owning
// citizen may reopen. Both axes go back to PENDING so a reopened grievance
// cannot carry a stale APPROVED verification; ResolvedAt is cleared and any
// existing feedback is marked reopened in the same transaction.
func (s *LifecycleService) Reopen(grievanceID, requestingUserID uint, reason string) (*models.Grievance, error) {
	grievance, err := s.getGrievance(grievanceID)
	if err != nil {
		return nil, err
	}

	if grievance.CitizenID != requestingUserID {
		return nil, response.NewForbidden("only the owning citizen can reopen a grievance")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		grievance.Status = models.StatusPending
		grievance.VerificationStatus = models.VerificationPending
		grievance.FeedbackSubmitted = false
		grievance.ResolvedAt = nil
		grievance.ReopenReason = reason

		// Updates with a map so the zero values (false, nil) are written too
		if err := tx.Model(grievance).
			Updates(map[string]interface{}{
				"status":              grievance.Status,
				"verification_status": grievance.VerificationStatus,
				"feedback_submitted":  false,
				"resolved_at":         nil,
				"reopen_reason":       reason,
				"updated_at":          time.Now(),
			}).Error; err != nil {
			return err
		}

		var feedback models.Feedback
		err := tx.Where("grievance_id = ?", grievanceID).First(&feedback).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.Model(&feedback).Update("is_reopened", true).Error
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(grievance, "Reopen", "grievance reopened by citizen")
	Notify(NewNotifyTask(grievance.ID, grievance.CitizenID, "reopened", reason))
	return grievance, nil
}

func (s *LifecycleService) logTransition(g *models.Grievance, action, message string) {
	LogInfo("Lifecycle", action, message, nil, "", "", map[string]interface{}{
		"grievance_id":        g.ID,
		"status":              g.Status,
		"verification_status": g.VerificationStatus,
	})
}
