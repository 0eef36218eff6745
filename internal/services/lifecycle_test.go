package services

import (
	"testing"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyApprove(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	got, err := svc.Verify(g.ID, true, "photo evidence checks out")
	require.NoError(t, err)

	assert.Equal(t, models.VerificationApproved, got.VerificationStatus)
	assert.Equal(t, models.StatusPending, got.Status, "approval must not move the status axis")
	assert.Equal(t, "photo evidence checks out", got.VerificationReason)
}

func TestVerifyReject(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	got, err := svc.Verify(g.ID, false, "duplicate of an existing report")
	require.NoError(t, err)

	assert.Equal(t, models.VerificationRejected, got.VerificationStatus)
	assert.Equal(t, models.StatusRejected, got.Status, "rejection pushes the grievance to REJECTED")
	assert.Equal(t, "duplicate of an existing report", got.RejectionReason)
}

func TestVerifyRejectRequiresReason(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.Verify(g.ID, false, "   ")
	assert.True(t, response.IsKind(err, 400), "blank rejection reason should be rejected, got %v", err)

	var fresh models.Grievance
	require.NoError(t, db.First(&fresh, g.ID).Error)
	assert.Equal(t, models.VerificationPending, fresh.VerificationStatus, "failed verify must leave the grievance untouched")
}

func TestVerifyOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.Verify(g.ID, true, "")
	require.NoError(t, err)

	_, err = svc.Verify(g.ID, true, "")
	assert.True(t, response.IsKind(err, 412), "second verify should fail the precondition, got %v", err)
}

func TestVerifyNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)

	_, err := svc.Verify(9999, true, "")
	assert.True(t, response.IsKind(err, 404), "got %v", err)
}

func TestAssignRequiresApprovedVerification(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	officer := createOfficer(t, db, "Public Works")
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.Assign(g.ID, officer.ID)
	assert.True(t, response.IsKind(err, 412), "unverified grievance must not be assignable, got %v", err)

	_, err = svc.Verify(g.ID, true, "")
	require.NoError(t, err)

	got, err := svc.Assign(g.ID, officer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedOfficerID)
	assert.Equal(t, officer.ID, *got.AssignedOfficerID)
	assert.Equal(t, "Public Works", got.Department, "department follows the officer")
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestAssignRejectedGrievance(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	officer := createOfficer(t, db, "Public Works")
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.Verify(g.ID, false, "spam")
	require.NoError(t, err)

	_, err = svc.Assign(g.ID, officer.ID)
	assert.True(t, response.IsKind(err, 412), "a rejected verification never becomes assignable, got %v", err)
}

func TestAssignValidatesOfficer(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")
	_, err := svc.Verify(g.ID, true, "")
	require.NoError(t, err)

	_, err = svc.Assign(g.ID, 9999)
	assert.True(t, response.IsKind(err, 404), "unknown officer, got %v", err)

	_, err = svc.Assign(g.ID, citizen.ID)
	assert.True(t, response.IsKind(err, 400), "citizens cannot be assignees, got %v", err)

	inactive := createOfficer(t, db, "Water Board")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	_, err = svc.Assign(g.ID, inactive.ID)
	assert.True(t, response.IsKind(err, 400), "inactive officer, got %v", err)
}

func TestReassignOverwritesOfficer(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	first := createOfficer(t, db, "Public Works")
	second := createOfficer(t, db, "Water Board")
	g := createGrievance(t, db, citizen.ID, "Water", "Ward 2")

	_, err := svc.Verify(g.ID, true, "")
	require.NoError(t, err)
	_, err = svc.Assign(g.ID, first.ID)
	require.NoError(t, err)

	got, err := svc.Assign(g.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *got.AssignedOfficerID)
	assert.Equal(t, "Water Board", got.Department)
}

func TestUpdateStatusInvalidLiteral(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.UpdateStatus(g.ID, "DONE")
	assert.True(t, response.IsKind(err, 400), "got %v", err)
}

func TestUpdateStatusTerminalGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)

	for _, terminal := range []string{models.StatusClosed, models.StatusRejected} {
		g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")
		require.NoError(t, db.Model(g).Update("status", terminal).Error)

		_, err := svc.UpdateStatus(g.ID, models.StatusInProgress)
		assert.True(t, response.IsKind(err, 412), "%s must be terminal, got %v", terminal, err)
	}
}

func TestUpdateStatusResolvedStampsTimestamp(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	got, err := svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)

	first := *got.ResolvedAt

	// A later transition back into RESOLVED restamps the timestamp.
	_, err = svc.UpdateStatus(g.ID, models.StatusInProgress)
	require.NoError(t, err)
	got, err = svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.False(t, got.ResolvedAt.Before(first))
}

func TestSubmitFeedbackRatingBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)

	// Bounds are checked before anything else, even for unknown grievances.
	for _, rating := range []int{0, 6, -1} {
		_, err := svc.SubmitFeedback(9999, citizen.ID, rating, "")
		assert.True(t, response.IsKind(err, 400), "rating %d, got %v", rating, err)
	}
}

func TestSubmitFeedbackGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.SubmitFeedback(9999, citizen.ID, 4, "")
	assert.True(t, response.IsKind(err, 404), "unknown grievance, got %v", err)

	_, err = svc.SubmitFeedback(g.ID, citizen.ID, 4, "")
	assert.True(t, response.IsKind(err, 412), "unresolved grievance, got %v", err)

	_, err = svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)

	_, err = svc.SubmitFeedback(g.ID, 9999, 4, "")
	assert.True(t, response.IsKind(err, 404), "unknown user, got %v", err)

	fb, err := svc.SubmitFeedback(g.ID, citizen.ID, 4, "fixed quickly")
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Rating)

	var fresh models.Grievance
	require.NoError(t, db.First(&fresh, g.ID).Error)
	assert.True(t, fresh.FeedbackSubmitted)

	_, err = svc.SubmitFeedback(g.ID, citizen.ID, 5, "")
	assert.True(t, response.IsKind(err, 409), "duplicate feedback, got %v", err)
}

func TestReopenOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	owner := createCitizen(t, db)
	stranger := createCitizen(t, db)
	g := createGrievance(t, db, owner.ID, "Road", "Ward 4")

	_, err := svc.Reopen(g.ID, stranger.ID, "still broken")
	assert.True(t, response.IsKind(err, 403), "got %v", err)

	_, err = svc.Reopen(9999, owner.ID, "still broken")
	assert.True(t, response.IsKind(err, 404), "got %v", err)
}

func TestReopenResetsEverything(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	officer := createOfficer(t, db, "Public Works")
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.Verify(g.ID, true, "")
	require.NoError(t, err)
	_, err = svc.Assign(g.ID, officer.ID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)
	_, err = svc.SubmitFeedback(g.ID, citizen.ID, 2, "not actually fixed")
	require.NoError(t, err)

	got, err := svc.Reopen(g.ID, citizen.ID, "pothole is back")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, models.VerificationPending, got.VerificationStatus, "stale approval must not survive a reopen")

	var fresh models.Grievance
	require.NoError(t, db.First(&fresh, g.ID).Error)
	assert.Equal(t, models.StatusPending, fresh.Status)
	assert.Equal(t, models.VerificationPending, fresh.VerificationStatus)
	assert.False(t, fresh.FeedbackSubmitted)
	assert.Nil(t, fresh.ResolvedAt)
	assert.Equal(t, "pothole is back", fresh.ReopenReason)

	var fb models.Feedback
	require.NoError(t, db.Where("grievance_id = ?", g.ID).First(&fb).Error)
	assert.True(t, fb.IsReopened, "existing feedback is flagged on reopen")
}

func TestReopenWithoutFeedback(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	citizen := createCitizen(t, db)
	g := createGrievance(t, db, citizen.ID, "Road", "Ward 4")

	_, err := svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)

	_, err = svc.Reopen(g.ID, citizen.ID, "not fixed")
	require.NoError(t, err, "reopen must work when no feedback exists yet")
}

// Full journey: submit, verify, assign, resolve, rate, reopen, and around again.
func TestGrievanceFullLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewLifecycleService(db)
	grievances := NewGrievanceService(db)
	citizen := createCitizen(t, db)
	officer := createOfficer(t, db, "Sanitation Dept")

	g, err := grievances.Create(citizen.ID, &CreateGrievanceRequest{
		Title:       "Overflowing bins",
		Description: "bins on 5th street have not been emptied in two weeks",
		Category:    "Sanitation",
		Location:    "Ward 7",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, g.Status)
	assert.Equal(t, models.VerificationPending, g.VerificationStatus)

	_, err = svc.Verify(g.ID, true, "confirmed by field team")
	require.NoError(t, err)

	_, err = svc.Assign(g.ID, officer.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)

	fb, err := svc.SubmitFeedback(g.ID, citizen.ID, 5, "spotless now")
	require.NoError(t, err)
	assert.False(t, fb.IsReopened)

	reopened, err := svc.Reopen(g.ID, citizen.ID, "bins overflowing again")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)

	// The reopened grievance goes around the loop again from the start.
	_, err = svc.Assign(g.ID, officer.ID)
	assert.True(t, response.IsKind(err, 412), "reopened grievance needs fresh verification, got %v", err)

	_, err = svc.Verify(g.ID, true, "")
	require.NoError(t, err)
	_, err = svc.Assign(g.ID, officer.ID)
	require.NoError(t, err)
	got, err := svc.UpdateStatus(g.ID, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
}
