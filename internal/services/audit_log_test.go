package services

import (
	"testing"
	"time"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogListDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&models.AuditLog{
			Level: "info", Module: "Lifecycle", Action: "Verify", Message: "x",
		}).Error)
	}

	resp, err := svc.List(&AuditLogListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(25), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Len(t, resp.Items, 20)
}

func TestAuditLogListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	require.NoError(t, db.Create(&models.AuditLog{Level: "info", Module: "Lifecycle", Action: "Verify", Message: "grievance 1 verified"}).Error)
	require.NoError(t, db.Create(&models.AuditLog{Level: "error", Module: "Auth", Action: "Login", Message: "bad password"}).Error)

	byLevel, err := svc.List(&AuditLogListRequest{Level: "error"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byLevel.Total)
	assert.Equal(t, "Auth", byLevel.Items[0].Module)

	byModule, err := svc.List(&AuditLogListRequest{Module: "Lifecycle"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byModule.Total)

	bySearch, err := svc.List(&AuditLogListRequest{Search: "verified"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), bySearch.Total)
}

func TestCleanupOldLogs(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	old := &models.AuditLog{Level: "info", Module: "Lifecycle", Action: "Verify", Message: "old"}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Model(old).Update("created_at", time.Now().AddDate(0, 0, -60)).Error)
	require.NoError(t, db.Create(&models.AuditLog{Level: "info", Module: "Lifecycle", Action: "Verify", Message: "recent"}).Error)

	deleted, err := svc.CleanupOldLogs(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestCleanupDisabled(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditLogService(db)

	require.NoError(t, db.Create(&models.AuditLog{Level: "info", Module: "X", Action: "Y", Message: "z"}).Error)

	deleted, err := svc.CleanupOldLogs(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted, "non-positive retention disables cleanup")
}
