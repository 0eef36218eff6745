package services

import (
	"testing"
	"time"

	"github.com/civicrules/civicpulse/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database. A single connection
// is enforced so the pool cannot hand out a second, empty memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Grievance{},
		&models.Feedback{},
		&models.AuditLog{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role, department string) *models.User {
	t.Helper()
	user := &models.User{
		FullName:   "Test " + role,
		Email:      role + "-" + time.Now().Format("150405.000000000") + "@example.com",
		Password:   "x",
		Role:       role,
		Department: department,
		IsActive:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCitizen(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, models.RoleCitizen, "")
}

func createOfficer(t *testing.T, db *gorm.DB, department string) *models.User {
	return createUser(t, db, models.RoleOfficer, department)
}

func createGrievance(t *testing.T, db *gorm.DB, citizenID uint, category, location string) *models.Grievance {
	t.Helper()
	grievance := &models.Grievance{
		Title:              "Test grievance",
		Description:        "something is broken",
		Category:           category,
		Location:           location,
		Status:             models.StatusPending,
		VerificationStatus: models.VerificationPending,
		CitizenID:          citizenID,
	}
	require.NoError(t, db.Create(grievance).Error)
	return grievance
}

// createResolvedGrievance backdates creation so resolution took the given
// number of whole days.
func createResolvedGrievance(t *testing.T, db *gorm.DB, citizenID uint, category, location string, days int) *models.Grievance {
	t.Helper()
	now := time.Now()
	created := now.Add(-time.Duration(days) * 24 * time.Hour)
	grievance := &models.Grievance{
		Title:              "Test grievance",
		Description:        "something was broken",
		Category:           category,
		Location:           location,
		Status:             models.StatusResolved,
		VerificationStatus: models.VerificationApproved,
		CitizenID:          citizenID,
		CreatedAt:          created,
		ResolvedAt:         &now,
	}
	require.NoError(t, db.Create(grievance).Error)
	return grievance
}
