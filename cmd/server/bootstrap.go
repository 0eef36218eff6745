package main

import (
	"github.com/civicrules/civicpulse/internal/config"
	"github.com/civicrules/civicpulse/internal/handlers"
	"github.com/civicrules/civicpulse/internal/models"
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/internal/utils"
	"github.com/civicrules/civicpulse/pkg/logger"
	"github.com/robfig/cron/v3"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	notifyQueue      services.NotifyQueue
	cleanupScheduler *cron.Cron

	authHandler      *handlers.AuthHandler
	grievanceHandler *handlers.GrievanceHandler
	feedbackHandler  *handlers.FeedbackHandler
	analyticsHandler *handlers.AnalyticsHandler
	userHandler      *handlers.UserHandler
	auditLogHandler  *handlers.AuditLogHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()
	services.InitAuditLogger(db)

	userService := services.NewUserService(db)
	grievanceService := services.NewGrievanceService(db)
	lifecycleService := services.NewLifecycleService(db)
	feedbackService := services.NewFeedbackService(db)
	analyticsService := services.NewAnalyticsService(db, &cfg.SLA)
	auditLogService := services.NewAuditLogService(db)

	return &appServices{
		notifyQueue:      services.InitNotifyQueue(cfg),
		cleanupScheduler: services.StartCleanupScheduler(db, cfg.Audit.RetentionDays),
		authHandler:      handlers.NewAuthHandler(userService, cfg.JWT.ExpireHour),
		grievanceHandler: handlers.NewGrievanceHandler(grievanceService, lifecycleService),
		feedbackHandler:  handlers.NewFeedbackHandler(feedbackService, lifecycleService),
		analyticsHandler: handlers.NewAnalyticsHandler(analyticsService),
		userHandler:      handlers.NewUserHandler(userService),
		auditLogHandler:  handlers.NewAuditLogHandler(auditLogService),
	}
}

// shutdown stops background workers and releases queue connections.
func (s *appServices) shutdown() {
	if s.cleanupScheduler != nil {
		s.cleanupScheduler.Stop()
	}
	if s.notifyQueue != nil {
		if err := s.notifyQueue.Close(); err != nil {
			logger.Errorf("Failed to close notify queue: %v", err)
		}
	}
}
