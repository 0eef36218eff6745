package main

import (
	"github.com/civicrules/civicpulse/internal/config"
	"github.com/civicrules/civicpulse/internal/middleware"
	"github.com/civicrules/civicpulse/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins...))
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "civicpulse"})
	})

	api := r.Group("/api")
	api.Use(middleware.AuditLog())
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/register", svc.authHandler.Register)
			auth.GET("/me", middleware.AuthRequired(), svc.authHandler.Me)
		}

		// Grievances
		grievances := api.Group("/grievances", middleware.AuthRequired())
		{
			grievances.POST("", svc.grievanceHandler.Create)
			grievances.GET("", svc.grievanceHandler.List)
			grievances.GET("/:id", svc.grievanceHandler.Get)
			grievances.PATCH("/:id/verify", middleware.AdminRequired(), svc.grievanceHandler.Verify)
			grievances.PATCH("/:id/assign", middleware.AdminRequired(), svc.grievanceHandler.Assign)
			grievances.PATCH("/:id/status", middleware.RoleRequired("OFFICER", "ADMIN"), svc.grievanceHandler.UpdateStatus)
			grievances.PATCH("/:id/remarks", middleware.RoleRequired("OFFICER"), svc.grievanceHandler.UpdateRemarks)
			grievances.DELETE("/:id", middleware.AdminRequired(), svc.grievanceHandler.Delete)
		}

		// Feedback and reopen
		feedback := api.Group("/feedback", middleware.AuthRequired())
		{
			feedback.POST("", svc.feedbackHandler.Submit)
			feedback.POST("/reopen/:grievanceId", svc.feedbackHandler.Reopen)
			feedback.GET("/grievance/:grievanceId", svc.feedbackHandler.GetByGrievance)
			feedback.GET("/user/:userId", svc.feedbackHandler.ListByUser)
			feedback.GET("", middleware.AdminRequired(), svc.feedbackHandler.ListAll)
			feedback.GET("/admin/pending", middleware.AdminRequired(), svc.feedbackHandler.Pending)
			feedback.GET("/admin/reopened", middleware.AdminRequired(), svc.feedbackHandler.Reopened)
			feedback.GET("/admin/stats", middleware.AdminRequired(), svc.feedbackHandler.Stats)
			feedback.DELETE("/:id", middleware.AdminRequired(), svc.feedbackHandler.Delete)
		}

		// Analytics (all authenticated users)
		analytics := api.Group("/analytics", middleware.AuthRequired())
		{
			analytics.GET("/dashboard", svc.analyticsHandler.Dashboard)
			analytics.GET("/categories", svc.analyticsHandler.Categories)
			analytics.GET("/zones", svc.analyticsHandler.Zones)
			analytics.GET("/sla", svc.analyticsHandler.SLA)
			analytics.GET("/red-zones", svc.analyticsHandler.RedZones)
		}

		// User management
		users := api.Group("/users", middleware.AuthRequired())
		{
			users.GET("", middleware.AdminRequired(), svc.userHandler.List)
			users.POST("", middleware.AdminRequired(), svc.userHandler.Create)
			users.GET("/officers", svc.userHandler.Officers)
			users.PATCH("/:id/active", middleware.AdminRequired(), svc.userHandler.SetActive)
		}

		// Audit logs
		api.GET("/audit-logs", middleware.AuthRequired(), middleware.AdminRequired(), svc.auditLogHandler.List)
	}
}
