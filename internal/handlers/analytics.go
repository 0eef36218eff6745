package handlers

import (
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard returns the complete dashboard summary.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.analytics.GetDashboardStats()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Categories returns the per-category complaint distribution.
func (h *AnalyticsHandler) Categories(c *gin.Context) {
	dist, err := h.analytics.GetCategoryDistribution()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dist)
}

// Zones returns the per-location complaint distribution.
func (h *AnalyticsHandler) Zones(c *gin.Context) {
	dist, err := h.analytics.GetZoneDistribution()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dist)
}

// SLA returns per-category SLA compliance.
func (h *AnalyticsHandler) SLA(c *gin.Context) {
	perf, err := h.analytics.GetSLAPerformance()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, perf)
}

// RedZones returns complaint-prone locations with risk levels.
func (h *AnalyticsHandler) RedZones(c *gin.Context) {
	zones, err := h.analytics.GetRedZones()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, zones)
}
