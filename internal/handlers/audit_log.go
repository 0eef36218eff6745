package handlers

import (
	"github.com/civicrules/civicpulse/internal/services"
	"github.com/civicrules/civicpulse/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuditLogHandler struct {
	logs *services.AuditLogService
}

func NewAuditLogHandler(logs *services.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{logs: logs}
}

// List returns paginated audit log entries with optional filters.
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logs.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
