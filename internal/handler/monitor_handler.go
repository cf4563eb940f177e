package handler

import (
	"net/http"

	"github.com/pro-around/server/internal/service"

	"github.com/gin-gonic/gin"
)

// MonitorHandler handles monitoring API endpoints
type MonitorHandler interface {
	GetDirectoryStats(c *gin.Context)
}

type monitorHandler struct {
	service service.DirectoryService
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(service service.DirectoryService) MonitorHandler {
	return &monitorHandler{
		service: service,
	}
}

// GetDirectoryStats returns collection counters for the directory
// @Summary Get directory statistics
// @Description Returns user, professional, client and review counts
// @Tags Monitor
// @Produce json
// @Success 200 {object} model.DirectoryStats
// @Router /api/monitor/stats [get]
func (h *monitorHandler) GetDirectoryStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"HttpStatusCode": http.StatusInternalServerError,
			"IsSuccess":      false,
			"Message":        "Failed to gather directory statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"HttpStatusCode": http.StatusOK,
		"ResponseBody":   stats,
		"IsSuccess":      true,
		"Message":        "Directory statistics retrieved successfully",
	})
}
