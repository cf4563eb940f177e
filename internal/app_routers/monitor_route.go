package approuters

import (
	"github.com/pro-around/server/internal/configuration"
	"github.com/pro-around/server/internal/handler"

	"github.com/gin-gonic/gin"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorHandler := handler.NewMonitorHandler(container.Directory)

	monitorGroup := router.Group("/pa/api/monitor")
	{
		// GET /api/monitor/stats - Get directory statistics
		monitorGroup.GET("/stats", monitorHandler.GetDirectoryStats)
	}
}
