package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/services"
)

// NewRouter builds the gin engine with all monitor routes mounted.
func NewRouter(monitors services.MonitorOperations, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	h := NewHandlers(monitors, logger)

	m := r.Group("/monitors")
	{
		m.POST("", h.CreateMonitor)
		m.POST("/batch", h.CreateMonitorsBatch)
		m.GET("", h.ListMonitors)
		m.GET("/dashboard", h.GetDashboard)
		m.GET("/:id", h.GetMonitor)
		m.POST("/:id/heartbeat", h.Heartbeat)
		m.POST("/:id/pause", h.PauseMonitor)
		m.POST("/:id/resume", h.ResumeMonitor)
		m.DELETE("/:id", h.DeleteMonitor)
	}

	return r
}
