package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/models"
	"github.com/critmon/pulsecheck/internal/services"
	"github.com/critmon/pulsecheck/internal/store"
)

// Handlers adapts HTTP requests to the liveness engine. Validation happens
// here; the engine trusts validated input.
type Handlers struct {
	monitors services.MonitorOperations
	logger   zerolog.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(monitors services.MonitorOperations, logger zerolog.Logger) *Handlers {
	return &Handlers{monitors: monitors, logger: logger}
}

type createMonitorRequest struct {
	DeviceID   string `json:"device_id" binding:"required"`
	Timeout    int    `json:"timeout" binding:"required,min=1"`
	AlertEmail string `json:"alert_email" binding:"required,email"`
}

type batchCreateRequest struct {
	Devices []batchDeviceRequest `json:"devices" binding:"dive"`
}

type batchDeviceRequest struct {
	ID         string `json:"id" binding:"required"`
	Timeout    int    `json:"timeout" binding:"required,min=1"`
	AlertEmail string `json:"alert_email" binding:"required,email"`
}

// CreateMonitor handles POST /monitors.
func (h *Handlers) CreateMonitor(c *gin.Context) {
	var req createMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("Invalid request: "+err.Error()))
		return
	}

	m, err := h.monitors.Create(c.Request.Context(), req.DeviceID, req.Timeout, req.AlertEmail)
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", req.DeviceID).Msg("Failed to create monitor")
		c.JSON(http.StatusInternalServerError, failure("Failed to create monitor"))
		return
	}

	c.JSON(http.StatusCreated, success("Monitor created successfully", m))
}

// CreateMonitorsBatch handles POST /monitors/batch. All succeeded maps to
// 201, a mix to 206, none (of at least one requested) to 400.
func (h *Handlers) CreateMonitorsBatch(c *gin.Context) {
	var req batchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("Invalid request: "+err.Error()))
		return
	}

	devices := make([]models.DeviceSpec, 0, len(req.Devices))
	for _, d := range req.Devices {
		devices = append(devices, models.DeviceSpec{DeviceID: d.ID, Timeout: d.Timeout, AlertEmail: d.AlertEmail})
	}

	result, err := h.monitors.CreateBatch(c.Request.Context(), devices)
	if err != nil {
		h.logger.Error().Err(err).Msg("Batch creation failed")
		c.JSON(http.StatusInternalServerError, failure("Failed to create monitors"))
		return
	}

	status := http.StatusCreated
	if result.Failed > 0 {
		if result.Successful > 0 {
			status = http.StatusPartialContent
		} else {
			status = http.StatusBadRequest
		}
	}

	message := fmt.Sprintf("Batch creation completed: %d successful, %d failed",
		result.Successful, result.Failed)
	c.JSON(status, success(message, result))
}

// Heartbeat handles POST /monitors/:id/heartbeat.
func (h *Handlers) Heartbeat(c *gin.Context) {
	id := c.Param("id")
	m, err := h.monitors.Heartbeat(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, success("Heartbeat received for device: "+m.DeviceID, m))
}

// PauseMonitor handles POST /monitors/:id/pause.
func (h *Handlers) PauseMonitor(c *gin.Context) {
	id := c.Param("id")
	m, err := h.monitors.Pause(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, success("Monitor paused for device: "+m.DeviceID, m))
}

// ResumeMonitor handles POST /monitors/:id/resume.
func (h *Handlers) ResumeMonitor(c *gin.Context) {
	id := c.Param("id")
	m, err := h.monitors.Resume(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, success("Monitor resumed for device: "+m.DeviceID, m))
}

// GetMonitor handles GET /monitors/:id.
func (h *Handlers) GetMonitor(c *gin.Context) {
	id := c.Param("id")
	m, err := h.monitors.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, success("Operation successful", m))
}

// ListMonitors handles GET /monitors, optionally filtered to active
// monitors with ?active=true.
func (h *Handlers) ListMonitors(c *gin.Context) {
	var monitors []models.Monitor
	var err error
	if c.Query("active") == "true" {
		monitors, err = h.monitors.ListActive(c.Request.Context())
	} else {
		monitors, err = h.monitors.ListAll(c.Request.Context())
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list monitors")
		c.JSON(http.StatusInternalServerError, failure("Database error"))
		return
	}
	c.JSON(http.StatusOK, success("Operation successful", monitors))
}

// GetDashboard handles GET /monitors/dashboard.
func (h *Handlers) GetDashboard(c *gin.Context) {
	stats, err := h.monitors.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute dashboard stats")
		c.JSON(http.StatusInternalServerError, failure("Database error"))
		return
	}
	c.JSON(http.StatusOK, success("Operation successful", stats))
}

// DeleteMonitor handles DELETE /monitors/:id.
func (h *Handlers) DeleteMonitor(c *gin.Context) {
	id := c.Param("id")
	if err := h.monitors.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, success("Monitor deleted successfully", nil))
}

func (h *Handlers) respondError(c *gin.Context, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, failure("Monitor not found: "+id))
		return
	}
	h.logger.Error().Err(err).Str("monitor_id", id).Msg("Monitor operation failed")
	c.JSON(http.StatusInternalServerError, failure("Database error"))
}
