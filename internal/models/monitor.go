package models

import (
	"time"

	"github.com/google/uuid"
)

// Monitor is the tracked liveness record for a single device. A monitor is
// considered down once its expiry deadline passes without a fresh heartbeat;
// expiry is always derived from the stored fields, never persisted.
type Monitor struct {
	ID            string    `json:"id"`
	DeviceID      string    `json:"device_id"`
	Timeout       int       `json:"timeout"` // grace period in seconds
	AlertEmail    string    `json:"alert_email"`
	CreatedAt     time.Time `json:"created_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsActive      bool      `json:"is_active"`
	IsPaused      bool      `json:"is_paused"`
}

// NewMonitor creates a monitor with a fresh identifier and arms its timer.
func NewMonitor(deviceID string, timeout int, alertEmail string) *Monitor {
	now := time.Now().UTC()
	m := &Monitor{
		ID:         uuid.New().String(),
		DeviceID:   deviceID,
		Timeout:    timeout,
		AlertEmail: alertEmail,
		CreatedAt:  now,
	}
	m.ResetTimer(now)
	return m
}

// ResetTimer rearms the liveness window from the given instant. It is used by
// both creation and heartbeats and is idempotent under repeated calls.
func (m *Monitor) ResetTimer(now time.Time) {
	m.LastHeartbeat = now
	m.ExpiresAt = now.Add(time.Duration(m.Timeout) * time.Second)
	m.IsPaused = false
	m.IsActive = true
}

// Pause freezes expiry evaluation. The deadline is left untouched; it becomes
// irrelevant while the monitor is paused. Pausing an already paused monitor
// is not an error.
func (m *Monitor) Pause() {
	m.IsPaused = true
}

// Resume unfreezes the monitor and restarts its liveness window from now,
// not from where it left off.
func (m *Monitor) Resume(now time.Time) {
	m.IsPaused = false
	m.ResetTimer(now)
}

// IsExpired reports whether the monitor's deadline has passed without a
// heartbeat. Paused or inactive monitors are never expired regardless of
// elapsed time.
func (m *Monitor) IsExpired(now time.Time) bool {
	return m.IsActive && !m.IsPaused && !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}
