package models

import "time"

// Heartbeat represents a liveness signal published by a device, typically
// over MQTT.
type Heartbeat struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}
