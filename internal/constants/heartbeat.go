package constants

// Heartbeat status values reported by devices.
const (
	StatusAlive = "alive"
)
