package models

// DashboardStats summarizes fleet health at a point in time. AlertsToday
// mirrors DownDevices; no historical alert log is kept.
type DashboardStats struct {
	ActiveDevices int     `json:"active_devices"`
	DownDevices   int     `json:"down_devices"`
	AlertsToday   int     `json:"alerts_today"`
	AverageUptime float64 `json:"average_uptime"`
}
