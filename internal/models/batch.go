package models

// DeviceSpec describes one device in a batch registration request.
type DeviceSpec struct {
	DeviceID   string `json:"id"`
	Timeout    int    `json:"timeout"`
	AlertEmail string `json:"alert_email"`
}

// BatchError records why registration failed for a single device.
type BatchError struct {
	DeviceID string `json:"device_id"`
	Error    string `json:"error"`
}

// BatchResult reports the outcome of a batch registration. Batches are not
// transactional; a failed item never rolls back its siblings.
type BatchResult struct {
	TotalRequested int          `json:"total_requested"`
	Successful     int          `json:"successful"`
	Failed         int          `json:"failed"`
	Created        []Monitor    `json:"created_monitors"`
	Errors         []BatchError `json:"errors"`
}
