package api

import "time"

// response is the envelope every endpoint answers with.
type response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func success(message string, data any) response {
	return response{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()}
}

func failure(message string) response {
	return response{Success: false, Message: message, Timestamp: time.Now().UTC()}
}
