package dto

import "time"

// Response statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	ErrorCode string    `json:"error_code"`
	Field     string    `json:"field,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewErrorResponse builds a failure envelope
func NewErrorResponse(code, message, requestID string, at time.Time) ErrorResponse {
	return ErrorResponse{
		Status:    StatusFailed,
		Message:   message,
		ErrorCode: code,
		RequestID: requestID,
		Timestamp: at.UTC(),
	}
}

// Response is the envelope of every successful request
type Response struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResponse builds a success envelope
func NewResponse(message string, data any, requestID string, at time.Time) Response {
	return Response{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		RequestID: requestID,
		Timestamp: at.UTC(),
	}
}
