package dto

import "time"

// ErrorCode represents standardized error codes surfaced to clients
type ErrorCode string

const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrorCodeConflict         ErrorCode = "CONFLICT"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrorCodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"
	ErrorCodeInternalServer   ErrorCode = "INTERNAL_SERVER_ERROR"
)

// ErrorDetail carries a machine-readable code plus a human message.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// NewErrorDetail creates an error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message}
}

// WithDetails attaches extra context to the error detail
func (e *ErrorDetail) WithDetails(details any) *ErrorDetail {
	e.Details = details
	return e
}

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Data      any          `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewDataResponse wraps a payload in the response envelope.
func NewDataResponse(data any) APIResponse {
	return APIResponse{Data: data, Timestamp: time.Now()}
}

// NewErrorResponse wraps an error detail in the response envelope.
func NewErrorResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{Error: detail, Timestamp: time.Now()}
}
