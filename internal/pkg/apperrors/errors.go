package apperrors

import "errors"

// Common errors
var (
	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrRoleUnknown      = errors.New("no role assigned to this account")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Store errors
	ErrConflict         = errors.New("conflict")
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Session errors
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrSessionSuperseded = errors.New("session superseded")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("invalid token")
)

// Kind discriminates the error taxonomy the repositories return. Callers
// branch on the kind, not on error strings.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindTransient     Kind = "transient"
	KindNotFound      Kind = "not_found"
)

// Error is an application error with a taxonomy kind and optional context.
type Error struct {
	Err     error
	Kind    Kind
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// KindOf extracts the taxonomy kind from err, or "" if err is not an
// application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// NewAuthorizationError creates an authorization error. It is raised locally,
// before any remote call.
func NewAuthorizationError(message string) *Error {
	return &Error{Err: ErrPermissionDenied, Kind: KindAuthorization, Message: message}
}

// NewValidationError creates a validation error for malformed input.
func NewValidationError(message string) *Error {
	return &Error{Err: ErrValidationFailed, Kind: KindValidation, Message: message}
}

// NewConflictError creates a conflict error for uniqueness or reference
// violations reported by the store.
func NewConflictError(err error, message string) *Error {
	if err == nil {
		err = ErrConflict
	}
	return &Error{Err: err, Kind: KindConflict, Message: message}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(message string) *Error {
	return &Error{Err: ErrResourceNotFound, Kind: KindNotFound, Message: message}
}

// NewTransientError wraps a network or store failure that the user may retry
// manually.
func NewTransientError(err error, message string) *Error {
	if err == nil {
		err = ErrStoreUnavailable
	}
	return &Error{Err: err, Kind: KindTransient, Message: message}
}
