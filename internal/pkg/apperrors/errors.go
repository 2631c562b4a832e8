package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Infrastructure errors
	ErrStore        = errors.New("record store failure")
	ErrExportRender = errors.New("export rendering failed")
)

// Reporting lookups
var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrStudentNotFound = errors.New("student not found")
)

// NewValidationError creates a client error for malformed input
func NewValidationError(message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message.
// The specific sentinel (session, student) is kept reachable through errors.Is.
func NewResourceNotFoundError(target error, message string) *CustomError {
	return &CustomError{
		Err:     errors.Join(ErrResourceNotFound, target),
		Message: message,
	}
}

// NewStoreError wraps a failure of the underlying record store.
// op names the store operation, cause is kept for diagnostics.
func NewStoreError(op string, cause error) *CustomError {
	return &CustomError{
		Err:     errors.Join(ErrStore, cause),
		Message: "record store operation failed: " + op,
		Code:    op,
	}
}

// NewExportRenderError wraps a failure while building the export document
func NewExportRenderError(cause error) *CustomError {
	return &CustomError{
		Err:     errors.Join(ErrExportRender, cause),
		Message: "failed to render export document",
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Detail returns the underlying error text, used for non-production responses
func (e *CustomError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
