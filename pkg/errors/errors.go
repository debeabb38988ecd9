package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies application errors. The vote denial kinds mirror the
// authorization engine's decision points; the rest cover the usual HTTP
// surface.
type ErrorType string

const (
	ErrorTypeFormat           ErrorType = "format"
	ErrorTypeNotFoundOrExpired ErrorType = "not_found_or_expired"
	ErrorTypeRateLimited      ErrorType = "rate_limited"
	ErrorTypeDuplicateVote    ErrorType = "duplicate_vote"
	ErrorTypeTransientStore   ErrorType = "transient_store"
	ErrorTypeIntegrity        ErrorType = "integrity"
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeAuthentication   ErrorType = "authentication"
	ErrorTypeAuthorization    ErrorType = "authorization"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError is a structured application error. Internal carries the wrapped
// cause for logging; Message is safe to show to end users.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// From extracts an *AppError from err, or wraps err as an internal error.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("An unexpected error occurred", err)
}

// NewFormatError creates a denial for a malformed voting code
func NewFormatError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeFormat,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundOrExpiredError creates a denial for an absent or expired code
func NewNotFoundOrExpiredError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFoundOrExpired,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewRateLimitedError creates a cooldown denial carrying the remaining wait
func NewRateLimitedError(message string, remainingSeconds int) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		Details: map[string]interface{}{
			"retry_after_seconds": remainingSeconds,
		},
	}
}

// NewDuplicateVoteError creates a denial for a team already voted for
func NewDuplicateVoteError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicateVote,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewTransientStoreError creates a denial for store unavailability; the
// message is generic, the cause stays internal
func NewTransientStoreError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransientStore,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Internal:   internal,
	}
}

// NewIntegrityError creates a denial for state that changed underneath the
// engine between check and commit
func NewIntegrityError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegrity,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}
