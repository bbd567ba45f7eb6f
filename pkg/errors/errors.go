package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes used across the authentication subsystem
const (
	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Authentication errors. AUTH_FAILED is deliberately generic so callers
	// cannot distinguish bad credentials from an unknown account.
	ErrCodeAuthFailed    ErrorCode = "AUTH_FAILED"
	ErrCodeSessionActive ErrorCode = "SESSION_ACTIVE"

	// Account errors
	ErrCodeAccountNotFound  ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeAccountLocked    ErrorCode = "ACCOUNT_LOCKED"
	ErrCodeAccountInactive  ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeAccountNotLocked ErrorCode = "ACCOUNT_NOT_LOCKED"

	// Verification token errors
	ErrCodeTokenNotFound        ErrorCode = "TOKEN_NOT_FOUND"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenInactive        ErrorCode = "TOKEN_INACTIVE"
	ErrCodeTokenNotExpired      ErrorCode = "TOKEN_NOT_EXPIRED"
	ErrCodeTokenTooManyAttempts ErrorCode = "TOKEN_TOO_MANY_ATTEMPTS"

	// Password errors
	ErrCodePasswordComplexity     ErrorCode = "PASSWORD_COMPLEXITY"
	ErrCodePasswordDictionaryWord ErrorCode = "PASSWORD_DICTIONARY_WORD"
	ErrCodePasswordContainsName   ErrorCode = "PASSWORD_CONTAINS_NAME"
	ErrCodePasswordReused         ErrorCode = "PASSWORD_REUSED"
	ErrCodePasswordMismatch       ErrorCode = "PASSWORD_MISMATCH"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal if the error is not a structured Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes for
// whatever transport layer ends up wrapping these services.
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodePasswordComplexity, ErrCodePasswordDictionaryWord,
		ErrCodePasswordContainsName, ErrCodePasswordMismatch, ErrCodeTokenNotExpired,
		ErrCodeAccountNotLocked:
		return http.StatusBadRequest

	case ErrCodeUnauthorized, ErrCodeAuthFailed, ErrCodeTokenExpired,
		ErrCodeTokenInactive, ErrCodeTokenTooManyAttempts:
		return http.StatusUnauthorized

	case ErrCodeAccountLocked, ErrCodeAccountInactive, ErrCodeSessionActive:
		return http.StatusForbidden

	case ErrCodeNotFound, ErrCodeAccountNotFound, ErrCodeTokenNotFound:
		return http.StatusNotFound

	case ErrCodePasswordReused:
		return http.StatusConflict

	case ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for frequently used errors

// NotFound creates a "not found" error
func NotFound(resourceType, identifier string) *Error {
	return Newf(ErrCodeNotFound, "%s not found: %s", resourceType, identifier)
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

// AuthFailed creates the generic login failure error
func AuthFailed() *Error {
	return New(ErrCodeAuthFailed, "login failed")
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}

// InternalWrap wraps an internal error
func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}
