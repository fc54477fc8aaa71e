// Package errors defines the service error taxonomy shared by the facade
// services and the HTTP layer. Each error carries the HTTP status it maps to
// so handlers never have to guess.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code string

const (
	CodeValidation   Code = "validation_error"
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"
	CodeInvalidToken Code = "invalid_token"
	CodeConflict     Code = "conflict"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal_error"
)

// ServiceError is an error with an HTTP mapping and optional detail fields.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a detail field and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Validation reports an attribute outside its allowed domain. Maps to 400.
func Validation(message string) *ServiceError {
	return &ServiceError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...interface{}) *ServiceError {
	return Validation(fmt.Sprintf(format, args...))
}

// NotFound reports a reference that does not resolve. Maps to 404.
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// Forbidden reports an authenticated but unauthorized caller. Maps to 403.
func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "unauthorized action"
	}
	return &ServiceError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// Unauthorized reports a missing or unusable credential. Maps to 401.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return &ServiceError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// InvalidToken reports a credential that failed verification. Maps to 401.
func InvalidToken(err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidToken,
		Message:    "invalid or expired token",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

// Conflict reports a uniqueness violation. Maps to 409.
func Conflict(message string) *ServiceError {
	return &ServiceError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// RateLimitExceeded reports a caller over their request budget. Maps to 429.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimited,
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
		Details:    map[string]interface{}{"limit": limit, "window": window},
	}
}

// Internal wraps an unexpected failure. Maps to 500.
func Internal(message string, err error) *ServiceError {
	if message == "" {
		message = "internal error"
	}
	return &ServiceError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// GetServiceError returns the *ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// IsNotFound reports whether err is a not-found service error.
func IsNotFound(err error) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == CodeNotFound
}

// IsValidation reports whether err is a validation service error.
func IsValidation(err error) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == CodeValidation
}
