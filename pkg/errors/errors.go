// Package errors defines the error taxonomy surfaced at the HTTP boundary.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies which branch of the taxonomy an error belongs to.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeUpstream     ErrorCode = "UPSTREAM"
	CodeInternal     ErrorCode = "INTERNAL"
)

var httpStatusByCode = map[ErrorCode]int{
	CodeValidation:   http.StatusBadRequest,
	CodeNotFound:     http.StatusNotFound,
	CodeUnauthorized: http.StatusForbidden,
	CodeForbidden:    http.StatusForbidden,
	CodeConflict:     http.StatusConflict,
	CodeUpstream:     http.StatusBadRequest,
	CodeInternal:     http.StatusInternalServerError,
}

// AppError is the typed error every core operation returns at its boundary.
type AppError struct {
	Code      ErrorCode   `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// HTTPStatus maps the error's code to its boundary status code (§7).
func (e *AppError) HTTPStatus() int {
	if status, ok := httpStatusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(code ErrorCode, message string, details interface{}) *AppError {
	return &AppError{Code: code, Message: message, Details: details, Timestamp: time.Now()}
}

// Validation wraps a §3/§4 invariant or precondition violation.
func Validation(message string, details interface{}) *AppError {
	return newError(CodeValidation, message, details)
}

// NotFound wraps a lookup against an unknown id.
func NotFound(message string) *AppError {
	return newError(CodeNotFound, message, nil)
}

// Unauthorized wraps a missing or invalid session.
func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message, nil)
}

// Forbidden wraps an authenticated request lacking region-admin rights.
func Forbidden(message string) *AppError {
	return newError(CodeForbidden, message, nil)
}

// Conflict wraps a detected concurrent-mutation conflict.
func Conflict(message string) *AppError {
	return newError(CodeConflict, message, nil)
}

// Upstream wraps a scraper failure; message is the scraper's own text, preserved verbatim.
func Upstream(message string) *AppError {
	return newError(CodeUpstream, message, nil)
}

// Internal wraps an unexpected failure. The offending operation is never retried.
func Internal(err error) *AppError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return newError(CodeInternal, msg, nil)
}

// As extracts an *AppError, wrapping unknown errors as Internal.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal(err)
}

// ToResponse converts the error to the standard JSON error body.
func (e *AppError) ToResponse() map[string]interface{} {
	return map[string]interface{}{
		"success":   false,
		"error":     e.Message,
		"code":      string(e.Code),
		"details":   e.Details,
		"timestamp": e.Timestamp,
	}
}
