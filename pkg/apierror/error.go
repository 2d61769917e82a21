// Package apierror defines the error envelope returned by every failing
// request.
package apierror

import (
	"encoding/json"
	"net/http"
)

// Error is an API failure carrying the HTTP status it should be sent with.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool   `json:"success"`
	Error   *Error `json:"error"`
}

func newError(status int, code, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{StatusCode: status, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// WithDetails replaces the field-level details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// ToJSON renders the error inside the {"success":false,"error":...} envelope.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(envelope{Error: e})
	return data
}

// BadRequest is a 400 for malformed identifiers, sort values, or bodies.
func BadRequest(message string) *Error {
	return newError(http.StatusBadRequest, "BAD_REQUEST", message, "Bad request")
}

// ValidationError is a 400 listing each rejected field.
func ValidationError(message string, details ...FieldError) *Error {
	return newError(http.StatusBadRequest, "VALIDATION_ERROR", message, "Validation failed").WithDetails(details...)
}

// NotFound is a 404 for paths no route serves. Missing listings are not
// errors and are answered with null.
func NotFound(message string) *Error {
	return newError(http.StatusNotFound, "NOT_FOUND", message, "Resource not found")
}

// MethodNotAllowed is a 405.
func MethodNotAllowed(method, path string) *Error {
	return newError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", method+" is not supported on "+path, "")
}

// InternalError is a 500. The message never includes the underlying cause.
func InternalError(message string) *Error {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", message, "An unexpected error occurred")
}

// ServiceUnavailable is a 503 for an unreachable toy store.
func ServiceUnavailable(message string) *Error {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message, "Service temporarily unavailable")
}
