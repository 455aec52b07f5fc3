package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	ErrorTypeAuth
	ErrorTypeRemote
)

// kind describes how an error category is labelled and surfaced.
type kind struct {
	label string
	code  string
	// userMessage replaces the message shown to users; empty shows the
	// error's own message.
	userMessage string
	status      int
	// userFault marks caller mistakes, which are not logged.
	userFault bool
}

var kinds = map[ErrorType]kind{
	ErrorTypeValidation:   {label: "validation", code: "VALIDATION_FAILED", status: http.StatusBadRequest, userFault: true},
	ErrorTypeNotFound:     {label: "not_found", code: "NOT_FOUND", status: http.StatusNotFound, userFault: true},
	ErrorTypeDatabase:     {label: "database", code: "DATABASE_ERROR", userMessage: "A database error occurred. Please try again.", status: http.StatusInternalServerError},
	ErrorTypeInvalidInput: {label: "invalid_input", code: "INVALID_INPUT", status: http.StatusBadRequest, userFault: true},
	ErrorTypeTimeout:      {label: "timeout", code: "TIMEOUT", userMessage: "The operation timed out. Please try again.", status: http.StatusGatewayTimeout},
	ErrorTypePermission:   {label: "permission", code: "PERMISSION_DENIED", status: http.StatusForbidden},
	ErrorTypeAuth:         {label: "auth", code: "AUTH_FAILED", status: http.StatusUnauthorized, userFault: true},
	ErrorTypeRemote:       {label: "remote", code: "REMOTE_ERROR", userMessage: "The data service is unavailable. Please try again.", status: http.StatusBadGateway},
}

var unknownKind = kind{
	label:       "unknown",
	code:        "UNKNOWN_ERROR",
	userMessage: "An unexpected error occurred. Please try again.",
	status:      http.StatusInternalServerError,
}

func (et ErrorType) kind() kind {
	if k, ok := kinds[et]; ok {
		return k
	}
	return unknownKind
}

// String returns the string representation of the error type
func (et ErrorType) String() string {
	return et.kind().label
}

// Status is the HTTP status the dashboard API answers with.
func (et ErrorType) Status() int {
	return et.kind().status
}

// AppError is the structured error passed between the store, the remote
// backends and the presentation layers.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]any
}

// newError builds an AppError with the type's default code. fields are
// key/value pairs copied into Context.
func newError(t ErrorType, message string, cause error, fields ...any) *AppError {
	e := &AppError{
		Type:    t,
		Message: message,
		Code:    t.kind().code,
		Cause:   cause,
		Context: make(map[string]any, len(fields)/2),
	}
	for i := 0; i+1 < len(fields); i += 2 {
		e.Context[fmt.Sprint(fields[i])] = fields[i+1]
	}
	return e
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Type.String() + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && e.Type == other.Type && e.Code == other.Code
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext records key on the error and returns it for chaining.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetContext returns a value recorded with WithContext or a constructor.
func (e *AppError) GetContext(key string) (any, bool) {
	v, ok := e.Context[key]
	return v, ok
}
