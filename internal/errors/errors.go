// Package errors defines the structured errors shared by the data layers,
// the CLI and the dashboard API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NewValidationError reports input that failed field validation.
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewNotFoundError reports a missing task, project, user or time entry.
func NewNotFoundError(resource string, identifier string) *AppError {
	return newError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", resource, identifier), nil,
		"resource", resource, "identifier", identifier)
}

// NewDatabaseError reports a failed statement in the embedded store.
func NewDatabaseError(operation string, cause error) *AppError {
	return newError(ErrorTypeDatabase, "database operation failed: "+operation, cause,
		"operation", operation)
}

// NewInvalidInputError reports a single bad argument.
func NewInvalidInputError(field string, value any, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		"field", field, "value", value, "reason", reason)
}

func NewTimeoutError(operation string, timeout any) *AppError {
	return newError(ErrorTypeTimeout, "operation timed out: "+operation, nil,
		"operation", operation, "timeout", timeout)
}

func NewPermissionError(operation string, resource string) *AppError {
	return newError(ErrorTypePermission, fmt.Sprintf("permission denied for %s on %s", operation, resource), nil,
		"operation", operation, "resource", resource)
}

// NewAuthError reports a failed sign-in, sign-up or a missing session.
// The message is shown verbatim on the login surface.
func NewAuthError(message string, cause error) *AppError {
	return newError(ErrorTypeAuth, message, cause)
}

// NewRemoteError reports a failed call to the hosted data service. status is
// the HTTP status, 0 when no response arrived.
func NewRemoteError(operation string, status int, cause error) *AppError {
	return newError(ErrorTypeRemote, "remote call failed: "+operation, cause,
		"operation", operation, "status", status)
}

// WrapError tags err with a type. The code is the type's label.
func WrapError(err error, errorType ErrorType, message string) *AppError {
	e := newError(errorType, message, err)
	e.Code = errorType.String()
	return e
}

// IsAppError reports whether err's chain holds an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil || !errors.As(err, &appErr) {
		return nil, false
	}
	return appErr, true
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.IsType(errorType)
}

// GetUserMessage returns the text shown to users. Caller mistakes keep their
// message; system failures get a generic retry hint.
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	if msg := appErr.Type.kind().userMessage; msg != "" {
		return msg
	}
	return appErr.Message
}

// GetErrorCode returns the error code for structured errors
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return unknownKind.code
}

// HTTPStatus returns the status the dashboard API reports for err.
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type.Status()
	}
	return http.StatusInternalServerError
}

// ShouldLogError reports whether err is a system failure rather than a user mistake.
func ShouldLogError(err error) bool {
	appErr, ok := AsAppError(err)
	return !ok || !appErr.Type.kind().userFault
}
