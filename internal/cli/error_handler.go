package cli

import (
	stderrors "errors"
	"fmt"

	"insightpm/internal/errors"
	"insightpm/internal/validation"
)

// ErrorHandler turns service and data-service errors into the one-line
// messages the CLI prints.
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle prefixes the user message for err with the failed operation.
// Unstructured errors stay wrapped so callers can still inspect them.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	if msg, ok := eh.message(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, msg)
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// message returns the text to show for err and whether err was recognised.
// Field validation lists every failing field; application errors use their
// user message.
func (eh *ErrorHandler) message(err error) (string, bool) {
	var fields *validation.ValidationError
	if stderrors.As(err, &fields) {
		return fields.GetUserFriendlyMessage(), true
	}
	if errors.IsAppError(err) {
		return errors.GetUserMessage(err), true
	}
	return "", false
}
