package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ValidationErrorType classifies a failed field rule.
type ValidationErrorType string

const (
	ErrorTypeRequired      ValidationErrorType = "required"
	ErrorTypeInvalidFormat ValidationErrorType = "invalid_format"
	ErrorTypeInvalidLength ValidationErrorType = "invalid_length"
	ErrorTypeInvalidValue  ValidationErrorType = "invalid_value"
	ErrorTypeInvalidRange  ValidationErrorType = "invalid_range"
)

// FieldError is one failed rule on one form field. Message is written for
// the person filling the form.
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   any
}

func (fe *FieldError) Error() string {
	return fe.Field + ": " + fe.Message
}

// ValidationError collects every failed rule of a form so they can be shown
// together.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError creates an empty collector.
func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make([]FieldError, 0)}
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i := range ve.Errors {
		parts[i] = ve.Errors[i].Error()
	}
	switch len(parts) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + parts[0]
	default:
		return fmt.Sprintf("validation failed on %d fields: %s", len(parts), strings.Join(parts, "; "))
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// OrNil returns ve when it holds errors and nil otherwise.
func (ve *ValidationError) OrNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Fields returns the distinct field names that failed, in order.
func (ve *ValidationError) Fields() []string {
	var fields []string
	for _, fe := range ve.Errors {
		if !slices.Contains(fields, fe.Field) {
			fields = append(fields, fe.Field)
		}
	}
	return fields
}

// GetFieldErrors returns all errors for a specific field
func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var out []FieldError
	for _, fe := range ve.Errors {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// AddError records a failed rule with a ready-made message.
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value any) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Type: errorType, Message: message, Value: value})
}

func (ve *ValidationError) AddRequiredError(field string) {
	ve.AddError(field, ErrorTypeRequired, label(field)+" is required", nil)
}

// AddInvalidFormatError records a value that does not parse, e.g. a date
// that is not YYYY-MM-DD. example is a value in the expected format.
func (ve *ValidationError) AddInvalidFormatError(field string, value any, example string) {
	ve.AddError(field, ErrorTypeInvalidFormat, fmt.Sprintf("%s must look like %s", label(field), example), value)
}

// AddInvalidLengthError records a string outside min..max characters. A
// zero bound is not checked.
func (ve *ValidationError) AddInvalidLengthError(field string, value any, min, max int) {
	var rule string
	switch {
	case min > 0 && max > 0:
		rule = fmt.Sprintf("between %d and %d characters", min, max)
	case min > 0:
		rule = fmt.Sprintf("at least %d characters", min)
	case max > 0:
		rule = fmt.Sprintf("at most %d characters", max)
	default:
		ve.AddError(field, ErrorTypeInvalidLength, label(field)+" has an invalid length", value)
		return
	}
	ve.AddError(field, ErrorTypeInvalidLength, label(field)+" must be "+rule, value)
}

// AddInvalidValueError records a value outside the allowed set. reason
// completes the sentence "<Field> ...", e.g. "must be one of Low, High".
func (ve *ValidationError) AddInvalidValueError(field string, value any, reason string) {
	ve.AddError(field, ErrorTypeInvalidValue, label(field)+" "+reason, value)
}

// AddInvalidRangeError records a number or date outside its bounds. reason
// completes the sentence like AddInvalidValueError.
func (ve *ValidationError) AddInvalidRangeError(field string, value any, reason string) {
	ve.AddError(field, ErrorTypeInvalidRange, label(field)+" "+reason, value)
}

// GetUserFriendlyMessage renders the collected messages, one per line when
// there are several.
func (ve *ValidationError) GetUserFriendlyMessage() string {
	switch len(ve.Errors) {
	case 0:
		return "Input validation failed"
	case 1:
		return ve.Errors[0].Message
	}
	var b strings.Builder
	b.WriteString("Please fix the following:")
	for _, fe := range ve.Errors {
		b.WriteString("\n- ")
		b.WriteString(fe.Message)
	}
	return b.String()
}

// label turns a column name into the form label, e.g. "due_date" -> "Due date".
func label(field string) string {
	if field == "id" {
		return "ID"
	}
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
