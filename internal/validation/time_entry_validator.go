package validation

import (
	"fmt"

	"insightpm/internal/config"
	"insightpm/internal/domain"
)

// TimeEntryValidator provides validation for the log-time form
type TimeEntryValidator struct {
	validator *Validator
}

// NewTimeEntryValidator creates a new time entry validator
func NewTimeEntryValidator() *TimeEntryValidator {
	return &TimeEntryValidator{validator: NewValidator()}
}

// NewTimeEntryValidatorWithConfig creates a time entry validator using configured limits
func NewTimeEntryValidatorWithConfig(cfg *config.Config) *TimeEntryValidator {
	return &TimeEntryValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateTimeEntry validates an entry built from the form
func (tev *TimeEntryValidator) ValidateTimeEntry(te domain.TimeEntry) error {
	ve := NewValidationError()
	v := tev.validator

	if !v.IsNonEmptyString(te.TaskID) {
		ve.AddRequiredError("task_id")
	}

	maxHours := v.maxEntryHours()
	if te.Hours < MinEntryHours || te.Hours > maxHours {
		ve.AddInvalidRangeError("hours", te.Hours, fmt.Sprintf("must be between %.1f and %g", MinEntryHours, maxHours))
	}

	if te.Date == "" {
		ve.AddRequiredError("date")
	} else if !v.IsValidDate(te.Date) {
		ve.AddInvalidFormatError("date", te.Date, domain.DateLayout)
	}

	return ve.OrNil()
}
