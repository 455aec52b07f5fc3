package validation

import (
	"insightpm/internal/config"
	"insightpm/internal/domain"
)

// TaskValidator provides validation for the task form
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

// NewTaskValidatorWithConfig creates a task validator using configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateTitle validates a task title
func (tv *TaskValidator) ValidateTitle(title string) error {
	ve := NewValidationError()
	tv.checkTitle(ve, title)
	return ve.OrNil()
}

func (tv *TaskValidator) checkTitle(ve *ValidationError, title string) {
	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("title")
		return
	}
	maxLen := tv.validator.titleMaxLength()
	if !tv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		ve.AddInvalidLengthError("title", trimmed, 1, maxLen)
	}
}

// ValidateTaskInput validates a create or edit submission. Defaults are
// expected to have been applied already.
func (tv *TaskValidator) ValidateTaskInput(in domain.TaskInput) error {
	ve := NewValidationError()
	v := tv.validator

	if in.IsEdit() && domain.IsTempID(in.ID) {
		ve.AddInvalidValueError("id", in.ID, "refers to a task that is still being created")
	}

	tv.checkTitle(ve, in.Title)

	if !v.IsKnownStatus(in.Status) {
		ve.AddInvalidValueError("status", in.Status, "must be one of Todo, In Progress, Review, Done")
	}
	if !v.IsKnownPriority(in.Priority) {
		ve.AddInvalidValueError("priority", in.Priority, "must be one of Low, Medium, High, Critical")
	}

	if in.StartDate != "" && !v.IsValidDate(in.StartDate) {
		ve.AddInvalidFormatError("start_date", in.StartDate, domain.DateLayout)
	}
	if in.DueDate != "" && !v.IsValidDate(in.DueDate) {
		ve.AddInvalidFormatError("due_date", in.DueDate, domain.DateLayout)
	}
	if !v.IsValidDateOrder(in.StartDate, in.DueDate) {
		ve.AddInvalidRangeError("due_date", in.DueDate, "must not be before the start date")
	}

	if in.EstimatedTime < 0 || in.EstimatedTime > v.maxEstimatedHours() {
		ve.AddInvalidRangeError("estimated_time", in.EstimatedTime, "must be between 0 and the configured maximum")
	}

	for _, dep := range in.Dependencies {
		if in.IsEdit() && dep == in.ID {
			ve.AddInvalidValueError("dependencies", dep, "cannot include the task itself")
		}
	}

	return ve.OrNil()
}

// ValidateStatus validates a board move
func (tv *TaskValidator) ValidateStatus(status domain.TaskStatus) error {
	if tv.validator.IsKnownStatus(status) {
		return nil
	}
	ve := NewValidationError()
	ve.AddInvalidValueError("status", status, "must be one of Todo, In Progress, Review, Done")
	return ve
}

// ValidateTaskID validates a task id
func (tv *TaskValidator) ValidateTaskID(id string) error {
	if tv.validator.IsNonEmptyString(id) {
		return nil
	}
	ve := NewValidationError()
	ve.AddRequiredError("task_id")
	return ve
}
