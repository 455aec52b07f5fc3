package validation

import (
	"insightpm/internal/domain"
)

// ProjectValidator provides validation for the create-project form
type ProjectValidator struct {
	validator *Validator
}

// NewProjectValidator creates a new project validator
func NewProjectValidator() *ProjectValidator {
	return &ProjectValidator{validator: NewValidator()}
}

// ValidateProject validates a project built from the form
func (pv *ProjectValidator) ValidateProject(p domain.Project) error {
	ve := NewValidationError()
	v := pv.validator

	if !v.IsNonEmptyString(p.Name) {
		ve.AddRequiredError("name")
	} else if maxLen := v.titleMaxLength(); !v.IsValidStringLength(p.Name, 1, maxLen) {
		ve.AddInvalidLengthError("name", p.Name, 1, maxLen)
	}
	if !v.IsKnownProjectStatus(p.Status) {
		ve.AddInvalidValueError("status", p.Status, "must be one of Active, On Hold, Completed")
	}
	if p.Progress < 0 || p.Progress > 100 {
		ve.AddInvalidRangeError("progress", p.Progress, "must be between 0 and 100")
	}

	return ve.OrNil()
}
