package validation

import (
	"strings"

	"insightpm/internal/config"
	"insightpm/internal/domain"
)

// Default limits used when no configuration is supplied.
const (
	DefaultTitleMaxLength    = 255
	DefaultMaxEstimatedHours = 1000
	DefaultMaxEntryHours     = 24
	MinEntryHours            = 0.1
)

// Validator provides common validation utilities
type Validator struct {
	limits config.ValidationConfig
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{limits: config.ValidationConfig{
		TitleMaxLength:    DefaultTitleMaxLength,
		MaxEstimatedHours: DefaultMaxEstimatedHours,
		MaxEntryHours:     DefaultMaxEntryHours,
	}}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	if cfg == nil {
		return NewValidator()
	}
	return &Validator{limits: cfg.Validation}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := len([]rune(strings.TrimSpace(s)))
	return length >= min && length <= max
}

// IsValidDate checks for a YYYY-MM-DD calendar day
func (v *Validator) IsValidDate(s string) bool {
	_, ok := domain.ParseDate(s)
	return ok
}

// IsValidDateOrder checks that start does not fall after due. Unparsable or
// missing dates are left to IsValidDate.
func (v *Validator) IsValidDateOrder(start, due string) bool {
	s, okStart := domain.ParseDate(start)
	d, okDue := domain.ParseDate(due)
	if !okStart || !okDue {
		return true
	}
	return !s.After(d)
}

// IsKnownStatus checks the value is a board column
func (v *Validator) IsKnownStatus(s domain.TaskStatus) bool {
	for _, known := range domain.Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsKnownPriority checks the value is a priority level
func (v *Validator) IsKnownPriority(p domain.Priority) bool {
	for _, known := range domain.Priorities() {
		if p == known {
			return true
		}
	}
	return false
}

// IsKnownProjectStatus checks the value is a project lifecycle state
func (v *Validator) IsKnownProjectStatus(s domain.ProjectStatus) bool {
	switch s {
	case domain.ProjectActive, domain.ProjectOnHold, domain.ProjectCompleted:
		return true
	}
	return false
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

func (v *Validator) titleMaxLength() int {
	if v.limits.TitleMaxLength > 0 {
		return v.limits.TitleMaxLength
	}
	return DefaultTitleMaxLength
}

func (v *Validator) maxEstimatedHours() float64 {
	if v.limits.MaxEstimatedHours > 0 {
		return v.limits.MaxEstimatedHours
	}
	return DefaultMaxEstimatedHours
}

func (v *Validator) maxEntryHours() float64 {
	if v.limits.MaxEntryHours > 0 {
		return v.limits.MaxEntryHours
	}
	return DefaultMaxEntryHours
}
