package validation

import (
	"testing"

	"insightpm/internal/domain"
)

func TestTimeEntryValidator_ValidateTimeEntry(t *testing.T) {
	validator := NewTimeEntryValidator()

	tests := []struct {
		name        string
		entry       domain.TimeEntry
		expectError bool
		errorType   ValidationErrorType
	}{
		{
			name:  "Valid entry",
			entry: domain.TimeEntry{TaskID: "task-1", Hours: 1.5, Date: "2024-03-01"},
		},
		{
			name:  "Minimum hours",
			entry: domain.TimeEntry{TaskID: "task-1", Hours: 0.1, Date: "2024-03-01"},
		},
		{
			name:        "Missing task",
			entry:       domain.TimeEntry{Hours: 1, Date: "2024-03-01"},
			expectError: true,
			errorType:   ErrorTypeRequired,
		},
		{
			name:        "Zero hours",
			entry:       domain.TimeEntry{TaskID: "task-1", Hours: 0, Date: "2024-03-01"},
			expectError: true,
			errorType:   ErrorTypeInvalidRange,
		},
		{
			name:        "More than a day",
			entry:       domain.TimeEntry{TaskID: "task-1", Hours: 24.5, Date: "2024-03-01"},
			expectError: true,
			errorType:   ErrorTypeInvalidRange,
		},
		{
			name:        "Missing date",
			entry:       domain.TimeEntry{TaskID: "task-1", Hours: 2},
			expectError: true,
			errorType:   ErrorTypeRequired,
		},
		{
			name:        "Malformed date",
			entry:       domain.TimeEntry{TaskID: "task-1", Hours: 2, Date: "yesterday"},
			expectError: true,
			errorType:   ErrorTypeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTimeEntry(tt.entry)

			if !tt.expectError {
				if err != nil {
					t.Errorf("expected no error but got %v", err)
				}
				return
			}

			validationErr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError but got %T", err)
			}
			if len(validationErr.Errors) != 1 {
				t.Fatalf("expected one error but got %d: %v", len(validationErr.Errors), validationErr)
			}
			if validationErr.Errors[0].Type != tt.errorType {
				t.Errorf("expected error type %v but got %v", tt.errorType, validationErr.Errors[0].Type)
			}
		})
	}
}

func TestProjectValidator_ValidateProject(t *testing.T) {
	validator := NewProjectValidator()

	tests := []struct {
		name    string
		project domain.Project
		fields  []string
	}{
		{"Valid", domain.Project{Name: "Website", Status: domain.ProjectActive, Progress: 40}, nil},
		{"Missing name", domain.Project{Status: domain.ProjectActive}, []string{"name"}},
		{"Unknown status", domain.Project{Name: "Website", Status: "Archived"}, []string{"status"}},
		{"Progress out of range", domain.Project{Name: "Website", Status: domain.ProjectOnHold, Progress: 120}, []string{"progress"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateProject(tt.project)
			if tt.fields == nil {
				if err != nil {
					t.Errorf("expected no error but got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			got := err.(*ValidationError).Fields()
			if len(got) != len(tt.fields) || got[0] != tt.fields[0] {
				t.Errorf("expected fields %v but got %v", tt.fields, got)
			}
		})
	}
}
