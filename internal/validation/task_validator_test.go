package validation

import (
	"strings"
	"testing"

	"insightpm/internal/config"
	"insightpm/internal/domain"
)

func validTaskInput() domain.TaskInput {
	return domain.TaskInput{
		Title:         "Write release notes",
		Status:        domain.StatusTodo,
		Priority:      domain.PriorityMedium,
		StartDate:     "2024-03-01",
		DueDate:       "2024-03-03",
		EstimatedTime: 4,
		Tags:          []string{"general"},
	}
}

func TestTaskValidator_ValidateTitle(t *testing.T) {
	validator := NewTaskValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
		errorType   ValidationErrorType
	}{
		{"Valid title", "Task 1", false, ""},
		{"Empty title", "", true, ErrorTypeRequired},
		{"Whitespace only", "   ", true, ErrorTypeRequired},
		{"Too long title", strings.Repeat("a", 256), true, ErrorTypeInvalidLength},
		{"Max length title", strings.Repeat("a", 255), false, ""},
		{"Punctuation allowed", "Fix #42: login (urgent)!", false, ""},
		{"Multibyte counted as runes", strings.Repeat("é", 255), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTitle(tt.input)

			if !tt.expectError {
				if err != nil {
					t.Errorf("ValidateTitle(%q) expected no error but got %v", tt.input, err)
				}
				return
			}

			validationErr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("ValidateTitle(%q) expected ValidationError but got %T", tt.input, err)
			}
			if validationErr.Errors[0].Type != tt.errorType {
				t.Errorf("ValidateTitle(%q) expected error type %v but got %v", tt.input, tt.errorType, validationErr.Errors[0].Type)
			}
		})
	}
}

func TestTaskValidator_ValidateTaskInput(t *testing.T) {
	validator := NewTaskValidator()

	tests := []struct {
		name       string
		mutate     func(in *domain.TaskInput)
		wantFields []string
	}{
		{"Valid create", func(in *domain.TaskInput) {}, nil},
		{"Valid edit", func(in *domain.TaskInput) { in.ID = "task-1" }, nil},
		{"Missing title", func(in *domain.TaskInput) { in.Title = " " }, []string{"title"}},
		{"Unknown status", func(in *domain.TaskInput) { in.Status = "Blocked" }, []string{"status"}},
		{"Unknown priority", func(in *domain.TaskInput) { in.Priority = "Urgent" }, []string{"priority"}},
		{"Bad start date", func(in *domain.TaskInput) { in.StartDate = "03/01/2024" }, []string{"start_date"}},
		{"Bad due date", func(in *domain.TaskInput) { in.DueDate = "2024-13-01" }, []string{"due_date"}},
		{"Due before start", func(in *domain.TaskInput) { in.DueDate = "2024-02-28" }, []string{"due_date"}},
		{"Same day allowed", func(in *domain.TaskInput) { in.DueDate = in.StartDate }, nil},
		{"Negative estimate", func(in *domain.TaskInput) { in.EstimatedTime = -1 }, []string{"estimated_time"}},
		{"Estimate over limit", func(in *domain.TaskInput) { in.EstimatedTime = 1001 }, []string{"estimated_time"}},
		{"Edit of pending task", func(in *domain.TaskInput) { in.ID = domain.TempIDPrefix + "abc" }, []string{"id"}},
		{"Self dependency", func(in *domain.TaskInput) {
			in.ID = "task-1"
			in.Dependencies = []string{"task-2", "task-1"}
		}, []string{"dependencies"}},
		{"Several problems", func(in *domain.TaskInput) {
			in.Title = ""
			in.Status = ""
		}, []string{"title", "status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTaskInput()
			tt.mutate(&in)

			err := validator.ValidateTaskInput(in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Errorf("expected no error but got %v", err)
				}
				return
			}

			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError but got %T (%v)", err, err)
			}
			got := err.(*ValidationError).Fields()
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("expected fields %v but got %v", tt.wantFields, got)
			}
		})
	}
}

func TestTaskValidator_ConfiguredLimits(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.TitleMaxLength = 10
	cfg.Validation.MaxEstimatedHours = 8
	validator := NewTaskValidatorWithConfig(cfg)

	in := validTaskInput()
	in.Title = strings.Repeat("x", 11)
	in.EstimatedTime = 9

	err := validator.ValidateTaskInput(in)
	if err == nil {
		t.Fatal("expected error for configured limits")
	}
	fields := err.(*ValidationError).Fields()
	if len(fields) != 2 || fields[0] != "title" || fields[1] != "estimated_time" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestTaskValidator_ValidateStatus(t *testing.T) {
	validator := NewTaskValidator()

	for _, status := range domain.Statuses() {
		if err := validator.ValidateStatus(status); err != nil {
			t.Errorf("ValidateStatus(%q) unexpected error %v", status, err)
		}
	}
	if err := validator.ValidateStatus("Archived"); err == nil {
		t.Error("ValidateStatus(Archived) expected error")
	}
	if err := validator.ValidateTaskID(""); err == nil {
		t.Error("ValidateTaskID(\"\") expected error")
	}
}
