package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is a board column.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusReview     TaskStatus = "Review"
	StatusDone       TaskStatus = "Done"
)

// Statuses returns the board columns in display order.
func Statuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusDone}
}

// ParseTaskStatus accepts a status label case-insensitively, also allowing
// "in_progress" / "in-progress" for command line use.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range Statuses() {
		if strings.ToLower(string(status)) == norm {
			return status, true
		}
	}
	return "", false
}

// Priority of a task.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities returns all priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ParsePriority accepts a priority label case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Priorities() {
		if strings.ToLower(string(p)) == norm {
			return p, true
		}
	}
	return "", false
}

// TempIDPrefix marks ids assigned locally before the data service confirms
// an insert.
const TempIDPrefix = "tmp-"

// NewTempID returns a fresh temporary id.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was assigned locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// DefaultTag is used when a task is created without tags.
const DefaultTag = "general"

// Task represents a unit of work on the board.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	AssigneeID    string     `json:"assignee_id"`
	ProjectID     *string    `json:"project_id"`
	StartDate     string     `json:"start_date"`
	DueDate       string     `json:"due_date"`
	EstimatedTime float64    `json:"estimated_time"`
	Tags          []string   `json:"tags"`
	CompletedAt   *time.Time `json:"completed_at"`
	Dependencies  []string   `json:"dependencies,omitempty"`
}

// IsDone reports whether the task sits in the Done column.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// IsPending reports whether the task still carries a temporary id.
func (t Task) IsPending() bool {
	return IsTempID(t.ID)
}

// ApplyCompletion keeps CompletedAt set iff the task is Done. A task that is
// already Done keeps its original completion time.
func (t *Task) ApplyCompletion(now time.Time) {
	if t.Status != StatusDone {
		t.CompletedAt = nil
		return
	}
	if t.CompletedAt == nil {
		ts := now
		t.CompletedAt = &ts
	}
}

// IsOverdue reports whether the task is past its due date and not Done.
// Tasks without a parsable due date are never overdue.
func (t Task) IsOverdue(today time.Time) bool {
	if t.IsDone() {
		return false
	}
	due, ok := ParseDate(t.DueDate)
	if !ok {
		return false
	}
	return due.Before(StartOfDay(today))
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	out := t
	if t.ProjectID != nil {
		p := *t.ProjectID
		out.ProjectID = &p
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		out.CompletedAt = &c
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.Dependencies != nil {
		out.Dependencies = append([]string(nil), t.Dependencies...)
	}
	return out
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// TaskInput is the create/edit form. An empty ID means create.
type TaskInput struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	AssigneeID    string     `json:"assignee_id"`
	ProjectID     string     `json:"project_id"`
	StartDate     string     `json:"start_date"`
	DueDate       string     `json:"due_date"`
	EstimatedTime float64    `json:"estimated_time"`
	Tags          []string   `json:"tags"`
	Dependencies  []string   `json:"dependencies,omitempty"`
}

// IsEdit reports whether the input targets an existing task.
func (in TaskInput) IsEdit() bool {
	return strings.TrimSpace(in.ID) != ""
}

// WithDefaults fills the form defaults: Todo, Medium, start today, due in two
// days, 4 estimated hours and the general tag.
func (in TaskInput) WithDefaults(today time.Time) TaskInput {
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.StartDate == "" {
		in.StartDate = FormatDate(today)
	}
	if in.DueDate == "" {
		in.DueDate = FormatDate(today.AddDate(0, 0, 2))
	}
	if in.EstimatedTime == 0 {
		in.EstimatedTime = 4
	}
	if len(in.Tags) == 0 {
		in.Tags = []string{DefaultTag}
	}
	return in
}

// ToTask builds the task the input describes. completed_at follows the
// status at now.
func (in TaskInput) ToTask(now time.Time) Task {
	task := Task{
		ID:            strings.TrimSpace(in.ID),
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		AssigneeID:    in.AssigneeID,
		ProjectID:     NormalizeProjectID(in.ProjectID),
		StartDate:     in.StartDate,
		DueDate:       in.DueDate,
		EstimatedTime: in.EstimatedTime,
		Tags:          append([]string(nil), in.Tags...),
		Dependencies:  append([]string(nil), in.Dependencies...),
	}
	task.ApplyCompletion(now)
	return task
}

// InputFrom returns the form prefilled with t, as the edit dialog opens it.
func InputFrom(t Task) TaskInput {
	in := TaskInput{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		AssigneeID:    t.AssigneeID,
		StartDate:     t.StartDate,
		DueDate:       t.DueDate,
		EstimatedTime: t.EstimatedTime,
		Tags:          append([]string(nil), t.Tags...),
		Dependencies:  append([]string(nil), t.Dependencies...),
	}
	if t.ProjectID != nil {
		in.ProjectID = *t.ProjectID
	}
	return in
}

// NormalizeProjectID maps an empty or whitespace id to unset.
func NormalizeProjectID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

// ParseTags splits a comma separated tag list, dropping blanks. An empty list
// yields the default tag.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	return tags
}
