package domain

import "strings"

// TaskFilter narrows a task list. Zero fields match everything.
type TaskFilter struct {
	Status     *TaskStatus
	Priority   *Priority
	AssigneeID *string
	ProjectID  *string
	Tag        *string
	Query      *string
}

// IsEmpty reports whether no criteria are set.
func (f TaskFilter) IsEmpty() bool {
	return f.Status == nil && f.Priority == nil && f.AssigneeID == nil &&
		f.ProjectID == nil && f.Tag == nil && f.Query == nil
}

// Matches reports whether t satisfies every criterion.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssigneeID != nil && t.AssigneeID != *f.AssigneeID {
		return false
	}
	if f.ProjectID != nil {
		if t.ProjectID == nil || *t.ProjectID != *f.ProjectID {
			return false
		}
	}
	if f.Tag != nil && !hasTag(t.Tags, *f.Tag) {
		return false
	}
	if f.Query != nil {
		q := strings.ToLower(strings.TrimSpace(*f.Query))
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
