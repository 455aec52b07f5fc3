package domain

import "strings"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Active"
	ProjectOnHold    ProjectStatus = "On Hold"
	ProjectCompleted ProjectStatus = "Completed"
)

// ParseProjectStatus accepts a project status case-insensitively.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range []ProjectStatus{ProjectActive, ProjectOnHold, ProjectCompleted} {
		if strings.ToLower(string(status)) == norm {
			return status, true
		}
	}
	return "", false
}

// Project groups tasks.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	Color       *string       `json:"color,omitempty"`
	Order       *int          `json:"order,omitempty"`
}

// ProjectInput is the create-project form.
type ProjectInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	Color       string        `json:"color,omitempty"`
}

// ToProject builds the project, defaulting status to Active and clamping
// progress to 0-100.
func (in ProjectInput) ToProject() Project {
	p := Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      in.Status,
		Progress:    ClampProgress(in.Progress),
	}
	if p.Status == "" {
		p.Status = ProjectActive
	}
	if c := strings.TrimSpace(in.Color); c != "" {
		p.Color = &c
	}
	return p
}

// ClampProgress bounds a percentage to 0-100.
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
