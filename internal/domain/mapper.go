package domain

import (
	"time"

	"insightpm/internal/remote"
)

// ColumnID is the primary key column of every collection.
const ColumnID = "id"

// TaskMapper handles conversion between Task and data service rows.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToRow converts a Task to a write payload. The id is left for the data
// service to assign or for the caller to use as a filter.
func (m *TaskMapper) ToRow(task Task) remote.Row {
	row := remote.Row{
		"title":          task.Title,
		"description":    task.Description,
		"status":         string(task.Status),
		"priority":       string(task.Priority),
		"assignee_id":    task.AssigneeID,
		"project_id":     nil,
		"start_date":     task.StartDate,
		"due_date":       task.DueDate,
		"estimated_time": task.EstimatedTime,
		"tags":           stringsOrEmpty(task.Tags),
		"completed_at":   nil,
		"dependencies":   stringsOrEmpty(task.Dependencies),
	}
	if task.ProjectID != nil {
		row["project_id"] = *task.ProjectID
	}
	if task.CompletedAt != nil {
		row["completed_at"] = task.CompletedAt.UTC().Format(time.RFC3339)
	}
	return row
}

// FromRow converts a data service row to a Task.
func (m *TaskMapper) FromRow(row remote.Row) Task {
	return Task{
		ID:            row.String(ColumnID),
		Title:         row.String("title"),
		Description:   row.String("description"),
		Status:        TaskStatus(row.String("status")),
		Priority:      Priority(row.String("priority")),
		AssigneeID:    row.String("assignee_id"),
		ProjectID:     NormalizeProjectID(row.String("project_id")),
		StartDate:     row.String("start_date"),
		DueDate:       row.String("due_date"),
		EstimatedTime: row.Float("estimated_time"),
		Tags:          row.Strings("tags"),
		CompletedAt:   row.Time("completed_at"),
		Dependencies:  row.Strings("dependencies"),
	}
}

// FromRows converts a slice of rows to Tasks.
func (m *TaskMapper) FromRows(rows []remote.Row) []Task {
	tasks := make([]Task, len(rows))
	for i, row := range rows {
		tasks[i] = m.FromRow(row)
	}
	return tasks
}

// ProjectMapper handles conversion between Project and data service rows.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToRow converts a Project to a write payload.
func (m *ProjectMapper) ToRow(p Project) remote.Row {
	row := remote.Row{
		"name":        p.Name,
		"description": p.Description,
		"status":      string(p.Status),
		"progress":    p.Progress,
		"color":       nil,
		"order":       nil,
	}
	if p.Color != nil {
		row["color"] = *p.Color
	}
	if p.Order != nil {
		row["order"] = *p.Order
	}
	return row
}

// FromRow converts a data service row to a Project.
func (m *ProjectMapper) FromRow(row remote.Row) Project {
	return Project{
		ID:          row.String(ColumnID),
		Name:        row.String("name"),
		Description: row.String("description"),
		Status:      ProjectStatus(row.String("status")),
		Progress:    row.Int("progress"),
		Color:       row.OptionalString("color"),
		Order:       row.OptionalInt("order"),
	}
}

// FromRows converts a slice of rows to Projects.
func (m *ProjectMapper) FromRows(rows []remote.Row) []Project {
	projects := make([]Project, len(rows))
	for i, row := range rows {
		projects[i] = m.FromRow(row)
	}
	return projects
}

// UserMapper handles conversion between User and data service rows.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToRow converts a User to a write payload, id included: profiles are keyed
// by the account id.
func (m *UserMapper) ToRow(u User) remote.Row {
	return remote.Row{
		ColumnID:               u.ID,
		"full_name":            u.FullName,
		"role":                 u.Role,
		"avatar_url":           u.AvatarURL,
		"daily_capacity_hours": u.DailyCapacityHours,
	}
}

// FromRow converts a data service row to a User.
func (m *UserMapper) FromRow(row remote.Row) User {
	return User{
		ID:                 row.String(ColumnID),
		FullName:           row.String("full_name"),
		Role:               row.String("role"),
		AvatarURL:          row.String("avatar_url"),
		DailyCapacityHours: row.Float("daily_capacity_hours"),
	}
}

// FromRows converts a slice of rows to Users.
func (m *UserMapper) FromRows(rows []remote.Row) []User {
	users := make([]User, len(rows))
	for i, row := range rows {
		users[i] = m.FromRow(row)
	}
	return users
}

// TimeEntryMapper handles conversion between TimeEntry and data service rows.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToRow converts a TimeEntry to a write payload.
func (m *TimeEntryMapper) ToRow(te TimeEntry) remote.Row {
	row := remote.Row{
		"task_id":     te.TaskID,
		"user_id":     te.UserID,
		"hours":       te.Hours,
		"date":        te.Date,
		"description": nil,
	}
	if te.Description != nil {
		row["description"] = *te.Description
	}
	return row
}

// FromRow converts a data service row to a TimeEntry.
func (m *TimeEntryMapper) FromRow(row remote.Row) TimeEntry {
	return TimeEntry{
		ID:          row.String(ColumnID),
		TaskID:      row.String("task_id"),
		UserID:      row.String("user_id"),
		Hours:       row.Float("hours"),
		Date:        row.String("date"),
		Description: row.OptionalString("description"),
	}
}

// FromRows converts a slice of rows to TimeEntries.
func (m *TimeEntryMapper) FromRows(rows []remote.Row) []TimeEntry {
	entries := make([]TimeEntry, len(rows))
	for i, row := range rows {
		entries[i] = m.FromRow(row)
	}
	return entries
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task      *TaskMapper
	Project   *ProjectMapper
	User      *UserMapper
	TimeEntry *TimeEntryMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:      NewTaskMapper(),
		Project:   NewProjectMapper(),
		User:      NewUserMapper(),
		TimeEntry: NewTimeEntryMapper(),
	}
}
