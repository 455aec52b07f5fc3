package domain

import (
	"strings"
	"time"
)

// TimeEntry is hours logged against a task on a day.
type TimeEntry struct {
	ID          string  `json:"id"`
	TaskID      string  `json:"task_id"`
	UserID      string  `json:"user_id"`
	Hours       float64 `json:"hours"`
	Date        string  `json:"date"`
	Description *string `json:"description,omitempty"`
}

// IsPending reports whether the entry still carries a temporary id.
func (te TimeEntry) IsPending() bool {
	return IsTempID(te.ID)
}

// TimeEntryInput is the log-time form.
type TimeEntryInput struct {
	TaskID      string  `json:"task_id"`
	UserID      string  `json:"user_id"`
	Hours       float64 `json:"hours"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
}

// ToTimeEntry builds the entry, defaulting the date to today.
func (in TimeEntryInput) ToTimeEntry(today time.Time) TimeEntry {
	te := TimeEntry{
		TaskID: strings.TrimSpace(in.TaskID),
		UserID: strings.TrimSpace(in.UserID),
		Hours:  in.Hours,
		Date:   in.Date,
	}
	if te.Date == "" {
		te.Date = FormatDate(today)
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		te.Description = &d
	}
	return te
}
