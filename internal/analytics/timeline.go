package analytics

import (
	"time"

	"insightpm/internal/domain"
)

// TimelineBar places one task on the Gantt grid. Offsets and widths are in
// days from the window start and as a percentage of the window.
type TimelineBar struct {
	Task         domain.Task  `json:"task"`
	Assignee     *domain.User `json:"assignee,omitempty"`
	OffsetDays   int          `json:"offset_days"`
	WidthDays    int          `json:"width_days"`
	LeftPercent  float64      `json:"left_percent"`
	WidthPercent float64      `json:"width_percent"`
	Visible      bool         `json:"visible"`
}

// Timeline is the Gantt view: a run of calendar days and a bar per task.
type Timeline struct {
	Start string        `json:"start"`
	Days  []string      `json:"days"`
	Today string        `json:"today"`
	Bars  []TimelineBar `json:"bars"`
}

// BuildTimeline lays tasks over a window of days starting leadDays before
// today. A bar spans start_date to due_date and is at least one day wide;
// the part outside the window is cut off. Tasks missing either date get an
// invisible zero-width bar.
func BuildTimeline(tasks []domain.Task, users []domain.User, today time.Time, days, leadDays int) Timeline {
	if days <= 0 {
		days = DefaultTimelineDays
	}
	if leadDays < 0 {
		leadDays = DefaultTimelineLeadDays
	}
	start := domain.StartOfDay(today).AddDate(0, 0, -leadDays)

	tl := Timeline{
		Start: domain.FormatDate(start),
		Days:  make([]string, days),
		Today: domain.FormatDate(today.In(time.Local)),
		Bars:  make([]TimelineBar, 0, len(tasks)),
	}
	for i := range tl.Days {
		tl.Days[i] = domain.FormatDate(start.AddDate(0, 0, i))
	}

	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	dayWidth := 100 / float64(days)
	for _, t := range tasks {
		bar := TimelineBar{Task: t}
		if u, ok := byID[t.AssigneeID]; ok {
			bar.Assignee = &u
		}
		if offset, width, ok := placeBar(t, start, days); ok {
			bar.OffsetDays = offset
			bar.WidthDays = width
			bar.LeftPercent = float64(offset) * dayWidth
			bar.WidthPercent = float64(width) * dayWidth
			bar.Visible = width > 0
		}
		tl.Bars = append(tl.Bars, bar)
	}
	return tl
}

func placeBar(t domain.Task, windowStart time.Time, days int) (offset, width int, ok bool) {
	s, okStart := domain.ParseDate(t.StartDate)
	e, okDue := domain.ParseDate(t.DueDate)
	if !okStart || !okDue {
		return 0, 0, false
	}

	from := domain.DaysBetween(windowStart, s)
	duration := max(1, domain.DaysBetween(s, e))
	left := min(max(0, from), days)
	right := min(days, from+duration)
	return left, max(0, right-left), true
}
