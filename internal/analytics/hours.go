package analytics

import (
	"time"

	"insightpm/internal/domain"
)

// TotalHours sums the hours of entries.
func TotalHours(entries []domain.TimeEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Hours
	}
	return sum
}

// HoursByTask sums hours per task id.
func HoursByTask(entries []domain.TimeEntry) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range entries {
		out[e.TaskID] += e.Hours
	}
	return out
}

// HoursByUser sums hours per user id.
func HoursByUser(entries []domain.TimeEntry) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range entries {
		out[e.UserID] += e.Hours
	}
	return out
}

// HoursBetween sums hours of entries dated within [from, to], inclusive.
// Entries with an unparsable date are skipped.
func HoursBetween(entries []domain.TimeEntry, from, to time.Time) float64 {
	lo, hi := domain.StartOfDay(from), domain.StartOfDay(to)
	var sum float64
	for _, e := range entries {
		d, ok := domain.ParseDate(e.Date)
		if !ok || d.Before(lo) || d.After(hi) {
			continue
		}
		sum += e.Hours
	}
	return sum
}

// WeekStart returns the Monday starting the week containing t.
func WeekStart(t time.Time) time.Time {
	day := domain.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
