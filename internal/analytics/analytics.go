// Package analytics derives dashboard metrics from the entity mirrors. Every
// function is pure and recomputes from its arguments.
package analytics

import (
	"math"
	"sort"
	"time"

	"insightpm/internal/domain"
)

// Window sizes used by the dashboard views.
const (
	DefaultPlanningWindowDays = 5
	DefaultSeriesDays         = 14
	DefaultTimelineDays       = 14
	DefaultTimelineLeadDays   = 5
)

// Summary holds the headline counters of the dashboard and analytics views.
type Summary struct {
	Total             int `json:"total"`
	Todo              int `json:"todo"`
	InProgress        int `json:"in_progress"`
	Review            int `json:"review"`
	Completed         int `json:"completed"`
	Overdue           int `json:"overdue"`
	CompletionPercent int `json:"completion_percent"`
}

// StatusCount is one bar of the task distribution chart.
type StatusCount struct {
	Status domain.TaskStatus `json:"status"`
	Count  int               `json:"count"`
}

// SeriesPoint is one day of the completion chart.
type SeriesPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

// CompletionRate returns the fraction of tasks that are Done, 0 for none.
func CompletionRate(tasks []domain.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.IsDone() {
			done++
		}
	}
	return float64(done) / float64(len(tasks))
}

// CompletionPercent returns CompletionRate as a rounded percentage.
func CompletionPercent(tasks []domain.Task) int {
	return int(math.Round(CompletionRate(tasks) * 100))
}

// IsOverdue reports whether t is past due as of today.
func IsOverdue(t domain.Task, today time.Time) bool {
	return t.IsOverdue(today)
}

// OverdueCount counts tasks past due as of today.
func OverdueCount(tasks []domain.Task, today time.Time) int {
	n := 0
	for _, t := range tasks {
		if t.IsOverdue(today) {
			n++
		}
	}
	return n
}

// StatusCounts returns per-status counts in board order.
func StatusCounts(tasks []domain.Task) []StatusCount {
	statuses := domain.Statuses()
	index := make(map[domain.TaskStatus]int, len(statuses))
	counts := make([]StatusCount, len(statuses))
	for i, s := range statuses {
		index[s] = i
		counts[i] = StatusCount{Status: s}
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			counts[i].Count++
		}
	}
	return counts
}

// ActiveTasks returns tasks that are Todo or In Progress, preserving order.
func ActiveTasks(tasks []domain.Task) []domain.Task {
	active := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == domain.StatusTodo || t.Status == domain.StatusInProgress {
			active = append(active, t)
		}
	}
	return active
}

// Summarize computes the headline counters.
func Summarize(tasks []domain.Task, today time.Time) Summary {
	s := Summary{Total: len(tasks)}
	for _, c := range StatusCounts(tasks) {
		switch c.Status {
		case domain.StatusTodo:
			s.Todo = c.Count
		case domain.StatusInProgress:
			s.InProgress = c.Count
		case domain.StatusReview:
			s.Review = c.Count
		case domain.StatusDone:
			s.Completed = c.Count
		}
	}
	s.Overdue = OverdueCount(tasks, today)
	s.CompletionPercent = CompletionPercent(tasks)
	return s
}

// CompletionSeries buckets Done tasks by the local date of completed_at and
// returns the last limit buckets in ascending date order. A Done task with no
// completed_at is counted on today. A non-positive limit keeps every bucket.
func CompletionSeries(tasks []domain.Task, today time.Time, limit int) []SeriesPoint {
	todayKey := domain.FormatDate(today.In(time.Local))
	buckets := make(map[string]int)
	for _, t := range tasks {
		if !t.IsDone() {
			continue
		}
		key := todayKey
		if t.CompletedAt != nil {
			key = domain.FormatDate(t.CompletedAt.In(time.Local))
		}
		buckets[key]++
	}

	series := make([]SeriesPoint, 0, len(buckets))
	for date, n := range buckets {
		series = append(series, SeriesPoint{Date: date, Completed: n})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series
}
