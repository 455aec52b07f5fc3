package services

import (
	"time"

	"insightpm/internal/analytics"
	"insightpm/internal/config"
	"insightpm/internal/store"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	store    *store.EntityStore
	settings config.AnalyticsConfig
	now      func() time.Time
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(deps Dependencies) ReportingService {
	deps = deps.withDefaults()
	return &reportingServiceImpl{
		store:    deps.Store,
		settings: deps.Config.Analytics,
		now:      deps.Now,
	}
}

// Dashboard returns the landing view
func (r *reportingServiceImpl) Dashboard() *DashboardData {
	tasks := r.store.Tasks.All()
	return &DashboardData{
		Summary:      analytics.Summarize(tasks, r.now()),
		Distribution: analytics.StatusCounts(tasks),
		ActiveTasks:  analytics.ActiveTasks(tasks),
		Projects:     r.store.Projects.All(),
	}
}

// Board returns the kanban columns
func (r *reportingServiceImpl) Board() []analytics.Column {
	return analytics.Board(r.store.Tasks.All())
}

// Analytics returns completion metrics and the completion chart
func (r *reportingServiceImpl) Analytics() *AnalyticsData {
	tasks := r.store.Tasks.All()
	now := r.now()
	return &AnalyticsData{
		Summary:          analytics.Summarize(tasks, now),
		CompletionRate:   analytics.CompletionRate(tasks),
		CompletionSeries: analytics.CompletionSeries(tasks, now, r.seriesDays()),
	}
}

// Resources returns per-user utilization over the planning window
func (r *reportingServiceImpl) Resources() *ResourceData {
	window := r.settings.PlanningWindowDays
	if window <= 0 {
		window = analytics.DefaultPlanningWindowDays
	}
	return &ResourceData{
		WindowDays: window,
		Loads:      analytics.UserLoads(r.store.Users.All(), r.store.Tasks.All(), window),
	}
}

// Timeline returns the Gantt view around today
func (r *reportingServiceImpl) Timeline() analytics.Timeline {
	days := r.settings.TimelineDays
	if days <= 0 {
		days = analytics.DefaultTimelineDays
	}
	lead := r.settings.TimelineLeadDays
	if lead < 0 {
		lead = analytics.DefaultTimelineLeadDays
	}
	return analytics.BuildTimeline(r.store.Tasks.All(), r.store.Users.All(), r.now(), days, lead)
}

// TimeLog returns logged hours with this week's total
func (r *reportingServiceImpl) TimeLog() *TimeLogData {
	entries := r.store.TimeEntries.All()
	now := r.now()

	titles := make(map[string]string)
	for _, t := range r.store.Tasks.All() {
		titles[t.ID] = t.Title
	}
	withTasks := make([]TimeEntryWithTask, len(entries))
	for i, e := range entries {
		withTasks[i] = TimeEntryWithTask{Entry: e, TaskTitle: titles[e.TaskID]}
	}

	return &TimeLogData{
		WeekHours:   analytics.HoursBetween(entries, analytics.WeekStart(now), now),
		TotalHours:  analytics.TotalHours(entries),
		HoursByTask: analytics.HoursByTask(entries),
		Entries:     withTasks,
	}
}

func (r *reportingServiceImpl) seriesDays() int {
	if r.settings.SeriesDays > 0 {
		return r.settings.SeriesDays
	}
	return analytics.DefaultSeriesDays
}
