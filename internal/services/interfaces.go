package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"insightpm/internal/analytics"
	"insightpm/internal/config"
	"insightpm/internal/domain"
	"insightpm/internal/logging"
	"insightpm/internal/remote"
	"insightpm/internal/store"
)

// DashboardData is the landing view: counters, status distribution and the
// active task list.
type DashboardData struct {
	Summary      analytics.Summary       `json:"summary"`
	Distribution []analytics.StatusCount `json:"distribution"`
	ActiveTasks  []domain.Task           `json:"active_tasks"`
	Projects     []domain.Project        `json:"projects"`
}

// AnalyticsData is the analytics view.
type AnalyticsData struct {
	Summary          analytics.Summary       `json:"summary"`
	CompletionRate   float64                 `json:"completion_rate"`
	CompletionSeries []analytics.SeriesPoint `json:"completion_series"`
}

// ResourceData is the resource utilization view.
type ResourceData struct {
	WindowDays int                  `json:"window_days"`
	Loads      []analytics.UserLoad `json:"loads"`
}

// TimeEntryWithTask pairs an entry with the title of its task.
type TimeEntryWithTask struct {
	Entry     domain.TimeEntry `json:"entry"`
	TaskTitle string           `json:"task_title"`
}

// TimeLogData is the time logging view.
type TimeLogData struct {
	WeekHours   float64             `json:"week_hours"`
	TotalHours  float64             `json:"total_hours"`
	HoursByTask map[string]float64  `json:"hours_by_task"`
	Entries     []TimeEntryWithTask `json:"entries"`
}

// SearchCriteria narrows and orders a task search.
type SearchCriteria struct {
	Filter domain.TaskFilter
	Sort   SortOrder
	Limit  int
}

// SortOrder names a task ordering.
type SortOrder string

const (
	SortByBoard    SortOrder = ""
	SortByDueDate  SortOrder = "due_date"
	SortByPriority SortOrder = "priority"
	SortByTitle    SortOrder = "title"
)

// SyncService loads the remote collections into the entity store.
type SyncService interface {
	// FetchAll empties the store and loads every collection concurrently.
	// A table that fails stays empty; the failures are returned joined.
	FetchAll(ctx context.Context) error
	// Refetch reloads every collection, keeping the current mirror of any
	// table that fails.
	Refetch(ctx context.Context) error
}

// TaskService applies optimistic task mutations.
type TaskService interface {
	// CreateOrUpdate patches the store and starts the remote write in the
	// background. The returned task is the optimistic local copy.
	CreateOrUpdate(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	MoveTask(ctx context.Context, id string, status domain.TaskStatus) (domain.Task, error)
	Delete(ctx context.Context, id string) error
	GetTask(id string) (domain.Task, error)
	ListTasks() []domain.Task
}

// TimeLogService applies optimistic time entry mutations.
type TimeLogService interface {
	LogTime(ctx context.Context, in domain.TimeEntryInput) (domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries() []domain.TimeEntry
}

// ProjectService applies optimistic project mutations.
type ProjectService interface {
	Create(ctx context.Context, in domain.ProjectInput) (domain.Project, error)
	Delete(ctx context.Context, id string) error
	ListProjects() []domain.Project
}

// SearchService filters and orders the mirrored tasks and entries.
type SearchService interface {
	SearchTasks(criteria SearchCriteria) []domain.Task
	SearchTimeEntries(taskID, userID string) []TimeEntryWithTask
}

// ReportingService builds the dashboard views from the store.
type ReportingService interface {
	Dashboard() *DashboardData
	Board() []analytics.Column
	Analytics() *AnalyticsData
	Resources() *ResourceData
	Timeline() analytics.Timeline
	TimeLog() *TimeLogData
}

// Dependencies wires a service to the remote store and the local mirror.
type Dependencies struct {
	Data   remote.DataService
	Store  *store.EntityStore
	Writes *Writes
	Config *config.Config
	Logger *zap.Logger
	Now    func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Store == nil {
		d.Store = store.New()
	}
	if d.Logger == nil {
		d.Logger = logging.OrNop(nil)
	}
	if d.Writes == nil {
		d.Writes = NewWrites(d.Logger)
	}
	if d.Config == nil {
		d.Config = config.NewConfig()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	SyncService      SyncService
	TaskService      TaskService
	TimeLogService   TimeLogService
	ProjectService   ProjectService
	SearchService    SearchService
	ReportingService ReportingService

	writes *Writes
}

// NewServiceContainer builds every service over one store and one set of
// background writes.
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	deps = deps.withDefaults()
	return &ServiceContainer{
		SyncService:      NewSyncService(deps),
		TaskService:      NewTaskService(deps),
		TimeLogService:   NewTimeLogService(deps),
		ProjectService:   NewProjectService(deps),
		SearchService:    NewSearchService(deps),
		ReportingService: NewReportingService(deps),
		writes:           deps.Writes,
	}
}

// Wait blocks until every background write has settled.
func (c *ServiceContainer) Wait() {
	c.writes.Wait()
}
