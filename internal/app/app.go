// Package app owns the application context: configuration, logger, remote
// backend, entity store, session gate and services. It lives from process
// start until Close.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"insightpm/internal/analytics"
	"insightpm/internal/config"
	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/logging"
	"insightpm/internal/remote"
	"insightpm/internal/services"
	"insightpm/internal/session"
	"insightpm/internal/store"
)

// API is the surface driven by the HTTP server and the CLI.
type API interface {
	// Session
	View() session.View
	Session() *remote.Session
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, form session.SignUpForm) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	LoginError() string
	Notice() string
	EnsureSession(ctx context.Context) error

	// Entities
	Refresh(ctx context.Context) error
	Tasks(criteria services.SearchCriteria) []domain.Task
	Task(id string) (domain.Task, error)
	SaveTask(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	MoveTask(ctx context.Context, id string, status domain.TaskStatus) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Projects() []domain.Project
	CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	Users() []domain.User
	TimeEntries(taskID, userID string) []services.TimeEntryWithTask
	LogTime(ctx context.Context, in domain.TimeEntryInput) (domain.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error

	// Views
	Dashboard() *services.DashboardData
	Board() []analytics.Column
	Timeline() analytics.Timeline
	Resources() *services.ResourceData
	Analytics() *services.AnalyticsData
	TimeLog() *services.TimeLogData

	// Wait blocks until background remote writes have settled.
	Wait()
}

// App is the application context.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Backend  *remote.Backend
	Store    *store.EntityStore
	Gate     *session.Gate
	Services *services.ServiceContainer
}

var _ API = (*App)(nil)

// New wires the application over backend.
func New(cfg *config.Config, backend *remote.Backend, logger *zap.Logger) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger = logging.OrNop(logger)
	st := store.New()

	container := services.NewServiceContainer(services.Dependencies{
		Data:   backend.Data,
		Store:  st,
		Config: cfg,
		Logger: logger,
	})
	gate := session.New(backend.Auth, container.SyncService, st, session.Options{
		ResetRedirectURL: cfg.Auth.ResetRedirectURL,
		Logger:           logger,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Backend:  backend,
		Store:    st,
		Gate:     gate,
		Services: container,
	}
}

// Start restores any existing session.
func (a *App) Start(ctx context.Context) error {
	return a.Gate.Start(ctx)
}

// Close waits for background writes, detaches the gate and closes the
// backend.
func (a *App) Close() error {
	a.Services.Wait()
	a.Gate.Stop()
	err := a.Backend.Close()
	_ = a.Logger.Sync()
	return err
}

// EnsureSession signs in with the configured credentials when there is no
// session yet.
func (a *App) EnsureSession(ctx context.Context) error {
	if a.Gate.View() == session.ViewApp {
		return nil
	}
	if a.Config.Auth.Email == "" || a.Config.Auth.Password == "" {
		return errors.NewAuthError("not signed in: set PM_EMAIL and PM_PASSWORD or pass --email and --password", nil)
	}
	if err := a.Gate.SignIn(ctx, a.Config.Auth.Email, a.Config.Auth.Password); err != nil {
		return fmt.Errorf("sign in as %s: %w", a.Config.Auth.Email, err)
	}
	return nil
}

func (a *App) View() session.View       { return a.Gate.View() }
func (a *App) Session() *remote.Session { return a.Gate.Session() }
func (a *App) LoginError() string       { return a.Gate.LoginError() }
func (a *App) Notice() string           { return a.Gate.Notice() }

func (a *App) SignIn(ctx context.Context, email, password string) error {
	return a.Gate.SignIn(ctx, email, password)
}

func (a *App) SignUp(ctx context.Context, form session.SignUpForm) error {
	return a.Gate.SignUp(ctx, form)
}

// SignOut waits for in-flight writes so their reconciliation does not land
// in the cleared store.
func (a *App) SignOut(ctx context.Context) error {
	a.Services.Wait()
	return a.Gate.SignOut(ctx)
}

func (a *App) ResetPassword(ctx context.Context, email string) error {
	return a.Gate.ResetPassword(ctx, email)
}

// Refresh is the manual full refetch.
func (a *App) Refresh(ctx context.Context) error {
	return a.Services.SyncService.Refetch(ctx)
}

func (a *App) Tasks(criteria services.SearchCriteria) []domain.Task {
	return a.Services.SearchService.SearchTasks(criteria)
}

func (a *App) Task(id string) (domain.Task, error) {
	return a.Services.TaskService.GetTask(id)
}

func (a *App) SaveTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	return a.Services.TaskService.CreateOrUpdate(ctx, in)
}

func (a *App) MoveTask(ctx context.Context, id string, status domain.TaskStatus) (domain.Task, error) {
	return a.Services.TaskService.MoveTask(ctx, id, status)
}

func (a *App) DeleteTask(ctx context.Context, id string) error {
	return a.Services.TaskService.Delete(ctx, id)
}

func (a *App) Projects() []domain.Project {
	return a.Services.ProjectService.ListProjects()
}

func (a *App) CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	return a.Services.ProjectService.Create(ctx, in)
}

func (a *App) DeleteProject(ctx context.Context, id string) error {
	return a.Services.ProjectService.Delete(ctx, id)
}

func (a *App) Users() []domain.User {
	return a.Store.Users.All()
}

func (a *App) TimeEntries(taskID, userID string) []services.TimeEntryWithTask {
	return a.Services.SearchService.SearchTimeEntries(taskID, userID)
}

// LogTime records hours for the signed-in user unless the input names one.
func (a *App) LogTime(ctx context.Context, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	if in.UserID == "" {
		if s := a.Gate.Session(); s != nil {
			in.UserID = s.User.ID
		}
	}
	return a.Services.TimeLogService.LogTime(ctx, in)
}

func (a *App) DeleteTimeEntry(ctx context.Context, id string) error {
	return a.Services.TimeLogService.DeleteEntry(ctx, id)
}

func (a *App) Dashboard() *services.DashboardData {
	return a.Services.ReportingService.Dashboard()
}

func (a *App) Board() []analytics.Column {
	return a.Services.ReportingService.Board()
}

func (a *App) Timeline() analytics.Timeline {
	return a.Services.ReportingService.Timeline()
}

func (a *App) Resources() *services.ResourceData {
	return a.Services.ReportingService.Resources()
}

func (a *App) Analytics() *services.AnalyticsData {
	return a.Services.ReportingService.Analytics()
}

func (a *App) TimeLog() *services.TimeLogData {
	return a.Services.ReportingService.TimeLog()
}

func (a *App) Wait() {
	a.Services.Wait()
}
