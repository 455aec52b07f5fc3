package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"insightpm/internal/analytics"
	"insightpm/internal/app"
	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/remote"
	"insightpm/internal/services"
	"insightpm/internal/session"
)

var fakeToday = time.Date(2024, 4, 10, 9, 0, 0, 0, time.Local)

// fakeAPI implements app.API in memory. Writes stay pending until Wait, which
// settles them, or reverts them when reject is set.
type fakeAPI struct {
	session  *remote.Session
	password string
	notice   string
	loginErr string

	tasks    []domain.Task
	projects []domain.Project
	users    []domain.User
	entries  []domain.TimeEntry

	deleted []domain.Task
	nextID  int
	reject  bool
	waits   int
	refresh int
}

var _ app.API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		password: "secret123",
		users: []domain.User{
			{ID: "u1", FullName: "Alice", Role: "Lead", DailyCapacityHours: 8},
			{ID: "u2", FullName: "Bob", Role: "Dev", DailyCapacityHours: 4},
		},
	}
}

func (f *fakeAPI) signIn() {
	f.session = &remote.Session{AccessToken: "token", User: remote.User{ID: "u1", Email: "alice@example.com"}}
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeAPI) View() session.View {
	if f.session == nil {
		return session.ViewLogin
	}
	return session.ViewApp
}

func (f *fakeAPI) Session() *remote.Session { return f.session }
func (f *fakeAPI) LoginError() string       { return f.loginErr }
func (f *fakeAPI) Notice() string           { return f.notice }

func (f *fakeAPI) SignIn(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) != "alice@example.com" || password != f.password {
		f.loginErr = "Invalid login credentials"
		return errors.NewAuthError(f.loginErr, nil)
	}
	f.signIn()
	return nil
}

func (f *fakeAPI) SignUp(ctx context.Context, form session.SignUpForm) error {
	if form.Password != form.ConfirmPassword {
		f.loginErr = session.MsgPasswordsMismatch
		return errors.NewInvalidInputError("confirm_password", nil, session.MsgPasswordsMismatch)
	}
	f.notice = session.NoticeRegistered
	f.signIn()
	return nil
}

func (f *fakeAPI) SignOut(ctx context.Context) error {
	f.session = nil
	return nil
}

func (f *fakeAPI) ResetPassword(ctx context.Context, email string) error {
	f.notice = session.NoticeRecoverySent
	return nil
}

func (f *fakeAPI) EnsureSession(ctx context.Context) error {
	if f.session != nil {
		return nil
	}
	return errors.NewAuthError("not signed in: set PM_EMAIL and PM_PASSWORD or pass --email and --password", nil)
}

func (f *fakeAPI) Refresh(ctx context.Context) error {
	f.refresh++
	return nil
}

func (f *fakeAPI) Tasks(criteria services.SearchCriteria) []domain.Task {
	var out []domain.Task
	for _, t := range f.tasks {
		if criteria.Filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeAPI) Task(id string) (domain.Task, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, errors.NewNotFoundError("task", id)
}

func (f *fakeAPI) SaveTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Task{}, errors.NewValidationError("title: Title is required", nil)
	}
	if in.IsEdit() {
		for i, t := range f.tasks {
			if t.ID == in.ID {
				updated := in.ToTask(fakeToday)
				updated.CompletedAt = t.CompletedAt
				f.tasks[i] = updated
				return updated, nil
			}
		}
		return domain.Task{}, errors.NewNotFoundError("task", in.ID)
	}
	task := in.WithDefaults(fakeToday).ToTask(fakeToday)
	task.ID = domain.NewTempID()
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeAPI) MoveTask(ctx context.Context, id string, status domain.TaskStatus) (domain.Task, error) {
	for i, t := range f.tasks {
		if t.ID == id {
			t.Status = status
			t.ApplyCompletion(fakeToday)
			f.tasks[i] = t
			return t, nil
		}
	}
	return domain.Task{}, errors.NewNotFoundError("task", id)
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			f.deleted = append(f.deleted, t)
			return nil
		}
	}
	return errors.NewNotFoundError("task", id)
}

func (f *fakeAPI) Projects() []domain.Project { return f.projects }

func (f *fakeAPI) CreateProject(ctx context.Context, in domain.ProjectInput) (domain.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Project{}, errors.NewValidationError("name: Name is required", nil)
	}
	p := in.ToProject()
	p.ID = domain.NewTempID()
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeAPI) DeleteProject(ctx context.Context, id string) error {
	for i, p := range f.projects {
		if p.ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("project", id)
}

func (f *fakeAPI) Users() []domain.User { return f.users }

func (f *fakeAPI) TimeEntries(taskID, userID string) []services.TimeEntryWithTask {
	var out []services.TimeEntryWithTask
	for _, e := range f.entries {
		if (taskID == "" || e.TaskID == taskID) && (userID == "" || e.UserID == userID) {
			title := ""
			if t, err := f.Task(e.TaskID); err == nil {
				title = t.Title
			}
			out = append(out, services.TimeEntryWithTask{Entry: e, TaskTitle: title})
		}
	}
	return out
}

func (f *fakeAPI) LogTime(ctx context.Context, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	if in.Hours <= 0 {
		return domain.TimeEntry{}, errors.NewValidationError("hours: Hours must be positive", nil)
	}
	if in.UserID == "" && f.session != nil {
		in.UserID = f.session.User.ID
	}
	e := in.ToTimeEntry(fakeToday)
	e.ID = domain.NewTempID()
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeAPI) DeleteTimeEntry(ctx context.Context, id string) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("time entry", id)
}

func (f *fakeAPI) Dashboard() *services.DashboardData {
	return &services.DashboardData{
		Summary:      analytics.Summarize(f.tasks, fakeToday),
		Distribution: analytics.StatusCounts(f.tasks),
		ActiveTasks:  analytics.ActiveTasks(f.tasks),
		Projects:     f.projects,
	}
}

func (f *fakeAPI) Board() []analytics.Column { return analytics.Board(f.tasks) }

func (f *fakeAPI) Timeline() analytics.Timeline {
	return analytics.BuildTimeline(f.tasks, f.users, fakeToday, analytics.DefaultTimelineDays, analytics.DefaultTimelineLeadDays)
}

func (f *fakeAPI) Resources() *services.ResourceData {
	return &services.ResourceData{
		WindowDays: analytics.DefaultPlanningWindowDays,
		Loads:      analytics.UserLoads(f.users, f.tasks, analytics.DefaultPlanningWindowDays),
	}
}

func (f *fakeAPI) Analytics() *services.AnalyticsData {
	return &services.AnalyticsData{
		Summary:          analytics.Summarize(f.tasks, fakeToday),
		CompletionRate:   analytics.CompletionRate(f.tasks),
		CompletionSeries: analytics.CompletionSeries(f.tasks, fakeToday, analytics.DefaultSeriesDays),
	}
}

func (f *fakeAPI) TimeLog() *services.TimeLogData {
	var out []services.TimeEntryWithTask
	out = append(out, f.TimeEntries("", "")...)
	return &services.TimeLogData{
		WeekHours:   analytics.HoursBetween(f.entries, analytics.WeekStart(fakeToday), fakeToday),
		TotalHours:  analytics.TotalHours(f.entries),
		HoursByTask: analytics.HoursByTask(f.entries),
		Entries:     out,
	}
}

// Wait settles pending writes.
func (f *fakeAPI) Wait() {
	f.waits++
	if f.reject {
		var kept []domain.Task
		for _, t := range f.tasks {
			if !t.IsPending() {
				kept = append(kept, t)
			}
		}
		f.tasks = append(kept, f.deleted...)
		var entries []domain.TimeEntry
		for _, e := range f.entries {
			if !e.IsPending() {
				entries = append(entries, e)
			}
		}
		f.entries = entries
		var projects []domain.Project
		for _, p := range f.projects {
			if !domain.IsTempID(p.ID) {
				projects = append(projects, p)
			}
		}
		f.projects = projects
	} else {
		for i := range f.tasks {
			if f.tasks[i].IsPending() {
				f.tasks[i].ID = f.id("task")
			}
		}
		for i := range f.entries {
			if f.entries[i].IsPending() {
				f.entries[i].ID = f.id("entry")
			}
		}
		for i := range f.projects {
			if domain.IsTempID(f.projects[i].ID) {
				f.projects[i].ID = f.id("project")
			}
		}
	}
	f.deleted = nil
}
