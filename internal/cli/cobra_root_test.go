package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightpm/internal/config"
	"insightpm/internal/domain"
)

type rootHarness struct {
	root   *RootCommand
	api    *fakeAPI
	out    *bytes.Buffer
	opened int
	closed int
}

func newRootHarness(t *testing.T) *rootHarness {
	t.Helper()
	t.Setenv(config.ConfigFileEnvVar, "")
	prev := timeNow
	timeNow = func() time.Time { return fakeToday }
	t.Cleanup(func() { timeNow = prev })

	h := &rootHarness{api: newFakeAPI(), out: &bytes.Buffer{}}
	h.root = NewRootCommand(config.NewLoader().WithEnvFiles(), func(ctx context.Context, cfg *config.Config) (*Runtime, error) {
		h.opened++
		return &Runtime{API: h.api, Close: func() error {
			h.closed++
			return nil
		}}, nil
	})
	h.root.Command().SetOut(h.out)
	h.root.Command().SetErr(h.out)
	return h
}

func (h *rootHarness) execute(args ...string) error {
	h.root.Command().SetArgs(append([]string{"--env", "testing"}, args...))
	return h.root.ExecuteContext(context.Background())
}

func TestRootCommand_FlagOverrides(t *testing.T) {
	h := newRootHarness(t)
	h.api.signIn()

	err := h.execute("--email", "bob@example.com", "--app-timeout", "5s", "--db-dsn", ":memory:", "board")
	require.NoError(t, err)

	cfg := h.root.config
	require.NotNil(t, cfg)
	assert.Equal(t, config.Testing, cfg.Application.Environment)
	assert.Equal(t, "bob@example.com", cfg.Auth.Email)
	assert.Equal(t, 5*time.Second, cfg.Application.Timeout)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, 5*time.Second, h.root.getAppTimeout())

	assert.Equal(t, 1, h.opened)
	assert.Equal(t, 1, h.closed)
	assert.Contains(t, h.out.String(), "To Do (0)")
}

func TestRootCommand_InvalidConfiguration(t *testing.T) {
	h := newRootHarness(t)
	h.root.Command().SetArgs([]string{"--env", "production", "--remote-url", "", "board"})

	err := h.root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Zero(t, h.opened)
}

func TestRootCommand_RequiresSession(t *testing.T) {
	h := newRootHarness(t)

	err := h.execute("board")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sign in: not signed in")
	assert.Equal(t, 1, h.closed)
}

func TestRootCommand_TaskAdd(t *testing.T) {
	h := newRootHarness(t)
	h.api.signIn()

	err := h.execute("task", "add", "Write", "release", "notes",
		"--priority", "high", "--assignee", "me", "--tags", "docs, release", "--due", "2024-04-15")
	require.NoError(t, err)

	require.Len(t, h.api.tasks, 1)
	task := h.api.tasks[0]
	assert.Equal(t, "Write release notes", task.Title)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, "u1", task.AssigneeID)
	assert.Equal(t, []string{"docs", "release"}, task.Tags)
	assert.Equal(t, "2024-04-15", task.DueDate)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Contains(t, h.out.String(), `Created task "Write release notes" (task-1), due in 5 days`)
}

func TestRootCommand_TaskAddRejectsBadPriority(t *testing.T) {
	h := newRootHarness(t)
	h.api.signIn()

	err := h.execute("task", "add", "Broken", "--priority", "urgent")
	assert.EqualError(t, err, "failed to add task: invalid input for priority: must be one of Low, Medium, High, Critical")
	assert.Empty(t, h.api.tasks)
}

func TestRootCommand_TaskEditOnlyChangesGivenFlags(t *testing.T) {
	h := newRootHarness(t)
	h.api.signIn()
	seedTasks(h.api)

	require.NoError(t, h.execute("task", "edit", "t1", "--status", "review"))

	task, err := h.api.Task("t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReview, task.Status)
	assert.Equal(t, "Design schema", task.Title)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, "2024-04-12", task.DueDate)
}

func TestRootCommand_MoveAndLogTime(t *testing.T) {
	h := newRootHarness(t)
	h.api.signIn()
	seedTasks(h.api)

	require.NoError(t, h.execute("task", "move", "t1", "In", "Progress"))
	task, _ := h.api.Task("t1")
	assert.Equal(t, domain.StatusInProgress, task.Status)

	require.NoError(t, h.execute("log-time", "t1", "2.5", "--date", "2024-04-09"))
	require.Len(t, h.api.entries, 1)
	assert.Equal(t, 2.5, h.api.entries[0].Hours)
	assert.Equal(t, "2024-04-09", h.api.entries[0].Date)

	err := h.execute("log-time", "t1", "lots")
	assert.EqualError(t, err, "failed to log time: invalid input for hours: must be a number")
}

func TestRootCommand_ProjectAdd(t *testing.T) {
	h := newRootHarness(t)
	h.api.signIn()

	require.NoError(t, h.execute("project", "add", "Mobile", "app", "--status", "on hold", "--progress", "40"))
	require.Len(t, h.api.projects, 1)
	assert.Equal(t, "Mobile app", h.api.projects[0].Name)
	assert.Equal(t, domain.ProjectOnHold, h.api.projects[0].Status)
	assert.Equal(t, 40, h.api.projects[0].Progress)
}

func TestRootCommand_SignUp(t *testing.T) {
	h := newRootHarness(t)

	err := h.execute("--email", "carol@example.com", "--password", "secret123", "signup", "--confirm-password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Registration successful!")
}
