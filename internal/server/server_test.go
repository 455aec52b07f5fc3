package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"insightpm/internal/app"
	"insightpm/internal/config"
	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/remote/sqlstore"
	"insightpm/internal/services"
	"insightpm/internal/session"
)

type harness struct {
	app     *app.App
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}

	store, err := sqlstore.Open(context.Background(), sqlstore.Options{
		DSN:       sqlstore.MemoryDSN,
		JWTSecret: "server-test-secret-0123456789abcdef",
		HashCost:  bcrypt.MinCost,
	})
	require.NoError(t, err)

	a := app.New(cfg, store.Backend(), nil)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { a.Close() })

	return &harness{app: a, handler: New(a, cfg.Server, nil).Handler()}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) signUp(t *testing.T) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/auth/signup", session.SignUpForm{
		FullName:        "Alice",
		Email:           "alice@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newHarness(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodDelete, "/api/tasks/t1"},
		{http.MethodGet, "/api/projects"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/time-entries"},
		{http.MethodGet, "/api/views/dashboard"},
		{http.MethodPost, "/api/refresh"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := h.do(t, p.method, p.path, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, session.ViewLogin, decode[sessionResponse](t, rec).View)

	t.Run("mismatched confirmation", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/auth/signup", session.SignUpForm{
			Email: "bob@example.com", Password: "secret123", ConfirmPassword: "other",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[errorBody](t, rec).Error, session.MsgPasswordsMismatch)
		assert.Equal(t, session.MsgPasswordsMismatch, h.app.LoginError())
	})

	h.signUp(t)
	state := decode[sessionResponse](t, h.do(t, http.MethodGet, "/api/session", nil))
	assert.Equal(t, session.ViewApp, state.View)
	require.NotNil(t, state.User)
	assert.Equal(t, "alice@example.com", state.User.Email)
	assert.Equal(t, session.NoticeRegistered, state.Notice)

	rec = h.do(t, http.MethodPost, "/api/auth/signout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.ViewLogin, decode[sessionResponse](t, rec).View)

	t.Run("wrong password", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/auth/signin", signInRequest{Email: "alice@example.com", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid login credentials", decode[errorBody](t, rec).Error)

		state := decode[sessionResponse](t, h.do(t, http.MethodGet, "/api/session", nil))
		assert.Equal(t, "Invalid login credentials", state.LoginError)
	})

	rec = h.do(t, http.MethodPost, "/api/auth/signin", signInRequest{Email: " alice@example.com ", Password: "secret123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.ViewApp, decode[sessionResponse](t, rec).View)

	rec = h.do(t, http.MethodPost, "/api/auth/reset", resetRequest{Email: "alice@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.NoticeRecoverySent, decode[sessionResponse](t, rec).Notice)

	rec = h.do(t, http.MethodPost, "/api/auth/signin", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskRoutes(t *testing.T) {
	h := newHarness(t)
	h.signUp(t)

	rec := h.do(t, http.MethodPost, "/api/tasks", domain.TaskInput{Title: "Ship it", Priority: domain.PriorityHigh})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	created := decode[struct{ Task domain.Task }](t, rec).Task
	assert.True(t, domain.IsTempID(created.ID))
	h.app.Wait()

	list := decode[struct{ Tasks []domain.Task }](t, h.do(t, http.MethodGet, "/api/tasks", nil)).Tasks
	require.Len(t, list, 1)
	id := list[0].ID
	assert.False(t, domain.IsTempID(id))
	assert.Equal(t, "Ship it", list[0].Title)

	t.Run("create rejects an id", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/tasks", domain.TaskInput{ID: id, Title: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create validates", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/tasks", domain.TaskInput{Title: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, rec).Code)
	})

	t.Run("edit", func(t *testing.T) {
		in := domain.InputFrom(list[0])
		in.Title = "Ship it today"
		rec := h.do(t, http.MethodPut, "/api/tasks/"+id, in)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Ship it today", decode[struct{ Task domain.Task }](t, rec).Task.Title)
	})

	t.Run("move to done", func(t *testing.T) {
		rec := h.do(t, http.MethodPatch, "/api/tasks/"+id+"/status", moveRequest{Status: domain.StatusDone})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		task := decode[struct{ Task domain.Task }](t, rec).Task
		assert.Equal(t, domain.StatusDone, task.Status)
		assert.NotNil(t, task.CompletedAt)
	})

	t.Run("move unknown", func(t *testing.T) {
		rec := h.do(t, http.MethodPatch, "/api/tasks/missing/status", moveRequest{Status: domain.StatusDone})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			query string
			want  int
			code  int
		}{
			{"?status=Done", 1, http.StatusOK},
			{"?status=Todo", 0, http.StatusOK},
			{"?q=today&sort=title", 1, http.StatusOK},
			{"?limit=0", 1, http.StatusOK},
			{"?sort=bogus", 0, http.StatusBadRequest},
			{"?limit=-1", 0, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				rec := h.do(t, http.MethodGet, "/api/tasks"+tt.query, nil)
				require.Equal(t, tt.code, rec.Code, rec.Body.String())
				if tt.code == http.StatusOK {
					assert.Len(t, decode[struct{ Tasks []domain.Task }](t, rec).Tasks, tt.want)
				}
			})
		}
	})

	h.app.Wait()
	rec = h.do(t, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	h.app.Wait()
	assert.JSONEq(t, `{"tasks":[]}`, h.do(t, http.MethodGet, "/api/tasks", nil).Body.String())
}

func TestProjectAndTimeEntryRoutes(t *testing.T) {
	h := newHarness(t)
	h.signUp(t)

	rec := h.do(t, http.MethodPost, "/api/projects", domain.ProjectInput{Name: "Launch", Progress: 140})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, 100, decode[struct{ Project domain.Project }](t, rec).Project.Progress)

	rec = h.do(t, http.MethodPost, "/api/projects", domain.ProjectInput{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.do(t, http.MethodPost, "/api/tasks", domain.TaskInput{Title: "Write docs"})
	h.app.Wait()
	task := h.app.Tasks(services.SearchCriteria{})[0]

	rec = h.do(t, http.MethodPost, "/api/time-entries", domain.TimeEntryInput{TaskID: task.ID, Hours: 1.5})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	h.app.Wait()

	rec = h.do(t, http.MethodGet, "/api/time-entries?task_id="+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries struct {
		TimeEntries []struct {
			Entry     domain.TimeEntry `json:"entry"`
			TaskTitle string           `json:"task_title"`
		} `json:"time_entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries.TimeEntries, 1)
	assert.Equal(t, "Write docs", entries.TimeEntries[0].TaskTitle)
	assert.Equal(t, h.app.Session().User.ID, entries.TimeEntries[0].Entry.UserID)

	rec = h.do(t, http.MethodPost, "/api/time-entries", domain.TimeEntryInput{TaskID: task.ID, Hours: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	users := h.do(t, http.MethodGet, "/api/users", nil)
	assert.Contains(t, users.Body.String(), "Alice")

	projects := decode[struct{ Projects []domain.Project }](t, h.do(t, http.MethodGet, "/api/projects", nil)).Projects
	require.Len(t, projects, 1)
	rec = h.do(t, http.MethodDelete, "/api/projects/"+projects[0].ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodDelete, "/api/time-entries/"+entries.TimeEntries[0].Entry.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	h.app.Wait()

	assert.Empty(t, h.app.Projects())
	assert.Empty(t, h.app.TimeEntries("", ""))
}

func TestViewRoutes(t *testing.T) {
	h := newHarness(t)
	h.signUp(t)
	h.do(t, http.MethodPost, "/api/tasks", domain.TaskInput{Title: "Plan", Status: domain.StatusInProgress})
	h.app.Wait()

	for _, view := range []string{"dashboard", "board", "timeline", "resources", "analytics", "timelog"} {
		t.Run(view, func(t *testing.T) {
			rec := h.do(t, http.MethodGet, "/api/views/"+view, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, json.Valid(rec.Body.Bytes()))
		})
	}

	board := decode[struct {
		Columns []struct {
			Title string        `json:"title"`
			Tasks []domain.Task `json:"tasks"`
		} `json:"columns"`
	}](t, h.do(t, http.MethodGet, "/api/views/board", nil))
	require.Len(t, board.Columns, 4)
	assert.Equal(t, "In Progress", board.Columns[1].Title)
	assert.Len(t, board.Columns[1].Tasks, 1)

	rec := h.do(t, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch))

	req = httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errors.NewValidationError("bad", nil), http.StatusBadRequest},
		{"invalid input", errors.NewInvalidInputError("id", "x", "bad"), http.StatusBadRequest},
		{"not found", errors.NewNotFoundError("task", "t1"), http.StatusNotFound},
		{"auth", errors.NewAuthError("nope", nil), http.StatusUnauthorized},
		{"permission", errors.NewPermissionError("delete", "task"), http.StatusForbidden},
		{"remote", errors.NewRemoteError("insert tasks", 500, nil), http.StatusBadGateway},
		{"timeout", errors.NewTimeoutError("fetch", "10s"), http.StatusGatewayTimeout},
		{"database", errors.NewDatabaseError("query", nil), http.StatusInternalServerError},
		{"plain", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
