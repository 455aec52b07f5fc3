package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"insightpm/internal/errors"
	"insightpm/internal/remote"
)

const testSecret = "sqlstore-test-secret-0123456789"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Driver:    DriverSQLite,
		DSN:       MemoryDSN,
		JWTSecret: testSecret,
		HashCost:  bcrypt.MinCost,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Run("creates database directory", func(t *testing.T) {
		dsn := filepath.Join(t.TempDir(), "nested", "insightpm.db")
		s, err := Open(context.Background(), Options{DSN: dsn, JWTSecret: testSecret})
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.FileExists(t, dsn)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := Open(context.Background(), Options{Driver: "oracle", DSN: MemoryDSN, JWTSecret: testSecret})
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
	})

	t.Run("requires secret", func(t *testing.T) {
		_, err := Open(context.Background(), Options{DSN: MemoryDSN})
		require.Error(t, err)
	})
}

func TestStore_InsertAndSelect(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, remote.TableTasks, []remote.Row{
		{"title": "First", "status": "Todo", "estimated_time": 3.5, "tags": []string{"ops", "db"}, "project_id": nil},
		{"title": "Second", "status": "Done", "estimated_time": 1, "tags": []string{}, "completed_at": "2026-04-01T10:00:00Z"},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)

	first := inserted[0]
	assert.NotEmpty(t, first.String("id"))
	assert.NotEmpty(t, first.String("created_at"))
	assert.Equal(t, "First", first.String("title"))
	assert.Equal(t, 3.5, first["estimated_time"])
	assert.Equal(t, []string{"ops", "db"}, first.Strings("tags"))
	assert.Nil(t, first["project_id"])

	all, err := s.Select(ctx, remote.TableTasks)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "First", all[0].String("title"))
	assert.Equal(t, "Second", all[1].String("title"))

	done, err := s.Select(ctx, remote.TableTasks, remote.Eq("status", "Done"))
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "2026-04-01T10:00:00Z", done[0].String("completed_at"))

	unassigned, err := s.Select(ctx, remote.TableTasks, remote.Eq("project_id", nil))
	require.NoError(t, err)
	assert.Len(t, unassigned, 2)
}

func TestStore_InsertKeepsCallerID(t *testing.T) {
	s := openTestStore(t)
	rows, err := s.Insert(context.Background(), remote.TableUsers, []remote.Row{
		{"id": "u1", "full_name": "Ada", "daily_capacity_hours": 6},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].String("id"))
	assert.Equal(t, 6.0, rows[0].Float("daily_capacity_hours"))
}

func TestStore_Update(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, remote.TableProjects, []remote.Row{{"name": "Apollo", "progress": 10, "order": 1}})
	require.NoError(t, err)
	id := inserted[0].String("id")

	updated, err := s.Update(ctx, remote.TableProjects, remote.Row{"progress": 55, "id": "ignored"}, remote.Eq("id", id))
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, id, updated[0].String("id"))
	assert.Equal(t, 55, updated[0].Int("progress"))
	assert.Equal(t, 1, updated[0].Int("order"))

	none, err := s.Update(ctx, remote.TableProjects, remote.Row{"progress": 1}, remote.Eq("id", "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_UpdateRejectsBadInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Update(ctx, remote.TableTasks, remote.Row{"nonexistent": 1}, remote.Eq("id", "x"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	_, err = s.Update(ctx, remote.TableTasks, remote.Row{"id": "only-id"}, remote.Eq("id", "x"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	_, err = s.Select(ctx, remote.TableTasks, remote.Eq("password", "x"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	_, err = s.Select(ctx, remote.Table("accounts"))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, remote.TableTimeEntries, []remote.Row{
		{"task_id": "t1", "hours": 2, "date": "2026-04-01"},
		{"task_id": "t2", "hours": 1, "date": "2026-04-01"},
	})
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, remote.TableTimeEntries, remote.Eq("id", inserted[0].String("id")))
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "t1", deleted[0].String("task_id"))

	remaining, err := s.Select(ctx, remote.TableTimeEntries)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "t2", remaining[0].String("task_id"))

	again, err := s.Delete(ctx, remote.TableTimeEntries, remote.Eq("id", inserted[0].String("id")))
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestStore_SignUpAndSignIn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var events []remote.AuthEvent
	unsubscribe := s.OnAuthStateChange(func(event remote.AuthEvent, _ *remote.Session) {
		events = append(events, event)
	})
	defer unsubscribe()

	session, err := s.SignUp(ctx, remote.SignUpRequest{
		Email:    " Ada@Example.com ",
		Password: "secret-pass",
		FullName: "Ada Lovelace",
		Username: "ada",
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, "Ada Lovelace", session.User.Metadata["full_name"])

	profiles, err := s.Select(ctx, remote.TableUsers, remote.Eq("id", session.User.ID))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ada Lovelace", profiles[0].String("full_name"))
	assert.Equal(t, "Member", profiles[0].String("role"))
	assert.Equal(t, 8.0, profiles[0].Float("daily_capacity_hours"))

	user, err := s.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)

	require.NoError(t, s.SignOut(ctx))
	current, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	signedIn, err := s.SignIn(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signedIn.User.ID)

	current, err = s.GetSession(ctx)
	require.NoError(t, err)
	assert.Same(t, signedIn, current)

	assert.Equal(t, []remote.AuthEvent{remote.EventSignedIn, remote.EventSignedOut, remote.EventSignedIn}, events)
}

func TestStore_AuthFailures(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, remote.SignUpRequest{Email: "bob@example.com", Password: "long-enough"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{
			name: "duplicate sign up",
			call: func() error {
				_, err := s.SignUp(ctx, remote.SignUpRequest{Email: "BOB@example.com", Password: "long-enough"})
				return err
			},
			msg: "User already registered",
		},
		{
			name: "short password",
			call: func() error {
				_, err := s.SignUp(ctx, remote.SignUpRequest{Email: "c@example.com", Password: "123"})
				return err
			},
			msg: "Password should be at least 6 characters",
		},
		{
			name: "bad email",
			call: func() error {
				_, err := s.SignUp(ctx, remote.SignUpRequest{Email: "nope", Password: "long-enough"})
				return err
			},
			msg: "Unable to validate email address: invalid format",
		},
		{
			name: "wrong password",
			call: func() error {
				_, err := s.SignIn(ctx, "bob@example.com", "wrong-pass")
				return err
			},
			msg: "Invalid login credentials",
		},
		{
			name: "unknown account",
			call: func() error {
				_, err := s.SignIn(ctx, "who@example.com", "whatever")
				return err
			},
			msg: "Invalid login credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
			assert.Equal(t, tt.msg, errors.GetUserMessage(err))
		})
	}
}

func TestStore_SessionExpires(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.ttl = time.Hour

	_, err := s.SignUp(ctx, remote.SignUpRequest{Email: "exp@example.com", Password: "long-enough"})
	require.NoError(t, err)

	current, err := s.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)

	now = now.Add(2 * time.Hour)
	current, err = s.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestStore_ResetPasswordForEmail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, remote.SignUpRequest{Email: "reset@example.com", Password: "long-enough"})
	require.NoError(t, err)

	require.NoError(t, s.ResetPasswordForEmail(ctx, "reset@example.com", "http://localhost:5173/reset"))
	require.NoError(t, s.ResetPasswordForEmail(ctx, "ghost@example.com", ""))

	var count int
	var redirect string
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*), MAX(redirect_to) FROM password_resets").Scan(&count, &redirect))
	assert.Equal(t, 1, count)
	assert.Equal(t, "http://localhost:5173/reset", redirect)
}

func TestVerifyToken_RejectsForeignSecret(t *testing.T) {
	a := openTestStore(t)
	b := openTestStore(t)
	b.secret = []byte("a-completely-different-secret")

	session, err := a.SignUp(context.Background(), remote.SignUpRequest{Email: "x@example.com", Password: "long-enough"})
	require.NoError(t, err)

	_, err = b.VerifyToken(session.AccessToken)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
}

func TestDialectRebind(t *testing.T) {
	pg, err := dialectFor(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "t" WHERE "a" = $1 AND "b" = $2`, pg.rebind(`SELECT * FROM "t" WHERE "a" = ? AND "b" = ?`))

	lite, err := dialectFor(DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))

	_, err = dialectFor("mysql")
	assert.Error(t, err)

	assert.Equal(t, `"order"`, quoteIdent("order"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
