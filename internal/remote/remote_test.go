package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableValid(t *testing.T) {
	for _, table := range Tables() {
		assert.True(t, table.Valid(), table)
	}
	assert.False(t, Table("accounts").Valid())
	assert.False(t, Table("").Valid())
}

func TestRowAccessors(t *testing.T) {
	completed := "2026-03-04T10:00:00Z"
	row := Row{
		"title":          "Write report",
		"estimated_time": json.Number("4.5"),
		"progress":       int64(40),
		"tags":           []any{"ops", "urgent"},
		"dependencies":   `["a","b"]`,
		"completed_at":   completed,
		"project_id":     nil,
		"order":          float64(3),
	}

	assert.Equal(t, "Write report", row.String("title"))
	assert.Equal(t, "", row.String("missing"))
	assert.InDelta(t, 4.5, row.Float("estimated_time"), 1e-9)
	assert.Equal(t, 40, row.Int("progress"))
	assert.Equal(t, []string{"ops", "urgent"}, row.Strings("tags"))
	assert.Equal(t, []string{"a", "b"}, row.Strings("dependencies"))
	assert.Nil(t, row.Strings("missing"))
	assert.Nil(t, row.OptionalString("project_id"))
	require.NotNil(t, row.OptionalInt("order"))
	assert.Equal(t, 3, *row.OptionalInt("order"))
	assert.Nil(t, row.OptionalInt("missing"))

	ts := row.Time("completed_at")
	require.NotNil(t, ts)
	assert.True(t, ts.Equal(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, row.Time("project_id"))
}

func TestRowClone(t *testing.T) {
	row := Row{"id": "1"}
	clone := row.Clone()
	clone["id"] = "2"
	assert.Equal(t, "1", row["id"])
}

func TestSessionHolder(t *testing.T) {
	var h SessionHolder
	assert.Nil(t, h.Current())

	var events []AuthEvent
	unsubscribe := h.Subscribe(func(event AuthEvent, s *Session) {
		events = append(events, event)
	})

	session := &Session{AccessToken: "token", User: User{ID: "u1"}}
	h.Set(EventSignedIn, session)
	assert.Same(t, session, h.Current())

	h.Set(EventSignedOut, nil)
	assert.Nil(t, h.Current())

	unsubscribe()
	unsubscribe()
	h.Set(EventSignedIn, session)

	assert.Equal(t, []AuthEvent{EventSignedIn, EventSignedOut}, events)
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var nilSession *Session
	assert.True(t, nilSession.Expired(now))
	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
}

func TestBackendClose(t *testing.T) {
	var nilBackend *Backend
	assert.NoError(t, nilBackend.Close())

	closed := false
	b := NewBackend(nil, nil, func() error { closed = true; return nil })
	require.NoError(t, b.Close())
	assert.True(t, closed)
}
