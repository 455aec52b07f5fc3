package remote

import (
	"sync"
	"time"
)

// AuthEvent names a session transition.
type AuthEvent string

const (
	EventSignedIn  AuthEvent = "SIGNED_IN"
	EventSignedOut AuthEvent = "SIGNED_OUT"
)

// AuthListener receives session changes. session is nil on sign-out.
type AuthListener func(event AuthEvent, session *Session)

// User is the account behind a session.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is an authenticated session on the hosted service.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// SignUpRequest carries the sign-up form.
type SignUpRequest struct {
	Email    string
	Password string
	FullName string
	Username string
}

// SessionHolder stores the current session and fans changes out to
// listeners. Both backends embed it.
type SessionHolder struct {
	mu        sync.RWMutex
	session   *Session
	nextID    int
	listeners map[int]AuthListener
}

// Current returns the held session, or nil.
func (h *SessionHolder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// Set replaces the held session and notifies listeners. Listeners run on the
// caller's goroutine, outside the lock.
func (h *SessionHolder) Set(event AuthEvent, session *Session) {
	h.mu.Lock()
	h.session = session
	listeners := make([]AuthListener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}

// Subscribe registers fn and returns its removal function.
func (h *SessionHolder) Subscribe(fn AuthListener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[int]AuthListener)
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}
