// Package session decides between the login surface and the app shell. It
// follows the auth service's session, loads the entity store when a user
// signs in and clears it when they sign out.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"insightpm/internal/errors"
	"insightpm/internal/logging"
	"insightpm/internal/remote"
	"insightpm/internal/services"
	"insightpm/internal/store"
)

// View is the surface the gate shows.
type View string

const (
	ViewLogin View = "login"
	ViewApp   View = "app"
)

// User-facing notices.
const (
	NoticeRegistered     = "Registration successful! Please check your email to confirm."
	NoticeRecoverySent   = "Password recovery email sent! Please check your inbox."
	MsgPasswordsMismatch = "Passwords do not match"
)

// SignUpForm is the register panel.
type SignUpForm struct {
	FullName        string `json:"full_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Options configures a Gate.
type Options struct {
	// ResetRedirectURL is where the recovery email sends the user.
	ResetRedirectURL string
	Logger           *zap.Logger
}

// Gate tracks the current session. The zero value is not usable; use New.
type Gate struct {
	auth          remote.AuthService
	sync          services.SyncService
	store         *store.EntityStore
	logger        *zap.Logger
	resetRedirect string

	mu          sync.RWMutex
	session     *remote.Session
	loginError  string
	notice      string
	baseCtx     context.Context
	unsubscribe func()
}

// New creates a gate over the auth service and the sync service that loads
// st.
func New(auth remote.AuthService, syncer services.SyncService, st *store.EntityStore, opts Options) *Gate {
	return &Gate{
		auth:          auth,
		sync:          syncer,
		store:         st,
		logger:        logging.OrNop(opts.Logger).Named("session"),
		resetRedirect: opts.ResetRedirectURL,
		baseCtx:       context.Background(),
	}
}

// Start adopts the existing session, if any, and follows later changes. A
// present session triggers the initial fetch before Start returns.
func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.mu.Unlock()
		return nil
	}
	g.baseCtx = context.WithoutCancel(ctx)
	g.mu.Unlock()

	current, err := g.auth.GetSession(ctx)
	if err != nil {
		g.logger.Warn("could not restore session", zap.Error(err))
		current = nil
	}

	unsubscribe := g.auth.OnAuthStateChange(func(event remote.AuthEvent, s *remote.Session) {
		g.logger.Debug("auth state changed", zap.String("event", string(event)))
		g.apply(g.context(), s)
	})
	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	g.apply(ctx, current)
	return nil
}

// Stop detaches the gate from the auth service.
func (g *Gate) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Gate) context() context.Context {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.baseCtx
}

// apply switches to s. Data is fetched when a user appears or changes and
// cleared when the session goes away.
func (g *Gate) apply(ctx context.Context, s *remote.Session) {
	g.mu.Lock()
	prev := g.session
	g.session = s
	g.mu.Unlock()

	switch {
	case s == nil && prev != nil:
		g.store.Clear()
		g.logger.Info("signed out, store cleared", zap.String("user_id", prev.User.ID))
	case s != nil && (prev == nil || prev.User.ID != s.User.ID):
		g.logger.Info("session started", zap.String("user_id", s.User.ID))
		if err := g.sync.FetchAll(ctx); err != nil {
			g.logger.Error("initial fetch incomplete", zap.Error(err))
		}
	}
}

// SignIn authenticates with email and password. A failure sets LoginError.
func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	g.setMessages("", "")
	s, err := g.auth.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		g.fail(err, "Login failed")
		return err
	}
	g.apply(ctx, s)
	return nil
}

// SignUp registers a new account. The password confirmation is checked
// before the auth service is called.
func (g *Gate) SignUp(ctx context.Context, form SignUpForm) error {
	g.setMessages("", "")
	if form.Password != form.ConfirmPassword {
		err := errors.NewInvalidInputError("confirm_password", nil, MsgPasswordsMismatch)
		g.setMessages(MsgPasswordsMismatch, "")
		return err
	}

	s, err := g.auth.SignUp(ctx, remote.SignUpRequest{
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		FullName: strings.TrimSpace(form.FullName),
		Username: strings.TrimSpace(form.Username),
	})
	if err != nil {
		g.fail(err, "Registration failed")
		return err
	}
	g.setMessages("", NoticeRegistered)
	if s != nil {
		g.apply(ctx, s)
	}
	return nil
}

// ResetPassword requests a recovery email.
func (g *Gate) ResetPassword(ctx context.Context, email string) error {
	g.setMessages("", "")
	if err := g.auth.ResetPasswordForEmail(ctx, strings.TrimSpace(email), g.resetRedirect); err != nil {
		g.fail(err, "Request failed")
		return err
	}
	g.setMessages("", NoticeRecoverySent)
	return nil
}

// SignOut ends the session. The store is cleared even if the auth service
// reports an error.
func (g *Gate) SignOut(ctx context.Context) error {
	err := g.auth.SignOut(ctx)
	if err != nil {
		g.logger.Warn("sign out failed", zap.Error(err))
	}
	g.apply(ctx, nil)
	return err
}

// View returns the surface for the current session.
func (g *Gate) View() View {
	if g.Session() == nil {
		return ViewLogin
	}
	return ViewApp
}

// Session returns the current session, or nil.
func (g *Gate) Session() *remote.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// LoginError returns the inline message of the last failed action.
func (g *Gate) LoginError() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loginError
}

// Notice returns the message of the last successful sign-up or recovery
// request.
func (g *Gate) Notice() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.notice
}

func (g *Gate) fail(err error, fallback string) {
	msg := errors.GetUserMessage(err)
	if msg == "" {
		msg = fallback
	}
	g.setMessages(msg, "")
	if errors.ShouldLogError(err) {
		g.logger.Error(fallback, zap.Error(err))
	}
}

func (g *Gate) setMessages(loginError, notice string) {
	g.mu.Lock()
	g.loginError = loginError
	g.notice = notice
	g.mu.Unlock()
}
