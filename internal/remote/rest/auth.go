package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"insightpm/internal/remote"
)

// tokenResponse is the GoTrue session payload. Sign-up without auto-confirm
// returns only the user fields.
type tokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"`
	ExpiresAt    int64          `json:"expires_at"`
	User         *remote.User   `json:"user"`
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Metadata     map[string]any `json:"user_metadata"`
}

func (t tokenResponse) session(now time.Time) *remote.Session {
	if t.AccessToken == "" {
		return nil
	}
	s := &remote.Session{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
	switch {
	case t.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if t.User != nil {
		s.User = *t.User
	} else {
		s.User = remote.User{ID: t.ID, Email: t.Email, Metadata: t.Metadata}
	}
	return s
}

// GetSession returns the held session, refreshing it once it has expired.
func (c *Client) GetSession(ctx context.Context) (*remote.Session, error) {
	current := c.sessions.Current()
	if current == nil {
		return nil, nil
	}
	if !current.Expired(c.now()) {
		return current, nil
	}
	if current.RefreshToken == "" {
		c.sessions.Set(remote.EventSignedOut, nil)
		return nil, nil
	}

	var resp tokenResponse
	err := c.do(ctx, request{
		op:     "refresh session",
		method: http.MethodPost,
		path:   authPath + "token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": current.RefreshToken},
		token:  c.anonKey,
		auth:   true,
	}, &resp)
	if err != nil {
		c.logger.Info("session refresh failed", zap.Error(err))
		c.sessions.Set(remote.EventSignedOut, nil)
		return nil, nil
	}
	session := resp.session(c.now())
	c.sessions.Set(remote.EventSignedIn, session)
	return session, nil
}

// OnAuthStateChange registers fn for session changes.
func (c *Client) OnAuthStateChange(fn remote.AuthListener) func() {
	return c.sessions.Subscribe(fn)
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		op:     "sign in",
		method: http.MethodPost,
		path:   authPath + "token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
		token:  c.anonKey,
		auth:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := resp.session(c.now())
	c.sessions.Set(remote.EventSignedIn, session)
	return session, nil
}

// SignUp registers an account with full_name and username metadata. The
// session is nil when the service wants the address confirmed first.
func (c *Client) SignUp(ctx context.Context, req remote.SignUpRequest) (*remote.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		op:     "sign up",
		method: http.MethodPost,
		path:   authPath + "signup",
		body: map[string]any{
			"email":    req.Email,
			"password": req.Password,
			"data": map[string]string{
				"full_name": req.FullName,
				"username":  req.Username,
			},
		},
		token: c.anonKey,
		auth:  true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := resp.session(c.now())
	if session != nil {
		c.sessions.Set(remote.EventSignedIn, session)
	}
	return session, nil
}

// SignOut revokes the session remotely and always drops it locally.
func (c *Client) SignOut(ctx context.Context) error {
	current := c.sessions.Current()
	if current == nil {
		return nil
	}
	err := c.do(ctx, request{
		op:     "sign out",
		method: http.MethodPost,
		path:   authPath + "logout",
		token:  current.AccessToken,
		auth:   true,
	}, nil)
	c.sessions.Set(remote.EventSignedOut, nil)
	return err
}

// ResetPasswordForEmail asks the service to mail a recovery link.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, request{
		op:     "reset password",
		method: http.MethodPost,
		path:   authPath + "recover",
		query:  q,
		body:   map[string]string{"email": email},
		token:  c.anonKey,
		auth:   true,
	}, nil)
}
