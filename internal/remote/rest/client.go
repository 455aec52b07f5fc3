// Package rest talks to a PostgREST/GoTrue style hosted service.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"insightpm/internal/errors"
	"insightpm/internal/remote"
)

const (
	restPath = "/rest/v1/"
	authPath = "/auth/v1/"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client implements remote.DataService and remote.AuthService over HTTP.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *zap.Logger
	sessions   remote.SessionHolder
	now        func() time.Time
}

var (
	_ remote.DataService = (*Client)(nil)
	_ remote.AuthService = (*Client)(nil)
)

// New creates a client for the service at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewInvalidInputError("remote.url", opts.BaseURL, "must be an absolute URL")
	}
	if opts.AnonKey == "" {
		return nil, errors.NewInvalidInputError("remote.anon_key", "", "anon key is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		anonKey:    opts.AnonKey,
		httpClient: httpClient,
		logger:     opts.Logger.Named("rest"),
		now:        time.Now,
	}, nil
}

// Backend wraps the client as a remote.Backend.
func (c *Client) Backend() *remote.Backend {
	return remote.NewBackend(c, c, nil)
}

// bearer returns the session token, or the anon key when signed out.
func (c *Client) bearer() string {
	if s := c.sessions.Current(); s != nil && s.AccessToken != "" {
		return s.AccessToken
	}
	return c.anonKey
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	token  string
	auth   bool
	header map[string]string
}

// do sends req and decodes a 2xx JSON response into out (which may be nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return errors.NewInvalidInputError("body", req.op, err.Error())
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return errors.NewRemoteError(req.op, 0, err)
	}
	token := req.token
	if token == "" {
		token = c.bearer()
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.header {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return errors.NewTimeoutError(req.op, c.httpClient.Timeout)
		}
		return errors.NewRemoteError(req.op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewRemoteError(req.op, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(req, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewRemoteError(req.op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// serviceError covers both PostgREST and GoTrue error bodies.
type serviceError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             any    `json:"code"`
	Details          string `json:"details"`
	Hint             string `json:"hint"`
}

func (e serviceError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) statusError(req request, status int, raw []byte) error {
	var se serviceError
	msg := ""
	if err := json.Unmarshal(raw, &se); err == nil {
		msg = se.text()
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	c.logger.Debug("remote call failed",
		zap.String("operation", req.op),
		zap.Int("status", status),
		zap.String("message", msg))

	if req.auth && status >= 400 && status < 500 {
		return errors.NewAuthError(msg, nil).WithContext("status", status)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return errors.NewPermissionError(req.op, msg)
	}
	return errors.NewRemoteError(req.op, status, stderrors.New(msg))
}
