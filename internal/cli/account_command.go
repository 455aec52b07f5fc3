package cli

import (
	"context"
	"strings"

	"insightpm/internal/app"
	"insightpm/internal/errors"
	"insightpm/internal/session"
)

// AccountCommand handles sign-up and password recovery.
type AccountCommand struct {
	app *App
	api app.API
}

// NewAccountCommand creates a new account command handler
func NewAccountCommand(a *App) *AccountCommand {
	return &AccountCommand{app: a, api: a.api}
}

// SignUp registers a new account.
func (c *AccountCommand) SignUp(ctx context.Context, form session.SignUpForm) error {
	if err := c.api.SignUp(ctx, form); err != nil {
		return c.app.errors.Handle("sign up", err)
	}
	c.app.println(c.api.Notice())
	return nil
}

// ResetPassword requests a recovery email for email.
func (c *AccountCommand) ResetPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return c.app.errors.Handle("reset password", errors.NewInvalidInputError("email", email, "email is required"))
	}
	if err := c.api.ResetPassword(ctx, email); err != nil {
		return c.app.errors.Handle("reset password", err)
	}
	c.app.println(c.api.Notice())
	return nil
}
