package cli

import (
	"context"

	"insightpm/internal/server"
)

// ServeCommand runs the dashboard HTTP API until ctx is cancelled.
type ServeCommand struct {
	app *App
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(a *App) *ServeCommand {
	return &ServeCommand{app: a}
}

// Execute runs the serve command
func (c *ServeCommand) Execute(ctx context.Context) error {
	c.app.printf("Serving dashboard API on %s\n", c.app.config.Server.Addr)
	return server.New(c.app.api, c.app.config.Server, c.app.logger).Run(ctx)
}
