package cli

import (
	"context"
	"fmt"

	"insightpm/internal/app"
	"insightpm/internal/domain"
)

// LogTimeCommand records hours against a task.
type LogTimeCommand struct {
	app *App
	api app.API
}

// NewLogTimeCommand creates a new log-time command handler
func NewLogTimeCommand(a *App) *LogTimeCommand {
	return &LogTimeCommand{app: a, api: a.api}
}

// Execute logs in and waits for the entry to settle.
func (c *LogTimeCommand) Execute(ctx context.Context, in domain.TimeEntryInput) error {
	before := make(map[string]bool)
	for _, e := range c.api.TimeEntries(in.TaskID, "") {
		before[e.Entry.ID] = true
	}

	pending, err := c.api.LogTime(ctx, in)
	if err != nil {
		return c.app.errors.Handle("log time", err)
	}
	c.api.Wait()

	for _, e := range c.api.TimeEntries(in.TaskID, "") {
		if !before[e.Entry.ID] && !e.Entry.IsPending() {
			title := e.TaskTitle
			if title == "" {
				title = e.Entry.TaskID
			}
			c.app.printf("Logged %s on %q for %s\n", formatHours(e.Entry.Hours), title, e.Entry.Date)
			return nil
		}
	}
	return fmt.Errorf("failed to log time: %s on %s was not saved by the data service", formatHours(pending.Hours), pending.Date)
}
