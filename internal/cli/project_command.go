package cli

import (
	"context"
	"fmt"

	"insightpm/internal/app"
	"insightpm/internal/domain"
)

// ProjectCommand handles project add.
type ProjectCommand struct {
	app *App
	api app.API
}

// NewProjectCommand creates a new project command handler
func NewProjectCommand(a *App) *ProjectCommand {
	return &ProjectCommand{app: a, api: a.api}
}

// Add creates a project and waits for it to settle.
func (c *ProjectCommand) Add(ctx context.Context, in domain.ProjectInput) error {
	before := make(map[string]bool)
	for _, p := range c.api.Projects() {
		before[p.ID] = true
	}

	pending, err := c.api.CreateProject(ctx, in)
	if err != nil {
		return c.app.errors.Handle("add project", err)
	}
	c.api.Wait()

	for _, p := range c.api.Projects() {
		if !before[p.ID] && !domain.IsTempID(p.ID) {
			c.app.printf("Created project %q (%s)\n", p.Name, p.ID)
			return nil
		}
	}
	return fmt.Errorf("failed to add project: %q was not saved by the data service", pending.Name)
}
