package cli

import (
	"context"
	"fmt"

	"insightpm/internal/app"
	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/services"
)

// TaskCommand handles task add, edit, move and delete. Each waits for the
// background write so the result reflects what the data service accepted.
type TaskCommand struct {
	app *App
	api app.API
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(a *App) *TaskCommand {
	return &TaskCommand{app: a, api: a.api}
}

func (c *TaskCommand) taskIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, t := range c.api.Tasks(services.SearchCriteria{}) {
		ids[t.ID] = true
	}
	return ids
}

// Add creates a task from in.
func (c *TaskCommand) Add(ctx context.Context, in domain.TaskInput) error {
	before := c.taskIDs()
	pending, err := c.api.SaveTask(ctx, in)
	if err != nil {
		return c.app.errors.Handle("add task", err)
	}
	c.api.Wait()

	for _, t := range c.api.Tasks(services.SearchCriteria{}) {
		if !before[t.ID] && !t.IsPending() {
			c.app.printf("Created task %q (%s), %s\n", t.Title, t.ID, formatDue(t.DueDate))
			return nil
		}
	}
	return fmt.Errorf("failed to add task: %q was not saved by the data service", pending.Title)
}

// Edit loads task id into the form, lets apply change it and saves it.
func (c *TaskCommand) Edit(ctx context.Context, id string, apply func(*domain.TaskInput) error) error {
	task, err := c.api.Task(id)
	if err != nil {
		return c.app.errors.Handle("edit task", err)
	}

	in := domain.InputFrom(task)
	if err := apply(&in); err != nil {
		return c.app.errors.Handle("edit task", err)
	}

	saved, err := c.api.SaveTask(ctx, in)
	if err != nil {
		return c.app.errors.Handle("edit task", err)
	}
	c.api.Wait()

	c.app.printf("Updated task %q (%s)\n", saved.Title, saved.ID)
	return nil
}

// Move changes the board column of task id.
func (c *TaskCommand) Move(ctx context.Context, id, status string) error {
	parsed, ok := domain.ParseTaskStatus(status)
	if !ok {
		return c.app.errors.Handle("move task", errors.NewInvalidInputError("status", status, "must be one of Todo, In Progress, Review, Done"))
	}

	moved, err := c.api.MoveTask(ctx, id, parsed)
	if err != nil {
		return c.app.errors.Handle("move task", err)
	}
	c.api.Wait()

	c.app.printf("Moved %q to %s\n", moved.Title, moved.Status)
	return nil
}

// Delete removes task id. The data service rejecting the delete restores
// the task, which is reported as an error.
func (c *TaskCommand) Delete(ctx context.Context, id string) error {
	task, err := c.api.Task(id)
	if err != nil {
		return c.app.errors.Handle("delete task", err)
	}
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return c.app.errors.Handle("delete task", err)
	}
	c.api.Wait()

	if _, err := c.api.Task(id); err == nil {
		return fmt.Errorf("failed to delete task: the data service rejected the delete, %q was restored", task.Title)
	}
	c.app.printf("Deleted task %q\n", task.Title)
	return nil
}
