package cli

import (
	"context"
	"sort"
	"strings"

	"insightpm/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry manages the read-only view commands.
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("board", NewBoardCommand(app))
	registry.Register("analytics", NewAnalyticsCommand(app))
	registry.Register("resources", NewResourcesCommand(app))
	registry.Register("timeline", NewTimelineCommand(app))
	registry.Register("timelog", NewTimeLogCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}

// Names lists the registered views.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetUsage returns the usage string for the view commands.
func (r *CommandRegistry) GetUsage() string {
	return "usage: insightpm " + strings.Join(r.Names(), "|")
}
