package cli

import (
	"context"
	"fmt"
	"strings"

	"insightpm/internal/app"
	"insightpm/internal/domain"
)

const (
	titleWidth   = 32
	summaryWidth = 75
)

// BoardCommand prints the kanban board.
type BoardCommand struct {
	app *App
	api app.API
}

// NewBoardCommand creates a new board command handler
func NewBoardCommand(a *App) *BoardCommand {
	return &BoardCommand{app: a, api: a.api}
}

// Execute prints one section per column.
func (c *BoardCommand) Execute(ctx context.Context, args []string) error {
	for i, col := range c.api.Board() {
		if i > 0 {
			c.app.println()
		}
		header := fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks))
		c.app.println(header)
		c.app.println(strings.Repeat("-", len(header)))
		if len(col.Tasks) == 0 {
			c.app.println("  (empty)")
			continue
		}
		for _, t := range col.Tasks {
			c.app.printf("  %-9s %-*s %-18s %-16s %s\n",
				t.Priority,
				titleWidth, truncate(t.Title, titleWidth),
				formatDue(t.DueDate),
				truncate(c.app.userName(t.AssigneeID), 16),
				t.ID,
			)
		}
	}
	return nil
}

// AnalyticsCommand prints the headline numbers and the completion series.
type AnalyticsCommand struct {
	app *App
	api app.API
}

// NewAnalyticsCommand creates a new analytics command handler
func NewAnalyticsCommand(a *App) *AnalyticsCommand {
	return &AnalyticsCommand{app: a, api: a.api}
}

// Execute runs the analytics command
func (c *AnalyticsCommand) Execute(ctx context.Context, args []string) error {
	data := c.api.Analytics()
	s := data.Summary

	c.app.println("Project analytics")
	c.app.println(strings.Repeat("=", len("Project analytics")))
	c.app.printf("Total tasks:     %d\n", s.Total)
	c.app.printf("Completed:       %d (%d%%)\n", s.Completed, s.CompletionPercent)
	c.app.printf("In progress:     %d\n", s.InProgress)
	c.app.printf("In review:       %d\n", s.Review)
	c.app.printf("To do:           %d\n", s.Todo)
	c.app.printf("Overdue:         %d\n", s.Overdue)

	c.app.println()
	c.app.println("Completed per day")
	c.app.println(strings.Repeat("-", summaryWidth))
	if len(data.CompletionSeries) == 0 {
		c.app.println("No completed tasks yet")
		return nil
	}
	for _, p := range data.CompletionSeries {
		c.app.printf("%s  %-40s %d\n", p.Date, strings.Repeat("#", min(p.Completed, 40)), p.Completed)
	}
	return nil
}

// ResourcesCommand prints per-user workload.
type ResourcesCommand struct {
	app *App
	api app.API
}

// NewResourcesCommand creates a new resources command handler
func NewResourcesCommand(a *App) *ResourcesCommand {
	return &ResourcesCommand{app: a, api: a.api}
}

// Execute runs the resources command
func (c *ResourcesCommand) Execute(ctx context.Context, args []string) error {
	data := c.api.Resources()
	if len(data.Loads) == 0 {
		c.app.println("No team members found")
		return nil
	}

	c.app.printf("Workload over the next %d working days\n", data.WindowDays)
	c.app.printf("%-24s %-10s %-10s %-12s %s\n", "Member", "Open", "Capacity", "Utilization", "Status")
	c.app.println(strings.Repeat("-", summaryWidth))
	for _, load := range data.Loads {
		c.app.printf("%-24s %-10s %-10s %-12s %s\n",
			truncate(load.User.String(), 24),
			formatHours(load.OpenHours),
			formatHours(load.Capacity),
			fmt.Sprintf("%.0f%%", load.Utilization*100),
			load.Band,
		)
	}
	return nil
}

// TimelineCommand prints a text gantt chart of the planning window.
type TimelineCommand struct {
	app *App
	api app.API
}

// NewTimelineCommand creates a new timeline command handler
func NewTimelineCommand(a *App) *TimelineCommand {
	return &TimelineCommand{app: a, api: a.api}
}

// Execute runs the timeline command
func (c *TimelineCommand) Execute(ctx context.Context, args []string) error {
	tl := c.api.Timeline()
	days := len(tl.Days)
	if days == 0 {
		return nil
	}

	c.app.printf("Timeline %s to %s\n", tl.Days[0], tl.Days[days-1])
	marker := make([]rune, days)
	for i, d := range tl.Days {
		marker[i] = '.'
		if d == tl.Today {
			marker[i] = 'v'
		}
	}
	c.app.printf("%-*s |%s|\n", titleWidth, "", string(marker))

	shown := 0
	for _, bar := range tl.Bars {
		if !bar.Visible {
			continue
		}
		shown++
		cells := strings.Repeat(" ", bar.OffsetDays) +
			strings.Repeat("#", bar.WidthDays) +
			strings.Repeat(" ", max(0, days-bar.OffsetDays-bar.WidthDays))
		c.app.printf("%-*s |%s| %s\n", titleWidth, truncate(bar.Task.Title, titleWidth), cells, bar.Task.Status)
	}
	if shown == 0 {
		c.app.println("No scheduled tasks in this window")
	}
	return nil
}

// TimeLogCommand prints logged hours.
type TimeLogCommand struct {
	app *App
	api app.API
}

// NewTimeLogCommand creates a new timelog command handler
func NewTimeLogCommand(a *App) *TimeLogCommand {
	return &TimeLogCommand{app: a, api: a.api}
}

// Execute runs the timelog command
func (c *TimeLogCommand) Execute(ctx context.Context, args []string) error {
	data := c.api.TimeLog()
	c.app.printf("This week: %s   All time: %s\n", formatHours(data.WeekHours), formatHours(data.TotalHours))
	c.app.println(strings.Repeat("-", summaryWidth))
	if len(data.Entries) == 0 {
		c.app.println("No time logged")
		return nil
	}
	for _, e := range data.Entries {
		title := e.TaskTitle
		if title == "" {
			title = e.Entry.TaskID
		}
		c.app.printf("%s  %-6s %-*s %s\n", e.Entry.Date, formatHours(e.Entry.Hours), titleWidth, truncate(title, titleWidth), describe(e.Entry))
	}
	return nil
}

func describe(te domain.TimeEntry) string {
	if te.Description == nil {
		return ""
	}
	return *te.Description
}
