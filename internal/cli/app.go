package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"insightpm/internal/app"
	"insightpm/internal/config"
	"insightpm/internal/domain"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App bundles what command handlers need.
type App struct {
	api      app.API
	config   *config.Config
	out      io.Writer
	errors   *ErrorHandler
	registry *CommandRegistry
	logger   *zap.Logger
}

// NewApp creates a CLI application over api. Output goes to out, or stdout
// when out is nil.
func NewApp(api app.API, cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	a := &App{
		api:    api,
		config: cfg,
		out:    out,
		errors: NewErrorHandler(),
	}
	a.registry = NewCommandRegistry(a)
	return a
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// userName resolves an assignee id to a display name.
func (a *App) userName(id string) string {
	if id == "" {
		return "unassigned"
	}
	for _, u := range a.api.Users() {
		if u.ID == id {
			return u.String()
		}
	}
	return id
}

// formatDue renders a due date relative to today, e.g. "due in 2 days".
func formatDue(date string) string {
	due, ok := domain.ParseDate(date)
	if !ok {
		return "no due date"
	}
	today := domain.StartOfDay(timeNow())
	switch days := domain.DaysBetween(today, due); {
	case days == 0:
		return "due today"
	case days < 0:
		return "due " + humanize.RelTime(due, today, "ago", "from now")
	default:
		return "due in " + strings.TrimSuffix(humanize.RelTime(due, today, "ago", "from now"), " from now")
	}
}

// formatHours renders hours rounded to one decimal, e.g. "2.5h". Whole
// values drop the decimal.
func formatHours(h float64) string {
	return humanize.FtoaWithDigits(math.Round(h*10)/10, 1) + "h"
}

// truncate shortens s to width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
