package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"insightpm/internal/app"
	"insightpm/internal/config"
	"insightpm/internal/domain"
	"insightpm/internal/errors"
	"insightpm/internal/session"
)

// Runtime is an opened application.
type Runtime struct {
	API    app.API
	Logger *zap.Logger
	Close  func() error
}

// Opener builds the application for a loaded configuration.
type Opener func(ctx context.Context, cfg *config.Config) (*Runtime, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	config *config.Config
	open   Opener
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader, open Opener) *RootCommand {
	root := &RootCommand{
		loader: loader,
		open:   open,
	}

	root.cmd = &cobra.Command{
		Use:   "insightpm",
		Short: "A project management dashboard over a hosted task store",
		Long: `InsightPM keeps a local mirror of your team's tasks, projects, members and
time entries, applies edits optimistically and reconciles them with the data
service in the background.

FEATURES:
  • Kanban board, timeline, resource load and completion analytics
  • Create, edit, move and delete tasks; log time; add projects
  • Serve the dashboard as a JSON API for the browser client

EXAMPLES:
  insightpm board                                  # Show the board
  insightpm task add "Write release notes" --priority high --due 2024-03-15
  insightpm task move 6f1c... "in progress"        # Move a task
  insightpm log-time 6f1c... 1.5 --description "review"
  insightpm resources                              # Workload per member
  insightpm serve --addr :8080                     # Run the HTTP API

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment
  variables > .env files > YAML file (PM_CONFIG_FILE) > defaults

  Remote Configuration:
    PM_REMOTE_URL (SUPABASE_URL)           Data service URL
    PM_REMOTE_ANON_KEY (SUPABASE_ANON_KEY) Data service anon key
    PM_REMOTE_TIMEOUT                      HTTP timeout (default: 10s)

  Database Configuration (development and testing):
    PM_DB_DRIVER                           sqlite or postgres (default: sqlite)
    PM_DB_DIR                              Database directory (default: ~/.insightpm)
    PM_DB_FILENAME                         Database filename (default: insightpm.db)
    PM_DB_DSN                              Full DSN, overrides dir and filename

  Auth Configuration:
    PM_EMAIL, PM_PASSWORD                  Credentials used by CLI commands
    PM_AUTH_JWT_SECRET                     Session signing secret (embedded store)
    PM_AUTH_SESSION_TTL                    Session lifetime (default: 168h)
    PM_AUTH_RESET_REDIRECT                 Password recovery redirect URL

  Analytics Configuration:
    PM_ANALYTICS_PLANNING_DAYS             Capacity window in days (default: 5)
    PM_ANALYTICS_SERIES_DAYS               Completion series length (default: 14)
    PM_ANALYTICS_TIMELINE_DAYS             Timeline width (default: 14)
    PM_ANALYTICS_TIMELINE_LEAD_DAYS        Days shown before today (default: 5)

  Server Configuration:
    PM_SERVER_ADDR                         Listen address (default: :8080)
    PM_SERVER_ALLOWED_ORIGINS              Comma separated CORS origins

  Application Configuration:
    PM_ENV                                 production, development or testing
    PM_APP_TIMEOUT                         Command timeout (default: 60s)
    PM_APP_VERBOSE                         Debug logging (default: false)

GETTING HELP:
  insightpm [command] --help               # Get help for any specific command
  insightpm completion bash                # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Apply configuration overrides from flags before any command runs
			return root.loadConfig(cmd.Flags())
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the underlying cobra command.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// ExecuteContext runs the root command with ctx, which serve uses for
// shutdown.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML configuration file (overrides PM_CONFIG_FILE)")
	flags.String("env", "", "Environment: production, development or testing (overrides PM_ENV)")

	// Remote configuration
	flags.String("remote-url", "", "Data service URL (overrides PM_REMOTE_URL)")
	flags.String("anon-key", "", "Data service anon key (overrides PM_REMOTE_ANON_KEY)")
	flags.Duration("remote-timeout", 0, "Data service HTTP timeout (overrides PM_REMOTE_TIMEOUT)")

	// Database configuration
	flags.String("db-driver", "", "Embedded store driver (overrides PM_DB_DRIVER)")
	flags.String("db-dir", "", "Database directory (overrides PM_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides PM_DB_FILENAME)")
	flags.String("db-dsn", "", "Database DSN (overrides PM_DB_DSN)")

	// Auth configuration
	flags.String("email", "", "Account email (overrides PM_EMAIL)")
	flags.String("password", "", "Account password (overrides PM_PASSWORD)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides PM_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable debug logging (overrides PM_APP_VERBOSE)")
}

// loadConfig runs the configuration cascade with the flags that were set.
func (r *RootCommand) loadConfig(flags *pflag.FlagSet) error {
	if r.loader == nil {
		return fmt.Errorf("configuration loader not initialized")
	}
	cfg, err := r.loader.LoadWithOverrides(overridesFromFlags(flags))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg
	return nil
}

func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	o := &config.ConfigOverrides{}
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	o.ConfigFile = str("config")
	o.Environment = str("env")
	o.RemoteURL = str("remote-url")
	o.RemoteAnonKey = str("anon-key")
	o.RemoteTimeout = dur("remote-timeout")
	o.DBDriver = str("db-driver")
	o.DBDir = str("db-dir")
	o.DBFilename = str("db-filename")
	o.DBDSN = str("db-dsn")
	o.Email = str("email")
	o.Password = str("password")
	o.Timeout = dur("app-timeout")
	if flags.Lookup("addr") != nil {
		o.ServerAddr = str("addr")
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}
	return o
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

type runOptions struct {
	session bool
	timeout bool
}

// run opens the application around fn and closes it afterwards, waiting for
// background writes.
func (r *RootCommand) run(opts runOptions, fn func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if opts.timeout {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout())
			defer cancel()
		}

		rt, err := r.open(ctx, r.config)
		if err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		defer func() {
			if cerr := rt.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close: %w", cerr)
			}
		}()

		a := NewApp(rt.API, r.config, cmd.OutOrStdout())
		a.logger = rt.Logger
		if opts.session {
			if err := rt.API.EnsureSession(ctx); err != nil {
				return a.errors.Handle("sign in", err)
			}
		}
		return fn(ctx, a, cmd, args)
	}
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	views := map[string]string{
		"board":     "Show the kanban board",
		"analytics": "Show completion analytics",
		"resources": "Show workload per team member",
		"timeline":  "Show the task timeline",
		"timelog":   "Show logged hours",
	}
	for _, name := range []string{"board", "analytics", "resources", "timeline", "timelog"} {
		r.cmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: views[name],
			Args:  cobra.NoArgs,
			RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
				return a.registry.Execute(ctx, name, args)
			}),
		})
	}

	r.cmd.AddCommand(
		r.serveCommand(),
		r.signUpCommand(),
		r.resetPasswordCommand(),
		r.taskCommand(),
		r.logTimeCommand(),
		r.projectCommand(),
	)
}

func (r *RootCommand) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard HTTP API",
		Long: `Serve the dashboard as a JSON API for the browser client. The browser signs
in through POST /api/auth/signin; other routes answer 401 until it does.`,
		Args: cobra.NoArgs,
		RunE: r.run(runOptions{}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			return NewServeCommand(a).Execute(ctx)
		}),
	}
	cmd.Flags().String("addr", "", "Listen address (overrides PM_SERVER_ADDR)")
	return cmd
}

func (r *RootCommand) signUpCommand() *cobra.Command {
	var form session.SignUpForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long:  "Register a new account with --email and --password. The password must be repeated with --confirm-password.",
		Args:  cobra.NoArgs,
		RunE: r.run(runOptions{timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			form.Email = a.config.Auth.Email
			form.Password = a.config.Auth.Password
			return NewAccountCommand(a).SignUp(ctx, form)
		}),
	}
	cmd.Flags().StringVar(&form.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Username, "username", "", "Username")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Repeat the password")
	_ = cmd.MarkFlagRequired("confirm-password")
	return cmd
}

func (r *RootCommand) resetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [email]",
		Short: "Send a password recovery email",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(runOptions{timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			email := a.config.Auth.Email
			if len(args) == 1 {
				email = args[0]
			}
			return NewAccountCommand(a).ResetPassword(ctx, email)
		}),
	}
}

// taskFlags binds the task form to command flags.
type taskFlags struct {
	description string
	status      string
	priority    string
	assignee    string
	project     string
	start       string
	due         string
	estimate    float64
	tags        string
}

func (f *taskFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.description, "description", "", "Task description")
	flags.StringVar(&f.status, "status", "", "Todo, \"In Progress\", Review or Done")
	flags.StringVar(&f.priority, "priority", "", "Low, Medium, High or Critical")
	flags.StringVar(&f.assignee, "assignee", "", "Assignee user id, or \"me\"")
	flags.StringVar(&f.project, "project", "", "Project id; empty clears it")
	flags.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	flags.StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD)")
	flags.Float64Var(&f.estimate, "estimate", 0, "Estimated hours")
	flags.StringVar(&f.tags, "tags", "", "Comma separated tags")
}

// apply copies the flags that were set onto in.
func (f *taskFlags) apply(flags *pflag.FlagSet, api app.API, in *domain.TaskInput) error {
	if flags.Changed("description") {
		in.Description = f.description
	}
	if flags.Changed("status") {
		status, ok := domain.ParseTaskStatus(f.status)
		if !ok {
			return errors.NewInvalidInputError("status", f.status, "must be one of Todo, In Progress, Review, Done")
		}
		in.Status = status
	}
	if flags.Changed("priority") {
		priority, ok := domain.ParsePriority(f.priority)
		if !ok {
			return errors.NewInvalidInputError("priority", f.priority, "must be one of Low, Medium, High, Critical")
		}
		in.Priority = priority
	}
	if flags.Changed("assignee") {
		in.AssigneeID = f.assignee
		if strings.EqualFold(f.assignee, "me") {
			in.AssigneeID = ""
			if s := api.Session(); s != nil {
				in.AssigneeID = s.User.ID
			}
		}
	}
	if flags.Changed("project") {
		in.ProjectID = f.project
	}
	if flags.Changed("start") {
		in.StartDate = f.start
	}
	if flags.Changed("due") {
		in.DueDate = f.due
	}
	if flags.Changed("estimate") {
		in.EstimatedTime = f.estimate
	}
	if flags.Changed("tags") {
		in.Tags = domain.ParseTags(f.tags)
	}
	return nil
}

func (r *RootCommand) taskCommand() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Create, edit, move and delete tasks",
	}

	var addFlags taskFlags
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Long: `Create a task. Unset fields get the form defaults: status Todo, priority
Medium, start today, due in two days, 4 estimated hours and the "general" tag.`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			in := domain.TaskInput{Title: strings.Join(args, " ")}
			if err := addFlags.apply(cmd.Flags(), a.api, &in); err != nil {
				return a.errors.Handle("add task", err)
			}
			return NewTaskCommand(a).Add(ctx, in)
		}),
	}
	addFlags.bind(add)

	var editFlags taskFlags
	var title string
	edit := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return NewTaskCommand(a).Edit(ctx, args[0], func(in *domain.TaskInput) error {
				if flags.Changed("title") {
					in.Title = title
				}
				return editFlags.apply(flags, a.api, in)
			})
		}),
	}
	edit.Flags().StringVar(&title, "title", "", "Task title")
	editFlags.bind(edit)

	move := &cobra.Command{
		Use:   "move [id] [status]",
		Short: "Move a task to another board column",
		Args:  cobra.MinimumNArgs(2),
		RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			return NewTaskCommand(a).Move(ctx, args[0], strings.Join(args[1:], " "))
		}),
	}

	del := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			return NewTaskCommand(a).Delete(ctx, args[0])
		}),
	}

	task.AddCommand(add, edit, move, del)
	return task
}

func (r *RootCommand) logTimeCommand() *cobra.Command {
	var in domain.TimeEntryInput
	cmd := &cobra.Command{
		Use:   "log-time [task id] [hours]",
		Short: "Log hours against a task",
		Long:  "Log hours against a task for today, or --date. Hours are logged for the signed-in user unless --user is given.",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			hours, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return a.errors.Handle("log time", errors.NewInvalidInputError("hours", args[1], "must be a number"))
			}
			entry := in
			entry.TaskID = args[0]
			entry.Hours = hours
			return NewLogTimeCommand(a).Execute(ctx, entry)
		}),
	}
	cmd.Flags().StringVar(&in.Date, "date", "", "Date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&in.Description, "description", "", "What the time was spent on")
	cmd.Flags().StringVar(&in.UserID, "user", "", "User id, default the signed-in user")
	return cmd
}

func (r *RootCommand) projectCommand() *cobra.Command {
	project := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var in domain.ProjectInput
	var status string
	add := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(runOptions{session: true, timeout: true}, func(ctx context.Context, a *App, cmd *cobra.Command, args []string) error {
			p := in
			p.Name = strings.Join(args, " ")
			if status != "" {
				parsed, ok := domain.ParseProjectStatus(status)
				if !ok {
					return a.errors.Handle("add project", errors.NewInvalidInputError("status", status, "must be one of Active, On Hold, Completed"))
				}
				p.Status = parsed
			}
			return NewProjectCommand(a).Add(ctx, p)
		}),
	}
	add.Flags().StringVar(&in.Description, "description", "", "Project description")
	add.Flags().StringVar(&status, "status", "", "Active, \"On Hold\" or Completed")
	add.Flags().IntVar(&in.Progress, "progress", 0, "Progress percentage (0-100)")
	add.Flags().StringVar(&in.Color, "color", "", "Display color")

	project.AddCommand(add)
	return project
}
