package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment selects which backend the application talks to.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// Config holds all configuration options for the dashboard.
type Config struct {
	Remote      RemoteConfig      `yaml:"remote"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Validation  ValidationConfig  `yaml:"validation"`
	Server      ServerConfig      `yaml:"server"`
	Application ApplicationConfig `yaml:"application"`
}

// RemoteConfig points at the hosted data/auth service.
type RemoteConfig struct {
	URL     string        `yaml:"url" env:"PM_REMOTE_URL"`
	AnonKey string        `yaml:"anon_key" env:"PM_REMOTE_ANON_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"PM_REMOTE_TIMEOUT"`
}

// DatabaseConfig configures the embedded SQL stand-in used outside production.
type DatabaseConfig struct {
	Driver         string `yaml:"driver" env:"PM_DB_DRIVER"`
	Dir            string `yaml:"dir" env:"PM_DB_DIR"`
	Filename       string `yaml:"filename" env:"PM_DB_FILENAME"`
	DSN            string `yaml:"dsn" env:"PM_DB_DSN"`
	DirPermissions uint32 `yaml:"dir_permissions" env:"PM_DB_DIR_PERMISSIONS"`
}

// AuthConfig holds session settings and the CLI's stored credentials.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret" env:"PM_AUTH_JWT_SECRET"`
	SessionTTL       time.Duration `yaml:"session_ttl" env:"PM_AUTH_SESSION_TTL"`
	ResetRedirectURL string        `yaml:"reset_redirect_url" env:"PM_AUTH_RESET_REDIRECT"`
	Email            string        `yaml:"email" env:"PM_EMAIL"`
	Password         string        `yaml:"-" env:"PM_PASSWORD"`
}

// AnalyticsConfig holds the windows used by the derived views.
type AnalyticsConfig struct {
	PlanningWindowDays int `yaml:"planning_window_days" env:"PM_ANALYTICS_PLANNING_DAYS"`
	SeriesDays         int `yaml:"series_days" env:"PM_ANALYTICS_SERIES_DAYS"`
	TimelineDays       int `yaml:"timeline_days" env:"PM_ANALYTICS_TIMELINE_DAYS"`
	TimelineLeadDays   int `yaml:"timeline_lead_days" env:"PM_ANALYTICS_TIMELINE_LEAD_DAYS"`
}

// ValidationConfig holds input limits
type ValidationConfig struct {
	TitleMaxLength    int     `yaml:"title_max_length" env:"PM_VALIDATION_TITLE_MAX"`
	MaxEstimatedHours float64 `yaml:"max_estimated_hours" env:"PM_VALIDATION_MAX_ESTIMATE"`
	MaxEntryHours     float64 `yaml:"max_entry_hours" env:"PM_VALIDATION_MAX_ENTRY_HOURS"`
}

// ServerConfig configures the dashboard HTTP API
type ServerConfig struct {
	Addr           string   `yaml:"addr" env:"PM_SERVER_ADDR"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"PM_SERVER_ALLOWED_ORIGINS"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Environment Environment   `yaml:"environment" env:"PM_ENV"`
	Timeout     time.Duration `yaml:"timeout" env:"PM_APP_TIMEOUT"`
	Verbose     bool          `yaml:"verbose" env:"PM_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Remote: RemoteConfig{
			Timeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         "sqlite",
			Dir:            filepath.Join(homeDir, ".insightpm"),
			Filename:       "insightpm.db",
			DirPermissions: 0755,
		},
		Auth: AuthConfig{
			JWTSecret:  "insightpm-development-secret",
			SessionTTL: 7 * 24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			PlanningWindowDays: 5,
			SeriesDays:         14,
			TimelineDays:       14,
			TimelineLeadDays:   5,
		},
		Validation: ValidationConfig{
			TitleMaxLength:    255,
			MaxEstimatedHours: 1000,
			MaxEntryHours:     24,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Application: ApplicationConfig{
			Environment: Production,
			Timeout:     60 * time.Second,
		},
	}
}

// GetDatabasePath returns the path to the SQLite database file, or the DSN
// for other drivers.
func (c *Config) GetDatabasePath() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.Database.Filename == ":memory:" {
		return ":memory:"
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// LoadEnvFiles loads .env style files into the process environment. Missing
// files are skipped; variables already set win.
func (c *Config) LoadEnvFiles(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return &ConfigError{Field: "env_file", Message: err.Error()}
	}
	return nil
}

// LoadFromFile overlays a YAML configuration file onto c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &ConfigError{Field: "config_file", Message: fmt.Sprintf("parse %s: %v", path, err)}
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Remote service; the SUPABASE_* names are accepted so an existing
	// frontend .env can be reused.
	if url := firstEnv("PM_REMOTE_URL", "SUPABASE_URL", "VITE_SUPABASE_URL"); url != "" {
		c.Remote.URL = url
	}
	if key := firstEnv("PM_REMOTE_ANON_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"); key != "" {
		c.Remote.AnonKey = key
	}
	if timeout := os.Getenv("PM_REMOTE_TIMEOUT"); timeout != "" {
		c.Remote.Timeout = ParseDurationWithFallback(timeout, c.Remote.Timeout)
	}

	// Database configuration
	if driver := os.Getenv("PM_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dir := os.Getenv("PM_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("PM_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("PM_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if perms := os.Getenv("PM_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Auth configuration
	if secret := os.Getenv("PM_AUTH_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if ttl := os.Getenv("PM_AUTH_SESSION_TTL"); ttl != "" {
		c.Auth.SessionTTL = ParseDurationWithFallback(ttl, c.Auth.SessionTTL)
	}
	if redirect := os.Getenv("PM_AUTH_RESET_REDIRECT"); redirect != "" {
		c.Auth.ResetRedirectURL = redirect
	}
	if email := os.Getenv("PM_EMAIL"); email != "" {
		c.Auth.Email = email
	}
	if password := os.Getenv("PM_PASSWORD"); password != "" {
		c.Auth.Password = password
	}

	// Analytics configuration
	if days := os.Getenv("PM_ANALYTICS_PLANNING_DAYS"); days != "" {
		c.Analytics.PlanningWindowDays = ParseIntWithFallback(days, c.Analytics.PlanningWindowDays)
	}
	if days := os.Getenv("PM_ANALYTICS_SERIES_DAYS"); days != "" {
		c.Analytics.SeriesDays = ParseIntWithFallback(days, c.Analytics.SeriesDays)
	}
	if days := os.Getenv("PM_ANALYTICS_TIMELINE_DAYS"); days != "" {
		c.Analytics.TimelineDays = ParseIntWithFallback(days, c.Analytics.TimelineDays)
	}
	if days := os.Getenv("PM_ANALYTICS_TIMELINE_LEAD_DAYS"); days != "" {
		c.Analytics.TimelineLeadDays = ParseIntWithFallback(days, c.Analytics.TimelineLeadDays)
	}

	// Validation configuration
	if maxLen := os.Getenv("PM_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if maxEstimate := os.Getenv("PM_VALIDATION_MAX_ESTIMATE"); maxEstimate != "" {
		c.Validation.MaxEstimatedHours = ParseFloatWithFallback(maxEstimate, c.Validation.MaxEstimatedHours)
	}
	if maxEntry := os.Getenv("PM_VALIDATION_MAX_ENTRY_HOURS"); maxEntry != "" {
		c.Validation.MaxEntryHours = ParseFloatWithFallback(maxEntry, c.Validation.MaxEntryHours)
	}

	// Server configuration
	if addr := os.Getenv("PM_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("PM_SERVER_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	// Application configuration
	if env := os.Getenv("PM_ENV"); env != "" {
		c.Application.Environment = ParseEnvironment(env)
	}
	if timeout := os.Getenv("PM_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("PM_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	switch c.Application.Environment {
	case Development, Testing, Production:
	default:
		return &ConfigError{Field: "application.environment", Message: fmt.Sprintf("unknown environment %q", c.Application.Environment)}
	}

	if c.Application.Environment == Production {
		if c.Remote.URL == "" {
			return &ConfigError{Field: "remote.url", Message: "remote service URL is required in production"}
		}
		if c.Remote.AnonKey == "" {
			return &ConfigError{Field: "remote.anon_key", Message: "remote service anon key is required in production"}
		}
	}
	if c.Remote.Timeout <= 0 {
		return &ConfigError{Field: "remote.timeout", Message: "remote timeout must be positive"}
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.DSN == "" && c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case "postgres":
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres driver requires a DSN"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: fmt.Sprintf("unsupported driver %q", c.Database.Driver)}
	}

	if len(c.Auth.JWTSecret) < 16 {
		return &ConfigError{Field: "auth.jwt_secret", Message: "jwt secret must be at least 16 characters"}
	}
	if c.Auth.SessionTTL <= 0 {
		return &ConfigError{Field: "auth.session_ttl", Message: "session ttl must be positive"}
	}

	if c.Analytics.PlanningWindowDays < 1 {
		return &ConfigError{Field: "analytics.planning_window_days", Message: "planning window must be at least 1 day"}
	}
	if c.Analytics.SeriesDays < 1 {
		return &ConfigError{Field: "analytics.series_days", Message: "series must cover at least 1 day"}
	}
	if c.Analytics.TimelineDays < 1 || c.Analytics.TimelineLeadDays < 0 {
		return &ConfigError{Field: "analytics.timeline_days", Message: "timeline window must be positive"}
	}

	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}
	if c.Validation.MaxEstimatedHours <= 0 || c.Validation.MaxEntryHours <= 0 {
		return &ConfigError{Field: "validation.max_hours", Message: "hour limits must be positive"}
	}

	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseEnvironment maps a name to an Environment, defaulting to production.
func ParseEnvironment(name string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(name))) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
