package config

import (
	"os"
	"strconv"
	"time"
)

// ConfigFileEnvVar names a YAML file layered between defaults and the environment.
const ConfigFileEnvVar = "PM_CONFIG_FILE"

// Loader layers configuration sources, lowest precedence first: defaults,
// .env files, the YAML file, the process environment, then flag overrides.
type Loader struct {
	config     *Config
	envFiles   []string
	configFile string
}

func NewLoader() *Loader {
	return &Loader{
		config:   NewConfig(),
		envFiles: []string{".env", ".env.local"},
	}
}

// WithEnvFiles replaces the list of .env files consulted by Load.
func (l *Loader) WithEnvFiles(paths ...string) *Loader {
	l.envFiles = paths
	return l
}

// WithConfigFile sets the YAML file to read. PM_CONFIG_FILE is used when unset.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Load builds and validates the configuration without flag overrides.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithOverrides(nil)
}

// LoadWithOverrides builds the configuration and applies overrides, which
// may be nil, before validating it.
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	cfg := l.config
	if err := cfg.LoadEnvFiles(l.envFiles...); err != nil {
		return nil, err
	}

	if path := l.yamlPath(overrides); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	overrides.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// yamlPath picks the config file: the --config flag, then WithConfigFile,
// then PM_CONFIG_FILE. The env file has already been loaded at this point so
// PM_CONFIG_FILE may come from .env.
func (l *Loader) yamlPath(overrides *ConfigOverrides) string {
	if overrides != nil && overrides.ConfigFile != nil {
		return *overrides.ConfigFile
	}
	if l.configFile != "" {
		return l.configFile
	}
	return os.Getenv(ConfigFileEnvVar)
}

// ConfigOverrides holds command line flag values. A nil field leaves the
// loaded value alone.
type ConfigOverrides struct {
	ConfigFile *string

	RemoteURL     *string
	RemoteAnonKey *string
	RemoteTimeout *time.Duration

	DBDriver   *string
	DBDir      *string
	DBFilename *string
	DBDSN      *string

	Email    *string
	Password *string

	ServerAddr *string

	Environment *string
	Timeout     *time.Duration
	Verbose     *bool
}

func (o *ConfigOverrides) apply(c *Config) {
	if o == nil {
		return
	}
	override(&c.Remote.URL, o.RemoteURL)
	override(&c.Remote.AnonKey, o.RemoteAnonKey)
	override(&c.Remote.Timeout, o.RemoteTimeout)

	override(&c.Database.Driver, o.DBDriver)
	override(&c.Database.Dir, o.DBDir)
	override(&c.Database.Filename, o.DBFilename)
	override(&c.Database.DSN, o.DBDSN)

	override(&c.Auth.Email, o.Email)
	override(&c.Auth.Password, o.Password)

	override(&c.Server.Addr, o.ServerAddr)

	if o.Environment != nil {
		c.Application.Environment = ParseEnvironment(*o.Environment)
	}
	override(&c.Application.Timeout, o.Timeout)
	override(&c.Application.Verbose, o.Verbose)
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// withFallback returns parse(s), or fallback when s does not parse.
func withFallback[T any](s string, parse func(string) (T, error), fallback T) T {
	if v, err := parse(s); err == nil {
		return v
	}
	return fallback
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	return withFallback(s, time.ParseDuration, fallback)
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	return withFallback(s, strconv.Atoi, fallback)
}

func ParseBoolWithFallback(s string, fallback bool) bool {
	return withFallback(s, strconv.ParseBool, fallback)
}

// ParseFloatWithFallback parses a float string with a fallback value
func ParseFloatWithFallback(s string, fallback float64) float64 {
	return withFallback(s, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }, fallback)
}

// ParseUint32WithFallback parses an unsigned integer in the given base, as
// used for octal directory permissions.
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	return withFallback(s, func(s string) (uint32, error) {
		u, err := strconv.ParseUint(s, base, 32)
		return uint32(u), err
	}, fallback)
}
