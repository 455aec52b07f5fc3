// Package logging builds the zap logger used as the diagnostic channel for
// remote failures, rollbacks and session changes.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnvVar turns on debug output regardless of configuration.
const DebugEnvVar = "PM_DEBUG"

// DebugEnabled returns true if debug mode is enabled via PM_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnvVar) != ""
}

// Options controls how New builds the logger.
type Options struct {
	Verbose     bool
	Development bool
}

// New builds a zap logger. Production config writes JSON to stderr; the
// development config writes console lines. Verbose or PM_DEBUG lowers the
// level to debug.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	if opts.Verbose || DebugEnabled() {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if opts.Development {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Debugf prints a formatted debug message through the global logger only if
// debug mode is enabled.
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		zap.S().Debugf(format, args...)
	}
}
