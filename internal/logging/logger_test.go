package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDebugEnabled(t *testing.T) {
	t.Setenv(DebugEnvVar, "")
	assert.False(t, DebugEnabled(), "empty PM_DEBUG should disable debug")

	t.Setenv(DebugEnvVar, "1")
	assert.True(t, DebugEnabled())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		debugEnv  string
		wantDebug bool
	}{
		{name: "production defaults to info", opts: Options{}, wantDebug: false},
		{name: "verbose enables debug", opts: Options{Verbose: true}, wantDebug: true},
		{name: "development stays at info", opts: Options{Development: true}, wantDebug: false},
		{name: "PM_DEBUG enables debug", opts: Options{}, debugEnv: "1", wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DebugEnvVar, tt.debugEnv)

			logger, err := New(tt.opts)
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	logger, err := New(Options{})
	require.NoError(t, err)
	assert.Same(t, logger, OrNop(logger))
}

func TestDebugf(t *testing.T) {
	// Only verifies that Debugf does not panic in either mode.
	t.Setenv(DebugEnvVar, "")
	Debugf("hidden %s", "message")

	t.Setenv(DebugEnvVar, "1")
	Debugf("shown %s", "message")
}
