package logger

import (
	"testing"

	"aquagrid/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_RespectsLogLevel(t *testing.T) {
	l := New(&config.Config{Environment: "production", LogLevel: "warn"})
	defer l.Sync()

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_UnknownLevelKeepsDefault(t *testing.T) {
	l := New(&config.Config{Environment: "development", LogLevel: "chatty"})
	defer l.Sync()

	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
