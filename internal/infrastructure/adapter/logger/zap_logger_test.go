package logger

import (
	"errors"
	"testing"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelFiltering(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(obsCore), core.LogLevelWarn)

	log.Info("dropped", nil)
	log.Warn("kept", map[string]any{"user_id": "USR1"})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "USR1", logs.All()[0].ContextMap()["user_id"])

	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, log.GetLevel())
	log.Debug("now visible", nil)
	assert.Equal(t, 2, logs.Len())
}

func TestZapLogger_WithAndErrors(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(obsCore), core.LogLevelInfo).With(map[string]any{"request_id": "req-1"})

	log.Error("failed", map[string]any{"error": errors.New("boom")})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNewZapLogger(t *testing.T) {
	log, err := NewZapLogger(Options{Level: "error", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, core.LogLevelError, log.GetLevel())

	noop := NewNoopLogger()
	assert.Same(t, noop, noop.With(map[string]any{"a": 1}))
	assert.NoError(t, noop.Flush())
}
