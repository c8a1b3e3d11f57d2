package server

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := NewLogger(LogConfig{Level: "warn", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNewLoggerRejectsUnknownValues(t *testing.T) {
	_, _, err := NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, _, err = NewLogger(LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestLoggerTruncatesLongValues(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(LogConfig{Format: "text", Writer: &buf})
	require.NoError(t, err)

	logger.Info("request", "header", strings.Repeat("x", 500), "stack", strings.Repeat("s", 300))

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("x", 100)+"...[truncated]")
	assert.NotContains(t, out, strings.Repeat("x", 101))
	assert.Contains(t, out, strings.Repeat("s", 300))
}
