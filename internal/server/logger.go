package server

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// maxLogValue caps string attributes other than stack traces.
const maxLogValue = 100

// LogConfig selects the handler and level of a logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	Writer io.Writer
}

// NewLogger builds a slog logger whose level can be changed later through
// the returned LevelVar.
func NewLogger(cfg LogConfig) (*slog.Logger, *slog.LevelVar, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	lv := new(slog.LevelVar)
	lv.Set(level)
	opts := &slog.HandlerOptions{Level: lv, ReplaceAttr: truncateAttr}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text", "":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	return slog.New(h), lv, nil
}

// ParseLevel parses a log level name. An empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}

func truncateAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString || a.Key == "stack" {
		return a
	}
	if s := a.Value.String(); len(s) > maxLogValue {
		a.Value = slog.StringValue(s[:maxLogValue] + "...[truncated]")
	}
	return a
}
