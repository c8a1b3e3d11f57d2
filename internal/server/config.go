package server

import (
	"log/slog"
	"time"

	"github.com/Brownie44l1/embedhttp/internal/request"
)

// Config holds the settings of a server instance.
type Config struct {
	// Port to listen on. 0 picks an ephemeral port.
	Port int

	// Backlog is the listen queue length.
	Backlog int

	// AcceptTimeout bounds each accept call so the loop notices Stop.
	AcceptTimeout time.Duration

	// ReadTimeout bounds each read on a connection.
	ReadTimeout time.Duration

	Limits request.Limits

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics
}

// DefaultConfig returns port 0, backlog 10 and one second timeouts.
func DefaultConfig() Config {
	return Config{
		Port:          0,
		Backlog:       10,
		AcceptTimeout: time.Second,
		ReadTimeout:   time.Second,
		Limits:        request.DefaultLimits(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backlog <= 0 {
		c.Backlog = d.Backlog
	}
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = d.AcceptTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
