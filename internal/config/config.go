// Package config loads the YAML configuration of the embedhttp command.
package config

import (
	"time"

	"github.com/Brownie44l1/embedhttp/internal/request"
)

// Config is the root of the configuration file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig configures the listener and request limits.
type ServerConfig struct {
	// Port to listen on; 0 selects an ephemeral port.
	Port    int `yaml:"port"`
	Backlog int `yaml:"backlog"`

	AcceptTimeout time.Duration `yaml:"accept_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`

	MaxHeaders         int   `yaml:"max_headers"`
	MaxHeaderLineBytes int   `yaml:"max_header_line_bytes"`
	MaxBodyBytes       int64 `yaml:"max_body_bytes"`
	MaxChunkBytes      int64 `yaml:"max_chunk_bytes"`
}

// Limits converts the limit fields for the request parser.
func (s ServerConfig) Limits() request.Limits {
	return request.Limits{
		MaxHeaders:         s.MaxHeaders,
		MaxHeaderLineBytes: s.MaxHeaderLineBytes,
		MaxBodyBytes:       s.MaxBodyBytes,
		MaxChunkBytes:      s.MaxChunkBytes,
	}
}

// LogConfig configures logging. The level can be changed while running.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// RateLimitConfig limits requests per client IP. Zero requests disables it.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func (r RateLimitConfig) Enabled() bool { return r.Requests > 0 }

// CORSConfig adds CORS headers for the listed origins. An empty origin
// list disables it; "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	AllowedMethods   []string      `yaml:"allowed_methods"`
	AllowedHeaders   []string      `yaml:"allowed_headers"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age"`
}

func (c CORSConfig) Enabled() bool { return len(c.AllowedOrigins) > 0 }
