package config

import (
	"time"

	"github.com/Brownie44l1/embedhttp/internal/request"
)

const (
	DefaultBacklog       = 10
	DefaultAcceptTimeout = time.Second
	DefaultReadTimeout   = time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultMetricsPath   = "/metrics"
	DefaultNamespace     = "embedhttp"
	DefaultRateWindow    = time.Minute
)

var (
	DefaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	DefaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Requested-With"}
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values. Port 0 is left alone since it is a
// valid choice.
func ApplyDefaults(cfg *Config) {
	limits := request.DefaultLimits()

	if cfg.Server.Backlog == 0 {
		cfg.Server.Backlog = DefaultBacklog
	}
	if cfg.Server.AcceptTimeout == 0 {
		cfg.Server.AcceptTimeout = DefaultAcceptTimeout
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.MaxHeaders == 0 {
		cfg.Server.MaxHeaders = limits.MaxHeaders
	}
	if cfg.Server.MaxHeaderLineBytes == 0 {
		cfg.Server.MaxHeaderLineBytes = limits.MaxHeaderLineBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = limits.MaxBodyBytes
	}
	if cfg.Server.MaxChunkBytes == 0 {
		cfg.Server.MaxChunkBytes = limits.MaxChunkBytes
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultNamespace
	}

	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateWindow
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = append([]string(nil), DefaultCORSMethods...)
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = append([]string(nil), DefaultCORSHeaders...)
	}
}
