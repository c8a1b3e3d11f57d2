package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every problem found, joined into one error.
func Validate(cfg *Config) error {
	var errs []error

	s := cfg.Server
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 0 and 65535, got %d", s.Port))
	}
	if s.Backlog <= 0 {
		errs = append(errs, fmt.Errorf("server.backlog must be positive, got %d", s.Backlog))
	}
	if s.AcceptTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.accept_timeout must be positive, got %s", s.AcceptTimeout))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive, got %s", s.ReadTimeout))
	}
	if s.MaxHeaders <= 0 {
		errs = append(errs, fmt.Errorf("server.max_headers must be positive, got %d", s.MaxHeaders))
	}
	if s.MaxHeaderLineBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_header_line_bytes must be positive, got %d", s.MaxHeaderLineBytes))
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", s.MaxBodyBytes))
	}
	if s.MaxChunkBytes <= 0 || s.MaxChunkBytes > s.MaxBodyBytes {
		errs = append(errs, fmt.Errorf("server.max_chunk_bytes must be positive and at most max_body_bytes, got %d", s.MaxChunkBytes))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format))
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path))
	}

	if cfg.RateLimit.Requests < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests must not be negative, got %d", cfg.RateLimit.Requests))
	}
	if cfg.RateLimit.Enabled() && cfg.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.window must be positive, got %s", cfg.RateLimit.Window))
	}
	for _, origin := range cfg.CORS.AllowedOrigins {
		if origin == "" {
			errs = append(errs, errors.New("cors.allowed_origins must not contain empty entries"))
			break
		}
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("cors.max_age must not be negative, got %s", cfg.CORS.MaxAge))
	}

	return errors.Join(errs...)
}
