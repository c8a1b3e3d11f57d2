package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. EMBEDHTTP_SERVER_PORT.
const EnvPrefix = "EMBEDHTTP_"

// Load reads a YAML file, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides is Load followed by EMBEDHTTP_* overrides. An
// empty path starts from the defaults.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	ints := map[string]*int{
		"SERVER_PORT":                  &cfg.Server.Port,
		"SERVER_BACKLOG":               &cfg.Server.Backlog,
		"SERVER_MAX_HEADERS":           &cfg.Server.MaxHeaders,
		"SERVER_MAX_HEADER_LINE_BYTES": &cfg.Server.MaxHeaderLineBytes,
		"RATE_LIMIT_REQUESTS":          &cfg.RateLimit.Requests,
	}
	for name, dst := range ints {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = i
		}
	}

	int64s := map[string]*int64{
		"SERVER_MAX_BODY_BYTES":  &cfg.Server.MaxBodyBytes,
		"SERVER_MAX_CHUNK_BYTES": &cfg.Server.MaxChunkBytes,
	}
	for name, dst := range int64s {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = i
		}
	}

	durations := map[string]*time.Duration{
		"SERVER_ACCEPT_TIMEOUT": &cfg.Server.AcceptTimeout,
		"SERVER_READ_TIMEOUT":   &cfg.Server.ReadTimeout,
		"RATE_LIMIT_WINDOW":     &cfg.RateLimit.Window,
	}
	for name, dst := range durations {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv(EnvPrefix + "LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv(EnvPrefix + "METRICS_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS_ENABLED: %w", EnvPrefix, err)
		}
		cfg.Metrics.Enabled = b
	}
	if val := os.Getenv(EnvPrefix + "METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}
	if val := os.Getenv(EnvPrefix + "CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.CORS.AllowedOrigins = splitList(val)
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
