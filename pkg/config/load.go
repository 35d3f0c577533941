package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from the YAML file at path, applies defaults,
// applies environment variable overrides, and validates the result.
//
// A missing file is not an error: the proxy is routinely configured by
// environment alone. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	// Metrics default on; only an explicit `enabled: false` (or env
	// override) turns them off. The other defaults are zero-value
	// driven and applied below.
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults + env
		case err != nil:
			return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. The long-lived
// variable names (DEVPROXY_HOST, DEVPROXY_PORT, UPSTREAM_HOST,
// UPSTREAM_PORT, MAX_CONNECTIONS) are kept for compatibility with existing
// deployments; newer fields follow the DEVPROXY_SECTION_FIELD convention.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("DEVPROXY_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("DEVPROXY_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = i
		}
	}
	if val := os.Getenv("UPSTREAM_HOST"); val != "" {
		cfg.Upstream.Host = val
	}
	if val := os.Getenv("UPSTREAM_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Upstream.Port = i
		}
	}
	if val := os.Getenv("MAX_CONNECTIONS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxConnections = i
		}
	}

	if val := os.Getenv("DEVPROXY_UPSTREAM_DIAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.DialTimeout = d
		}
	}
	if val := os.Getenv("DEVPROXY_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	if val := os.Getenv("DEVPROXY_LIMITS_MAX_REQUEST_LINE_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxRequestLineBytes = i
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_MAX_HEADER_LINE_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxHeaderLineBytes = i
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_MAX_HEADER_COUNT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxHeaderCount = i
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_MAX_TOTAL_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxTotalHeaderBytes = i
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Limits.MaxBodyBytes = i
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_REQUEST_LINE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Limits.RequestLineTimeout = d
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_HEADER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Limits.HeaderTimeout = d
		}
	}
	if val := os.Getenv("DEVPROXY_LIMITS_BODY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Limits.BodyTimeout = d
		}
	}

	if val := os.Getenv("DEVPROXY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("DEVPROXY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("DEVPROXY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("DEVPROXY_TELEMETRY_METRICS_NAMESPACE"); val != "" {
		cfg.Telemetry.Metrics.Namespace = val
	}

	if val := os.Getenv("DEVPROXY_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("DEVPROXY_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv("DEVPROXY_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("DEVPROXY_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}
}
