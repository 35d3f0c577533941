package config

import "time"

// ApplyDefaults fills in zero-valued fields with the stock defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8889
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 1000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Upstream.Host == "" {
		cfg.Upstream.Host = "localhost"
	}
	if cfg.Upstream.Port == 0 {
		cfg.Upstream.Port = 3001
	}
	if cfg.Upstream.DialTimeout == 0 {
		cfg.Upstream.DialTimeout = 5 * time.Second
	}

	if cfg.Limits.MaxRequestLineBytes == 0 {
		cfg.Limits.MaxRequestLineBytes = 4096
	}
	if cfg.Limits.MaxHeaderLineBytes == 0 {
		cfg.Limits.MaxHeaderLineBytes = 8192
	}
	if cfg.Limits.MaxHeaderCount == 0 {
		cfg.Limits.MaxHeaderCount = 100
	}
	if cfg.Limits.MaxTotalHeaderBytes == 0 {
		cfg.Limits.MaxTotalHeaderBytes = 64 * 1024
	}
	if cfg.Limits.MaxBodyBytes == 0 {
		cfg.Limits.MaxBodyBytes = 10_000_000
	}
	if cfg.Limits.RequestLineTimeout == 0 {
		cfg.Limits.RequestLineTimeout = 5 * time.Second
	}
	if cfg.Limits.HeaderTimeout == 0 {
		cfg.Limits.HeaderTimeout = 10 * time.Second
	}
	if cfg.Limits.BodyTimeout == 0 {
		cfg.Limits.BodyTimeout = 30 * time.Second
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "devproxy"
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/devproxy.db"
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = 1024
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = 30
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = "0 3 * * *"
	}
}

// DefaultConfig returns a fully defaulted configuration with metrics
// enabled, matching a bare `devproxy run` with no config file.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Telemetry.Metrics.Enabled = true
	return cfg
}
