package config

import "fmt"

// Validate checks the configuration for values the proxy cannot run with.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.Port < 1 || cfg.Upstream.Port > 65535 {
		return fmt.Errorf("upstream.port must be in 1-65535, got %d", cfg.Upstream.Port)
	}
	if cfg.Upstream.Host == "" {
		return fmt.Errorf("upstream.host must not be empty")
	}
	if cfg.Server.MaxConnections < 1 {
		return fmt.Errorf("server.max_connections must be at least 1, got %d", cfg.Server.MaxConnections)
	}

	if cfg.Limits.MaxRequestLineBytes < 1 {
		return fmt.Errorf("limits.max_request_line_bytes must be positive, got %d", cfg.Limits.MaxRequestLineBytes)
	}
	if cfg.Limits.MaxHeaderLineBytes < 1 {
		return fmt.Errorf("limits.max_header_line_bytes must be positive, got %d", cfg.Limits.MaxHeaderLineBytes)
	}
	if cfg.Limits.MaxHeaderCount < 1 {
		return fmt.Errorf("limits.max_header_count must be positive, got %d", cfg.Limits.MaxHeaderCount)
	}
	if cfg.Limits.MaxTotalHeaderBytes < cfg.Limits.MaxHeaderLineBytes {
		return fmt.Errorf("limits.max_total_header_bytes (%d) must be at least limits.max_header_line_bytes (%d)",
			cfg.Limits.MaxTotalHeaderBytes, cfg.Limits.MaxHeaderLineBytes)
	}
	if cfg.Limits.MaxBodyBytes < 0 {
		return fmt.Errorf("limits.max_body_bytes must not be negative, got %d", cfg.Limits.MaxBodyBytes)
	}
	if cfg.Limits.RequestLineTimeout <= 0 {
		return fmt.Errorf("limits.request_line_timeout must be positive, got %v", cfg.Limits.RequestLineTimeout)
	}
	if cfg.Limits.HeaderTimeout <= 0 {
		return fmt.Errorf("limits.header_timeout must be positive, got %v", cfg.Limits.HeaderTimeout)
	}
	if cfg.Limits.BodyTimeout <= 0 {
		return fmt.Errorf("limits.body_timeout must be positive, got %v", cfg.Limits.BodyTimeout)
	}
	if cfg.Upstream.DialTimeout <= 0 {
		return fmt.Errorf("upstream.dial_timeout must be positive, got %v", cfg.Upstream.DialTimeout)
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			return fmt.Errorf("audit.path must not be empty when audit is enabled")
		}
		if cfg.Audit.RetentionDays < 1 {
			return fmt.Errorf("audit.retention_days must be at least 1, got %d", cfg.Audit.RetentionDays)
		}
	}

	return nil
}
