package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddress() != "127.0.0.1:8889" {
		t.Errorf("Expected default listen address 127.0.0.1:8889, got %s", cfg.ListenAddress())
	}
	if cfg.UpstreamAddress() != "localhost:3001" {
		t.Errorf("Expected default upstream localhost:3001, got %s", cfg.UpstreamAddress())
	}
	if cfg.Server.MaxConnections != 1000 {
		t.Errorf("Expected default max_connections 1000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Limits.MaxRequestLineBytes != 4096 {
		t.Errorf("Expected default request line cap 4096, got %d", cfg.Limits.MaxRequestLineBytes)
	}
	if cfg.Limits.HeaderTimeout != 10*time.Second {
		t.Errorf("Expected default header timeout 10s, got %v", cfg.Limits.HeaderTimeout)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.Audit.Enabled {
		t.Error("Expected audit disabled by default")
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("Expected missing file to fall back to defaults, got %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9000
  max_connections: 50
upstream:
  host: backend.internal
  port: 8080
limits:
  max_header_count: 32
  header_timeout: 2s
telemetry:
  metrics:
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddress() != "0.0.0.0:9000" {
		t.Errorf("Expected listen address 0.0.0.0:9000, got %s", cfg.ListenAddress())
	}
	if cfg.Server.MaxConnections != 50 {
		t.Errorf("Expected max_connections 50, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Upstream.Host != "backend.internal" {
		t.Errorf("Expected upstream host backend.internal, got %s", cfg.Upstream.Host)
	}
	if cfg.Limits.MaxHeaderCount != 32 {
		t.Errorf("Expected max_header_count 32, got %d", cfg.Limits.MaxHeaderCount)
	}
	if cfg.Limits.HeaderTimeout != 2*time.Second {
		t.Errorf("Expected header_timeout 2s, got %v", cfg.Limits.HeaderTimeout)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Expected explicit enabled: false to stick")
	}
	// Unset fields still pick up defaults.
	if cfg.Limits.MaxBodyBytes != 10_000_000 {
		t.Errorf("Expected default max_body_bytes, got %d", cfg.Limits.MaxBodyBytes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEVPROXY_HOST", "10.1.2.3")
	t.Setenv("DEVPROXY_PORT", "7777")
	t.Setenv("UPSTREAM_HOST", "api.internal")
	t.Setenv("UPSTREAM_PORT", "9999")
	t.Setenv("MAX_CONNECTIONS", "42")
	t.Setenv("DEVPROXY_LIMITS_HEADER_TIMEOUT", "3s")
	t.Setenv("DEVPROXY_AUDIT_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddress() != "10.1.2.3:7777" {
		t.Errorf("Expected env listen address, got %s", cfg.ListenAddress())
	}
	if cfg.UpstreamAddress() != "api.internal:9999" {
		t.Errorf("Expected env upstream address, got %s", cfg.UpstreamAddress())
	}
	if cfg.Server.MaxConnections != 42 {
		t.Errorf("Expected max_connections 42, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Limits.HeaderTimeout != 3*time.Second {
		t.Errorf("Expected header timeout 3s, got %v", cfg.Limits.HeaderTimeout)
	}
	if !cfg.Audit.Enabled {
		t.Error("Expected audit enabled via env")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"empty upstream host", func(c *Config) { c.Upstream.Host = "" }},
		{"zero max connections", func(c *Config) { c.Server.MaxConnections = 0 }},
		{"zero header timeout", func(c *Config) { c.Limits.HeaderTimeout = 0 }},
		{"negative body cap", func(c *Config) { c.Limits.MaxBodyBytes = -1 }},
		{"total below line cap", func(c *Config) { c.Limits.MaxTotalHeaderBytes = 10 }},
		{"audit without path", func(c *Config) { c.Audit.Enabled = true; c.Audit.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}
