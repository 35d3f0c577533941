// Package config loads, defaults, and validates the proxy configuration.
//
// Configuration comes from an optional YAML file plus environment variable
// overrides. It is loaded once at startup; the resulting values, the
// parser limits in particular, are treated as immutable for the process
// lifetime.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Limits    LimitsConfig    `yaml:"limits"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audit     AuditConfig     `yaml:"audit"`
}

// ServerConfig controls the listening side.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host"`

	// Port is the listening port.
	Port int `yaml:"port"`

	// MaxConnections bounds the number of concurrently admitted
	// connections.
	MaxConnections int `yaml:"max_connections"`

	// ShutdownTimeout bounds the graceful drain on shutdown; in-flight
	// connections that outlive it are forcibly closed.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig identifies the single proxy target.
type UpstreamConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// DialTimeout bounds the outbound connection attempt.
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// LimitsConfig carries the parser's size, count, and stage-deadline
// thresholds.
type LimitsConfig struct {
	MaxRequestLineBytes int           `yaml:"max_request_line_bytes"`
	MaxHeaderLineBytes  int           `yaml:"max_header_line_bytes"`
	MaxHeaderCount      int           `yaml:"max_header_count"`
	MaxTotalHeaderBytes int           `yaml:"max_total_header_bytes"`
	MaxBodyBytes        int64         `yaml:"max_body_bytes"`
	RequestLineTimeout  time.Duration `yaml:"request_line_timeout"`
	HeaderTimeout       time.Duration `yaml:"header_timeout"`
	BodyTimeout         time.Duration `yaml:"body_timeout"`
}

// TelemetryConfig groups logging and metrics settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// AuditConfig controls the optional SQLite request log.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// BufferSize is the async recorder queue length; records are dropped
	// (and counted) rather than ever blocking the request pipeline.
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays is how long records are kept before pruning.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for the retention pruner.
	PruneSchedule string `yaml:"prune_schedule"`
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// UpstreamAddress returns the host:port the forwarder dials.
func (c *Config) UpstreamAddress() string {
	return net.JoinHostPort(c.Upstream.Host, strconv.Itoa(c.Upstream.Port))
}

// String renders a compact startup summary. Nothing in the config is
// secret, so the full values are safe to log.
func (c *Config) String() string {
	return fmt.Sprintf("listen=%s upstream=%s max_connections=%d audit=%t",
		c.ListenAddress(), c.UpstreamAddress(), c.Server.MaxConnections, c.Audit.Enabled)
}
