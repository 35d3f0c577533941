// Package metrics exposes the proxy's Prometheus metrics.
//
// The collector owns a private registry with the two counters the pipeline
// reports (requests_total, errors_total), an active-connection gauge, and a
// request duration histogram. The server has no net/http listener to mount
// promhttp on, so the /metrics read path renders the registry to the
// Prometheus text exposition format directly over the raw connection.
package metrics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Config contains configuration for the Collector.
type Config struct {
	// Enabled turns metric recording on. When false every record call is
	// a no-op and Render returns an empty exposition.
	Enabled bool

	// Namespace prefixes every metric name.
	Namespace string
}

// Collector records the pipeline's counters. All increments are backed by
// Prometheus client atomics and safe for concurrent use; no ordering is
// guaranteed between counters.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	activeConnections prometheus.Gauge
	requestDuration   prometheus.Histogram
}

// NewCollector creates a collector with its own registry.
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "devproxy"
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		config:   cfg,
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "requests_total",
			Help:      "Total number of requests handled to completion.",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "errors_total",
			Help:      "Total number of connections that ended in an error response or teardown.",
		}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_connections",
			Help:      "Connections currently holding an admission slot.",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "request_duration_seconds",
			Help:      "Wall time from admission to connection close.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30},
		}),
	}

	registry.MustRegister(c.requestsTotal, c.errorsTotal, c.activeConnections, c.requestDuration)

	return c
}

// RecordRequest increments the completed-request counter.
func (c *Collector) RecordRequest() {
	if !c.config.Enabled {
		return
	}
	c.requestsTotal.Inc()
}

// RecordError increments the error counter.
func (c *Collector) RecordError() {
	if !c.config.Enabled {
		return
	}
	c.errorsTotal.Inc()
}

// ConnOpened marks one more connection as active.
func (c *Collector) ConnOpened() {
	if !c.config.Enabled {
		return
	}
	c.activeConnections.Inc()
}

// ConnClosed marks one connection as no longer active.
func (c *Collector) ConnClosed() {
	if !c.config.Enabled {
		return
	}
	c.activeConnections.Dec()
}

// ObserveRequestDuration records how long one connection's pipeline took.
func (c *Collector) ObserveRequestDuration(d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestDuration.Observe(d.Seconds())
}

// Render gathers the registry and encodes it in the Prometheus text
// exposition format.
func (c *Collector) Render() ([]byte, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("encoding metric family %q: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
