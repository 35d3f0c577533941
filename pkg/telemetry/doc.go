// Package telemetry provides observability for DevProxy.
//
// # Components
//
//   - logging: structured logging on log/slog with JSON and text output
//   - metrics: Prometheus metrics collection with text rendering for the
//     raw-socket /metrics endpoint
//
// # Usage
//
//	log, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	log.Info("request completed", "duration_ms", 123)
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true, Namespace: "devproxy"})
//	collector.RecordRequest()
//	text, _ := collector.Render()
//
// Both components are safe for concurrent use and cheap enough to sit on
// the per-request path.
package telemetry
