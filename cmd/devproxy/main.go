// DevProxy is a hardened development HTTP proxy.
//
// It accepts raw TCP connections, parses HTTP/1.1 requests under strict
// size and deadline limits, and serves three modes: echo, byte-exact
// forwarding to a single upstream, and Prometheus metrics.
//
// Usage:
//
//	# Start with default configuration
//	devproxy run
//
//	# Start with a configuration file
//	devproxy run --config /path/to/config.yaml
//
//	# Override the listen address
//	devproxy run --listen 0.0.0.0:8889
//
//	# Show version information
//	devproxy version
package main

func main() {
	Execute()
}
