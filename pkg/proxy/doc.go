// Package proxy contains the per-connection pipeline: routing a parsed
// request to one of three handling modes, forwarding to the upstream in
// proxy mode, and mapping every failure to a well-formed error response.
//
// # Modes
//
//   - exact "/metrics": renders the metrics collector's registry
//   - prefix "/proxy": strips the prefix and relays to the upstream
//   - anything else: echoes a greeting naming the method and path
//
// # Failure handling
//
// Every fallible step returns a tagged error value (a parse failure kind,
// an upstream error, or a relay abort) and the Responder resolves it to an
// HTTP response in a single switch. The connection is always closed and its
// admission slot always released, on every path including panics.
package proxy
