// Package http1 implements a staged, security-hardened HTTP/1.1 request
// parser and the minimal wire types the proxy needs.
//
// # Overview
//
// The parser consumes an untrusted, incrementally-arriving byte stream and
// produces either a fully validated Request or a typed ParseFailure. It is
// organized as three ordered stages, each with its own size/count limits and
// its own deadline:
//
//  1. Request line: one CRLF-terminated line, split into method, target,
//     and version on exactly two single-space separators.
//  2. Headers: CRLF-terminated lines up to a blank line, preserved in order
//     with duplicates kept.
//  3. Body: exactly Content-Length bytes (absent header means zero bytes).
//
// Stage deadlines are independent: each restarts at its stage's entry, so a
// client that completes the request line instantly but drips headers one
// byte per second is still caught by the header deadline.
//
// # Limits
//
// All limits live in the Limits struct and are immutable after startup.
// Size limits are pre-checked before each read, so a size violation is
// reported even when the connection would have hit end-of-stream on the
// same read.
//
// # Failure model
//
// A ParseFailure carries only a closed FailureKind tag. It never carries
// partial request data, so unvalidated attacker input cannot leak into
// later pipeline stages.
package http1
