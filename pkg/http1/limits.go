package http1

import "time"

// Limits contains the size, count, and duration thresholds enforced by the
// staged parser. A Limits value is set once at startup from configuration
// and treated as read-only for the process lifetime.
type Limits struct {
	// MaxRequestLineBytes caps the request line, terminator included.
	MaxRequestLineBytes int

	// MaxHeaderLineBytes caps a single header line, terminator included.
	MaxHeaderLineBytes int

	// MaxHeaderCount caps the number of header lines. A request with
	// exactly MaxHeaderCount headers is accepted; one more is rejected.
	MaxHeaderCount int

	// MaxTotalHeaderBytes caps the cumulative size of the header block,
	// from the first header line through the terminating blank line.
	MaxTotalHeaderBytes int

	// MaxBodyBytes caps the declared Content-Length.
	MaxBodyBytes int64

	// RequestLineTimeout is the deadline for receiving the full request
	// line, measured from the moment the first byte is expected.
	RequestLineTimeout time.Duration

	// HeaderTimeout is the deadline for receiving the entire header
	// block. It restarts when the request line is accepted.
	HeaderTimeout time.Duration

	// BodyTimeout is the deadline for receiving the full body. It
	// restarts at body-stage entry.
	BodyTimeout time.Duration
}

// DefaultLimits returns the stock safety limits (RFC 7230 guidance).
func DefaultLimits() Limits {
	return Limits{
		MaxRequestLineBytes: 4096,
		MaxHeaderLineBytes:  8192,
		MaxHeaderCount:      100,
		MaxTotalHeaderBytes: 64 * 1024,
		MaxBodyBytes:        10_000_000,
		RequestLineTimeout:  5 * time.Second,
		HeaderTimeout:       10 * time.Second,
		BodyTimeout:         30 * time.Second,
	}
}
