package proxy

import "fmt"

// UpstreamError reports a proxy-mode failure that occurred before any
// response byte reached the client: dialing the upstream, writing the
// request to it, or reading the response head. The client connection is
// still pristine, so the responder can substitute a gateway error.
type UpstreamError struct {
	// Op names the failed step ("dial", "write request", "read response").
	Op string

	// Addr is the upstream host:port.
	Addr string

	// Err is the underlying cause.
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %s: %v", e.Addr, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RelayError reports an I/O failure after response bytes were already
// relayed to the client. The partial response cannot be retracted; the
// only correct handling is to close the connection without substituting
// an error response.
type RelayError struct {
	// BytesSent is how much of the upstream response reached the client.
	BytesSent int64

	// Err is the underlying cause.
	Err error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay aborted after %d bytes: %v", e.BytesSent, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}
