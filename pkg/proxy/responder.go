package proxy

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/aniketpal07/devproxy/pkg/http1"
	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
)

// Responder maps every failure from the pipeline to a well-formed HTTP
// error response. Bodies are deterministic: the same failure on two
// connections produces byte-identical responses. Internal diagnostics go
// to the log only, never to the client.
type Responder struct {
	limits http1.Limits
	log    *logging.Logger
}

// NewResponder creates a responder that names the configured limits in
// its error bodies.
func NewResponder(limits http1.Limits, log *logging.Logger) *Responder {
	return &Responder{limits: limits, log: log}
}

// Respond resolves err to an error response and writes it to the client.
// It reports whether a response was written: none is when the peer already
// hung up, or when a relay abort left a partial response on the wire that
// cannot be retracted.
func (r *Responder) Respond(client io.Writer, err error) bool {
	resp := r.build(err)
	if resp == nil {
		return false
	}
	if _, werr := resp.WriteTo(client); werr != nil {
		r.log.Debug("failed writing error response", "error", werr)
	}
	return true
}

// build selects status and body for the failure. Unrecognized errors get
// a generic 500 with no internal detail.
func (r *Responder) build(err error) *http1.Response {
	var pf *http1.ParseFailure
	var upstreamErr *UpstreamError
	var relayErr *RelayError

	switch {
	case errors.As(err, &pf):
		return r.parseFailureResponse(pf.Kind)

	case errors.As(err, &relayErr):
		// Bytes already reached the client; closing is the only option.
		r.log.Warn("relay aborted mid-response", "error", relayErr)
		return nil

	case errors.As(err, &upstreamErr):
		r.log.Warn("upstream failure", "error", upstreamErr)
		var ne net.Error
		if errors.As(upstreamErr.Err, &ne) && ne.Timeout() {
			return http1.NewTextResponse(504, []byte("Gateway Timeout: upstream connection timed out"))
		}
		return http1.NewTextResponse(502, []byte("Bad Gateway: upstream unavailable"))

	case errors.Is(err, http1.ErrClientClosed):
		r.log.Debug("client closed before completing request", "error", err)
		return nil

	default:
		r.log.Error("unexpected connection failure", "error", err)
		return http1.NewTextResponse(500, []byte("Internal Server Error"))
	}
}

// parseFailureResponse names the violated limit or expired stage deadline.
func (r *Responder) parseFailureResponse(kind http1.FailureKind) *http1.Response {
	var body string
	switch kind {
	case http1.MalformedRequestLine:
		body = "Bad Request: malformed request line"
	case http1.RequestLineTooLong:
		body = fmt.Sprintf("Bad Request: request line exceeds %d bytes", r.limits.MaxRequestLineBytes)
	case http1.HeaderTooLarge:
		body = fmt.Sprintf("Bad Request: header line exceeds %d bytes", r.limits.MaxHeaderLineBytes)
	case http1.TooManyHeaders:
		body = fmt.Sprintf("Bad Request: more than %d headers", r.limits.MaxHeaderCount)
	case http1.TotalHeaderSizeExceeded:
		body = fmt.Sprintf("Bad Request: header block exceeds %d bytes", r.limits.MaxTotalHeaderBytes)
	case http1.MalformedHeaderLine:
		body = "Bad Request: malformed header line"
	case http1.BodyTooLarge:
		body = fmt.Sprintf("Bad Request: body exceeds %d bytes", r.limits.MaxBodyBytes)
	case http1.MissingOrInvalidContentLength:
		body = "Bad Request: missing or invalid Content-Length"
	case http1.RequestLineTimeout:
		body = fmt.Sprintf("Request Timeout: request line not received within %s", r.limits.RequestLineTimeout)
	case http1.HeaderTimeout:
		body = fmt.Sprintf("Request Timeout: headers not received within %s", r.limits.HeaderTimeout)
	case http1.BodyTimeout:
		body = fmt.Sprintf("Request Timeout: body not received within %s", r.limits.BodyTimeout)
	default:
		body = "Bad Request"
	}

	status := 400
	if kind.IsTimeout() {
		status = 408
	}
	return http1.NewTextResponse(status, []byte(body))
}
