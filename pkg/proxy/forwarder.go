package proxy

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/aniketpal07/devproxy/pkg/http1"
	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
)

// maxResponseHeadBytes caps how much of the upstream response head is
// buffered while locating Content-Length. An upstream sending more than
// this before its blank line is treated as broken.
const maxResponseHeadBytes = 64 * 1024

// errResponseHeadTooLarge reports an upstream response head over the cap.
var errResponseHeadTooLarge = errors.New("upstream response head too large")

// Forwarder relays requests to the single configured upstream and streams
// the response back verbatim. One outbound connection per request, single
// attempt, no retry.
type Forwarder struct {
	addr        string
	dialTimeout time.Duration
	log         *logging.Logger
}

// NewForwarder creates a forwarder targeting addr (host:port).
func NewForwarder(addr string, dialTimeout time.Duration, log *logging.Logger) *Forwarder {
	return &Forwarder{
		addr:        addr,
		dialTimeout: dialTimeout,
		log:         log,
	}
}

// Forward opens a fresh connection to the upstream, re-emits the request
// with the Host header pointed at the upstream, and relays the response to
// client as it arrives. The request's path must already have the proxy
// prefix stripped. On success it returns the relayed status code.
//
// Failures before any byte reaches the client return an *UpstreamError;
// failures mid-relay return a *RelayError, since the partial response
// cannot be retracted.
func (f *Forwarder) Forward(client io.Writer, req *http1.Request) (int, error) {
	upstream, err := net.DialTimeout("tcp", f.addr, f.dialTimeout)
	if err != nil {
		return 0, &UpstreamError{Op: "dial", Addr: f.addr, Err: err}
	}
	defer upstream.Close()

	if err := f.writeRequest(upstream, req); err != nil {
		return 0, &UpstreamError{Op: "write request", Addr: f.addr, Err: err}
	}

	br := bufio.NewReader(upstream)
	head, contentLength, status, err := readResponseHead(br)
	if err != nil {
		return 0, &UpstreamError{Op: "read response head", Addr: f.addr, Err: err}
	}

	var sent int64
	n, err := client.Write(head)
	sent += int64(n)
	if err != nil {
		return status, &RelayError{BytesSent: sent, Err: err}
	}

	// Stream the body without buffering it whole: exactly Content-Length
	// bytes when declared, to EOF otherwise (close-delimited).
	var copied int64
	if contentLength >= 0 {
		copied, err = io.CopyN(client, br, contentLength)
	} else {
		copied, err = io.Copy(client, br)
	}
	sent += copied
	if err != nil {
		return status, &RelayError{BytesSent: sent, Err: err}
	}

	f.log.Debug("relayed upstream response", "upstream", f.addr, "status", status, "bytes", sent)
	return status, nil
}

// writeRequest re-emits the request: stripped path with the original
// method and version, headers in original order with the Host value
// replaced by the upstream address (appended if the client sent none),
// then the body verbatim.
func (f *Forwarder) writeRequest(w io.Writer, req *http1.Request) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s %s %s\r\n", req.Method, req.Path, req.Version)

	hostSeen := false
	for _, h := range req.Headers {
		value := h.Value
		if strings.EqualFold(h.Name, "Host") {
			value = f.addr
			hostSeen = true
		}
		fmt.Fprintf(bw, "%s: %s\r\n", h.Name, value)
	}
	if !hostSeen {
		fmt.Fprintf(bw, "Host: %s\r\n", f.addr)
	}

	bw.WriteString("\r\n")
	bw.Write(req.Body)
	return bw.Flush()
}

// readResponseHead reads the upstream's status line and header block,
// preserving the exact bytes for relay, and extracts the status code and
// Content-Length if declared. Header content is not re-validated against
// the inbound limits; an undeclared or unparsable length means
// close-delimited.
func readResponseHead(br *bufio.Reader) ([]byte, int64, int, error) {
	var head bytes.Buffer
	contentLength := int64(-1)
	status := 0

	for {
		line, err := br.ReadString('\n')
		head.WriteString(line)
		if err != nil {
			return nil, 0, 0, err
		}
		if head.Len() > maxResponseHeadBytes {
			return nil, 0, 0, errResponseHeadTooLarge
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if head.Len() == len(line) {
			// Status line: "HTTP/1.1 200 OK".
			if parts := strings.SplitN(trimmed, " ", 3); len(parts) >= 2 {
				status, _ = strconv.Atoi(parts[1])
			}
			continue
		}

		if trimmed == "" {
			// Blank line ends the head.
			return head.Bytes(), contentLength, status, nil
		}

		if idx := strings.IndexByte(trimmed, ':'); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(trimmed[:idx]), "Content-Length") {
				if n, perr := strconv.ParseInt(strings.TrimSpace(trimmed[idx+1:]), 10, 64); perr == nil && n >= 0 {
					contentLength = n
				}
			}
		}
	}
}
