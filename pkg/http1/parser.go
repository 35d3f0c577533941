package http1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// errLineLimit is the internal signal that a line exceeded its byte cap
// before a terminator was found. Callers map it to the stage's kind.
var errLineLimit = errors.New("line exceeds byte cap")

// Parser reads exactly one request from a connection, enforcing the
// configured limits stage by stage. Stage deadlines are implemented with
// read deadlines on the underlying connection: the pending read races the
// deadline, and bytes arriving after expiry are never processed.
//
// A Parser is owned by a single connection's goroutine and is not safe for
// concurrent use.
type Parser struct {
	conn   net.Conn
	br     *bufio.Reader
	limits Limits
}

// NewParser returns a parser bound to conn with the given limits.
func NewParser(conn net.Conn, limits Limits) *Parser {
	return &Parser{
		conn:   conn,
		br:     bufio.NewReader(conn),
		limits: limits,
	}
}

// Parse consumes one request from the connection. It returns a fully
// validated Request, or a *ParseFailure naming the violated limit or
// malformation, or an error wrapping ErrClientClosed if the peer
// disconnected mid-request.
func (p *Parser) Parse() (*Request, error) {
	method, path, version, err := p.parseRequestLine()
	if err != nil {
		return nil, err
	}

	headers, err := p.parseHeaders()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBody(headers)
	if err != nil {
		return nil, err
	}

	// The request is complete; stop enforcing a read deadline so any
	// trailing bytes are simply left unread until the connection closes.
	_ = p.conn.SetReadDeadline(time.Time{})

	return &Request{
		Method:  method,
		Path:    path,
		Version: version,
		Headers: headers,
		Body:    body,
	}, nil
}

// parseRequestLine handles stage one: a single CRLF-terminated line split
// into method, target, and version on exactly two single spaces. Method
// and version are not validated against a fixed set; forwarding is
// transparent.
func (p *Parser) parseRequestLine() (method, path, version string, err error) {
	if derr := p.conn.SetReadDeadline(time.Now().Add(p.limits.RequestLineTimeout)); derr != nil {
		return "", "", "", fmt.Errorf("setting request line deadline: %w", derr)
	}

	line, _, rerr := p.readLine(p.limits.MaxRequestLineBytes)
	switch {
	case errors.Is(rerr, errLineLimit):
		return "", "", "", NewParseFailure(RequestLineTooLong)
	case isTimeout(rerr):
		return "", "", "", NewParseFailure(RequestLineTimeout)
	case errors.Is(rerr, io.EOF):
		return "", "", "", fmt.Errorf("reading request line: %w", ErrClientClosed)
	case rerr != nil:
		return "", "", "", fmt.Errorf("reading request line: %w", rerr)
	}

	parts := strings.Split(line, " ")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", NewParseFailure(MalformedRequestLine)
	}
	return parts[0], parts[1], parts[2], nil
}

// parseHeaders handles stage two: header lines up to a blank line, kept in
// wire order with duplicates preserved. The header deadline restarts here,
// independently of how much of the request-line budget was spent.
func (p *Parser) parseHeaders() ([]Header, error) {
	if derr := p.conn.SetReadDeadline(time.Now().Add(p.limits.HeaderTimeout)); derr != nil {
		return nil, fmt.Errorf("setting header deadline: %w", derr)
	}

	var headers []Header
	totalBytes := 0
	for {
		line, n, err := p.readLine(p.limits.MaxHeaderLineBytes)
		switch {
		case errors.Is(err, errLineLimit):
			return nil, NewParseFailure(HeaderTooLarge)
		case isTimeout(err):
			return nil, NewParseFailure(HeaderTimeout)
		case errors.Is(err, io.EOF):
			return nil, fmt.Errorf("reading headers: %w", ErrClientClosed)
		case err != nil:
			return nil, fmt.Errorf("reading headers: %w", err)
		}

		// The terminating blank line counts toward the block total.
		totalBytes += n
		if totalBytes > p.limits.MaxTotalHeaderBytes {
			return nil, NewParseFailure(TotalHeaderSizeExceeded)
		}

		if line == "" {
			return headers, nil
		}

		if len(headers) >= p.limits.MaxHeaderCount {
			return nil, NewParseFailure(TooManyHeaders)
		}

		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			return nil, NewParseFailure(MalformedHeaderLine)
		}
		headers = append(headers, Header{
			Name:  line[:idx],
			Value: strings.Trim(line[idx+1:], " \t"),
		})
	}
}

// parseBody handles stage three. An absent Content-Length means a
// zero-length body; a present one must be a non-negative integer within
// the body limit, and exactly that many bytes are then read under the
// body deadline.
func (p *Parser) parseBody(headers []Header) ([]byte, error) {
	raw, ok := headerValue(headers, "Content-Length")
	if !ok {
		return nil, nil
	}

	length, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || length < 0 {
		return nil, NewParseFailure(MissingOrInvalidContentLength)
	}
	if length > p.limits.MaxBodyBytes {
		return nil, NewParseFailure(BodyTooLarge)
	}
	if length == 0 {
		return nil, nil
	}

	if derr := p.conn.SetReadDeadline(time.Now().Add(p.limits.BodyTimeout)); derr != nil {
		return nil, fmt.Errorf("setting body deadline: %w", derr)
	}

	body := make([]byte, length)
	if _, rerr := io.ReadFull(p.br, body); rerr != nil {
		switch {
		case isTimeout(rerr):
			return nil, NewParseFailure(BodyTimeout)
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("reading body: %w", ErrClientClosed)
		default:
			return nil, fmt.Errorf("reading body: %w", rerr)
		}
	}
	return body, nil
}

// readLine reads bytes up to and including a '\n', stripping '\r', capped
// at max raw bytes (terminator inclusive). The cap is pre-checked before
// each read so a size violation takes precedence over end-of-stream on
// the same read. It returns the line without its terminator and the raw
// byte count consumed.
func (p *Parser) readLine(max int) (string, int, error) {
	var sb strings.Builder
	consumed := 0
	for {
		if consumed >= max {
			return "", consumed, errLineLimit
		}
		b, err := p.br.ReadByte()
		if err != nil {
			return "", consumed, err
		}
		consumed++
		if b == '\n' {
			return sb.String(), consumed, nil
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
	}
}

// headerValue returns the first case-insensitive match. When a header is
// duplicated, the first occurrence governs, matching how the request is
// re-emitted in order.
func headerValue(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// isTimeout reports whether err is a read-deadline expiry.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
