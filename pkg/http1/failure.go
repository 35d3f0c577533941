package http1

import "errors"

// FailureKind identifies exactly which limit or malformation stopped
// parsing short of producing a Request.
type FailureKind int

const (
	// MalformedRequestLine means the request line did not split into
	// method, target, and version on exactly two single spaces.
	MalformedRequestLine FailureKind = iota

	// RequestLineTooLong means the request line exceeded its byte cap
	// before a terminator was seen.
	RequestLineTooLong

	// HeaderTooLarge means a single header line exceeded its byte cap.
	HeaderTooLarge

	// TooManyHeaders means the header count exceeded the limit.
	TooManyHeaders

	// TotalHeaderSizeExceeded means the cumulative header block size
	// exceeded the limit.
	TotalHeaderSizeExceeded

	// MalformedHeaderLine means a header line lacked a ':' separator.
	MalformedHeaderLine

	// BodyTooLarge means the declared Content-Length exceeded the limit.
	BodyTooLarge

	// MissingOrInvalidContentLength means Content-Length was present but
	// not a non-negative integer.
	MissingOrInvalidContentLength

	// RequestLineTimeout means the request line did not arrive in full
	// within its deadline.
	RequestLineTimeout

	// HeaderTimeout means the header block did not arrive in full within
	// its deadline.
	HeaderTimeout

	// BodyTimeout means the body did not arrive in full within its
	// deadline.
	BodyTimeout
)

var failureNames = map[FailureKind]string{
	MalformedRequestLine:          "malformed_request_line",
	RequestLineTooLong:            "request_line_too_long",
	HeaderTooLarge:                "header_too_large",
	TooManyHeaders:                "too_many_headers",
	TotalHeaderSizeExceeded:       "total_header_size_exceeded",
	MalformedHeaderLine:           "malformed_header_line",
	BodyTooLarge:                  "body_too_large",
	MissingOrInvalidContentLength: "missing_or_invalid_content_length",
	RequestLineTimeout:            "request_line_timeout",
	HeaderTimeout:                 "header_timeout",
	BodyTimeout:                   "body_timeout",
}

// String returns a stable snake_case name for the kind, suitable for logs
// and audit records.
func (k FailureKind) String() string {
	if name, ok := failureNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsTimeout reports whether the kind is one of the stage-deadline kinds.
func (k FailureKind) IsTimeout() bool {
	return k == RequestLineTimeout || k == HeaderTimeout || k == BodyTimeout
}

// ParseFailure is the typed result of a failed parse. It is immutable and
// carries no partial request data.
type ParseFailure struct {
	Kind FailureKind
}

// NewParseFailure returns a ParseFailure tagged with the given kind.
func NewParseFailure(kind FailureKind) *ParseFailure {
	return &ParseFailure{Kind: kind}
}

func (f *ParseFailure) Error() string {
	return "parse failure: " + f.Kind.String()
}

// ErrClientClosed reports that the peer closed the connection before a
// complete request arrived. No response can usefully be written when this
// is the cause of a failed parse.
var ErrClientClosed = errors.New("client closed connection")
