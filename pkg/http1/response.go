package http1

import (
	"fmt"
	"io"
	"strconv"
)

// Response is a fully built HTTP/1.1 response: it is constructed in one
// shot by the echo handler, the metrics read path, or the error responder,
// never incrementally. Proxy-mode responses bypass this type entirely and
// are relayed byte-for-byte.
type Response struct {
	StatusCode int
	Reason     string
	Headers    []Header
	Body       []byte
}

// statusReasons covers the status codes this server emits.
var statusReasons = map[int]string{
	200: "OK",
	400: "Bad Request",
	408: "Request Timeout",
	500: "Internal Server Error",
	502: "Bad Gateway",
	504: "Gateway Timeout",
}

// StatusText returns the reason phrase for a status code, or "Unknown"
// for codes outside the emitted set.
func StatusText(code int) string {
	if reason, ok := statusReasons[code]; ok {
		return reason
	}
	return "Unknown"
}

// NewTextResponse builds a plaintext response with an exact Content-Length
// and Connection: close. The server is non-persistent, so every response
// it originates announces the close.
func NewTextResponse(status int, body []byte) *Response {
	return &Response{
		StatusCode: status,
		Reason:     StatusText(status),
		Headers: []Header{
			{Name: "Content-Type", Value: "text/plain; charset=utf-8"},
			{Name: "Content-Length", Value: strconv.Itoa(len(body))},
			{Name: "Connection", Value: "close"},
		},
		Body: body,
	}
}

// WriteTo serializes the response to w as HTTP/1.1 wire format.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", r.StatusCode, r.Reason)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, h := range r.Headers {
		n, err = fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err = io.WriteString(w, "\r\n")
	total += int64(n)
	if err != nil {
		return total, err
	}

	n, err = w.Write(r.Body)
	total += int64(n)
	return total, err
}
