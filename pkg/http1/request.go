package http1

import "strings"

// Header is a single (name, value) pair. Names keep the bytes the client
// sent; comparison is case-insensitive.
type Header struct {
	Name  string
	Value string
}

// Request is a fully validated HTTP/1.1 request. A Request is only ever
// constructed once every limit of every stage has been satisfied; it is
// never built from partial data.
//
// Headers preserve wire order and duplicates so the request can be
// re-emitted to an upstream without reordering or merging.
type Request struct {
	Method  string
	Path    string
	Version string
	Headers []Header
	Body    []byte
}

// HeaderValue returns the value of the first header whose name matches
// case-insensitively, and whether one was found.
func (r *Request) HeaderValue(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// WithPath returns a shallow copy of the request with the target path
// replaced. Headers and body are shared with the original.
func (r *Request) WithPath(path string) *Request {
	clone := *r
	clone.Path = path
	return &clone
}
