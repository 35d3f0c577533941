package proxy

import "strings"

// Mode is the handling mode the router selects for a request.
type Mode int

const (
	// ModeEcho answers directly with a greeting.
	ModeEcho Mode = iota
	// ModeProxy relays the request to the configured upstream.
	ModeProxy
	// ModeMetrics renders the metrics registry.
	ModeMetrics
)

func (m Mode) String() string {
	switch m {
	case ModeProxy:
		return "proxy"
	case ModeMetrics:
		return "metrics"
	default:
		return "echo"
	}
}

const (
	metricsPath = "/metrics"
	proxyPrefix = "/proxy"
)

// Route selects the handling mode for a request path. For proxy mode it
// returns the path with the proxy prefix stripped and re-rooted: "/proxy"
// becomes "/", "/proxy/api/users" becomes "/api/users". Pure function, no
// side effects.
func Route(path string) (Mode, string) {
	if path == metricsPath {
		return ModeMetrics, path
	}
	if strings.HasPrefix(path, proxyPrefix) {
		stripped := path[len(proxyPrefix):]
		if stripped == "" || stripped[0] != '/' {
			stripped = "/" + strings.TrimLeft(stripped, "/")
		}
		return ModeProxy, stripped
	}
	return ModeEcho, path
}
