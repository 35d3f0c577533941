package proxy

import "testing"

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantMode Mode
		wantPath string
	}{
		{"root goes to echo", "/", ModeEcho, "/"},
		{"plain path goes to echo", "/api/users", ModeEcho, "/api/users"},
		{"metrics endpoint", "/metrics", ModeMetrics, "/metrics"},
		{"metrics with suffix is echo", "/metrics/foo", ModeEcho, "/metrics/foo"},
		{"bare proxy prefix maps to root", "/proxy", ModeProxy, "/"},
		{"proxy with trailing slash maps to root", "/proxy/", ModeProxy, "/"},
		{"proxy strips prefix", "/proxy/api/users", ModeProxy, "/api/users"},
		{"proxy keeps query", "/proxy/search?q=go", ModeProxy, "/search?q=go"},
		{"prefix without separator re-roots", "/proxyfoo", ModeProxy, "/foo"},
		{"nested proxy prefix strips once", "/proxy/proxy/x", ModeProxy, "/proxy/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, path := Route(tt.path)
			if mode != tt.wantMode {
				t.Errorf("Route(%q) mode = %v, want %v", tt.path, mode, tt.wantMode)
			}
			if path != tt.wantPath {
				t.Errorf("Route(%q) path = %q, want %q", tt.path, path, tt.wantPath)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if ModeEcho.String() != "echo" || ModeProxy.String() != "proxy" || ModeMetrics.String() != "metrics" {
		t.Errorf("unexpected mode names: %q %q %q",
			ModeEcho.String(), ModeProxy.String(), ModeMetrics.String())
	}
}
