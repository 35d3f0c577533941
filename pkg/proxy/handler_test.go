package proxy

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/aniketpal07/devproxy/pkg/admission"
	"github.com/aniketpal07/devproxy/pkg/http1"
	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
	"github.com/aniketpal07/devproxy/pkg/telemetry/metrics"
)

// handleRequest drives one raw request through a full handler over an
// in-memory pipe and returns everything written back.
func handleRequest(t *testing.T, h *Handler, ctrl *admission.Controller, raw string) string {
	t.Helper()

	client, srv := net.Pipe()
	slot := ctrl.TryAcquire()
	if slot == nil {
		t.Fatal("No admission slot available")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Handle(srv, slot)
	}()

	client.SetDeadline(time.Now().Add(5 * time.Second))
	// Pipe writes block until read; the parser may stop reading early on
	// malformed input, so write from a separate goroutine.
	go client.Write([]byte(raw))

	resp, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	client.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Handler did not finish")
	}
	return string(resp)
}

func newTestHandler(t *testing.T) (*Handler, *admission.Controller) {
	t.Helper()
	log := logging.NewNop()
	collector := metrics.NewCollector(metrics.Config{Enabled: true, Namespace: "devproxy"})
	forwarder := NewForwarder("127.0.0.1:1", 100*time.Millisecond, log)
	return NewHandler(http1.DefaultLimits(), forwarder, collector, nil, log), admission.NewController(4)
}

func TestHandler_Echo(t *testing.T) {
	h, ctrl := newTestHandler(t)

	resp := handleRequest(t, h, ctrl, "GET /api/users HTTP/1.1\r\nHost: localhost\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("Expected 200, got %q", resp)
	}
	if !strings.HasSuffix(resp, "Hello from DevProxy! You requested: GET /api/users") {
		t.Errorf("Unexpected echo body in %q", resp)
	}
}

func TestHandler_MetricsMode(t *testing.T) {
	h, ctrl := newTestHandler(t)

	resp := handleRequest(t, h, ctrl, "GET /metrics HTTP/1.1\r\nHost: localhost\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("Expected 200, got %q", resp)
	}
	if !strings.Contains(resp, "devproxy_") {
		t.Errorf("Metrics output missing namespaced series: %q", resp)
	}
}

func TestHandler_MalformedRequestIs400(t *testing.T) {
	h, ctrl := newTestHandler(t)

	resp := handleRequest(t, h, ctrl, "GET /\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request\r\n") {
		t.Errorf("Expected 400, got %q", resp)
	}
}

func TestHandler_ReleasesSlotOnEveryPath(t *testing.T) {
	h, ctrl := newTestHandler(t)

	handleRequest(t, h, ctrl, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")
	handleRequest(t, h, ctrl, "GET /\r\n\r\n")

	if ctrl.InFlight() != 0 {
		t.Errorf("Expected 0 slots in flight after handling, got %d", ctrl.InFlight())
	}
}
