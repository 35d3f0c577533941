package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCollector_CountersAppearInRender(t *testing.T) {
	c := NewCollector(Config{Enabled: true})

	c.RecordRequest()
	c.RecordRequest()
	c.RecordError()

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	text := string(out)
	if !strings.Contains(text, "devproxy_requests_total 2") {
		t.Errorf("Expected requests_total 2 in output:\n%s", text)
	}
	if !strings.Contains(text, "devproxy_errors_total 1") {
		t.Errorf("Expected errors_total 1 in output:\n%s", text)
	}
}

func TestCollector_CustomNamespace(t *testing.T) {
	c := NewCollector(Config{Enabled: true, Namespace: "gateway"})
	c.RecordRequest()

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), "gateway_requests_total 1") {
		t.Errorf("Expected namespaced counter in output:\n%s", out)
	}
}

func TestCollector_DisabledIsNoOp(t *testing.T) {
	c := NewCollector(Config{Enabled: false})

	c.RecordRequest()
	c.RecordError()
	c.ConnOpened()
	c.ObserveRequestDuration(time.Second)

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(string(out), "requests_total 1") {
		t.Errorf("Expected disabled collector to record nothing:\n%s", out)
	}
}

func TestCollector_ActiveConnectionsGauge(t *testing.T) {
	c := NewCollector(Config{Enabled: true})

	c.ConnOpened()
	c.ConnOpened()
	c.ConnClosed()

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), "devproxy_active_connections 1") {
		t.Errorf("Expected active_connections 1 in output:\n%s", out)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector(Config{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRequest()
		}()
	}
	wg.Wait()

	out, err := c.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), "devproxy_requests_total 100") {
		t.Errorf("Expected requests_total 100 after concurrent increments:\n%s", out)
	}
}
