package proxy

import (
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/aniketpal07/devproxy/pkg/admission"
	"github.com/aniketpal07/devproxy/pkg/audit"
	"github.com/aniketpal07/devproxy/pkg/http1"
	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
	"github.com/aniketpal07/devproxy/pkg/telemetry/metrics"
)

// Handler runs one connection's pipeline end to end: parse, route,
// dispatch, respond. It is shared by all connections; per-connection
// state lives on the stack of each call to Handle.
type Handler struct {
	limits    http1.Limits
	forwarder *Forwarder
	responder *Responder
	metrics   *metrics.Collector
	audit     *audit.Recorder
	log       *logging.Logger
}

// NewHandler wires the pipeline. The audit recorder may be nil when the
// audit log is disabled.
func NewHandler(limits http1.Limits, forwarder *Forwarder, collector *metrics.Collector, auditRecorder *audit.Recorder, log *logging.Logger) *Handler {
	return &Handler{
		limits:    limits,
		forwarder: forwarder,
		responder: NewResponder(limits, log),
		metrics:   collector,
		audit:     auditRecorder,
		log:       log,
	}
}

// Handle processes exactly one request on conn and then closes it. The
// admission slot is released on every exit path, including panics; a
// panic never propagates past this boundary.
func (h *Handler) Handle(conn net.Conn, slot *admission.Slot) {
	start := time.Now()
	connID := uuid.New().String()
	log := h.log.With("conn_id", connID, "remote_addr", conn.RemoteAddr().String())

	rec := audit.Record{
		ID:         connID,
		Timestamp:  start,
		RemoteAddr: conn.RemoteAddr().String(),
	}

	h.metrics.ConnOpened()
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic in connection handler",
				"panic", p,
				"stack", string(debug.Stack()),
			)
			h.metrics.RecordError()
			rec.StatusCode = 500
			rec.Failure = "panic"
			// Best effort; the connection may already be unusable.
			_, _ = http1.NewTextResponse(500, []byte("Internal Server Error")).WriteTo(conn)
		}

		conn.Close()
		slot.Release()
		h.metrics.ConnClosed()
		h.metrics.ObserveRequestDuration(time.Since(start))

		if h.audit != nil {
			rec.Duration = time.Since(start)
			h.audit.Record(rec)
		}
	}()

	req, err := http1.NewParser(conn, h.limits).Parse()
	if err != nil {
		h.fail(conn, log, &rec, err)
		return
	}
	rec.Method, rec.Path = req.Method, req.Path

	mode, routedPath := Route(req.Path)
	rec.Mode = mode.String()
	log = log.With("method", req.Method, "path", req.Path, "mode", mode.String())

	status := 200
	switch mode {
	case ModeProxy:
		relayed, err := h.forwarder.Forward(conn, req.WithPath(routedPath))
		if err != nil {
			h.fail(conn, log, &rec, err)
			return
		}
		status = relayed

	case ModeMetrics:
		text, err := h.metrics.Render()
		if err != nil {
			h.fail(conn, log, &rec, err)
			return
		}
		h.write(conn, log, http1.NewTextResponse(200, text))

	default:
		body := fmt.Sprintf("Hello from DevProxy! You requested: %s %s", req.Method, req.Path)
		h.write(conn, log, http1.NewTextResponse(200, []byte(body)))
	}

	rec.StatusCode = status
	h.metrics.RecordRequest()
	log.Info("request completed", "status", status, "duration", time.Since(start))
}

// fail records the error, resolves it to a response, and writes it when
// the connection can still carry one.
func (h *Handler) fail(conn net.Conn, log *logging.Logger, rec *audit.Record, err error) {
	h.metrics.RecordError()
	rec.Failure = failureName(err)

	resp := h.responder.build(err)
	if resp != nil {
		rec.StatusCode = resp.StatusCode
		if _, werr := resp.WriteTo(conn); werr != nil {
			log.Debug("failed writing error response", "error", werr)
		}
	}

	log.Warn("request failed",
		"failure", rec.Failure,
		"status", rec.StatusCode,
		"error", err,
	)
}

func (h *Handler) write(conn net.Conn, log *logging.Logger, resp *http1.Response) {
	if _, err := resp.WriteTo(conn); err != nil {
		log.Debug("failed writing response", "error", err)
	}
}

// failureName classifies an error for logs and audit records.
func failureName(err error) string {
	var pf *http1.ParseFailure
	var upstreamErr *UpstreamError
	var relayErr *RelayError

	switch {
	case errors.As(err, &pf):
		return pf.Kind.String()
	case errors.As(err, &relayErr):
		return "relay_aborted"
	case errors.As(err, &upstreamErr):
		return "upstream_unavailable"
	case errors.Is(err, http1.ErrClientClosed):
		return "client_closed"
	default:
		return "internal_error"
	}
}
