// Package server runs the TCP accept loop and ties admission control to
// the per-connection pipeline.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aniketpal07/devproxy/pkg/admission"
	"github.com/aniketpal07/devproxy/pkg/config"
	"github.com/aniketpal07/devproxy/pkg/proxy"
	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
)

// Server accepts connections and hands each to the pipeline behind an
// admission slot. Accepted connections that exceed the concurrency cap
// wait in their own goroutine; nothing is read from them until a slot
// frees up.
type Server struct {
	cfg        *config.Config
	handler    *proxy.Handler
	controller *admission.Controller
	log        *logging.Logger

	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Call Start to listen and serve.
func New(cfg *config.Config, handler *proxy.Handler, controller *admission.Controller, log *logging.Logger) *Server {
	return &Server{
		cfg:        cfg,
		handler:    handler,
		controller: controller,
		log:        log,
	}
}

// Listen binds the configured address. Start calls it implicitly; tests
// call it directly to learn the bound port before serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddress(), err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning reports whether the accept loop is active.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start serves connections until ctx is cancelled or a shutdown signal
// arrives, then drains gracefully. It blocks for the server's lifetime.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.Listen(); err != nil {
		return err
	}

	connCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.log.Info("server listening",
		"address", s.listener.Addr().String(),
		"max_connections", s.controller.Capacity(),
		"upstream", s.cfg.UpstreamAddress(),
	)

	errChan := make(chan error, 1)
	go s.acceptLoop(connCtx, errChan)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.log.Info("context cancelled, initiating shutdown")
		return s.Shutdown()
	case sig := <-sigChan:
		s.log.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	case err := <-errChan:
		s.Shutdown()
		return err
	}
}

// acceptLoop accepts until the listener closes. Each connection gets its
// own goroutine that blocks on admission before any bytes are read.
func (s *Server) acceptLoop(ctx context.Context, errChan chan<- error) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			errChan <- fmt.Errorf("accept error: %w", err)
			return
		}

		s.wg.Add(1)
		go func(conn net.Conn) {
			defer s.wg.Done()

			slot, err := s.controller.Acquire(ctx)
			if err != nil {
				// Shutting down; the request was never started.
				conn.Close()
				return
			}
			s.handler.Handle(conn, slot)
		}(conn)
	}
}

// Shutdown stops accepting, cancels waiting connections, and drains
// in-flight ones up to the configured timeout.
func (s *Server) Shutdown() error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		ln := s.listener
		cancel := s.cancel
		s.mu.Unlock()

		s.log.Info("initiating graceful shutdown", "timeout", s.cfg.Server.ShutdownTimeout.String())

		if ln != nil {
			ln.Close()
		}
		if cancel != nil {
			cancel()
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			s.log.Info("all connections drained")
		case <-time.After(s.cfg.Server.ShutdownTimeout):
			shutdownErr = fmt.Errorf("shutdown timed out after %s with connections in flight", s.cfg.Server.ShutdownTimeout)
			s.log.Warn("graceful shutdown timed out", "in_flight", s.controller.InFlight())
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.log.Info("server stopped")
	})

	return shutdownErr
}
