// Package server runs the listener and connection lifecycle.
//
// The server owns the accept loop and nothing else: every accepted
// connection is handed to its own goroutine, which blocks on the
// admission controller before a single byte is read, then runs the
// pkg/proxy pipeline. Acceptance is therefore never gated by the
// concurrency cap; reading is.
//
// # Basic Usage
//
//	cfg := config.DefaultConfig()
//	controller := admission.NewController(cfg.Server.MaxConnections)
//	handler := proxy.NewHandler(limits, forwarder, collector, recorder, log)
//
//	srv := server.New(cfg, handler, controller, log)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Error("server failed", "error", err)
//	}
//
// # Graceful Shutdown
//
// Start blocks until its context is cancelled or SIGTERM/SIGINT arrives,
// then:
//  1. Closes the listener so no new connections are accepted.
//  2. Cancels connections still waiting for an admission slot; they are
//     closed without a response, since nothing was read from them.
//  3. Waits for in-flight connections up to the configured shutdown
//     timeout.
package server
