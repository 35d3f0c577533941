// Package audit persists one record per handled connection to a SQLite
// database for after-the-fact inspection.
//
// Recording is asynchronous and strictly off the request path: the handler
// enqueues onto a bounded channel and a single writer goroutine performs
// the inserts. When the queue is full the record is dropped and counted;
// the proxy never blocks a client on its own bookkeeping.
//
// Retention is cron-scheduled: rows older than the configured window are
// pruned in the background.
package audit
