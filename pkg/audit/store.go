package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS request_log (
	id          TEXT PRIMARY KEY,
	timestamp   DATETIME NOT NULL,
	remote_addr TEXT NOT NULL,
	method      TEXT,
	path        TEXT,
	mode        TEXT,
	status_code INTEGER,
	failure     TEXT,
	duration_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_request_log_timestamp ON request_log(timestamp);
`

// Record is one handled connection's outcome.
type Record struct {
	ID         string
	Timestamp  time.Time
	RemoteAddr string
	Method     string
	Path       string
	Mode       string
	StatusCode int
	Failure    string
	Duration   time.Duration
}

// Store persists audit records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// dbPath returns the database file path the store was opened with.
func (s *Store) dbPath() string {
	return s.path
}

// OpenStore opens (creating if needed) the database at path and ensures
// the schema exists. WAL mode keeps the background writer from blocking
// reads.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database %q: %w", path, err)
	}

	// A single writer goroutine owns all inserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Insert writes one record.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_log
			(id, timestamp, remote_addr, method, path, mode, status_code, failure, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UTC(),
		rec.RemoteAddr,
		rec.Method,
		rec.Path,
		rec.Mode,
		rec.StatusCode,
		rec.Failure,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM request_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting audit records: %w", err)
	}
	return n, nil
}

// PruneBefore deletes records older than cutoff and returns how many were
// removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM request_log WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning audit records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading pruned row count: %w", err)
	}
	return deleted, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
