// Package history keeps a SQLite journal of command runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	action_id   TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_action ON runs(action_id, started_at);
`

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one journaled invocation.
type Run struct {
	ID         string    `json:"id"`
	ActionID   string    `json:"action_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Journal records runs. Consumers depend on this rather than *DB.
type Journal interface {
	Record(ctx context.Context, r Run) error
}

var _ Journal = (*DB)(nil)

// DB wraps a sql.DB holding the runs table.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record stores r, assigning an id when it has none.
func (db *DB) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, action_id, name, kind, status, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ActionID, r.Name, r.Kind, r.Status, r.Error, r.StartedAt.UTC(), r.DurationMS)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", r.ActionID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	return db.query(ctx, `
		SELECT id, action_id, name, kind, status, error, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, clampLimit(limit))
}

// ByAction returns the latest runs of one action, newest first.
func (db *DB) ByAction(ctx context.Context, actionID string, limit int) ([]Run, error) {
	return db.query(ctx, `
		SELECT id, action_id, name, kind, status, error, started_at, duration_ms
		FROM runs WHERE action_id = ? ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, actionID, clampLimit(limit))
}

func (db *DB) query(ctx context.Context, q string, args ...any) ([]Run, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ActionID, &r.Name, &r.Kind, &r.Status, &r.Error, &r.StartedAt, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}

// Multi records to every journal, returning the first error.
type Multi []Journal

// Record implements Journal.
func (m Multi) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	var first error
	for _, j := range m {
		if err := j.Record(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
