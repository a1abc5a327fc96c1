// Package journal records the outcome of each API request. It never stores
// prompts or model output.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Entry is one recorded request outcome.
type Entry struct {
	RequestID  string    `db:"request_id"`
	Route      string    `db:"route"`
	Profile    string    `db:"profile"`
	Status     int       `db:"status"`
	ErrorKind  string    `db:"error_kind"`
	DurationMS int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

// Recorder persists journal entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards every entry. It is used when no database is configured.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) error { return nil }

// PostgresStore implements Recorder for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to dataSourceName and makes sure the journal table exists.
func NewPostgresStore(ctx context.Context, dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := NewStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing connection.
func NewStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the request_journal table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS request_journal (
		id BIGSERIAL PRIMARY KEY,
		request_id TEXT NOT NULL,
		route TEXT NOT NULL,
		profile TEXT,
		status INTEGER NOT NULL,
		error_kind TEXT,
		duration_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create request_journal table: %w", err)
	}
	return nil
}

// Record inserts e.
func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO request_journal (request_id, route, profile, status, error_kind, duration_ms, created_at)
		VALUES (:request_id, :route, :profile, :status, :error_kind, :duration_ms, :created_at)`,
		e,
	)
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
