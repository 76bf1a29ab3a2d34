package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/zenscholar/internal/persistence"
	_ "modernc.org/sqlite"
)

// Storage provides SQLite-backed persistence for the timer core. Every table
// holds at most a single row: one active session, one trigger record, one
// profile. Timestamps are stored as RFC3339 text.
type Storage struct {
	db *sql.DB
}

// Open connects to the SQLite database identified by the supplied DSN.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids lock contention.
	db.SetMaxOpenConns(1)
	return &Storage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the schema when missing. It is idempotent and safe to run
// on every startup.
func (s *Storage) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS active_session (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			id TEXT NOT NULL,
			activity_id TEXT NOT NULL,
			activity_title TEXT NOT NULL,
			category_id TEXT NOT NULL,
			phase TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			active INTEGER NOT NULL,
			work_minutes INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trigger_state (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			enabled INTEGER NOT NULL,
			last_fired_date TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profile (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			name TEXT NOT NULL,
			bio TEXT NOT NULL,
			avatar TEXT NOT NULL,
			focus_minutes INTEGER NOT NULL,
			streak INTEGER NOT NULL,
			chapters INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func mapRowError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	return err
}
