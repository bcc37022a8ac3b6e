package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
)

// Store is the SQLite-backed persistence layer for every entity
// orbit-agent manages. It is safe for concurrent use: the database
// layer serializes writes and no method holds an application-level
// lock of its own.
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

// Open creates the parent directory for path if needed, opens the
// database, and applies schema and migrations before returning.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, clock.System{})
}

// OpenWithClock is Open with an injectable Clock, used by tests that
// need deterministic created_at/updated_at values.
func OpenWithClock(path string, c clock.Clock) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, clock: c}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying connection pool for callers (migrations,
// tests) that need raw SQL access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS containers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			platform TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			size_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS apps (
			id TEXT PRIMARY KEY,
			container_id TEXT NOT NULL,
			name TEXT NOT NULL,
			version TEXT,
			status TEXT NOT NULL,
			entry_points TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			container_id TEXT NOT NULL,
			label TEXT,
			snapshot_type TEXT NOT NULL,
			base_snapshot_id TEXT,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS api_tokens (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			prefix TEXT NOT NULL,
			hash TEXT NOT NULL,
			created_at TEXT NOT NULL,
			revoked_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_apps_container_id ON apps(container_id);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_container_id ON snapshots(container_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Additive migrations: columns introduced after the initial schema.
	// modernc.org/sqlite reports a pre-existing column as an error rather
	// than a no-op, so a "duplicate column name" failure is the expected
	// steady-state outcome on every open after the first and is treated
	// as success.
	migrations := []string{
		`ALTER TABLE api_tokens ADD COLUMN scopes TEXT NOT NULL DEFAULT '[]';`,
		`ALTER TABLE api_tokens ADD COLUMN expires_at TEXT;`,
		`ALTER TABLE api_tokens ADD COLUMN last_used_at TEXT;`,
	}
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if !strings.Contains(err.Error(), "duplicate column name") {
				return err
			}
		}
	}
	return nil
}
