// Package store persists job rows for the qiskitd daemon in SQLite.
// The daemon records every submitted qobj here so queued and running
// jobs survive restarts and results stay queryable after completion.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested job id has no row.
var ErrNotFound = errors.New("store: job not found")

// Store wraps the SQLite handle holding the jobs table.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the jobs database at dbPath and runs schema
// setup. Pass ":memory:" for an ephemeral store.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every pool connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	} else {
		// SQLite supports one writer at a time, multiple readers with WAL.
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(0)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Wait instead of immediately returning SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id             TEXT PRIMARY KEY,
		backend        TEXT NOT NULL,
		name           TEXT NOT NULL,
		status         TEXT NOT NULL,
		priority       INTEGER NOT NULL DEFAULT 1,
		shots          INTEGER NOT NULL,
		meas_level     INTEGER NOT NULL,
		qobj           BLOB NOT NULL,
		result         BLOB,
		error          TEXT NOT NULL DEFAULT '',
		submitted_at   TIMESTAMP NOT NULL,
		started_at     TIMESTAMP,
		finished_at    TIMESTAMP,
		scheduled_at   TIMESTAMP,
		cron_expr      TEXT NOT NULL DEFAULT '',
		schedule_state TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_backend ON jobs(backend);
	CREATE INDEX IF NOT EXISTS idx_jobs_submitted ON jobs(submitted_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
