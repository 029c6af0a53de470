// Package storage persists per-run audit summaries in SQLite. Only summary
// rows live here, never the catalog, billing, or result data,
// giving later runs a historical baseline for drift advisories.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// RunRecord is one audit run's summary.
type RunRecord struct {
	RunAt        time.Time
	Version      string
	BillingRows  int
	CleanMatches int
	NoMatch      int
	Custom       int
	OldPrice     int
	TotalBilled  float64
}

// RunStore is a SQLite-backed run history.
type RunStore struct {
	db   *sql.DB
	path string
}

// NewRunStore opens (creating if needed) the run history database.
func NewRunStore(path string) (*RunStore, error) {
	if path == "" {
		return nil, fmt.Errorf("run store path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create run history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open run history database: %w", err)
	}
	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping run history database: %w", err)
	}
	return &RunStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema when missing.
func (s *RunStore) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS audit_runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at        TIMESTAMP NOT NULL,
		version       TEXT NOT NULL,
		billing_rows  INTEGER NOT NULL,
		clean_matches INTEGER NOT NULL,
		no_match      INTEGER NOT NULL,
		custom        INTEGER NOT NULL,
		old_price     INTEGER NOT NULL,
		total_billed  REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_runs_run_at ON audit_runs(run_at);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate run history: %w", err)
	}
	return nil
}

// RecordRun appends one run summary.
func (s *RunStore) RecordRun(ctx context.Context, record RunRecord) error {
	const insert = `
	INSERT INTO audit_runs
		(run_at, version, billing_rows, clean_matches, no_match, custom, old_price, total_billed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, insert,
		record.RunAt, record.Version, record.BillingRows, record.CleanMatches,
		record.NoMatch, record.Custom, record.OldPrice, record.TotalBilled)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// LastRun returns the most recent run summary, or nil when no run exists.
func (s *RunStore) LastRun(ctx context.Context) (*RunRecord, error) {
	const query = `
	SELECT run_at, version, billing_rows, clean_matches, no_match, custom, old_price, total_billed
	FROM audit_runs ORDER BY run_at DESC, id DESC LIMIT 1`
	var record RunRecord
	err := s.db.QueryRowContext(ctx, query).Scan(
		&record.RunAt, &record.Version, &record.BillingRows, &record.CleanMatches,
		&record.NoMatch, &record.Custom, &record.OldPrice, &record.TotalBilled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last run: %w", err)
	}
	return &record, nil
}

// RowCountDrift compares a row count against a baseline and reports the
// percentage change and whether it exceeds the threshold. Useful for
// catching accidentally filtered exports.
func RowCountDrift(baseline, current int, thresholdPct float64) (float64, bool) {
	if baseline <= 0 {
		return 0, false
	}
	change := float64(current-baseline) / float64(baseline) * 100
	if change < 0 {
		return -change, -change > thresholdPct
	}
	return change, change > thresholdPct
}
