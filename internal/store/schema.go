package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever schemaV1 gains a successor.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store. Situations and
// the small bounded rings stay as JSON blobs; the per-pattern stats are
// real columns so they can be inspected and aggregated with plain SQL.
const schemaV1 = `
-- Response patterns
CREATE TABLE IF NOT EXISTS patterns (
    id INTEGER PRIMARY KEY,
    situation TEXT NOT NULL,           -- JSON
    template TEXT NOT NULL,
    success_count INTEGER NOT NULL DEFAULT 0,
    use_count INTEGER NOT NULL DEFAULT 0,
    avg_satisfaction REAL NOT NULL DEFAULT 0,
    last_used INTEGER NOT NULL DEFAULT 0,
    origin TEXT NOT NULL DEFAULT 'learned',
    emotion_tags TEXT                  -- JSON array
);
CREATE INDEX IF NOT EXISTS idx_patterns_origin ON patterns(origin);

-- Store-level counters (singleton row)
CREATE TABLE IF NOT EXISTS store_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    next_id INTEGER NOT NULL,
    recently_used TEXT                 -- JSON array of pattern ids
);

-- Autonomy controller (singleton row)
CREATE TABLE IF NOT EXISTS controller (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    level TEXT NOT NULL,
    level_entered_tick INTEGER NOT NULL DEFAULT 0,
    generator_calls INTEGER NOT NULL DEFAULT 0,
    pattern_calls INTEGER NOT NULL DEFAULT 0,
    bypass_count INTEGER NOT NULL DEFAULT 0,
    bypass_attempts INTEGER NOT NULL DEFAULT 0,
    bypass_successes INTEGER NOT NULL DEFAULT 0,
    quality_window TEXT,               -- JSON array
    last_audit_tick INTEGER NOT NULL DEFAULT 0
);

-- Audit history, oldest first by seq
CREATE TABLE IF NOT EXISTS audits (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    tick INTEGER NOT NULL,
    avg_quality REAL NOT NULL,
    level TEXT NOT NULL
);

-- Migration bookkeeping
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema brings the database up to the current schema version.
// Existing databases get an integrity check before any migration runs.
func InitSchema(ctx context.Context, db *sql.DB) error {
	have, err := schemaVersion(ctx, db)
	if err != nil {
		// No schema_version table means a brand-new database.
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create initial schema: %w", err)
		}
		return nil
	}

	if err := ValidateIntegrity(ctx, db); err != nil {
		return fmt.Errorf("refusing to open damaged database: %w", err)
	}

	if have < SchemaVersion {
		if err := migrateSchema(ctx, db, have); err != nil {
			return fmt.Errorf("failed to migrate from schema v%d: %w", have, err)
		}
	}

	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create v1 tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}

	return tx.Commit()
}

// migrateSchema steps an older database up to SchemaVersion. There is
// only v1 so far, so it has nothing to do yet.
func migrateSchema(ctx context.Context, db *sql.DB, from int) error {
	_ = from
	return nil
}

// ValidateIntegrity runs PRAGMA integrity_check and fails on anything
// other than a clean report.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return fmt.Errorf("failed to read integrity check output: %w", err)
		}
		if line != "ok" {
			return fmt.Errorf("integrity check reported: %s", line)
		}
	}
	return rows.Err()
}
