package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/luminathea/reflex/internal/models"
)

// SQLiteStore persists state in a SQLite database at reflex.db under
// the data directory. Saves replace whole documents transactionally, so
// a crash mid-save leaves the previous state intact. Thread-safe.
type SQLiteStore struct {
	mu       sync.RWMutex
	db       *sql.DB
	dbPath   string
	warnings []string
}

// NewSQLiteStore opens (or creates) the database and initializes the
// schema. An empty dir means the default data directory.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	resolved, err := ResolveDataDir(dir)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(resolved); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(resolved, "reflex.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}
	// One connection avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// LoadPatterns reads all patterns plus the store counters. Rows that
// will not decode are skipped and recorded as warnings rather than
// failing the whole load.
func (s *SQLiteStore) LoadPatterns(ctx context.Context) (models.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := defaultStoreState()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, situation, template, success_count, use_count,
		       avg_satisfaction, last_used, origin, emotion_tags
		FROM patterns ORDER BY id`)
	if err != nil {
		return state, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p             models.Pattern
			situationJSON string
			origin        string
			tagsJSON      sql.NullString
		)
		if err := rows.Scan(&p.ID, &situationJSON, &p.Template, &p.SuccessCount,
			&p.UseCount, &p.AvgSatisfaction, &p.LastUsed, &origin, &tagsJSON); err != nil {
			return state, fmt.Errorf("failed to scan pattern row: %w", err)
		}
		if err := json.Unmarshal([]byte(situationJSON), &p.Situation); err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("pattern %d: bad situation: %v", p.ID, err))
			continue
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &p.EmotionTags); err != nil {
				s.warnings = append(s.warnings, fmt.Sprintf("pattern %d: bad emotion tags: %v", p.ID, err))
				p.EmotionTags = nil
			}
		}
		p.Origin = models.Origin(origin)
		state.Patterns = append(state.Patterns, p)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("failed to read pattern rows: %w", err)
	}

	var (
		nextID   int64
		ringJSON sql.NullString
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT next_id, recently_used FROM store_meta WHERE id = 1`).Scan(&nextID, &ringJSON)
	switch {
	case err == sql.ErrNoRows:
		// Fresh database, defaults stand.
	case err != nil:
		return state, fmt.Errorf("failed to query store meta: %w", err)
	default:
		state.NextID = nextID
		if ringJSON.Valid && ringJSON.String != "" {
			if err := json.Unmarshal([]byte(ringJSON.String), &state.RecentlyUsed); err != nil {
				s.warnings = append(s.warnings, fmt.Sprintf("store meta: bad recently used ring: %v", err))
				state.RecentlyUsed = nil
			}
		}
	}

	return state, nil
}

// SavePatterns replaces the pattern document in one transaction.
func (s *SQLiteStore) SavePatterns(ctx context.Context, state models.StoreState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start pattern save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patterns`); err != nil {
		return fmt.Errorf("failed to clear patterns: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patterns (id, situation, template, success_count, use_count,
		                      avg_satisfaction, last_used, origin, emotion_tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare pattern insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range state.Patterns {
		situationJSON, err := json.Marshal(p.Situation)
		if err != nil {
			return fmt.Errorf("failed to marshal situation for pattern %d: %w", p.ID, err)
		}
		tagsJSON, err := json.Marshal(p.EmotionTags)
		if err != nil {
			return fmt.Errorf("failed to marshal emotion tags for pattern %d: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, string(situationJSON), p.Template,
			p.SuccessCount, p.UseCount, p.AvgSatisfaction, p.LastUsed,
			string(p.Origin), string(tagsJSON)); err != nil {
			return fmt.Errorf("failed to insert pattern %d: %w", p.ID, err)
		}
	}

	ringJSON, err := json.Marshal(state.RecentlyUsed)
	if err != nil {
		return fmt.Errorf("failed to marshal recently used ring: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO store_meta (id, next_id, recently_used) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET next_id = excluded.next_id,
		                              recently_used = excluded.recently_used`,
		state.NextID, string(ringJSON)); err != nil {
		return fmt.Errorf("failed to save store meta: %w", err)
	}

	return tx.Commit()
}

// LoadController reads the controller row and audit history.
func (s *SQLiteStore) LoadController(ctx context.Context) (models.ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := defaultControllerState()

	var (
		level      string
		windowJSON sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT level, level_entered_tick, generator_calls, pattern_calls,
		       bypass_count, bypass_attempts, bypass_successes,
		       quality_window, last_audit_tick
		FROM controller WHERE id = 1`).Scan(
		&level, &state.LevelEnteredTick, &state.GeneratorCalls, &state.PatternCalls,
		&state.BypassCount, &state.BypassAttempts, &state.BypassSuccesses,
		&windowJSON, &state.LastAuditTick)
	switch {
	case err == sql.ErrNoRows:
		return state, nil
	case err != nil:
		return defaultControllerState(), fmt.Errorf("failed to query controller: %w", err)
	}

	state.Level = models.ParseLevel(level)
	if windowJSON.Valid && windowJSON.String != "" {
		if err := json.Unmarshal([]byte(windowJSON.String), &state.QualityWindow); err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("controller: bad quality window: %v", err))
			state.QualityWindow = nil
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, avg_quality, level FROM audits ORDER BY seq`)
	if err != nil {
		return state, fmt.Errorf("failed to query audits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      models.AuditRecord
			recLevel string
		)
		if err := rows.Scan(&rec.Tick, &rec.AvgQuality, &recLevel); err != nil {
			return state, fmt.Errorf("failed to scan audit row: %w", err)
		}
		rec.Level = models.ParseLevel(recLevel)
		state.Audits = append(state.Audits, rec)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("failed to read audit rows: %w", err)
	}

	return state, nil
}

// SaveController replaces the controller document in one transaction.
func (s *SQLiteStore) SaveController(ctx context.Context, state models.ControllerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start controller save: %w", err)
	}
	defer tx.Rollback()

	windowJSON, err := json.Marshal(state.QualityWindow)
	if err != nil {
		return fmt.Errorf("failed to marshal quality window: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO controller (id, level, level_entered_tick, generator_calls,
		                        pattern_calls, bypass_count, bypass_attempts,
		                        bypass_successes, quality_window, last_audit_tick)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    level = excluded.level,
		    level_entered_tick = excluded.level_entered_tick,
		    generator_calls = excluded.generator_calls,
		    pattern_calls = excluded.pattern_calls,
		    bypass_count = excluded.bypass_count,
		    bypass_attempts = excluded.bypass_attempts,
		    bypass_successes = excluded.bypass_successes,
		    quality_window = excluded.quality_window,
		    last_audit_tick = excluded.last_audit_tick`,
		state.Level.String(), state.LevelEnteredTick, state.GeneratorCalls,
		state.PatternCalls, state.BypassCount, state.BypassAttempts,
		state.BypassSuccesses, string(windowJSON), state.LastAuditTick); err != nil {
		return fmt.Errorf("failed to save controller: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM audits`); err != nil {
		return fmt.Errorf("failed to clear audits: %w", err)
	}
	for _, rec := range state.Audits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audits (tick, avg_quality, level) VALUES (?, ?, ?)`,
			rec.Tick, rec.AvgQuality, rec.Level.String()); err != nil {
			return fmt.Errorf("failed to insert audit record: %w", err)
		}
	}

	return tx.Commit()
}

// Warnings lists load problems in the order they were found.
func (s *SQLiteStore) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
