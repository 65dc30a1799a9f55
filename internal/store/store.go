// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wireloop/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for attempt data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			level INTEGER NOT NULL,
			level_name TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			device TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			progress REAL NOT NULL,
			warnings INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_level ON attempts(level);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores a finished attempt. An empty ID is replaced with a
// new UUID; the stored ID is returned.
func (s *Store) InsertAttempt(ctx context.Context, a model.Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Outcome != model.OutcomeCompleted && a.Outcome != model.OutcomeFailed {
		return "", fmt.Errorf("invalid outcome %q", a.Outcome)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, level, level_name, difficulty, device, outcome, reason, started_at, ended_at, duration_ms, progress, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Level,
		a.LevelName,
		string(a.Difficulty),
		a.Device,
		string(a.Outcome),
		a.Reason,
		a.StartedAt.UTC().Format(timeLayout),
		a.EndedAt.UTC().Format(timeLayout),
		a.DurationMs,
		a.Progress,
		a.Warnings,
	)
	if err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return a.ID, nil
}

func filters(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Level > 0 {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}

// ListAttempts returns attempts matching cfg, oldest first. cfg.Last keeps
// only the most recent attempts.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.Attempt, error) {
	where, args := filters(cfg)
	query := fmt.Sprintf(`SELECT id, level, level_name, difficulty, device, outcome, reason, started_at, ended_at, duration_ms, progress, warnings
		FROM attempts
		WHERE %s
		ORDER BY ended_at DESC`, where)
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var difficulty, outcome, startedAt, endedAt string
		if err := rows.Scan(&a.ID, &a.Level, &a.LevelName, &difficulty, &a.Device, &outcome, &a.Reason,
			&startedAt, &endedAt, &a.DurationMs, &a.Progress, &a.Warnings); err != nil {
			return nil, err
		}
		a.Difficulty = model.Difficulty(difficulty)
		a.Outcome = model.Outcome(outcome)
		if a.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if a.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].EndedAt.Before(attempts[j].EndedAt)
	})
	return attempts, nil
}

// LevelAggregates summarizes attempts per level, ordered by level.
func (s *Store) LevelAggregates(ctx context.Context, cfg model.StatsConfig) ([]model.LevelAggregate, error) {
	where, args := filters(cfg)
	query := fmt.Sprintf(`SELECT level, MAX(level_name),
		COUNT(*),
		SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END),
		COALESCE(MIN(CASE WHEN outcome = 'completed' THEN duration_ms END), 0),
		COALESCE(AVG(CASE WHEN outcome = 'completed' THEN duration_ms END), 0)
		FROM attempts
		WHERE %s
		GROUP BY level
		ORDER BY level ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LevelAggregate
	for rows.Next() {
		var agg model.LevelAggregate
		if err := rows.Scan(&agg.Level, &agg.LevelName, &agg.Attempts, &agg.Completions, &agg.Failures, &agg.BestMs, &agg.AvgMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
