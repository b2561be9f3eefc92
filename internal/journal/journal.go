package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is the recorded outcome of one pipeline run.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Cutoff          time.Time
	State           string
	Success         bool
	Message         string
	OrdersFound     int
	OrdersProcessed int
	TokensUsed      int
	EstimatedCost   float64
}

// Journal is an open run ledger.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the ledger at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id text PRIMARY KEY,
			started_at integer NOT NULL,
			finished_at integer NOT NULL,
			cutoff text NOT NULL,
			state text NOT NULL,
			success integer NOT NULL,
			message text NOT NULL,
			orders_found integer NOT NULL,
			orders_processed integer NOT NULL,
			tokens_used integer NOT NULL,
			estimated_cost real NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_runs_started ON runs (started_at)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Record appends run. An empty ID is replaced by a new UUID, which is returned.
func (j *Journal) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, cutoff, state, success, message,
			orders_found, orders_processed, tokens_used, estimated_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.Cutoff.Format("2006-01-02"),
		run.State,
		run.Success,
		run.Message,
		run.OrdersFound,
		run.OrdersProcessed,
		run.TokensUsed,
		run.EstimatedCost,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// TokensSince sums the tokens of runs started at or after t.
func (j *Journal) TokensSince(ctx context.Context, t time.Time) (int, error) {
	var total sql.NullInt64
	err := j.db.QueryRowContext(ctx,
		`SELECT SUM(tokens_used) FROM runs WHERE started_at >= ?`, t.UnixMilli()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum tokens: %w", err)
	}
	return int(total.Int64), nil
}

// Recent returns up to n runs, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, cutoff, state, success, message,
			orders_found, orders_processed, tokens_used, estimated_cost
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
			cutoff            string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &cutoff, &r.State, &r.Success, &r.Message,
			&r.OrdersFound, &r.OrdersProcessed, &r.TokensUsed, &r.EstimatedCost); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		r.Cutoff, _ = time.Parse("2006-01-02", cutoff)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StartOfDay returns local midnight of t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
