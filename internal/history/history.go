// package history persists batch run records and per-task results in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/swbatch/internal/converter"
	"github.com/desertthunder/swbatch/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded batch conversion.
type Run struct {
	ID         string
	InputDir   string
	OutputDir  string
	Formats    string
	Success    int
	Skipped    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// TaskRecord is one recorded per-task result within a run.
type TaskRecord struct {
	RunID      string
	SourcePath string
	OutputPath string
	Format     string
	Status     string
	Message    string
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and applies pending
// migrations. Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run and its per-task results in one transaction.
// A missing run ID is generated. Returns the run ID.
func (s *Store) RecordRun(run Run, results []converter.Result) (string, error) {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}

	stats := converter.Summarize(results)
	run.Success = stats.Success
	run.Skipped = stats.Skipped
	run.Failed = stats.Failed

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, input_dir, output_dir, formats, success, skipped, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputDir, run.OutputDir, run.Formats, run.Success, run.Skipped, run.Failed, run.StartedAt, run.FinishedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, result := range results {
		_, err = tx.Exec(`
			INSERT INTO task_results (run_id, source_path, output_path, format, status, message)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, result.Task.SourcePath, result.Task.OutputPath(), string(result.Task.Format), string(result.Status), result.Message)
		if err != nil {
			return "", fmt.Errorf("failed to insert task result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means no limit.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT id, input_dir, output_dir, formats, success, skipped, failed, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.InputDir, &run.OutputDir, &run.Formats,
			&run.Success, &run.Skipped, &run.Failed, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a single run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	var run Run
	err := s.db.QueryRow(`
		SELECT id, input_dir, output_dir, formats, success, skipped, failed, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.InputDir, &run.OutputDir, &run.Formats,
		&run.Success, &run.Skipped, &run.Failed, &run.StartedAt, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}

// RunResults returns the per-task results recorded for a run, in insertion order.
func (s *Store) RunResults(runID string) ([]TaskRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source_path, output_path, format, status, message
		FROM task_results
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task results: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var record TaskRecord
		var message sql.NullString
		if err := rows.Scan(&record.RunID, &record.SourcePath, &record.OutputPath,
			&record.Format, &record.Status, &message); err != nil {
			return nil, fmt.Errorf("failed to scan task result: %w", err)
		}
		if message.Valid {
			record.Message = message.String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
