package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"brainstorm-hq/easybackup/pkg/backup"
)

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// busyTimeout is how long writers wait on a locked database.
const busyTimeout = 5 * time.Second

// Run is a journal entry.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	DryRun       bool
	TargetFolder string

	// Files and Bytes count the backup files written.
	Files int
	Bytes int64

	// ErrorCount is the number of failures of the run.
	ErrorCount int

	// Rotation counters.
	Promoted    int
	Quarantined int
	Deleted     int

	Errors []RunError
}

// Succeeded reports whether the run completed without errors.
func (r Run) Succeeded() bool {
	return r.ErrorCount == 0
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunError is one failure of a recorded run.
type RunError struct {
	Stage   string
	File    string
	Message string
	Time    time.Time
}

// Store is the SQLite backed run journal.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{
		db:     db,
		path:   path,
		logger: slog.Default().With("component", "history"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("history store opened", "path", path)
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("history schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}
	return nil
}

// Record stores report. Recording the same run twice replaces the
// previous entry.
func (s *Store) Record(ctx context.Context, report *backup.Report) error {
	run := fromReport(report)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_errors WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			id, started_at, finished_at, dry_run, target_folder,
			files, bytes, errors, promoted, quarantined, deleted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(), run.DryRun, run.TargetFolder,
		run.Files, run.Bytes, run.ErrorCount, run.Promoted, run.Quarantined, run.Deleted,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	for i, e := range run.Errors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_errors (run_id, seq, stage, file, message, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, e.Stage, e.File, e.Message, e.Time.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to record run error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("run recorded", "run_id", run.ID, "errors", run.ErrorCount)
	return nil
}

// List returns the most recent runs first. A limit of 0 or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, finished_at, dry_run, target_folder,
		       files, bytes, errors, promoted, quarantined, deleted
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		if runs[i].ErrorCount == 0 {
			continue
		}
		if runs[i].Errors, err = s.runErrors(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns a single run.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, dry_run, target_folder,
		       files, bytes, errors, promoted, quarantined, deleted
		FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get run: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if run.Errors, err = s.runErrors(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// Prune deletes runs started before olderThan and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	cutoff := olderThan.UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		DELETE FROM run_errors
		WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune run errors: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	if count > 0 {
		s.logger.Info("pruned run history", "runs", count, "older_than", olderThan)
	}
	return count, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	return nil
}

func (s *Store) runErrors(ctx context.Context, runID string) ([]RunError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, file, message, recorded_at
		FROM run_errors WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run errors: %w", err)
	}
	defer rows.Close()

	var errs []RunError
	for rows.Next() {
		var (
			e    RunError
			file sql.NullString
			at   int64
		)
		if err := rows.Scan(&e.Stage, &file, &e.Message, &at); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		e.File = file.String
		e.Time = time.Unix(0, at)
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load run errors: %w", err)
	}
	return errs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run               Run
		started, finished int64
	)
	err := rows.Scan(
		&run.ID, &started, &finished, &run.DryRun, &run.TargetFolder,
		&run.Files, &run.Bytes, &run.ErrorCount, &run.Promoted, &run.Quarantined, &run.Deleted,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = time.Unix(0, started)
	run.FinishedAt = time.Unix(0, finished)
	return run, nil
}

func fromReport(report *backup.Report) Run {
	run := Run{
		ID:           report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		DryRun:       report.DryRun,
		TargetFolder: report.TargetFolder,
		Files:        len(report.Files),
		ErrorCount:   report.ErrorCount(),
	}
	for _, f := range report.Files {
		run.Bytes += f.Size
	}
	if rot := report.Rotation; rot != nil {
		run.Promoted = rot.Moved()
		for _, t := range rot.Tiers {
			run.Quarantined += t.Quarantined
			run.Deleted += t.Deleted
		}
		run.Deleted += rot.Reap.Deleted
	}
	for _, rec := range report.Errors {
		msg := ""
		if rec.Err != nil {
			msg = rec.Err.Error()
		}
		run.Errors = append(run.Errors, RunError{
			Stage:   rec.Step,
			File:    rec.Subject,
			Message: msg,
			Time:    rec.Time,
		})
	}
	return run
}
