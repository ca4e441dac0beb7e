package backup

import (
	"time"

	"go.uber.org/multierr"

	"brainstorm-hq/easybackup/pkg/rotation"
)

// Kinds of backup files.
const (
	KindDataFolder = "data_folder"
	KindPostgreSQL = "postgresql"
	KindMySQL      = "mysql"
)

// File is one backup file written by a run.
type File struct {
	// Kind is KindDataFolder, KindPostgreSQL or KindMySQL.
	Kind string

	// Source is the archived folder or the dumped database.
	Source string

	// Path is the absolute path of the written file.
	Path string

	Size int64
}

// Report is the outcome of a backup run.
type Report struct {
	// RunID uniquely identifies the run in logs and history.
	RunID string

	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	// TargetFolder is where the backup files were written.
	TargetFolder string

	Files []File

	// Errors lists every failure in the order it occurred.
	Errors []ErrorRecord

	// Rotation is nil when rotation is disabled or never started.
	Rotation *rotation.Result
}

// ErrorCount returns the number of failures. Zero means full success.
func (r *Report) ErrorCount() int {
	return len(r.Errors)
}

// Succeeded reports whether the run completed without errors.
func (r *Report) Succeeded() bool {
	return len(r.Errors) == 0
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Err combines every recorded failure into one error, nil on success.
func (r *Report) Err() error {
	errs := make([]error, len(r.Errors))
	for i, rec := range r.Errors {
		errs[i] = rec
	}
	return multierr.Combine(errs...)
}

// FilesByKind counts the written files per kind.
func (r *Report) FilesByKind() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Files {
		counts[f.Kind]++
	}
	return counts
}

func (r *Report) addError(step, subject string, err error, at time.Time) {
	r.Errors = append(r.Errors, ErrorRecord{
		Step:    step,
		Subject: subject,
		Err:     err,
		Time:    at,
	})
}
