package rotation

import (
	"fmt"
	"time"
)

// Stages reported in ErrorRecord.Stage.
const (
	StageSetup      = "setup"
	StageDaily      = "daily"
	StageWeekly     = "weekly"
	StageMonthly    = "monthly"
	StageQuarantine = "quarantine"
)

// Operations reported in ErrorRecord.Op.
const (
	OpScan       = "scan"
	OpMkdir      = "mkdir"
	OpPromote    = "promote"
	OpQuarantine = "quarantine"
	OpDelete     = "delete"
)

// ErrorRecord describes one failure encountered during a rotation run.
type ErrorRecord struct {
	// Stage is the pipeline step that failed (setup, daily, weekly, ...).
	Stage string

	// Op is the action being attempted.
	Op string

	// File is the affected file name, empty for structural failures.
	File string

	// Err is the underlying error.
	Err error

	// Time is when the failure was recorded.
	Time time.Time
}

// Error implements the error interface.
func (r ErrorRecord) Error() string {
	if r.File == "" {
		return fmt.Sprintf("%s %s: %v", r.Stage, r.Op, r.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", r.Stage, r.Op, r.File, r.Err)
}

// Unwrap returns the underlying error.
func (r ErrorRecord) Unwrap() error {
	return r.Err
}

// TierResult summarizes one tier transition.
type TierResult struct {
	// Tier is the source tier name.
	Tier string

	// Processed counts files old enough to be considered.
	Processed int

	Promoted    int
	Quarantined int
	Deleted     int

	Errors []ErrorRecord
}

// ReapResult summarizes one quarantine cleanup.
type ReapResult struct {
	// Skipped is true when no quarantine directory is configured.
	Skipped bool

	Processed int
	Deleted   int
	Errors    []ErrorRecord
}

// Result is the outcome of a full rotation run.
type Result struct {
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	// Tiers holds the daily, weekly and monthly transitions in run order.
	Tiers []TierResult

	Reap ReapResult

	// Errors lists every failure of the run in the order it occurred.
	Errors []ErrorRecord
}

// ErrorCount returns the number of failures. Zero means full success.
func (r *Result) ErrorCount() int {
	return len(r.Errors)
}

// Succeeded reports whether the run completed without errors.
func (r *Result) Succeeded() bool {
	return len(r.Errors) == 0
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Moved returns the number of files promoted across all tiers.
func (r *Result) Moved() int {
	n := 0
	for _, t := range r.Tiers {
		n += t.Promoted
	}
	return n
}

// Actions returns the number of promote, quarantine and delete actions
// attempted or previewed across the run.
func (r *Result) Actions() int {
	n := r.Reap.Deleted
	for _, t := range r.Tiers {
		n += t.Promoted + t.Quarantined + t.Deleted
	}
	return n
}

func (r *Result) addTier(t TierResult) {
	r.Tiers = append(r.Tiers, t)
	r.Errors = append(r.Errors, t.Errors...)
}
