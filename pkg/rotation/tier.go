package rotation

import (
	"log/slog"
	"time"
)

// Minimum ages, in days, before a file may leave its tier.
const (
	DailyMinAge   = 7
	WeeklyMinAge  = 31
	MonthlyMinAge = 365

	// DefaultQuarantineMaxAge is how long quarantined files are kept.
	DefaultQuarantineMaxAge = 7
)

// Transition describes how files leave one tier.
type Transition struct {
	// Name identifies the source tier in logs and results.
	Name string

	// MinAge is the age in days a file must reach before it is considered.
	MinAge int

	// Promote reports whether a file moves on to the next tier. Files
	// that are not promoted are quarantined.
	Promote func(DatedFile) bool
}

var (
	// DailyToWeekly keeps week-start and month-start snapshots.
	DailyToWeekly = Transition{
		Name:   StageDaily,
		MinAge: DailyMinAge,
		Promote: func(f DatedFile) bool {
			return f.IsFirstDayOfWeek() || f.IsFirstDayOfMonth()
		},
	}

	// WeeklyToMonthly keeps month-start snapshots.
	WeeklyToMonthly = Transition{
		Name:    StageWeekly,
		MinAge:  WeeklyMinAge,
		Promote: DatedFile.IsFirstDayOfMonth,
	}

	// MonthlyToYearly keeps year-start snapshots.
	MonthlyToYearly = Transition{
		Name:    StageMonthly,
		MinAge:  MonthlyMinAge,
		Promote: DatedFile.IsFirstDayOfYear,
	}
)

// tierRotator applies a Transition between two absolute directories.
type tierRotator struct {
	pool   *Pool
	actor  *Actor
	logger *slog.Logger
}

// rotate runs one transition. Each file is handled independently: a
// failure is recorded and the next file is processed.
func (r *tierRotator) rotate(t Transition, source, destination, quarantine string) TierResult {
	result := TierResult{Tier: t.Name}

	r.logger.Info("rotating files",
		"tier", t.Name,
		"source", source,
		"destination", destination,
		"min_age_days", t.MinAge,
	)

	files, err := r.pool.Collect(source, t.MinAge)
	if err != nil {
		r.logger.Error("failed to scan tier folder", "tier", t.Name, "folder", source, "error", err)
		result.Errors = append(result.Errors, ErrorRecord{
			Stage: t.Name,
			Op:    OpScan,
			Err:   err,
			Time:  time.Now(),
		})
		return result
	}

	for _, f := range files {
		r.logger.Debug("considering file", "tier", t.Name, "file", f.String())
		result.Processed++

		op := OpPromote
		if t.Promote(f) {
			err = f.MoveTo(r.actor, source, destination)
		} else if quarantine != "" {
			op = OpQuarantine
			err = f.ToQuarantine(r.actor, source, quarantine)
		} else {
			op = OpDelete
			err = f.Destroy(r.actor, source)
		}

		if err != nil {
			r.logger.Error("file rotation failed",
				"tier", t.Name,
				"file", f.Name,
				"op", op,
				"error", err,
			)
			result.Errors = append(result.Errors, ErrorRecord{
				Stage: t.Name,
				Op:    op,
				File:  f.Name,
				Err:   err,
				Time:  time.Now(),
			})
			continue
		}

		switch op {
		case OpPromote:
			result.Promoted++
		case OpQuarantine:
			result.Quarantined++
		case OpDelete:
			result.Deleted++
		}
	}

	r.logger.Info("tier rotation completed",
		"tier", t.Name,
		"processed", result.Processed,
		"promoted", result.Promoted,
		"quarantined", result.Quarantined,
		"deleted", result.Deleted,
		"errors", len(result.Errors),
	)

	return result
}
