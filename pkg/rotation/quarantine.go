package rotation

import (
	"log/slog"
	"time"
)

// quarantineReaper deletes quarantine entries that have outlived their
// grace period. Entries are aged by the date prefix they received when
// entering quarantine, not by the original backup date.
type quarantineReaper struct {
	pool   *Pool
	actor  *Actor
	logger *slog.Logger
}

func (r *quarantineReaper) reap(dir string, maxAge int) ReapResult {
	if dir == "" {
		r.logger.Debug("no quarantine folder configured, skipping cleanup")
		return ReapResult{Skipped: true}
	}

	var result ReapResult
	r.logger.Info("cleaning up quarantine", "folder", dir, "max_age_days", maxAge)

	files, err := r.pool.Collect(dir, maxAge)
	if err != nil {
		r.logger.Error("failed to scan quarantine folder", "folder", dir, "error", err)
		result.Errors = append(result.Errors, ErrorRecord{
			Stage: StageQuarantine,
			Op:    OpScan,
			Err:   err,
			Time:  time.Now(),
		})
		return result
	}

	for _, f := range files {
		result.Processed++
		if err := f.Destroy(r.actor, dir); err != nil {
			r.logger.Error("failed to erase quarantined file", "file", f.Name, "error", err)
			result.Errors = append(result.Errors, ErrorRecord{
				Stage: StageQuarantine,
				Op:    OpDelete,
				File:  f.Name,
				Err:   err,
				Time:  time.Now(),
			})
			continue
		}
		result.Deleted++
	}

	return result
}
