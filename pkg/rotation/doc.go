// Package rotation ages backup files through a retention hierarchy.
//
// # Tiers
//
// Backup files live in five sibling directories under one target folder:
//
//	<target>/daily
//	<target>/weekly
//	<target>/monthly
//	<target>/yearly
//	<target>/quarantine
//
// Each rotation pass scans one tier, keeps the files that have served their
// full retention window in that tier, and either promotes them to the next
// coarser tier or sends them to quarantine:
//
//   - daily -> weekly:    files older than 7 days dated on a week start or a month start
//   - weekly -> monthly:  files older than 31 days dated on a month start
//   - monthly -> yearly:  files older than 365 days dated on January 1st
//
// Quarantined files are renamed with a "YYYY-MM-DD_____" prefix holding the
// day they entered quarantine, and are deleted once that entry is older than
// the configured maximum age. With no quarantine directory configured, files
// are deleted immediately instead.
//
// # Dated Files
//
// A file takes part in rotation only if its name starts with a date:
//
//	2024-01-15_10-00-00__postgresql.app.gz   (YYYY-MM-DD)
//	1705312800_2024_01_15_app.tgz            (<prefix>_YYYY_MM_DD)
//
// Anything else is left alone.
//
// # Basic Usage
//
//	engine := rotation.NewEngine(rotation.Config{
//	    TargetFolder:     "/mnt/backup/backups/host1",
//	    Daily:            "daily",
//	    Weekly:           "weekly",
//	    Monthly:          "monthly",
//	    Yearly:           "yearly",
//	    Quarantine:       "quarantine",
//	    QuarantineMaxAge: 7,
//	})
//
//	result := engine.RotateAll(ctx)
//	if result.ErrorCount() > 0 {
//	    log.Printf("rotation completed with %d errors", result.ErrorCount())
//	}
//
// # Safety
//
// Every filesystem action is performed against absolute paths computed from
// the target folder. Tier paths that resolve outside the target folder are
// rejected before any file is touched, and the process working directory is
// never changed.
//
// In dry-run mode the engine selects files exactly as it would otherwise, but
// writes the intended renames and deletions to a preview writer instead of
// performing them.
package rotation
