// Package backup runs the easybackup pipeline.
//
// A run mounts the backup target, writes timestamped archives of the
// configured data folders and dumps of every PostgreSQL and MySQL
// database, rotates the retention tiers and unmounts the target again:
//
//	runner := backup.NewRunner(cfg, backup.WithDryRun(dryRun))
//	report := runner.Run(ctx)
//	if !report.Succeeded() {
//	    return report.Err()
//	}
//
// Every file is named "<timestamp>__<name>", with a timestamp starting with
// the run date, so the rotation engine can age it.
//
// Failures of individual steps do not stop the run. They are collected as
// ErrorRecords in the returned Report. Only a failing mount command or an
// unusable target folder end the run early.
package backup
