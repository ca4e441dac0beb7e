// Package daemon runs easybackup as a long lived process.
//
// The daemon triggers backups from a cron schedule, reloads its
// configuration when the file changes and serves Prometheus metrics
// together with /health and /ready endpoints:
//
//	d := daemon.New(configPath, runBackup, daemon.WithMetrics(collector))
//	if err := d.Run(ctx); err != nil {
//	    return err
//	}
//
// Run blocks until ctx is cancelled. A backup still in progress is
// allowed to finish before Run returns. Runs never overlap: a tick that
// fires while a backup is running is skipped.
package daemon
