// Package health provides health checks for the easybackup daemon.
//
// A Checker aggregates named checks. The daemon registers one check per
// concern (scheduler running, outcome of the last backup) and serves
// them next to the metrics endpoint:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck(health.CheckScheduler, health.SchedulerCheck(scheduler.IsRunning))
//	checker.RegisterCheck(health.CheckLastBackup, health.LastBackupCheck(daemon.LastError))
//
//	mux.HandleFunc("/health", checker.LivenessHandler())
//	mux.HandleFunc("/ready", checker.ReadinessHandler())
//
// /health answers 200 as long as the process runs. /ready answers 503
// when any check fails, so a failed nightly backup is visible to an
// HTTP monitor.
package health
