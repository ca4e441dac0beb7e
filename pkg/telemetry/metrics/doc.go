// Package metrics provides Prometheus metrics for easybackup.
//
// # Metrics
//
//   - rotation_files_total{tier,action}: files promoted, quarantined or deleted
//   - rotation_errors_total{tier}: rotation failures by stage
//   - backup_files_total{kind}: backup files written
//   - backup_errors_total: error records across runs
//   - last_run_timestamp_seconds, last_run_errors: outcome of the last run
//   - target_free_bytes: free space on the backup target
//   - run_duration_seconds: run duration histogram
//
// Every metric is prefixed with telemetry.metrics.namespace ("easybackup").
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.ObserveRotation(result)
//	collector.RecordRun(time.Now(), time.Since(start), report.ErrorCount())
//
// One-shot runs export through node_exporter's textfile collector:
//
//	collector.WriteTextfile(cfg.Telemetry.Metrics.TextfilePath)
//
// The daemon serves the registry instead:
//
//	mux.Handle("/metrics", collector.Handler())
package metrics
