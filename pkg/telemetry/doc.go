// Package telemetry groups the observability packages of easybackup.
//
// # Components
//
//   - logging: structured slog setup with secret redaction
//   - metrics: Prometheus collector, served by the daemon or written to
//     a node_exporter textfile after each run
//   - health: liveness and readiness checks served by the daemon
//
// # Usage
//
//	cfg := config.GetConfig()
//	logging.Setup(logging.Config{
//	    Level:         cfg.Telemetry.Logging.Level,
//	    Format:        cfg.Telemetry.Logging.Format,
//	    RedactSecrets: true,
//	})
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordBackupFiles("postgresql", 3)
//
// Every component is optional. A plain cron invocation usually only sets
// up logging and the metrics textfile.
package telemetry
