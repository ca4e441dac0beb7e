// Package logging configures structured logging for easybackup.
//
// The package builds a log/slog logger from the telemetry.logging
// configuration section and installs it as the process default, so every
// component can derive its own logger:
//
//	logger := slog.Default().With("component", "backup")
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:         logging.LevelFromVerbosity(verbosity),
//	    Format:        "text",
//	    RedactSecrets: true,
//	})
//
// # Context fields
//
// Records logged with the *Context methods carry the run ID and pipeline
// stage stored in the context:
//
//	ctx = logging.WithRunID(ctx, report.RunID)
//	logger.InfoContext(ctx, "dumping database", "database", db)
//
// # Secret redaction
//
// Mount commands and database connection strings routinely carry
// passwords. With RedactSecrets enabled they are masked before output:
//
//   - mount.cifs -o user=u1,pass=secret → pass=***
//   - postgres://backup:secret@db/app → postgres://backup:***@db/app
//   - mysqldump -psecret → -p***
//   - attributes named password, secret, token or dsn → ***
package logging
