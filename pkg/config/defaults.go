package config

// Default values for configuration fields.
const (
	// General defaults
	DefaultTargetSubfolder = "./daily"
	DefaultTimestampFormat = "2006-01-02_15-04-05"

	// Data folder defaults
	DefaultDataFoldersParallelism = 1
	DefaultCompressionLevel       = -1

	// PostgreSQL defaults
	DefaultPgDumpPath   = "pg_dump"
	DefaultPsqlPath     = "psql"
	DefaultVacuumDBPath = "vacuumdb"

	// MySQL defaults
	DefaultMySQLHost     = "localhost"
	DefaultMySQLPort     = 3306
	DefaultMySQLDumpPath = "mysqldump"

	// Rotation defaults
	DefaultRotationDaily            = "./daily"
	DefaultRotationWeekly           = "./weekly"
	DefaultRotationMonthly          = "./monthly"
	DefaultRotationYearly           = "./yearly"
	DefaultRotationQuarantine       = "./quarantine"
	DefaultRotationQuarantineMaxAge = 7
	DefaultRotationWeekStart        = "monday"

	// History defaults
	DefaultHistoryPath = "/var/lib/easybackup/history.db"

	// Schedule defaults
	DefaultScheduleCron = "0 2 * * *"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultMetricsNamespace = "easybackup"
	DefaultMetricsPath      = "/metrics"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "EASYBACKUP_SECRET_"
)

// ApplyDefaults fills unset fields of cfg with their default values.
// Booleans are left untouched: every feature is opt-in.
func ApplyDefaults(cfg *Config) {
	applyGeneralDefaults(&cfg.General)
	applyDataFoldersDefaults(&cfg.DataFolders)
	applyPostgreSQLDefaults(&cfg.PostgreSQL)
	applyMySQLDefaults(&cfg.MySQL)
	applyRotationDefaults(&cfg.Rotation)
	applyHistoryDefaults(&cfg.History)
	applyScheduleDefaults(&cfg.Schedule)
	applyTelemetryDefaults(&cfg.Telemetry)
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
}

func applyGeneralDefaults(cfg *GeneralConfig) {
	if cfg.TargetSubfolder == "" {
		cfg.TargetSubfolder = DefaultTargetSubfolder
	}
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = DefaultTimestampFormat
	}
}

func applyDataFoldersDefaults(cfg *DataFoldersConfig) {
	if cfg.Parallelism == 0 {
		cfg.Parallelism = DefaultDataFoldersParallelism
	}
	if cfg.CompressionLevel == 0 {
		cfg.CompressionLevel = DefaultCompressionLevel
	}
}

func applyPostgreSQLDefaults(cfg *PostgreSQLConfig) {
	if cfg.PgDumpPath == "" {
		cfg.PgDumpPath = DefaultPgDumpPath
	}
	if cfg.PsqlPath == "" {
		cfg.PsqlPath = DefaultPsqlPath
	}
	if cfg.VacuumDBPath == "" {
		cfg.VacuumDBPath = DefaultVacuumDBPath
	}
}

func applyMySQLDefaults(cfg *MySQLConfig) {
	if cfg.Host == "" {
		cfg.Host = DefaultMySQLHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultMySQLPort
	}
	if cfg.MySQLDumpPath == "" {
		cfg.MySQLDumpPath = DefaultMySQLDumpPath
	}
}

func applyRotationDefaults(cfg *RotationConfig) {
	if cfg.Daily == "" {
		cfg.Daily = DefaultRotationDaily
	}
	if cfg.Weekly == "" {
		cfg.Weekly = DefaultRotationWeekly
	}
	if cfg.Monthly == "" {
		cfg.Monthly = DefaultRotationMonthly
	}
	if cfg.Yearly == "" {
		cfg.Yearly = DefaultRotationYearly
	}
	if cfg.Quarantine == nil {
		q := DefaultRotationQuarantine
		cfg.Quarantine = &q
	}
	if cfg.QuarantineMaxAge == 0 {
		cfg.QuarantineMaxAge = DefaultRotationQuarantineMaxAge
	}
	if cfg.WeekStart == "" {
		cfg.WeekStart = DefaultRotationWeekStart
	}
}

func applyHistoryDefaults(cfg *HistoryConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultHistoryPath
	}
}

func applyScheduleDefaults(cfg *ScheduleConfig) {
	if cfg.Cron == "" {
		cfg.Cron = DefaultScheduleCron
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
