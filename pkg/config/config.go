package config

// Config is the root configuration structure for easybackup.
// It describes where backups are written, what gets dumped, how the
// resulting files are rotated and how the outcome is reported.
type Config struct {
	// General contains the backup target location and the commands used to
	// mount and unmount it.
	General GeneralConfig `yaml:"general"`

	// DataFolders contains the folders archived on every run.
	DataFolders DataFoldersConfig `yaml:"data_folders"`

	// PostgreSQL contains the PostgreSQL dump settings.
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`

	// MySQL contains the MySQL dump settings.
	MySQL MySQLConfig `yaml:"mysql"`

	// Rotation contains the retention tier layout.
	Rotation RotationConfig `yaml:"rotation"`

	// Notify contains the commands run once a backup completes.
	Notify NotifyConfig `yaml:"notify"`

	// History contains the run journal settings.
	History HistoryConfig `yaml:"history"`

	// Schedule contains the settings used by "easybackup daemon".
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Secrets contains where ${secret:name} references are resolved from.
	Secrets SecretsConfig `yaml:"secrets"`
}

// GeneralConfig contains the backup target and storage commands.
type GeneralConfig struct {
	// TargetRoot is the folder holding all retention tiers. The placeholder
	// "{hostname}" is replaced with the local host name.
	// Example: "/mnt/backup/backups/{hostname}"
	TargetRoot string `yaml:"target_root"`

	// TargetSubfolder is where new backups are written, relative to
	// TargetRoot. It is normally the daily tier.
	// Default: "./daily"
	TargetSubfolder string `yaml:"target_subfolder"`

	// MountCommand is a shell command run before the backup, e.g. to mount
	// network storage. Empty means nothing is mounted.
	MountCommand string `yaml:"mount_command"`

	// UmountCommand is a shell command run before mounting and after the
	// backup completes.
	UmountCommand string `yaml:"umount_command"`

	// TimestampFormat is the Go time layout prefixed to every backup file.
	// It must start with a date the rotation engine recognizes.
	// Default: "2006-01-02_15-04-05"
	TimestampFormat string `yaml:"timestamp_format"`
}

// DataFoldersConfig contains data folder archiving settings.
type DataFoldersConfig struct {
	// Enabled controls whether data folders are archived.
	Enabled bool `yaml:"enabled"`

	// Include lists glob patterns of folders to archive.
	Include []string `yaml:"include"`

	// Exclude lists glob patterns of folders to leave out.
	Exclude []string `yaml:"exclude"`

	// Parallelism is the number of folders archived concurrently.
	// Default: 1
	Parallelism int `yaml:"parallelism"`

	// CompressionLevel is the gzip level (-2 to 9, -1 for the default).
	// Default: -1
	CompressionLevel int `yaml:"compression_level"`
}

// PostgreSQLConfig contains PostgreSQL dump settings.
type PostgreSQLConfig struct {
	// Enabled controls whether PostgreSQL databases are dumped.
	Enabled bool `yaml:"enabled"`

	// RootUser is the system user the dump tools run as (via sudo).
	// Empty runs them as the current user.
	RootUser string `yaml:"root_user"`

	// DSN is an optional connection string used to list databases.
	// When empty, databases are listed with psql.
	DSN string `yaml:"dsn"`

	// VacuumDB runs "vacuumdb -z" on each database after dumping it.
	VacuumDB bool `yaml:"vacuumdb"`

	// Exclude lists database names that are never dumped.
	Exclude []string `yaml:"exclude"`

	// PgDumpPath is the pg_dump executable.
	// Default: "pg_dump"
	PgDumpPath string `yaml:"pg_dump_path"`

	// PsqlPath is the psql executable.
	// Default: "psql"
	PsqlPath string `yaml:"psql_path"`

	// VacuumDBPath is the vacuumdb executable.
	// Default: "vacuumdb"
	VacuumDBPath string `yaml:"vacuumdb_path"`
}

// MySQLConfig contains MySQL dump settings.
type MySQLConfig struct {
	// Enabled controls whether MySQL databases are dumped.
	Enabled bool `yaml:"enabled"`

	// RootUser is the MySQL account used to list and dump databases.
	RootUser string `yaml:"root_user"`

	// RootPassword is the password of RootUser.
	RootPassword string `yaml:"root_password"`

	// Host is the MySQL server host.
	// Default: "localhost"
	Host string `yaml:"host"`

	// Port is the MySQL server port.
	// Default: 3306
	Port int `yaml:"port"`

	// Exclude lists database names that are never dumped.
	Exclude []string `yaml:"exclude"`

	// MySQLDumpPath is the mysqldump executable.
	// Default: "mysqldump"
	MySQLDumpPath string `yaml:"mysqldump_path"`
}

// RotationConfig contains the retention tier layout. Tier paths are
// relative to general.target_root.
type RotationConfig struct {
	// Enabled controls whether files are rotated after the backup.
	Enabled bool `yaml:"enabled"`

	Daily   string `yaml:"daily"`
	Weekly  string `yaml:"weekly"`
	Monthly string `yaml:"monthly"`
	Yearly  string `yaml:"yearly"`

	// Quarantine holds files waiting for deletion. An explicit empty
	// string disables quarantine and files are deleted right away.
	// Default: "./quarantine"
	Quarantine *string `yaml:"quarantine"`

	// QuarantineMaxAge is the number of days files stay in quarantine.
	// Default: 7
	QuarantineMaxAge int `yaml:"quarantine_max_age"`

	// WeekStart is the first day of the week, "monday" or "sunday".
	// Default: "monday"
	WeekStart string `yaml:"week_start"`
}

// QuarantinePath returns the configured quarantine folder, or "" when
// quarantine is disabled.
func (r RotationConfig) QuarantinePath() string {
	if r.Quarantine == nil {
		return ""
	}
	return *r.Quarantine
}

// NotifyConfig contains the notification commands. Both commands are
// shell templates where {title}, {details} and {mailto} are substituted.
type NotifyConfig struct {
	// OnSuccess runs when the backup completes without errors.
	OnSuccess string `yaml:"on_success"`

	// OnFailure runs when the backup completes with errors.
	OnFailure string `yaml:"on_failure"`

	// Mailto lists the recipients substituted for {mailto}.
	Mailto []string `yaml:"mailto"`

	// IncludeTree appends the tier listing to the notification details.
	IncludeTree bool `yaml:"include_tree"`
}

// HistoryConfig contains the run journal settings.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	// Default: "/var/lib/easybackup/history.db"
	Path string `yaml:"path"`

	// RetentionDays prunes journal entries older than this many days.
	// 0 keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// ScheduleConfig contains daemon scheduling settings.
type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression.
	// Default: "0 2 * * *"
	Cron string `yaml:"cron"`

	// RunOnStart runs a backup immediately when the daemon starts.
	RunOnStart bool `yaml:"run_on_start"`

	// WatchConfig reloads the configuration file when it changes.
	WatchConfig bool `yaml:"watch_config"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("text" or "json").
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "easybackup"
	Namespace string `yaml:"namespace"`

	// TextfilePath is where metrics are written after each run, for the
	// node_exporter textfile collector. Empty disables the file.
	TextfilePath string `yaml:"textfile_path"`

	// ListenAddress is where the daemon serves metrics. Empty disables
	// the endpoint.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// SecretsConfig contains the sources of ${secret:name} references. The
// environment is tried first, then the secrets directory.
type SecretsConfig struct {
	// EnvPrefix prefixes the environment variable of each secret.
	// Default: "EASYBACKUP_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, mode 0600 or 0400. Empty disables
	// file secrets.
	Dir string `yaml:"dir"`
}
