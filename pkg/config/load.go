package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"brainstorm-hq/easybackup/pkg/secrets"
)

// envPrefix prefixes every environment variable override.
const envPrefix = "EASYBACKUP_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. The result is
// not validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention EASYBACKUP_SECTION_FIELD (e.g., EASYBACKUP_GENERAL_TARGET_ROOT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Resolve ${secret:name} references
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := ResolveSecrets(context.Background(), cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// General overrides
	envString("GENERAL_TARGET_ROOT", &cfg.General.TargetRoot)
	envString("GENERAL_TARGET_SUBFOLDER", &cfg.General.TargetSubfolder)
	envString("GENERAL_MOUNT_COMMAND", &cfg.General.MountCommand)
	envString("GENERAL_UMOUNT_COMMAND", &cfg.General.UmountCommand)
	envString("GENERAL_TIMESTAMP_FORMAT", &cfg.General.TimestampFormat)

	// Data folder overrides
	envBool("DATA_FOLDERS_ENABLED", &cfg.DataFolders.Enabled)
	envList("DATA_FOLDERS_INCLUDE", &cfg.DataFolders.Include)
	envList("DATA_FOLDERS_EXCLUDE", &cfg.DataFolders.Exclude)
	envInt("DATA_FOLDERS_PARALLELISM", &cfg.DataFolders.Parallelism)

	// PostgreSQL overrides
	envBool("POSTGRESQL_ENABLED", &cfg.PostgreSQL.Enabled)
	envString("POSTGRESQL_ROOT_USER", &cfg.PostgreSQL.RootUser)
	envString("POSTGRESQL_DSN", &cfg.PostgreSQL.DSN)
	envBool("POSTGRESQL_VACUUMDB", &cfg.PostgreSQL.VacuumDB)
	envList("POSTGRESQL_EXCLUDE", &cfg.PostgreSQL.Exclude)

	// MySQL overrides
	envBool("MYSQL_ENABLED", &cfg.MySQL.Enabled)
	envString("MYSQL_ROOT_USER", &cfg.MySQL.RootUser)
	envString("MYSQL_ROOT_PASSWORD", &cfg.MySQL.RootPassword)
	envString("MYSQL_HOST", &cfg.MySQL.Host)
	envInt("MYSQL_PORT", &cfg.MySQL.Port)
	envList("MYSQL_EXCLUDE", &cfg.MySQL.Exclude)

	// Rotation overrides
	envBool("ROTATION_ENABLED", &cfg.Rotation.Enabled)
	envString("ROTATION_DAILY", &cfg.Rotation.Daily)
	envString("ROTATION_WEEKLY", &cfg.Rotation.Weekly)
	envString("ROTATION_MONTHLY", &cfg.Rotation.Monthly)
	envString("ROTATION_YEARLY", &cfg.Rotation.Yearly)
	if val, ok := os.LookupEnv(envPrefix + "ROTATION_QUARANTINE"); ok {
		// An empty value disables quarantine.
		q := val
		cfg.Rotation.Quarantine = &q
	}
	envInt("ROTATION_QUARANTINE_MAX_AGE", &cfg.Rotation.QuarantineMaxAge)
	envString("ROTATION_WEEK_START", &cfg.Rotation.WeekStart)

	// Notify overrides
	envString("NOTIFY_ON_SUCCESS", &cfg.Notify.OnSuccess)
	envString("NOTIFY_ON_FAILURE", &cfg.Notify.OnFailure)
	envList("NOTIFY_MAILTO", &cfg.Notify.Mailto)

	// History overrides
	envBool("HISTORY_ENABLED", &cfg.History.Enabled)
	envString("HISTORY_PATH", &cfg.History.Path)

	// Schedule overrides
	envString("SCHEDULE_CRON", &cfg.Schedule.Cron)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_TEXTFILE_PATH", &cfg.Telemetry.Metrics.TextfilePath)
	envString("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)

	// Secrets overrides
	envString("SECRETS_DIR", &cfg.Secrets.Dir)
}

// ResolveSecrets replaces ${secret:name} references in credential fields
// with values from the environment or the secrets directory.
func ResolveSecrets(ctx context.Context, cfg *Config) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"mysql.root_user", &cfg.MySQL.RootUser},
		{"mysql.root_password", &cfg.MySQL.RootPassword},
		{"postgresql.dsn", &cfg.PostgreSQL.DSN},
	}

	var resolver *secrets.Resolver
	for _, f := range fields {
		if !secrets.HasReferences(*f.value) {
			continue
		}
		if resolver == nil {
			providers := []secrets.SecretProvider{secrets.NewEnvProvider(cfg.Secrets.EnvPrefix)}
			if cfg.Secrets.Dir != "" {
				fp, err := secrets.NewFileProvider(cfg.Secrets.Dir)
				if err != nil {
					return fmt.Errorf("failed to open secrets directory: %w", err)
				}
				providers = append(providers, fp)
			}
			resolver = secrets.NewResolver(providers...)
		}

		value, err := resolver.ResolveReferences(ctx, *f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = value
	}
	return nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(envPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(envPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(envPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

// envList reads a comma separated list.
func envList(key string, dst *[]string) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}
