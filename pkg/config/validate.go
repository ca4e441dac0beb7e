package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcnijman/go-emailaddress"
	"github.com/robfig/cron/v3"

	"brainstorm-hq/easybackup/pkg/rotation"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rotation.daily").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateGeneral(&cfg.General)...)
	errs = append(errs, validateDataFolders(&cfg.DataFolders)...)
	errs = append(errs, validateMySQL(&cfg.MySQL)...)
	errs = append(errs, validateRotation(&cfg.Rotation)...)
	errs = append(errs, validateNotify(&cfg.Notify)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateGeneral(cfg *GeneralConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.TargetRoot) == "" {
		errs = append(errs, FieldError{
			Field:   "general.target_root",
			Message: "target root is required",
		})
	}

	if filepath.IsAbs(cfg.TargetSubfolder) {
		errs = append(errs, FieldError{
			Field:   "general.target_subfolder",
			Message: "target subfolder must be relative to the target root",
		})
	}

	// Backups must be named so that rotation can date them.
	sample := time.Date(2024, time.March, 22, 10, 30, 15, 0, time.UTC)
	stamped := sample.Format(cfg.TimestampFormat) + "__sample.gz"
	if d, ok := rotation.ParseFileDate(stamped); !ok || !d.Equal(time.Date(2024, time.March, 22, 0, 0, 0, 0, time.UTC)) {
		errs = append(errs, FieldError{
			Field:   "general.timestamp_format",
			Message: fmt.Sprintf("timestamp format %q must start with a YYYY-MM-DD date", cfg.TimestampFormat),
		})
	}

	return errs
}

func validateDataFolders(cfg *DataFoldersConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && len(cfg.Include) == 0 {
		errs = append(errs, FieldError{
			Field:   "data_folders.include",
			Message: "at least one include pattern is required when data folders are enabled",
		})
	}

	for i, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("data_folders.patterns[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q: %v", pattern, err),
			})
		}
	}

	if cfg.Parallelism < 1 {
		errs = append(errs, FieldError{
			Field:   "data_folders.parallelism",
			Message: "parallelism must be at least 1",
		})
	}

	if cfg.CompressionLevel < -2 || cfg.CompressionLevel > 9 {
		errs = append(errs, FieldError{
			Field:   "data_folders.compression_level",
			Message: "compression level must be between -2 and 9",
		})
	}

	return errs
}

func validateMySQL(cfg *MySQLConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.RootUser == "" {
		errs = append(errs, FieldError{
			Field:   "mysql.root_user",
			Message: "root user is required when mysql is enabled",
		})
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "mysql.port",
			Message: "port must be between 1 and 65535",
		})
	}

	return errs
}

func validateRotation(cfg *RotationConfig) []FieldError {
	var errs []FieldError

	// Tier paths are checked against a placeholder root: only their shape
	// matters here, the real root may not exist yet.
	const root = "/target"
	seen := make(map[string]string)

	tiers := []struct {
		field string
		path  string
	}{
		{"rotation.daily", cfg.Daily},
		{"rotation.weekly", cfg.Weekly},
		{"rotation.monthly", cfg.Monthly},
		{"rotation.yearly", cfg.Yearly},
		{"rotation.quarantine", cfg.QuarantinePath()},
	}
	for _, tier := range tiers {
		if tier.path == "" {
			continue
		}
		if filepath.IsAbs(tier.path) {
			errs = append(errs, FieldError{
				Field:   tier.field,
				Message: "tier folder must be relative to the target root",
			})
			continue
		}
		resolved, err := rotation.ResolveTier(root, tier.path)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   tier.field,
				Message: err.Error(),
			})
			continue
		}
		if other, ok := seen[resolved]; ok {
			errs = append(errs, FieldError{
				Field:   tier.field,
				Message: fmt.Sprintf("tier folder is the same as %s", other),
			})
			continue
		}
		seen[resolved] = tier.field
	}

	if cfg.QuarantineMaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "rotation.quarantine_max_age",
			Message: "quarantine max age must be non-negative",
		})
	}

	if _, err := rotation.ParseWeekStart(cfg.WeekStart); err != nil {
		errs = append(errs, FieldError{
			Field:   "rotation.week_start",
			Message: err.Error(),
		})
	}

	return errs
}

func validateNotify(cfg *NotifyConfig) []FieldError {
	var errs []FieldError

	for i, addr := range cfg.Mailto {
		if _, err := emailaddress.Parse(strings.TrimSpace(addr)); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("notify.mailto[%d]", i),
				Message: fmt.Sprintf("invalid email address %q", addr),
			})
		}
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "path is required when history is enabled",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}

	return errs
}

func validateSchedule(cfg *ScheduleConfig) []FieldError {
	var errs []FieldError

	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		errs = append(errs, FieldError{
			Field:   "schedule.cron",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Cron, err),
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (expected debug, info, warn or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (expected text or json)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}
