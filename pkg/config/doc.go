// Package config provides configuration management for easybackup.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Configuration is strongly
// typed and validated once at load time.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("/etc/easybackup.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention EASYBACKUP_SECTION_FIELD.
// For example:
//
//   - EASYBACKUP_GENERAL_TARGET_ROOT overrides general.target_root
//   - EASYBACKUP_ROTATION_QUARANTINE overrides rotation.quarantine ("" disables it)
//   - EASYBACKUP_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// List values (include/exclude patterns, mail recipients) are comma separated.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	general:
//	  target_root: /mnt/backup/backups/{hostname}
//	  target_subfolder: ./daily
//
//	postgresql:
//	  enabled: true
//	  root_user: postgres
//
//	rotation:
//	  enabled: true
//	  quarantine: ./quarantine
//	  quarantine_max_age: 7
//
// Credentials may reference secrets instead of holding them, for example
// root_password: ${secret:mysql-root-password}. See ResolveSecrets.
//
// "easybackup init" writes a complete commented file (see DefaultConfigFile).
//
// # Active Configuration
//
// Every command records the file it loaded with SetConfig. The daemon
// reads it with GetConfig at each scheduled backup and swaps it with
// ReloadConfig when the file changes. Tests should build Config values
// directly.
package config
