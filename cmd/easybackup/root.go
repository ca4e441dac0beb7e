package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbosity int
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:   "easybackup",
	Short: "easybackup - host backups with retention rotation",
	Long: `easybackup backs up a host to local or mounted storage.

Each run:
  - mounts the backup target (optional)
  - archives the configured data folders
  - dumps every PostgreSQL and MySQL database
  - rotates backups through daily, weekly, monthly and yearly folders
  - sends a success or failure notification`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbosity < 0 || verbosity > 3 {
			return fmt.Errorf("verbosity must be between 0 and 3")
		}
		_, err := logging.Setup(logging.Config{
			Level:         logging.LevelFromVerbosity(verbosity),
			Format:        config.DefaultLoggingFormat,
			RedactSecrets: true,
			Writer:        cmd.ErrOrStderr(),
		})
		return err
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./easybackup.yaml", "config file path")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 1, "verbosity level: 0 warnings, 1 info, 2 and 3 debug")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "print the actions without executing them")
}

// loadConfig loads the configuration file and reconfigures logging from
// it. An explicit --verbosity takes precedence over telemetry.logging.level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w (create one with \"easybackup init -c %s\")", err, cfgFile)
		}
		return nil, cli.NewConfigError(cfgFile, err)
	}
	config.SetConfig(cfgFile, cfg)

	level := cfg.Telemetry.Logging.Level
	if cmd.Flags().Changed("verbosity") {
		level = logging.LevelFromVerbosity(verbosity)
	}
	if _, err := logging.Setup(logging.Config{
		Level:         level,
		Format:        cfg.Telemetry.Logging.Format,
		RedactSecrets: true,
		Writer:        cmd.ErrOrStderr(),
	}); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}
