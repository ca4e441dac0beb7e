package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, including environment
variable overrides, and print a summary of what a run would do.

Examples:
  easybackup validate -c /etc/easybackup.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	target, err := cfg.General.TargetFolder()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration %s is valid\n", cfgFile)
	fmt.Fprintf(out, "  target:       %s\n", target)
	fmt.Fprintf(out, "  data folders: %s\n", enabled(cfg.DataFolders.Enabled))
	fmt.Fprintf(out, "  postgresql:   %s\n", enabled(cfg.PostgreSQL.Enabled))
	fmt.Fprintf(out, "  mysql:        %s\n", enabled(cfg.MySQL.Enabled))
	fmt.Fprintf(out, "  rotation:     %s\n", rotationSummary(cfg.Rotation))
	fmt.Fprintf(out, "  history:      %s\n", enabled(cfg.History.Enabled))
	fmt.Fprintf(out, "  schedule:     %s\n", cfg.Schedule.Cron)
	return nil
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func rotationSummary(r config.RotationConfig) string {
	if !r.Enabled {
		return "disabled"
	}
	if q := r.QuarantinePath(); q != "" {
		return fmt.Sprintf("enabled (quarantine %s, %d days)", q, r.QuarantineMaxAge)
	}
	return "enabled (no quarantine)"
}
