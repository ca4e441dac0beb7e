package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/telemetry/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a complete backup",
	Long: `Run a complete backup: mount the target, archive data folders, dump
databases, rotate the retention tiers, unmount and notify.

The process exits with status 1 when any step failed.

Examples:
  # Run with the default ./easybackup.yaml
  easybackup run

  # Preview every action
  easybackup run -c /etc/easybackup.yaml --dry-run`,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	p := newPipeline(cfg, dryRun, collector, cmd.OutOrStdout())

	rep, err := p.run(ctx)
	if err != nil {
		for _, rec := range rep.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", rec)
		}
		return cli.NewCommandError("run", fmt.Errorf("%d errors", rep.ErrorCount()))
	}
	return nil
}
