package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/backup"
	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/rotation"
	"brainstorm-hq/easybackup/pkg/telemetry/metrics"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate existing backups without running a backup",
	Long: `Move backups through the daily, weekly, monthly and yearly folders and
clean up the quarantine folder, without creating new backups.

Rotation runs even when rotation.enabled is false in the configuration.
The general.umount_command and general.mount_command run first, and the
umount_command runs again once rotation is done, exactly as for a backup
run. A failed mount aborts the rotation.

Examples:
  # Preview the rotation
  easybackup rotate --dry-run`,
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := cfg.RotationEngineConfig(dryRun); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	out := cmd.OutOrStdout()
	rep := backup.NewRunner(cfg, backup.WithDryRun(dryRun), backup.WithPreview(out)).Rotate(ctx)

	if rep.Rotation != nil {
		collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		collector.ObserveRotation(rep.Rotation)
		if err := collector.WriteTextfile(cfg.Telemetry.Metrics.TextfilePath); err != nil {
			return err
		}
		printRotationSummary(out, rep.Rotation)
	}

	if !rep.Succeeded() {
		for _, rec := range rep.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", rec)
		}
		return cli.NewCommandError("rotate", fmt.Errorf("%d errors", rep.ErrorCount()))
	}
	return nil
}

func printRotationSummary(w io.Writer, result *rotation.Result) {
	for _, t := range result.Tiers {
		fmt.Fprintf(w, "%-8s processed=%d promoted=%d quarantined=%d deleted=%d\n",
			t.Tier, t.Processed, t.Promoted, t.Quarantined, t.Deleted)
	}
	if !result.Reap.Skipped {
		fmt.Fprintf(w, "%-8s processed=%d deleted=%d\n",
			rotation.StageQuarantine, result.Reap.Processed, result.Reap.Deleted)
	}
}
