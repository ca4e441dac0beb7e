package main

import (
	"context"

	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/daemon"
	"brainstorm-hq/easybackup/pkg/telemetry/metrics"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run backups on a schedule",
	Long: `Stay in the foreground and run a backup on every tick of schedule.cron.

With schedule.watch_config the configuration file is reloaded when it
changes. With telemetry.metrics.listen_address set, Prometheus metrics
are served on telemetry.metrics.path. SIGINT and SIGTERM stop the daemon
once the current backup completes.

Examples:
  easybackup daemon -c /etc/easybackup.yaml`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// One collector for the process lifetime; counters accumulate
	// across runs.
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	out := cmd.OutOrStdout()

	run := func(ctx context.Context, cfg *config.Config) error {
		_, err := newPipeline(cfg, dryRun, collector, out).run(ctx)
		return err
	}

	d := daemon.New(cfgFile, run, daemon.WithMetrics(collector))
	return d.Run(ctx)
}
