package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"brainstorm-hq/easybackup/pkg/cli"
	"brainstorm-hq/easybackup/pkg/history"
)

var historyFlags struct {
	limit  int
	output string
	runID  string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent backup runs",
	Long: `Show the backup runs recorded in the history database (history.enabled).

Examples:
  # Last 10 runs
  easybackup history

  # Errors of one run
  easybackup history --run 0b5e6c2a-...

  # Export as CSV
  easybackup history --limit 0 --output csv`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 10, "number of runs to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json, csv")
	historyCmd.Flags().StringVar(&historyFlags.runID, "run", "", "show the errors of a single run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return cli.NewConfigError(cfgFile, fmt.Errorf("run history is disabled (history.enabled)"))
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	formatter := cli.NewFormatter(format)

	if historyFlags.runID != "" {
		run, err := store.Get(ctx, historyFlags.runID)
		if err != nil {
			return err
		}
		if format == cli.FormatJSON {
			return formatter.FormatTo(cmd.OutOrStdout(), run)
		}
		return formatter.FormatTo(cmd.OutOrStdout(), errorTable(run.Errors))
	}

	runs, err := store.List(ctx, historyFlags.limit)
	if err != nil {
		return err
	}
	if format == cli.FormatJSON {
		return formatter.FormatTo(cmd.OutOrStdout(), runs)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), runTable(runs))
}

// runTable renders runs as cli.Table.
type runTable []history.Run

func (t runTable) Headers() []string {
	return []string{"ID", "STARTED", "DURATION", "STATUS", "FILES", "SIZE", "PROMOTED", "QUARANTINED", "DELETED"}
}

func (t runTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		status := "ok"
		if !r.Succeeded() {
			status = fmt.Sprintf("%d errors", r.ErrorCount)
		}
		if r.DryRun {
			status += " (dry-run)"
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Second).String(),
			status,
			strconv.Itoa(r.Files),
			humanize.Bytes(uint64(r.Bytes)),
			strconv.Itoa(r.Promoted),
			strconv.Itoa(r.Quarantined),
			strconv.Itoa(r.Deleted),
		})
	}
	return rows
}

// errorTable renders the errors of one run as cli.Table.
type errorTable []history.RunError

func (t errorTable) Headers() []string {
	return []string{"TIME", "STAGE", "FILE", "MESSAGE"}
}

func (t errorTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{e.Time.Local().Format(time.DateTime), e.Stage, e.File, e.Message})
	}
	return rows
}
