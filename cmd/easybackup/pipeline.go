package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"brainstorm-hq/easybackup/pkg/backup"
	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/history"
	"brainstorm-hq/easybackup/pkg/notify"
	"brainstorm-hq/easybackup/pkg/report"
	"brainstorm-hq/easybackup/pkg/telemetry/metrics"
)

// pipeline runs one backup followed by its reporting: metrics, history
// and notification.
type pipeline struct {
	cfg       *config.Config
	dryRun    bool
	collector *metrics.Collector
	out       io.Writer
	logger    *slog.Logger

	// runnerOpts are appended to the backup runner options.
	runnerOpts []backup.Option
}

func newPipeline(cfg *config.Config, dryRun bool, collector *metrics.Collector, out io.Writer) *pipeline {
	return &pipeline{
		cfg:       cfg,
		dryRun:    dryRun,
		collector: collector,
		out:       out,
		logger:    slog.Default().With("component", "pipeline"),
	}
}

// run performs the backup. The returned error is non-nil when the run
// recorded any failure.
func (p *pipeline) run(ctx context.Context) (*backup.Report, error) {
	opts := append([]backup.Option{
		backup.WithDryRun(p.dryRun),
		backup.WithPreview(p.out),
	}, p.runnerOpts...)
	rep := backup.NewRunner(p.cfg, opts...).Run(ctx)

	tree := p.buildTree()
	p.recordMetrics(rep, tree)
	p.recordHistory(ctx, rep)

	treeText := ""
	if tree != nil && p.cfg.Notify.IncludeTree {
		treeText = tree.String()
	}
	commander := backup.NewShellCommander(p.dryRun, p.out, p.logger)
	if err := notify.New(p.cfg.Notify, commander).Notify(ctx, rep, treeText); err != nil {
		p.logger.ErrorContext(ctx, "failed to send notification", "error", err)
	}

	if rep.Succeeded() {
		p.logger.InfoContext(ctx, "backup completed",
			"run_id", rep.RunID,
			"files", len(rep.Files),
			"duration", rep.Duration().Round(time.Millisecond),
		)
		return rep, nil
	}
	return rep, fmt.Errorf("backup completed with %d errors: %w", rep.ErrorCount(), rep.Err())
}

// buildTree lists the tiers, nil when the target cannot be listed.
func (p *pipeline) buildTree() *report.Tree {
	root, err := p.cfg.General.ResolveTargetRoot()
	if err != nil {
		p.logger.Warn("failed to resolve target root", "error", err)
		return nil
	}
	tree, err := report.Build(root, p.cfg.Rotation.TierFolders())
	if err != nil {
		p.logger.Warn("failed to list backup tiers", "error", err)
		return nil
	}
	return tree
}

func (p *pipeline) recordMetrics(rep *backup.Report, tree *report.Tree) {
	if p.collector == nil {
		return
	}
	for kind, count := range rep.FilesByKind() {
		p.collector.RecordBackupFiles(kind, count)
	}
	p.collector.ObserveRotation(rep.Rotation)
	p.collector.RecordRun(rep.FinishedAt, rep.Duration(), rep.ErrorCount())
	if tree != nil && tree.FreeKnown {
		p.collector.SetTargetFree(tree.Free)
	}
	if err := p.collector.WriteTextfile(p.cfg.Telemetry.Metrics.TextfilePath); err != nil {
		p.logger.Error("failed to write metrics textfile", "error", err)
	}
}

// recordHistory journals the run. Dry runs are not recorded.
func (p *pipeline) recordHistory(ctx context.Context, rep *backup.Report) {
	hc := p.cfg.History
	if !hc.Enabled || p.dryRun {
		return
	}

	store, err := history.Open(hc.Path)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to open run history", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, rep); err != nil {
		p.logger.ErrorContext(ctx, "failed to record run", "error", err)
		return
	}
	if hc.RetentionDays > 0 {
		cutoff := rep.StartedAt.AddDate(0, 0, -hc.RetentionDays)
		if _, err := store.Prune(ctx, cutoff); err != nil {
			p.logger.ErrorContext(ctx, "failed to prune run history", "error", err)
		}
	}
}
