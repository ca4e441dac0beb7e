package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/rotation"
	"brainstorm-hq/easybackup/pkg/telemetry/logging"
)

// Option configures a Runner.
type Option func(*Runner)

// WithDryRun previews every action instead of executing it. Mount and
// umount commands still run.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithCommander replaces the command runner.
func WithCommander(c Commander) Option {
	return func(r *Runner) { r.commander = c }
}

// WithPostgreSQLLister replaces the PostgreSQL database lister.
func WithPostgreSQLLister(l DatabaseLister) Option {
	return func(r *Runner) { r.pgLister = l }
}

// WithMySQLLister replaces the MySQL database lister.
func WithMySQLLister(l DatabaseLister) Option {
	return func(r *Runner) { r.myLister = l }
}

// WithClock replaces the source of the run timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithPreview sets where dry-run previews are written.
func WithPreview(w io.Writer) Option {
	return func(r *Runner) { r.preview = w }
}

// WithLogger replaces the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithRotationOptions passes extra options to the rotation engine.
func WithRotationOptions(opts ...rotation.Option) Option {
	return func(r *Runner) { r.rotationOpts = append(r.rotationOpts, opts...) }
}

// Runner executes backup runs for one configuration.
type Runner struct {
	cfg          *config.Config
	dryRun       bool
	commander    Commander
	pgLister     DatabaseLister
	myLister     DatabaseLister
	rotationOpts []rotation.Option
	preview      io.Writer
	now          func() time.Time
	logger       *slog.Logger
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		preview: os.Stderr,
		now:     time.Now,
		logger:  slog.Default().With("component", "backup"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.commander == nil {
		r.commander = NewShellCommander(r.dryRun, r.preview, r.logger)
	}
	if r.pgLister == nil {
		pg := cfg.PostgreSQL
		if pg.DSN != "" {
			r.pgLister = NewPgxLister(pg.DSN)
		} else {
			r.pgLister = NewPsqlLister(r.commander, pg.RootUser, pg.PsqlPath)
		}
	}
	if r.myLister == nil {
		my := cfg.MySQL
		r.myLister = NewMySQLLister(my.RootUser, my.RootPassword, my.Host, my.Port)
	}
	return r
}

// step is one stage of the pipeline after the target is ready.
type step struct {
	name    string
	enabled bool
	run     func(ctx context.Context, report *Report, ts time.Time)
}

// Run executes a full backup: umount, mount, dumps, rotation and a final
// umount. It always returns a report; failures are recorded in it.
func (r *Runner) Run(ctx context.Context) *Report {
	ts := r.now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: ts,
		DryRun:    r.dryRun,
	}
	ctx = logging.WithRunID(ctx, report.RunID)

	r.logger.InfoContext(ctx, "backup started",
		"timestamp", ts.Format(r.cfg.General.TimestampFormat),
		"dry_run", r.dryRun,
	)
	defer func() {
		report.FinishedAt = r.now()
		status := "successfully"
		if !report.Succeeded() {
			status = "with errors"
		}
		r.logger.InfoContext(ctx, "backup completed "+status,
			"errors", report.ErrorCount(),
			"files", len(report.Files),
			"duration", report.Duration(),
		)
	}()

	if !r.mount(ctx, report) {
		return report
	}

	target, err := r.prepareTarget(ctx)
	if err != nil {
		report.addError(StepTarget, target, err, r.now())
		r.finalUmount(ctx, report)
		return report
	}
	report.TargetFolder = target
	r.logger.InfoContext(ctx, "target folder ready", "target_folder", target)

	steps := []step{
		{StepDataFolders, r.cfg.DataFolders.Enabled, r.backupDataFolders},
		{StepPostgreSQL, r.cfg.PostgreSQL.Enabled, r.backupPostgreSQL},
		{StepMySQL, r.cfg.MySQL.Enabled, r.backupMySQL},
		{StepRotation, r.cfg.Rotation.Enabled, r.rotate},
	}
	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.addError(s.name, "", err, r.now())
			break
		}
		s.run(logging.WithStage(ctx, s.name), report, ts)
	}

	r.finalUmount(ctx, report)
	return report
}

// Rotate mounts the target storage, rotates existing backups regardless
// of rotation.enabled and unmounts again. No backup is taken.
func (r *Runner) Rotate(ctx context.Context) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		DryRun:    r.dryRun,
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	defer func() { report.FinishedAt = r.now() }()

	if !r.mount(ctx, report) {
		return report
	}
	r.rotate(logging.WithStage(ctx, StepRotation), report, report.StartedAt)
	r.finalUmount(ctx, report)
	return report
}

// mount unmounts a stale mount, then mounts the target storage. It reports
// whether the run may continue.
func (r *Runner) mount(ctx context.Context, report *Report) bool {
	// A stale mount from an earlier run is not an error.
	if err := r.runStorageCommand(ctx, r.cfg.General.UmountCommand); err != nil {
		r.logger.WarnContext(ctx, "initial umount failed", "error", err)
	}

	if err := r.runStorageCommand(logging.WithStage(ctx, StepMount), r.cfg.General.MountCommand); err != nil {
		report.addError(StepMount, "", fmt.Errorf("%w: %w", ErrMountFailed, err), r.now())
		return false
	}
	return true
}

func (r *Runner) runStorageCommand(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	// Storage commands run in dry-run mode too: the preview needs the
	// target mounted to be meaningful.
	return r.commander.Run(ctx, line, true)
}

func (r *Runner) finalUmount(ctx context.Context, report *Report) {
	// The final umount must run even when the run was cancelled.
	ctx = logging.WithStage(context.WithoutCancel(ctx), StepUmount)
	if err := r.runStorageCommand(ctx, r.cfg.General.UmountCommand); err != nil {
		report.addError(StepUmount, "", err, r.now())
	}
}

// prepareTarget resolves the target folder and makes sure it exists.
func (r *Runner) prepareTarget(ctx context.Context) (string, error) {
	target, err := r.cfg.General.TargetFolder()
	if err != nil {
		return "", err
	}

	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
		return target, nil
	case err == nil:
		return target, fmt.Errorf("target folder %q is not a directory", target)
	case !os.IsNotExist(err):
		return target, fmt.Errorf("failed to inspect target folder %q: %w", target, err)
	}

	if r.dryRun {
		fmt.Fprintf(r.preview, "[dry-run] mkdir -p %q\n", target)
		return target, nil
	}
	r.logger.InfoContext(ctx, "creating target folder", "target_folder", target)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return target, fmt.Errorf("unable to create target folder %q: %w", target, err)
	}
	return target, nil
}

func (r *Runner) backupDataFolders(ctx context.Context, report *Report, ts time.Time) {
	dc := r.cfg.DataFolders

	folders, err := CollectFolders(dc.Include, dc.Exclude)
	if err != nil {
		report.addError(StepDataFolders, "", err, r.now())
		return
	}
	r.logger.DebugContext(ctx, "collected data folders", "folders", folders)

	archives := make([]folderArchive, len(folders))
	for i, folder := range folders {
		archives[i] = folderArchive{
			folder: folder,
			dst:    OutputPath(report.TargetFolder, ts, r.cfg.General.TimestampFormat, FolderArchiveName(folder)),
		}
	}

	if r.dryRun {
		for _, a := range archives {
			fmt.Fprintf(r.preview, "[dry-run] tar chz -C %q -f %q %q\n",
				filepath.Dir(filepath.Clean(a.folder)), a.dst, filepath.Base(filepath.Clean(a.folder)))
		}
		return
	}

	results := make([]error, len(archives))
	var g errgroup.Group
	g.SetLimit(max(dc.Parallelism, 1))
	for i, a := range archives {
		g.Go(func() error {
			r.logger.InfoContext(ctx, "backing up data folder", "folder", a.folder, "file", a.dst)
			results[i] = ArchiveFolder(ctx, a.folder, a.dst, dc.CompressionLevel)
			return nil
		})
	}
	_ = g.Wait()

	for i, a := range archives {
		if results[i] != nil {
			r.logger.ErrorContext(ctx, "data folder backup failed", "folder", a.folder, "error", results[i])
			report.addError(StepDataFolders, a.folder, results[i], r.now())
			continue
		}
		report.Files = append(report.Files, newFile(KindDataFolder, a.folder, a.dst))
	}
}

func (r *Runner) backupPostgreSQL(ctx context.Context, report *Report, ts time.Time) {
	pg := r.cfg.PostgreSQL

	databases := r.listDatabases(ctx, report, StepPostgreSQL, r.pgLister, pg.Exclude)
	for _, db := range databases {
		dst := OutputPath(report.TargetFolder, ts, r.cfg.General.TimestampFormat, DumpName(KindPostgreSQL, db))
		r.logger.InfoContext(ctx, "backing up postgresql database", "database", db, "file", dst)

		argv := append(sudoPrefix(pg.RootUser), pg.PgDumpPath, db)
		if err := r.commander.Dump(ctx, argv, nil, dst, gzip.DefaultCompression); err != nil {
			report.addError(StepPostgreSQL, db, err, r.now())
			continue
		}
		if !r.dryRun {
			report.Files = append(report.Files, newFile(KindPostgreSQL, db, dst))
		}

		if pg.VacuumDB {
			argv := append(sudoPrefix(pg.RootUser), pg.VacuumDBPath, "-z", db)
			if err := r.commander.Exec(ctx, argv, nil); err != nil {
				report.addError(StepPostgreSQL, db, err, r.now())
			}
		}
	}
}

func (r *Runner) backupMySQL(ctx context.Context, report *Report, ts time.Time) {
	my := r.cfg.MySQL

	var env []string
	if my.RootPassword != "" {
		env = append(env, "MYSQL_PWD="+my.RootPassword)
	}

	databases := r.listDatabases(ctx, report, StepMySQL, r.myLister, my.Exclude)
	for _, db := range databases {
		dst := OutputPath(report.TargetFolder, ts, r.cfg.General.TimestampFormat, DumpName(KindMySQL, db))
		r.logger.InfoContext(ctx, "backing up mysql database", "database", db, "file", dst)

		argv := []string{
			my.MySQLDumpPath,
			"--host", my.Host,
			"--port", strconv.Itoa(my.Port),
			"--user", my.RootUser,
			db,
		}
		if err := r.commander.Dump(ctx, argv, env, dst, gzip.DefaultCompression); err != nil {
			report.addError(StepMySQL, db, err, r.now())
			continue
		}
		if !r.dryRun {
			report.Files = append(report.Files, newFile(KindMySQL, db, dst))
		}
	}
}

// listDatabases lists the databases of one server minus the excluded
// ones. Listing failures and empty servers are recorded.
func (r *Runner) listDatabases(ctx context.Context, report *Report, stepName string, lister DatabaseLister, exclude []string) []string {
	databases, err := lister.ListDatabases(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list databases", "error", err)
		report.addError(stepName, "", err, r.now())
		return nil
	}
	if len(databases) == 0 {
		r.logger.ErrorContext(ctx, "empty database list")
		report.addError(stepName, "", ErrEmptyDatabaseList, r.now())
		return nil
	}
	return filterDatabases(databases, exclude)
}

func (r *Runner) rotate(ctx context.Context, report *Report, _ time.Time) {
	rc, err := r.cfg.RotationEngineConfig(r.dryRun)
	if err != nil {
		report.addError(StepRotation, "", err, r.now())
		return
	}

	opts := append([]rotation.Option{
		rotation.WithClock(r.now),
		rotation.WithPreview(r.preview),
	}, r.rotationOpts...)

	result := rotation.NewEngine(rc, opts...).RotateAll(ctx)
	report.Rotation = result
	for _, rec := range result.Errors {
		report.Errors = append(report.Errors, ErrorRecord{
			Step:    StepRotation,
			Subject: rec.File,
			Err:     rec,
			Time:    rec.Time,
		})
	}
}

func newFile(kind, source, path string) File {
	f := File{Kind: kind, Source: source, Path: path}
	if info, err := os.Stat(path); err == nil {
		f.Size = info.Size()
	}
	return f
}
