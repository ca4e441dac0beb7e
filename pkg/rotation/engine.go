package rotation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Config contains the tier layout of one target folder.
type Config struct {
	// TargetFolder is the absolute path holding all tier directories.
	TargetFolder string

	// Daily, Weekly, Monthly and Yearly are tier paths relative to
	// TargetFolder.
	Daily   string
	Weekly  string
	Monthly string
	Yearly  string

	// Quarantine is the quarantine path relative to TargetFolder. Empty
	// disables quarantine: files are deleted instead of quarantined.
	Quarantine string

	// QuarantineMaxAge is how many days quarantined files are kept.
	// Values <= 0 fall back to DefaultQuarantineMaxAge.
	QuarantineMaxAge int

	// WeekStart names the first day of the week, "monday" or "sunday".
	// Default: "monday"
	WeekStart string

	// DryRun previews actions without touching the filesystem.
	DryRun bool
}

// DefaultConfig returns the default tier layout below target.
func DefaultConfig(target string) Config {
	return Config{
		TargetFolder:     target,
		Daily:            "daily",
		Weekly:           "weekly",
		Monthly:          "monthly",
		Yearly:           "yearly",
		Quarantine:       "quarantine",
		QuarantineMaxAge: DefaultQuarantineMaxAge,
		WeekStart:        "monday",
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS replaces the filesystem the engine operates on.
func WithFS(fsys FS) Option {
	return func(e *Engine) { e.fs = fsys }
}

// WithClock replaces the clock used to compute file ages and quarantine
// stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPreview sets where dry-run actions are written.
func WithPreview(w io.Writer) Option {
	return func(e *Engine) { e.preview = w }
}

// WithLogger replaces the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine runs the daily -> weekly -> monthly -> yearly -> quarantine
// pipeline over one target folder.
type Engine struct {
	config  Config
	fs      FS
	now     func() time.Time
	preview io.Writer
	logger  *slog.Logger
}

// NewEngine creates a rotation engine.
func NewEngine(config Config, opts ...Option) *Engine {
	e := &Engine{
		config:  config,
		fs:      OSFS{},
		now:     time.Now,
		preview: io.Discard,
		logger:  slog.Default().With("component", "rotation"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// paths holds the absolute tier directories of one run.
type paths struct {
	target     string
	daily      string
	weekly     string
	monthly    string
	yearly     string
	quarantine string
}

// RotateAll runs a full rotation. Structural failures (invalid target
// folder, tier paths outside it, missing daily folder) abort the run before
// any file is touched and count as a single error. Per-file failures are
// recorded and the run carries on with the next file and the next tier.
func (e *Engine) RotateAll(ctx context.Context) *Result {
	today := e.now()
	result := &Result{
		StartedAt: today,
		DryRun:    e.config.DryRun,
	}

	e.logger.Info("file rotation started",
		"target_folder", e.config.TargetFolder,
		"dry_run", e.config.DryRun,
	)

	defer func() {
		result.FinishedAt = e.now()
		status := "successfully"
		if !result.Succeeded() {
			status = "with errors"
		}
		e.logger.Info("file rotation completed "+status,
			"errors", result.ErrorCount(),
			"actions", result.Actions(),
			"duration", result.Duration(),
		)
	}()

	p, err := e.resolve()
	if err != nil {
		e.fatal(result, err)
		return result
	}

	weekStart, err := ParseWeekStart(e.config.WeekStart)
	if err != nil {
		e.fatal(result, err)
		return result
	}

	if err := e.checkDaily(p.daily); err != nil {
		e.fatal(result, err)
		return result
	}

	fsys := e.fs
	if e.config.DryRun {
		fsys = newOverlayFS(e.fs)
	}
	actor := NewActor(fsys, e.config.DryRun, e.preview, today, e.logger)

	for _, dir := range []string{p.weekly, p.monthly, p.yearly, p.quarantine} {
		if dir == "" {
			continue
		}
		if _, err := fsys.Stat(dir); err == nil {
			continue
		}
		e.logger.Info("creating folder", "folder", dir)
		if err := actor.mkdirAll(dir); err != nil {
			e.logger.Error("failed to create folder", "folder", dir, "error", err)
			result.Errors = append(result.Errors, ErrorRecord{
				Stage: StageSetup,
				Op:    OpMkdir,
				File:  dir,
				Err:   err,
				Time:  e.now(),
			})
		}
	}

	pool := NewPool(fsys, today, weekStart)
	rotator := &tierRotator{
		pool:   pool,
		actor:  actor,
		logger: e.logger,
	}

	steps := []struct {
		transition  Transition
		source      string
		destination string
	}{
		{DailyToWeekly, p.daily, p.weekly},
		{WeeklyToMonthly, p.weekly, p.monthly},
		{MonthlyToYearly, p.monthly, p.yearly},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, ErrorRecord{
				Stage: step.transition.Name,
				Op:    OpScan,
				Err:   err,
				Time:  e.now(),
			})
			return result
		}
		result.addTier(rotator.rotate(step.transition, step.source, step.destination, p.quarantine))
	}

	reaper := &quarantineReaper{
		pool:   pool,
		actor:  actor,
		logger: e.logger,
	}
	result.Reap = reaper.reap(p.quarantine, e.quarantineMaxAge())
	result.Errors = append(result.Errors, result.Reap.Errors...)

	return result
}

func (e *Engine) fatal(result *Result, err error) {
	e.logger.Error("file rotation aborted", "error", err)
	result.Errors = append(result.Errors, ErrorRecord{
		Stage: StageSetup,
		Op:    OpScan,
		Err:   err,
		Time:  e.now(),
	})
}

// resolve turns the configured tier paths into absolute directories and
// verifies they all live inside the target folder.
func (e *Engine) resolve() (paths, error) {
	target := e.config.TargetFolder
	if !filepath.IsAbs(target) {
		return paths{}, &FatalError{Path: target, Err: ErrTargetNotAbsolute}
	}
	target = filepath.Clean(target)

	info, err := e.fs.Stat(target)
	if err != nil {
		return paths{}, &FatalError{Path: target, Err: err}
	}
	if !info.IsDir() {
		return paths{}, &FatalError{Path: target, Err: ErrTargetNotDirectory}
	}

	p := paths{target: target}
	tiers := []struct {
		name string
		sub  string
		dst  *string
	}{
		{"daily", e.config.Daily, &p.daily},
		{"weekly", e.config.Weekly, &p.weekly},
		{"monthly", e.config.Monthly, &p.monthly},
		{"yearly", e.config.Yearly, &p.yearly},
		{"quarantine", e.config.Quarantine, &p.quarantine},
	}
	seen := make(map[string]string, len(tiers))
	for _, t := range tiers {
		if t.sub == "" {
			if t.name == "quarantine" {
				continue
			}
			return paths{}, &FatalError{Path: target, Err: fmt.Errorf("%s folder is not configured", t.name)}
		}
		dir, err := ResolveTier(target, t.sub)
		if err != nil {
			return paths{}, &FatalError{Path: t.sub, Err: err}
		}
		if other, ok := seen[dir]; ok {
			return paths{}, &FatalError{Path: dir, Err: fmt.Errorf("%w: %s and %s", ErrTierConflict, other, t.name)}
		}
		seen[dir] = t.name
		*t.dst = dir
	}

	return p, nil
}

func (e *Engine) checkDaily(daily string) error {
	info, err := e.fs.Stat(daily)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FatalError{Path: daily, Err: ErrDailyNotFound}
		}
		return &FatalError{Path: daily, Err: err}
	}
	if !info.IsDir() {
		return &FatalError{Path: daily, Err: ErrDailyNotFound}
	}
	return nil
}

// ParseWeekStart maps a configured week start to a weekday. An empty
// value means Monday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unsupported week start %q (expected monday or sunday)", s)
	}
}

func (e *Engine) quarantineMaxAge() int {
	if e.config.QuarantineMaxAge <= 0 {
		return DefaultQuarantineMaxAge
	}
	return e.config.QuarantineMaxAge
}

// ResolveTier joins a tier path to target and rejects results that are
// not strictly inside target.
func ResolveTier(target, tier string) (string, error) {
	dir := tier
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(target, dir)
	}
	dir = filepath.Clean(dir)

	rel, err := filepath.Rel(target, dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathEscapesTarget, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesTarget, tier)
	}
	return dir, nil
}
