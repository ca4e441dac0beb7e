package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/telemetry/health"
	"brainstorm-hq/easybackup/pkg/telemetry/metrics"
)

// RunFunc performs one backup with the current configuration.
type RunFunc func(ctx context.Context, cfg *config.Config) error

// Option configures a Daemon.
type Option func(*Daemon)

// WithMetrics serves collector on telemetry.metrics.listen_address.
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Daemon) { d.collector = collector }
}

// WithLogger replaces the daemon logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Daemon) { d.logger = logger }
}

// WithDebounceInterval sets the configuration reload quiet period.
func WithDebounceInterval(interval time.Duration) Option {
	return func(d *Daemon) { d.debounce = interval }
}

// WithConfigSource replaces how the current configuration is read and
// reloaded. It defaults to the config package singleton.
func WithConfigSource(get func() *config.Config, reload func(path string) error) Option {
	return func(d *Daemon) {
		d.getConfig = get
		d.reloadConfig = reload
	}
}

// Daemon schedules backups until its context is cancelled.
type Daemon struct {
	configPath   string
	run          RunFunc
	collector    *metrics.Collector
	logger       *slog.Logger
	debounce     time.Duration
	getConfig    func() *config.Config
	reloadConfig func(path string) error

	scheduler *Scheduler
	server    *MetricsServer
	checker   *health.Checker

	mu      sync.Mutex
	lastErr error
}

// New creates a daemon running run on the configured schedule.
func New(configPath string, run RunFunc, opts ...Option) *Daemon {
	d := &Daemon{
		configPath:   configPath,
		run:          run,
		logger:       slog.Default(),
		debounce:     DefaultDebounceInterval,
		getConfig:    config.GetConfig,
		reloadConfig: config.ReloadConfig,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.scheduler = NewScheduler(d.job, d.logger)

	d.checker = health.New(0)
	d.checker.RegisterCheck(health.CheckScheduler, health.SchedulerCheck(d.scheduler.IsRunning))
	d.checker.RegisterCheck(health.CheckLastBackup, health.LastBackupCheck(d.LastError))
	return d
}

// Health returns the checker served on /health and /ready.
func (d *Daemon) Health() *health.Checker {
	return d.checker
}

// LastError returns the error of the last scheduled backup, nil when it
// succeeded or none ran yet.
func (d *Daemon) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Scheduler returns the backup scheduler.
func (d *Daemon) Scheduler() *Scheduler {
	return d.scheduler
}

// MetricsAddr returns the address metrics are served on, empty when
// the endpoint is disabled.
func (d *Daemon) MetricsAddr() string {
	if d.server == nil {
		return ""
	}
	return d.server.Addr()
}

// Run starts the schedule and blocks until ctx is cancelled or the
// metrics server fails.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.getConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	errCh := make(chan error, 1)

	mc := cfg.Telemetry.Metrics
	if d.collector != nil && mc.Enabled && mc.ListenAddress != "" {
		d.server = NewMetricsServer(mc.ListenAddress, mc.Path, d.collector.Handler(), d.checker, d.logger)
		if err := d.server.Start(errCh); err != nil {
			return err
		}
	}

	var watcher *ConfigWatcher
	if cfg.Schedule.WatchConfig {
		var err error
		watcher, err = NewConfigWatcher(d.configPath, d.debounce, d.logger)
		if err != nil {
			return multierr.Append(err, d.shutdownServer())
		}
		go func() {
			if err := watcher.Watch(ctx, d.reload); err != nil {
				d.logger.Error("configuration watcher stopped", "error", err)
			}
		}()
	}

	if err := d.scheduler.Start(ctx, cfg.Schedule.Cron); err != nil {
		return multierr.Combine(err, d.stopWatcher(watcher), d.shutdownServer())
	}
	if next := d.scheduler.NextRun(); next != nil {
		d.logger.Info("next backup scheduled", "at", next.Format(time.RFC3339))
	}

	if cfg.Schedule.RunOnStart {
		go d.scheduler.RunNow(ctx)
	}

	var runErr error
	select {
	case <-ctx.Done():
		d.logger.Info("shutting down daemon")
	case runErr = <-errCh:
		d.logger.Error("daemon failed", "error", runErr)
	}

	d.scheduler.Stop()
	return multierr.Combine(runErr, d.stopWatcher(watcher), d.shutdownServer())
}

func (d *Daemon) job(ctx context.Context) {
	cfg := d.getConfig()
	err := d.run(ctx, cfg)
	if err != nil {
		d.logger.Error("scheduled backup failed", "error", err)
	}

	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}

// reload swaps the configuration and applies a changed schedule.
func (d *Daemon) reload() error {
	if err := d.reloadConfig(d.configPath); err != nil {
		return err
	}
	cfg := d.getConfig()
	if err := d.scheduler.Reschedule(cfg.Schedule.Cron); err != nil {
		return err
	}
	d.logger.Info("configuration reloaded")
	return nil
}

func (d *Daemon) stopWatcher(w *ConfigWatcher) error {
	if w == nil {
		return nil
	}
	return w.Stop()
}

func (d *Daemon) shutdownServer() error {
	if d.server == nil {
		return nil
	}
	return d.server.Shutdown(context.Background())
}
