package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the work run on every tick.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	job     Job
	logger  *slog.Logger
	mu      sync.Mutex
	cron    *cron.Cron
	entry   cron.EntryID
	spec    string
	ctx     context.Context
	running bool

	// busy is held while the job runs.
	busy sync.Mutex
}

// NewScheduler creates a scheduler for job.
func NewScheduler(job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "daemon.scheduler")
	return &Scheduler{
		job:    job,
		logger: logger,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
	}
}

// Start schedules the job with a standard 5-field cron expression.
// Jobs receive ctx and the scheduler stops when it is cancelled.
//
// Common cron expressions:
//   - "0 2 * * *"    - Daily at 2 AM
//   - "0 */6 * * *"  - Every 6 hours
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	entry, err := s.cron.AddFunc(spec, func() { s.RunNow(ctx) })
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	s.entry, s.spec, s.ctx = entry, spec, ctx

	s.cron.Start()
	s.running = true
	s.logger.Info("backup scheduler started", "schedule", spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Reschedule replaces the cron expression of a running scheduler.
func (s *Scheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("scheduler not running")
	}
	if spec == s.spec {
		return nil
	}

	ctx := s.ctx
	entry, err := s.cron.AddFunc(spec, func() { s.RunNow(ctx) })
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	s.cron.Remove(s.entry)
	s.entry, s.spec = entry, spec

	s.logger.Info("backup schedule changed", "schedule", spec)
	return nil
}

// RunNow runs the job synchronously unless it is already running. It
// reports whether the job ran.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	if !s.busy.TryLock() {
		s.logger.Warn("backup still running, skipping")
		return false
	}
	defer s.busy.Unlock()

	if ctx.Err() != nil {
		return false
	}

	start := time.Now()
	s.logger.Info("starting scheduled backup")
	s.job(ctx)
	s.logger.Info("scheduled backup finished", "duration", time.Since(start))
	return true
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		// Wait for a run started outside the cron loop.
		s.busy.Lock()
		s.busy.Unlock() //nolint:staticcheck
		s.running = false
		s.logger.Info("backup scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run, nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entry := s.cron.Entry(s.entry)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
