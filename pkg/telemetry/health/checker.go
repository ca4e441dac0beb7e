package health

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// Names of the checks the daemon registers.
const (
	// CheckScheduler fails while the cron scheduler is stopped, e.g.
	// during shutdown or after a reload with an invalid schedule.
	CheckScheduler = "scheduler"

	// CheckLastBackup fails when the most recent scheduled backup
	// recorded an error. It passes before the first run.
	CheckLastBackup = "last_backup"
)

// Check statuses.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a single check when New is given zero.
const DefaultCheckTimeout = 5 * time.Second

var errCheckTimeout = errors.New("health check timeout")

// CheckFunc reports a problem with one part of the daemon. A nil error
// means healthy.
type CheckFunc func(ctx context.Context) error

// SchedulerCheck builds the scheduler check from the scheduler's state.
func SchedulerCheck(running func() bool) CheckFunc {
	return func(context.Context) error {
		if !running() {
			return errors.New("scheduler is not running")
		}
		return nil
	}
}

// LastBackupCheck builds the last_backup check from the error of the
// latest scheduled backup.
func LastBackupCheck(lastErr func() error) CheckFunc {
	return func(context.Context) error {
		if err := lastErr(); err != nil {
			return errors.New("last backup failed: " + err.Error())
		}
		return nil
	}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	// Status is StatusOK or StatusUnhealthy.
	Status string `json:"status"`

	// Message describes the failure.
	Message string `json:"message,omitempty"`

	Duration time.Duration `json:"duration_ms,omitempty"`
}

// HealthStatus is the body served on /health and /ready.
type HealthStatus struct {
	// Status is StatusOK for liveness, StatusReady or StatusDegraded for
	// readiness.
	Status string `json:"status"`

	// Checks is only filled for readiness.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Checker holds the daemon's named checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New returns a Checker whose checks each get timeout to answer.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// RegisterCheck adds check under name, replacing an earlier one.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// CheckLiveness reports that the process is running. A failed backup
// does not make the daemon dead.
func (c *Checker) CheckLiveness(context.Context) HealthStatus {
	return HealthStatus{Status: StatusOK, Timestamp: time.Now()}
}

// CheckReadiness runs every check concurrently. The daemon is degraded
// as soon as one check fails.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(checks))
		status  = StatusReady
	)
	for name, check := range checks {
		wg.Go(func() {
			res := c.run(ctx, check)
			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if res.Status == StatusUnhealthy {
				status = StatusDegraded
			}
		})
	}
	wg.Wait()

	return HealthStatus{Status: status, Checks: results, Timestamp: time.Now()}
}

func (c *Checker) run(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = errCheckTimeout
	}

	res := CheckResult{Status: StatusOK, Duration: time.Since(start)}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Message = err.Error()
	}
	return res
}

// ListChecks returns the registered check names in sorted order.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.checks))
}
