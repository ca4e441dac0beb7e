package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"scheduler":   func(context.Context) error { return nil },
				"last_backup": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			wantChecks: map[string]string{"scheduler": StatusOK, "last_backup": StatusOK},
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"scheduler":   func(context.Context) error { return nil },
				"last_backup": func(context.Context) error { return errors.New("2 errors") },
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"scheduler": StatusOK, "last_backup": StatusUnhealthy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			status := c.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}

			got := make(map[string]string)
			for name, result := range status.Checks {
				got[name] = result.Status
			}
			if !reflect.DeepEqual(got, tt.wantChecks) {
				t.Errorf("Checks = %v, want %v", got, tt.wantChecks)
			}
		})
	}
}

func TestCheckTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != "health check timeout" {
		t.Errorf("result = %+v, want timeout", result)
	}
}

func TestListChecks(t *testing.T) {
	c := New(0)
	c.RegisterCheck("b", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return errors.New("replaced") })

	if got := c.ListChecks(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ListChecks() = %v", got)
	}
}

func TestHandlers(t *testing.T) {
	c := New(0)
	failing := true
	c.RegisterCheck("last_backup", func(context.Context) error {
		if failing {
			return errors.New("backup failed")
		}
		return nil
	})

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		method   string
		failing  bool
		wantCode int
		wantBody string
	}{
		{"liveness", c.LivenessHandler(), http.MethodGet, true, http.StatusOK, StatusOK},
		{"readiness degraded", c.ReadinessHandler(), http.MethodGet, true, http.StatusServiceUnavailable, StatusDegraded},
		{"readiness ready", c.ReadinessHandler(), http.MethodGet, false, http.StatusOK, StatusReady},
		{"head", c.ReadinessHandler(), http.MethodHead, false, http.StatusOK, ""},
		{"post", c.LivenessHandler(), http.MethodPost, false, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing = tt.failing
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody == "" {
				return
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if status.Status != tt.wantBody {
				t.Errorf("status = %q, want %q", status.Status, tt.wantBody)
			}
		})
	}
}

func TestDaemonChecks(t *testing.T) {
	running := false
	var lastErr error

	c := New(0)
	c.RegisterCheck(CheckScheduler, SchedulerCheck(func() bool { return running }))
	c.RegisterCheck(CheckLastBackup, LastBackupCheck(func() error { return lastErr }))

	if got := c.ListChecks(); !reflect.DeepEqual(got, []string{CheckLastBackup, CheckScheduler}) {
		t.Fatalf("ListChecks() = %v", got)
	}

	status := c.CheckReadiness(context.Background())
	if status.Status != StatusDegraded {
		t.Errorf("stopped scheduler: Status = %q, want %q", status.Status, StatusDegraded)
	}
	if got := status.Checks[CheckScheduler].Message; got != "scheduler is not running" {
		t.Errorf("scheduler message = %q", got)
	}
	if got := status.Checks[CheckLastBackup].Status; got != StatusOK {
		t.Errorf("no backup yet: last_backup = %q, want %q", got, StatusOK)
	}

	running = true
	lastErr = errors.New("mount failed")
	status = c.CheckReadiness(context.Background())
	if got := status.Checks[CheckLastBackup].Message; got != "last backup failed: mount failed" {
		t.Errorf("last_backup message = %q", got)
	}

	lastErr = nil
	if status := c.CheckReadiness(context.Background()); status.Status != StatusReady {
		t.Errorf("Status = %q, want %q", status.Status, StatusReady)
	}
}
