package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	underlyingErr := errors.New("general.target_root: target root is required")
	err := NewConfigError("easybackup.yaml", underlyingErr)

	expected := "config error in easybackup.yaml: general.target_root: target root is required"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with ConfigError.Unwrap()")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("run", underlyingErr)

	expected := "command run failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"failure", errors.New("backup completed with 2 errors"), ExitFailure},
		{"config", NewConfigError("c.yaml", errors.New("bad")), ExitConfigError},
		{"wrapped config", fmt.Errorf("startup: %w", NewConfigError("c.yaml", errors.New("bad"))), ExitConfigError},
		{"command", NewCommandError("rotate", errors.New("bad")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
