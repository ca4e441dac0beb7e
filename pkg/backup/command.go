package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxOutput bounds the command output kept for error messages.
const maxOutput = 4096

// Commander runs the external programs a backup depends on.
type Commander interface {
	// Run executes a shell command line. In dry-run mode the line is only
	// previewed unless force is set.
	Run(ctx context.Context, line string, force bool) error

	// Exec executes argv with extra environment entries. It is previewed
	// in dry-run mode.
	Exec(ctx context.Context, argv, env []string) error

	// Output executes argv and returns its standard output. Read-only
	// queries run in dry-run mode too.
	Output(ctx context.Context, argv []string) ([]byte, error)

	// Dump executes argv and streams its standard output through gzip
	// into dst. It is previewed in dry-run mode.
	Dump(ctx context.Context, argv, env []string, dst string, level int) error
}

// ShellCommander runs commands on the local host.
type ShellCommander struct {
	dryRun  bool
	preview io.Writer
	logger  *slog.Logger
}

// NewShellCommander creates a commander. Dry-run previews are written to
// preview, os.Stderr when nil.
func NewShellCommander(dryRun bool, preview io.Writer, logger *slog.Logger) *ShellCommander {
	if preview == nil {
		preview = os.Stderr
	}
	if logger == nil {
		logger = slog.Default().With("component", "backup")
	}
	return &ShellCommander{dryRun: dryRun, preview: preview, logger: logger}
}

// Run implements Commander.
func (c *ShellCommander) Run(ctx context.Context, line string, force bool) error {
	if c.dryRun && !force {
		c.previewLine(line)
		return nil
	}

	c.logger.Debug("running command", "command", line)
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	out, err := cmd.CombinedOutput()
	if err != nil {
		c.logger.Error("command failed", "command", line, "error", err)
		return &CommandError{Command: line, Output: trimOutput(out), Err: err}
	}
	if len(out) > 0 {
		c.logger.Debug("command output", "command", line, "output", trimOutput(out))
	}
	return nil
}

// Exec implements Commander.
func (c *ShellCommander) Exec(ctx context.Context, argv, env []string) error {
	line := strings.Join(argv, " ")
	if c.dryRun {
		c.previewLine(line)
		return nil
	}

	c.logger.Debug("running command", "command", line)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &CommandError{Command: line, Output: trimOutput(out), Err: err}
	}
	return nil
}

// Output implements Commander.
func (c *ShellCommander) Output(ctx context.Context, argv []string) ([]byte, error) {
	line := strings.Join(argv, " ")
	c.logger.Debug("running query", "command", line)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &CommandError{Command: line, Output: trimOutput(stderr.Bytes()), Err: err}
	}
	return out, nil
}

// Dump implements Commander. A failed dump leaves no file behind.
func (c *ShellCommander) Dump(ctx context.Context, argv, env []string, dst string, level int) (err error) {
	line := strings.Join(argv, " ")
	if c.dryRun {
		c.previewLine(fmt.Sprintf("%s | gzip > %q", line, dst))
		return nil
	}

	c.logger.Debug("running dump", "command", line, "file", dst)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dst, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %q: %w", dst, cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	zw, err := gzip.NewWriterLevel(f, level)
	if err != nil {
		return fmt.Errorf("invalid compression level %d: %w", level, err)
	}
	zw.Name = strings.TrimSuffix(filepath.Base(dst), ".gz")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = zw
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = zw.Close()
		return &CommandError{Command: line, Output: trimOutput(stderr.Bytes()), Err: err}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress %q: %w", dst, err)
	}
	return nil
}

func (c *ShellCommander) previewLine(line string) {
	fmt.Fprintf(c.preview, "[dry-run] %s\n", line)
}

func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutput {
		s = s[:maxOutput] + "..."
	}
	return s
}
