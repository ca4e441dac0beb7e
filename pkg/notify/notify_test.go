package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainstorm-hq/easybackup/pkg/backup"
	"brainstorm-hq/easybackup/pkg/config"
)

type recordingRunner struct {
	lines []string
	force []bool
	err   error
}

func (r *recordingRunner) Run(_ context.Context, line string, force bool) error {
	r.lines = append(r.lines, line)
	r.force = append(r.force, force)
	return r.err
}

var notifyTime = time.Date(2024, time.January, 10, 2, 15, 0, 0, time.UTC)

func newTestNotifier(cfg config.NotifyConfig, runner CommandRunner) *Notifier {
	return New(cfg, runner,
		WithClock(func() time.Time { return notifyTime }),
		WithHostname(func() (string, error) { return "web01", nil }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func failedReport() *backup.Report {
	return &backup.Report{Errors: []backup.ErrorRecord{
		{Step: backup.StepPostgreSQL, Subject: "shop", Err: errors.New(`command failed: "pg_dump shop"`)},
		{Step: backup.StepUmount, Err: errors.New("device busy")},
	}}
}

func TestNotify_Success(t *testing.T) {
	runner := &recordingRunner{}
	n := newTestNotifier(config.NotifyConfig{
		OnSuccess: `mail -s "{title}" {mailto} <<< "{details}"`,
		OnFailure: `false`,
		Mailto:    []string{"ops@example.com", " admin@example.com"},
	}, runner)

	require.NoError(t, n.Notify(context.Background(), &backup.Report{}, ""))

	require.Len(t, runner.lines, 1)
	title := "[web01] 2024-01-10_02-15-00 - easybackup completed with no errors"
	assert.Equal(t, `mail -s "`+title+`" ops@example.com,admin@example.com <<< "`+title+`"`, runner.lines[0])
	assert.False(t, runner.force[0], "notifications are previewed in dry-run mode")
}

func TestNotify_Failure(t *testing.T) {
	runner := &recordingRunner{}
	n := newTestNotifier(config.NotifyConfig{
		OnSuccess: "true",
		OnFailure: `notify-send "{title}" "{details}"`,
	}, runner)

	require.NoError(t, n.Notify(context.Background(), failedReport(), "[backups]"))

	require.Len(t, runner.lines, 1)
	assert.Equal(t,
		`notify-send "[web01] 2024-01-10_02-15-00 - *** easybackup failed with errors ***" `+
			`"ERROR: postgresql \"shop\": command failed: \"pg_dump shop\"`+"\n"+
			`ERROR: umount: device busy`+"\n\n"+`[backups]"`,
		runner.lines[0])
}

func TestNotify_NotConfigured(t *testing.T) {
	runner := &recordingRunner{}
	n := newTestNotifier(config.NotifyConfig{OnSuccess: "true"}, runner)

	require.NoError(t, n.Notify(context.Background(), failedReport(), ""))
	assert.Empty(t, runner.lines)
}

func TestNotify_Errors(t *testing.T) {
	t.Run("invalid recipient", func(t *testing.T) {
		runner := &recordingRunner{}
		n := newTestNotifier(config.NotifyConfig{OnSuccess: "mail {mailto}", Mailto: []string{"nobody"}}, runner)

		assert.Error(t, n.Notify(context.Background(), &backup.Report{}, ""))
		assert.Empty(t, runner.lines)
	})

	t.Run("command failure", func(t *testing.T) {
		runner := &recordingRunner{err: errors.New("exit status 1")}
		n := newTestNotifier(config.NotifyConfig{OnSuccess: "mail"}, runner)

		err := n.Notify(context.Background(), &backup.Report{}, "")
		assert.ErrorContains(t, err, "notification failed")
	})

	t.Run("hostname failure", func(t *testing.T) {
		runner := &recordingRunner{}
		n := New(config.NotifyConfig{OnSuccess: "echo {title}"}, runner,
			WithClock(func() time.Time { return notifyTime }),
			WithHostname(func() (string, error) { return "", errors.New("no hostname") }),
		)

		require.NoError(t, n.Notify(context.Background(), &backup.Report{}, ""))
		assert.Contains(t, runner.lines[0], "[unknown]")
	})
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`say "hi"`, `say \"hi\"`},
		{`$(rm -rf /)`, `\$(rm -rf /)`},
		{"`id`", "\\`id\\`"},
		{`C:\path`, `C:\\path`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	got := Render(`mail -s "{title}" {mailto} <<< "{details}" # {title}`, `a"b`, "d", "x@example.com")
	assert.Equal(t, `mail -s "a\"b" x@example.com <<< "d" # a\"b`, got)
}
