// Package notify reports the outcome of a backup run through user
// supplied shell commands, typically a mail client:
//
//	on_failure: 'mail -s "{title}" {mailto} <<< "{details}"'
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mcnijman/go-emailaddress"

	"brainstorm-hq/easybackup/pkg/backup"
	"brainstorm-hq/easybackup/pkg/config"
)

// TitleTimeLayout formats the time in notification titles.
const TitleTimeLayout = "2006-01-02_15-04-05"

// Messages used in notification titles.
const (
	SuccessMessage = "easybackup completed with no errors"
	FailureMessage = "*** easybackup failed with errors ***"
)

// CommandRunner runs a shell command line. backup.Commander satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, line string, force bool) error
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock replaces the source of the title timestamp.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// WithHostname replaces the host name lookup.
func WithHostname(hostname func() (string, error)) Option {
	return func(n *Notifier) { n.hostname = hostname }
}

// WithLogger replaces the notifier logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

// Notifier renders and runs the notification commands.
type Notifier struct {
	cfg      config.NotifyConfig
	runner   CommandRunner
	now      func() time.Time
	hostname func() (string, error)
	logger   *slog.Logger
}

// New creates a notifier for cfg running commands through runner.
func New(cfg config.NotifyConfig, runner CommandRunner, opts ...Option) *Notifier {
	n := &Notifier{
		cfg:      cfg,
		runner:   runner,
		now:      time.Now,
		hostname: os.Hostname,
		logger:   slog.Default().With("component", "notify"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify runs the success or failure command for report. tree is
// appended to the details when not empty. Nothing happens when the
// matching command is not configured.
func (n *Notifier) Notify(ctx context.Context, report *backup.Report, tree string) error {
	template, message := n.cfg.OnSuccess, SuccessMessage
	if !report.Succeeded() {
		template, message = n.cfg.OnFailure, FailureMessage
	}
	if template == "" {
		return nil
	}

	host, err := n.hostname()
	if err != nil {
		host = "unknown"
	}
	title := Title(host, n.now(), message)
	details := Details(title, report, tree)

	mailto, err := Recipients(n.cfg.Mailto)
	if err != nil {
		return err
	}

	line := Render(template, title, details, mailto)
	n.logger.InfoContext(ctx, "sending notification", "title", title, "mailto", mailto)
	if err := n.runner.Run(ctx, line, false); err != nil {
		return fmt.Errorf("notification failed: %w", err)
	}
	return nil
}

// Title returns "[<host>] <time> - <message>".
func Title(host string, at time.Time, message string) string {
	return fmt.Sprintf("[%s] %s - %s", host, at.Format(TitleTimeLayout), message)
}

// Details returns the notification body: the title for successful runs,
// the list of errors otherwise, followed by tree.
func Details(title string, report *backup.Report, tree string) string {
	var sb strings.Builder
	if report.Succeeded() {
		sb.WriteString(title)
	} else {
		for i, rec := range report.Errors {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "ERROR: %s", rec.Error())
		}
	}
	if tree != "" {
		sb.WriteString("\n\n")
		sb.WriteString(tree)
	}
	return sb.String()
}

// Recipients validates addresses and joins them with commas.
func Recipients(addresses []string) (string, error) {
	valid := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		email, err := emailaddress.Parse(strings.TrimSpace(addr))
		if err != nil {
			return "", fmt.Errorf("invalid notification recipient %q: %w", addr, err)
		}
		valid = append(valid, email.String())
	}
	return strings.Join(valid, ","), nil
}

// Render substitutes {title}, {details} and {mailto} in template. Title
// and details are escaped for use inside double quotes.
func Render(template, title, details, mailto string) string {
	r := strings.NewReplacer(
		"{title}", Escape(title),
		"{details}", Escape(details),
		"{mailto}", mailto,
	)
	return r.Replace(template)
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"$", `\$`,
	"`", "\\`",
)

// Escape makes text safe inside a double quoted shell string.
func Escape(text string) string {
	return escaper.Replace(text)
}
