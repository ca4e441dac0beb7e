package backup

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyDatabaseList is recorded when a database server reports no
	// databases at all.
	ErrEmptyDatabaseList = errors.New("empty database list")

	// ErrMountFailed is recorded when the mount command fails.
	ErrMountFailed = errors.New("unable to mount")
)

// Steps reported in ErrorRecord.Step.
const (
	StepMount       = "mount"
	StepTarget      = "target"
	StepDataFolders = "data_folders"
	StepPostgreSQL  = "postgresql"
	StepMySQL       = "mysql"
	StepRotation    = "rotation"
	StepUmount      = "umount"
)

// ErrorRecord describes one failure of a backup run.
type ErrorRecord struct {
	// Step is the pipeline step that failed.
	Step string

	// Subject is the folder, database or file involved, if any.
	Subject string

	Err  error
	Time time.Time
}

// Error implements the error interface.
func (r ErrorRecord) Error() string {
	if r.Subject == "" {
		return fmt.Sprintf("%s: %v", r.Step, r.Err)
	}
	return fmt.Sprintf("%s %q: %v", r.Step, r.Subject, r.Err)
}

// Unwrap returns the underlying error.
func (r ErrorRecord) Unwrap() error {
	return r.Err
}

// CommandError is returned when an external command exits unsuccessfully.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("command failed: %q: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command failed: %q: %v: %s", e.Command, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
