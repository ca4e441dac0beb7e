package rotation

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotAbsolute is returned when the target folder is a relative path.
	ErrTargetNotAbsolute = errors.New("target folder must be an absolute path")

	// ErrTargetNotDirectory is returned when the target folder is not a directory.
	ErrTargetNotDirectory = errors.New("target folder is not a directory")

	// ErrPathEscapesTarget is returned when a tier path resolves outside the
	// target folder.
	ErrPathEscapesTarget = errors.New("tier path resolves outside the target folder")

	// ErrTierConflict is returned when two tiers resolve to the same folder.
	ErrTierConflict = errors.New("tier folder is shared with another tier")

	// ErrDailyNotFound is returned when the daily tier directory is missing.
	ErrDailyNotFound = errors.New("daily folder not found")
)

// FatalError aborts a rotation run before any file is touched.
type FatalError struct {
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("rotation aborted at %q: %v", e.Path, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
