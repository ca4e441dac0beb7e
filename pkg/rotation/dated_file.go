package rotation

import (
	"fmt"
	"strings"
	"time"
)

const (
	// dashedDateLayout matches names starting with "2018-03-22".
	dashedDateLayout = "2006-01-02"

	// underscoredDateLayout matches "2018_03_23" right after the first
	// underscore, as in "1521766816_2018_03_23_...".
	underscoredDateLayout = "2006_01_02"

	dateLen = len(dashedDateLayout)
)

// DatedFile is a read-only view over one entry of a tier directory.
// It holds no filesystem handle: every action takes the directories
// it operates on from the caller.
type DatedFile struct {
	// Name is the on-disk name within a single tier directory.
	Name string

	// Date is the calendar date encoded in Name, at midnight UTC.
	// It is the zero time when the name carries no recognized date.
	Date time.Time

	// Age is the number of days between Date and the day the file was
	// classified. It is only meaningful when IsDated returns true.
	Age int

	dated     bool
	weekStart time.Weekday
}

// NewDatedFile classifies name relative to today, using Monday as the
// first day of the week.
func NewDatedFile(name string, today time.Time) DatedFile {
	return newDatedFile(name, today, time.Monday)
}

func newDatedFile(name string, today time.Time, weekStart time.Weekday) DatedFile {
	f := DatedFile{
		Name:      name,
		weekStart: weekStart,
	}

	date, ok := ParseFileDate(name)
	if !ok {
		return f
	}

	f.Date = date
	f.dated = true
	f.Age = daysBetween(date, civilDate(today))
	return f
}

// ParseFileDate extracts the date encoded in a backup filename.
//
// Two layouts are tried in order:
//  1. the first 10 characters as YYYY-MM-DD
//  2. the 10 characters following the first underscore as YYYY_MM_DD
//
// It reports false when neither matches.
func ParseFileDate(name string) (time.Time, bool) {
	if len(name) >= dateLen {
		if d, err := time.Parse(dashedDateLayout, name[:dateLen]); err == nil {
			return d, true
		}
	}

	n := strings.IndexByte(name, '_')
	if n < 0 {
		return time.Time{}, false
	}
	rest := name[n+1:]
	if len(rest) < dateLen {
		return time.Time{}, false
	}
	d, err := time.Parse(underscoredDateLayout, rest[:dateLen])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsDated reports whether the filename carries a recognized date.
func (f DatedFile) IsDated() bool {
	return f.dated
}

// IsFirstDayOfWeek reports whether the file is dated on the first day of
// its week.
func (f DatedFile) IsFirstDayOfWeek() bool {
	return f.dated && f.Date.Weekday() == f.weekStart
}

// IsFirstDayOfMonth reports whether the file is dated on the 1st.
func (f DatedFile) IsFirstDayOfMonth() bool {
	return f.dated && f.Date.Day() == 1
}

// IsFirstDayOfYear reports whether the file is dated on January 1st.
func (f DatedFile) IsFirstDayOfYear() bool {
	return f.dated && f.Date.Month() == time.January && f.Date.Day() == 1
}

// String renders the file with its classification, for debug logs.
func (f DatedFile) String() string {
	if !f.dated {
		return f.Name
	}
	return fmt.Sprintf("%s [dated:%s, age=%d, fdow=%d, fdom=%d, fdoy=%d]",
		f.Name,
		f.Date.Format(dashedDateLayout),
		f.Age,
		boolToInt(f.IsFirstDayOfWeek()),
		boolToInt(f.IsFirstDayOfMonth()),
		boolToInt(f.IsFirstDayOfYear()),
	)
}

// QuarantineName returns the name a file takes when it enters quarantine
// on the given day.
func QuarantineName(name string, day time.Time) string {
	return civilDate(day).Format(dashedDateLayout) + "_____" + name
}

// civilDate drops the clock part of t, keeping the calendar day as seen in
// t's own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
