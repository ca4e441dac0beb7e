package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFileDate(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantDate  time.Time
		wantDated bool
	}{
		{
			name:      "dashed date with timestamp suffix",
			filename:  "2018-03-22_10-00-00__postgresql.app.gz",
			wantDate:  date(2018, time.March, 22),
			wantDated: true,
		},
		{
			name:      "dashed date only",
			filename:  "2024-01-01",
			wantDate:  date(2024, time.January, 1),
			wantDated: true,
		},
		{
			name:      "unix timestamp prefix with underscored date",
			filename:  "1521766816_2018_03_23_app.tgz",
			wantDate:  date(2018, time.March, 23),
			wantDated: true,
		},
		{
			name:      "underscored date without prefix is not recognized",
			filename:  "2018_03_23_app.tgz",
			wantDated: false,
		},
		{
			name:      "quarantine prefix wins over the original date",
			filename:  "2024-02-01_____2024-01-16_db.gz",
			wantDate:  date(2024, time.February, 1),
			wantDated: true,
		},
		{
			name:      "invalid day",
			filename:  "2024-02-30_db.gz",
			wantDated: false,
		},
		{
			name:      "single digit month",
			filename:  "2024-1-15_db.gz",
			wantDated: false,
		},
		{
			name:      "short name",
			filename:  "db.gz",
			wantDated: false,
		},
		{
			name:      "underscore with short remainder",
			filename:  "x_2024_01",
			wantDated: false,
		},
		{
			name:      "empty name",
			filename:  "",
			wantDated: false,
		},
		{
			name:      "no date at all",
			filename:  "README",
			wantDated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFileDate(tt.filename)
			assert.Equal(t, tt.wantDated, ok)
			if tt.wantDated {
				assert.True(t, got.Equal(tt.wantDate), "ParseFileDate() = %v, want %v", got, tt.wantDate)
			}
		})
	}
}

func TestNewDatedFile(t *testing.T) {
	today := time.Date(2024, time.January, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filename  string
		wantDated bool
		wantAge   int
		wantFDOW  bool
		wantFDOM  bool
		wantFDOY  bool
	}{
		{
			name:      "monday first of year",
			filename:  "2024-01-01_db.gz",
			wantDated: true,
			wantAge:   9,
			wantFDOW:  true,
			wantFDOM:  true,
			wantFDOY:  true,
		},
		{
			name:      "plain tuesday",
			filename:  "2024-01-02_db.gz",
			wantDated: true,
			wantAge:   8,
		},
		{
			name:      "first of month, not monday",
			filename:  "2023-12-01_db.gz",
			wantDated: true,
			wantAge:   40,
			wantFDOM:  true,
		},
		{
			name:      "same day",
			filename:  "2024-01-10_db.gz",
			wantDated: true,
			wantAge:   0,
		},
		{
			name:      "future date has negative age",
			filename:  "2024-01-12_db.gz",
			wantDated: true,
			wantAge:   -2,
		},
		{
			name:     "undated file has no predicates",
			filename: "notes.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDatedFile(tt.filename, today)
			assert.Equal(t, tt.filename, f.Name)
			assert.Equal(t, tt.wantDated, f.IsDated())
			if tt.wantDated {
				assert.Equal(t, tt.wantAge, f.Age)
			}
			assert.Equal(t, tt.wantFDOW, f.IsFirstDayOfWeek(), "IsFirstDayOfWeek")
			assert.Equal(t, tt.wantFDOM, f.IsFirstDayOfMonth(), "IsFirstDayOfMonth")
			assert.Equal(t, tt.wantFDOY, f.IsFirstDayOfYear(), "IsFirstDayOfYear")
		})
	}
}

func TestDatedFile_SundayWeekStart(t *testing.T) {
	today := date(2024, time.January, 30)

	sunday := newDatedFile("2024-01-14_db.gz", today, time.Sunday)
	monday := newDatedFile("2024-01-15_db.gz", today, time.Sunday)

	assert.True(t, sunday.IsFirstDayOfWeek())
	assert.False(t, monday.IsFirstDayOfWeek())
}

func TestDatedFile_AgeIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2024, time.January, 8, 23, 59, 59, 0, time.UTC)
	early := time.Date(2024, time.January, 8, 0, 0, 1, 0, time.UTC)

	assert.Equal(t, 7, NewDatedFile("2024-01-01_db.gz", late).Age)
	assert.Equal(t, 7, NewDatedFile("2024-01-01_db.gz", early).Age)
}

func TestDatedFile_String(t *testing.T) {
	f := NewDatedFile("2024-01-01_db.gz", date(2024, time.January, 10))
	assert.Equal(t, "2024-01-01_db.gz [dated:2024-01-01, age=9, fdow=1, fdom=1, fdoy=1]", f.String())

	u := NewDatedFile("notes.txt", date(2024, time.January, 10))
	assert.Equal(t, "notes.txt", u.String())
}

func TestQuarantineName(t *testing.T) {
	day := time.Date(2024, time.January, 24, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-24_____2024-01-16_db.gz", QuarantineName("2024-01-16_db.gz", day))
}

func TestParseWeekStart(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{in: "", want: time.Monday},
		{in: "monday", want: time.Monday},
		{in: "Sunday", want: time.Sunday},
		{in: " sunday ", want: time.Sunday},
		{in: "friday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekStart(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
