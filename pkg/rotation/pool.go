package rotation

import (
	"sort"
	"time"
)

// Pool builds the set of dated files of a tier directory that are old
// enough to leave it.
type Pool struct {
	fs        FS
	today     time.Time
	weekStart time.Weekday
}

// NewPool creates a Pool that classifies files relative to today.
func NewPool(fsys FS, today time.Time, weekStart time.Weekday) *Pool {
	if fsys == nil {
		fsys = OSFS{}
	}
	return &Pool{
		fs:        fsys,
		today:     today,
		weekStart: weekStart,
	}
}

// CollectDatedFiles scans dir on the local filesystem relative to the
// current day, with weeks starting on Monday.
func CollectDatedFiles(dir string, minAge int) ([]DatedFile, error) {
	return NewPool(OSFS{}, time.Now(), time.Monday).Collect(dir, minAge)
}

// Collect lists the immediate children of dir and returns those carrying a
// date at least minAge days old. Undated entries and entries younger than
// minAge are left out. The result is sorted by name.
func (p *Pool) Collect(dir string, minAge int) ([]DatedFile, error) {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]DatedFile, 0, len(entries))
	for _, entry := range entries {
		f := newDatedFile(entry.Name(), p.today, p.weekStart)
		if f.IsDated() && f.Age >= minAge {
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
