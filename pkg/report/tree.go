// Package report renders the content of the retention tiers as a small
// text tree, used on the console and in notifications:
//
//	[web01]
//	 +--[./daily]
//	 |   +-- 2024-01-10_02-00-00__mysql.blog.gz  (1.2 MB)
//	 +--[./quarantine]
//	Files: 1
//	Size: 1.2 MB
//	Free: 48 GB
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/shirou/gopsutil/v4/disk"
)

// FreeSpaceFunc returns the free bytes of the filesystem holding path.
type FreeSpaceFunc func(path string) (uint64, error)

// FreeSpace reports free space with gopsutil.
func FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// Entry is a file of a tier.
type Entry struct {
	Name string
	Size int64
}

// Tier is the listing of one tier folder.
type Tier struct {
	// Name is the tier folder as configured, relative to the root.
	Name string

	// Missing is set when the folder does not exist.
	Missing bool

	Entries []Entry
}

// Tree is the listing of every tier under a target root.
type Tree struct {
	Root  string
	Tiers []Tier
	Files int
	Size  int64

	// Free is the free space of the target filesystem, valid when
	// FreeKnown is set.
	Free      uint64
	FreeKnown bool
}

// Option configures Build.
type Option func(*options)

type options struct {
	freeSpace FreeSpaceFunc
}

// WithFreeSpace replaces the free space lookup. A nil function skips it.
func WithFreeSpace(fn FreeSpaceFunc) Option {
	return func(o *options) { o.freeSpace = fn }
}

// Build lists the files of each tier folder under root. Tiers are listed
// in the given order and their files sorted by name.
func Build(root string, tiers []string, opts ...Option) (*Tree, error) {
	o := options{freeSpace: FreeSpace}
	for _, opt := range opts {
		opt(&o)
	}

	tree := &Tree{Root: root}
	for _, name := range tiers {
		tier, err := listTier(filepath.Join(root, name))
		if err != nil {
			return nil, err
		}
		tier.Name = name
		for _, e := range tier.Entries {
			tree.Files++
			tree.Size += e.Size
		}
		tree.Tiers = append(tree.Tiers, tier)
	}

	if o.freeSpace != nil {
		if free, err := o.freeSpace(root); err == nil {
			tree.Free, tree.FreeKnown = free, true
		}
	}
	return tree, nil
}

func listTier(dir string) (Tier, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Tier{Missing: true}, nil
	}
	if err != nil {
		return Tier{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var tier Tier
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// Removed while listing.
			continue
		}
		tier.Entries = append(tier.Entries, Entry{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(tier.Entries, func(i, j int) bool {
		return tier.Entries[i].Name < tier.Entries[j].Name
	})
	return tier, nil
}

// String renders the tree. File sizes are aligned in one column.
func (t *Tree) String() string {
	width := 0
	for _, tier := range t.Tiers {
		for _, e := range tier.Entries {
			width = max(width, runewidth.StringWidth(e.Name))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]\n", filepath.Base(t.Root))
	for i, tier := range t.Tiers {
		filePrefix := " |   "
		if i == len(t.Tiers)-1 {
			filePrefix = "     "
		}
		if tier.Missing {
			fmt.Fprintf(&sb, " +--[%s] (missing)\n", tier.Name)
			continue
		}
		fmt.Fprintf(&sb, " +--[%s]\n", tier.Name)
		for _, e := range tier.Entries {
			fmt.Fprintf(&sb, "%s+-- %s  (%s)\n", filePrefix, runewidth.FillRight(e.Name, width), humanize.Bytes(uint64(e.Size)))
		}
	}
	fmt.Fprintf(&sb, "Files: %d\n", t.Files)
	fmt.Fprintf(&sb, "Size: %s", humanize.Bytes(uint64(t.Size)))
	if t.FreeKnown {
		fmt.Fprintf(&sb, "\nFree: %s", humanize.Bytes(t.Free))
	}
	return sb.String()
}
