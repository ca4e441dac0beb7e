package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

func TestBuild(t *testing.T) {
	root := filepath.Join(t.TempDir(), "web01")
	writeFile(t, filepath.Join(root, "daily", "2024-01-10__b.gz"), 2000)
	writeFile(t, filepath.Join(root, "daily", "2024-01-09__a.gz"), 1000)
	writeFile(t, filepath.Join(root, "weekly", "2024-01-01__a.gz"), 500)

	tree, err := Build(root, []string{"./daily", "./weekly", "./yearly"},
		WithFreeSpace(func(path string) (uint64, error) {
			assert.Equal(t, root, path)
			return 5_000_000_000, nil
		}))
	require.NoError(t, err)

	assert.Equal(t, 3, tree.Files)
	assert.Equal(t, int64(3500), tree.Size)
	require.Len(t, tree.Tiers, 3)
	assert.Equal(t, []Entry{{"2024-01-09__a.gz", 1000}, {"2024-01-10__b.gz", 2000}}, tree.Tiers[0].Entries)
	assert.True(t, tree.Tiers[2].Missing)
	assert.True(t, tree.FreeKnown)

	want := strings.Join([]string{
		"[web01]",
		" +--[./daily]",
		" |   +-- 2024-01-09__a.gz  (1.0 kB)",
		" |   +-- 2024-01-10__b.gz  (2.0 kB)",
		" +--[./weekly]",
		" |   +-- 2024-01-01__a.gz  (500 B)",
		" +--[./yearly] (missing)",
		"Files: 3",
		"Size: 3.5 kB",
		"Free: 5.0 GB",
	}, "\n")
	assert.Equal(t, want, tree.String())
}

func TestTree_String(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
		want []string
	}{
		{
			name: "aligned sizes",
			tree: Tree{
				Root: "/backups/host",
				Tiers: []Tier{{
					Name:    "./quarantine",
					Entries: []Entry{{"short.gz", 1}, {"much-longer-name.tgz", 2}},
				}},
				Files: 2,
				Size:  3,
			},
			want: []string{
				"[host]",
				" +--[./quarantine]",
				"     +-- short.gz              (1 B)",
				"     +-- much-longer-name.tgz  (2 B)",
				"Files: 2",
				"Size: 3 B",
			},
		},
		{
			name: "empty",
			tree: Tree{Root: "/backups/host"},
			want: []string{"[host]", "Files: 0", "Size: 0 B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, strings.Join(tt.want, "\n"), tt.tree.String())
		})
	}
}

func TestBuild_FreeSpaceUnavailable(t *testing.T) {
	root := t.TempDir()

	tree, err := Build(root, []string{"daily"},
		WithFreeSpace(func(string) (uint64, error) { return 0, errors.New("statfs failed") }))
	require.NoError(t, err)
	assert.False(t, tree.FreeKnown)
	assert.NotContains(t, tree.String(), "Free:")

	tree, err = Build(root, []string{"daily"}, WithFreeSpace(nil))
	require.NoError(t, err)
	assert.False(t, tree.FreeKnown)
}

func TestBuild_TierIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "daily"), 1)

	_, err := Build(root, []string{"daily"}, WithFreeSpace(nil))
	assert.Error(t, err)
}

func TestFreeSpace(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, free)
}
