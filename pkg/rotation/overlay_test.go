package rotation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlayNames(t *testing.T, o *overlayFS, dir string) []string {
	t.Helper()
	entries, err := o.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestOverlayFS(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "1.gz"))
	touch(t, filepath.Join(root, "a", "2.gz"))

	o := newOverlayFS(OSFS{})
	b := filepath.Join(root, "b")

	require.NoError(t, o.MkdirAll(b, 0o755))
	info, err := o.Stat(b)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Empty(t, overlayNames(t, o, b))

	require.NoError(t, o.Rename(filepath.Join(root, "a", "1.gz"), filepath.Join(b, "x_1.gz")))
	assert.Equal(t, []string{"2.gz"}, overlayNames(t, o, filepath.Join(root, "a")))
	assert.Equal(t, []string{"x_1.gz"}, overlayNames(t, o, b))

	info, err = o.Stat(filepath.Join(b, "x_1.gz"))
	require.NoError(t, err)
	assert.Equal(t, "x_1.gz", info.Name())
	_, err = o.Stat(filepath.Join(root, "a", "1.gz"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Pending entries can move again and be removed.
	require.NoError(t, o.Rename(filepath.Join(b, "x_1.gz"), filepath.Join(root, "a", "1.gz")))
	assert.Equal(t, []string{"1.gz", "2.gz"}, overlayNames(t, o, filepath.Join(root, "a")))
	require.NoError(t, o.Remove(filepath.Join(root, "a", "2.gz")))
	assert.Equal(t, []string{"1.gz"}, overlayNames(t, o, filepath.Join(root, "a")))

	assert.ErrorIs(t, o.Remove(filepath.Join(root, "a", "2.gz")), os.ErrNotExist)
	assert.Error(t, o.Rename(filepath.Join(root, "missing"), b))

	// The disk is untouched.
	assert.Equal(t, []string{"1.gz", "2.gz"}, listDir(t, filepath.Join(root, "a")))
	assert.Equal(t, []string{"a"}, listDir(t, root))
}
