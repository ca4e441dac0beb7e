package backup

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestCollectFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "etc", "home/alice/www", "home/bob/www", "home/baduser/www")
	require.NoError(t, os.WriteFile(filepath.Join(root, "home", "carol"), nil, 0o644))

	folders, err := CollectFolders(
		[]string{
			filepath.Join(root, "home/*/www") + "/",
			filepath.Join(root, "etc"),
			filepath.Join(root, "etc"),
			filepath.Join(root, "home/carol"),
			filepath.Join(root, "missing"),
		},
		[]string{filepath.Join(root, "home/baduser/www/")},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "etc"),
		filepath.Join(root, "home/alice/www"),
		filepath.Join(root, "home/bob/www"),
		filepath.Join(root, "home/carol"),
	}, folders)
}

func TestArchiveFolder_PlainFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "crontab")
	require.NoError(t, os.WriteFile(src, []byte("0 2 * * * easybackup run"), 0o644))

	dst := filepath.Join(t.TempDir(), "crontab.tgz")
	require.NoError(t, ArchiveFolder(context.Background(), src, dst, -1))

	assert.Equal(t, map[string]string{"crontab": "0 2 * * * easybackup run"}, readArchive(t, dst))
}

func TestCollectFolders_BadPattern(t *testing.T) {
	_, err := CollectFolders([]string{"/home/[a"}, nil)
	assert.Error(t, err)
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch hdr.Typeflag {
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			require.NoError(t, err)
			entries[hdr.Name] = string(data)
		case tar.TypeSymlink:
			entries[hdr.Name] = "-> " + hdr.Linkname
		default:
			entries[hdr.Name] = ""
		}
	}
	return entries
}

func TestArchiveFolder(t *testing.T) {
	root := t.TempDir()
	www := filepath.Join(root, "www")
	mkdirs(t, www, "static", "shared")
	require.NoError(t, os.WriteFile(filepath.Join(www, "index.html"), []byte("<html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(www, "static", "app.css"), []byte("body{}"), 0o644))

	outside := filepath.Join(root, "settings.py")
	require.NoError(t, os.WriteFile(outside, []byte("DEBUG = False"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(www, "settings.py")))
	require.NoError(t, os.Symlink(filepath.Join(root), filepath.Join(www, "shared", "up")))

	dst := filepath.Join(t.TempDir(), "www.tgz")
	require.NoError(t, ArchiveFolder(context.Background(), www+"/", dst, -1))

	entries := readArchive(t, dst)
	assert.Equal(t, "<html>", entries["www/index.html"])
	assert.Equal(t, "body{}", entries["www/static/app.css"])
	assert.Equal(t, "DEBUG = False", entries["www/settings.py"], "symlinked files are dereferenced")
	assert.Equal(t, "-> "+root, entries["www/shared/up"], "symlinked directories are kept as links")
	assert.Contains(t, entries, "www/")
	assert.Contains(t, entries, "www/static/")
}

func TestArchiveFolder_SymlinkedRoot(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real")
	mkdirs(t, root, "real")
	require.NoError(t, os.WriteFile(filepath.Join(real, "data.txt"), []byte("x"), 0o644))
	link := filepath.Join(root, "media")
	require.NoError(t, os.Symlink(real, link))

	dst := filepath.Join(t.TempDir(), "media.tgz")
	require.NoError(t, ArchiveFolder(context.Background(), link, dst, 9))

	assert.Equal(t, "x", readArchive(t, dst)["media/data.txt"])
}

func TestArchiveFolder_Failure(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing.tgz")

	err := ArchiveFolder(context.Background(), filepath.Join(t.TempDir(), "missing"), dst, -1)

	assert.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestArchiveFolder_Cancelled(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a"), []byte("a"), 0o644))
	dst := filepath.Join(t.TempDir(), "a.tgz")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ArchiveFolder(ctx, src, dst, -1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, dst, "partial archives are removed")
}

func TestFolderArchiveName(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"/etc", "etc.tgz"},
		{"/etc/", "etc.tgz"},
		{"/home/Alice/www/", "home.alice.www.tgz"},
		{"/home/bob/public/media", "home.bob.public.media.tgz"},
	}

	for _, tt := range tests {
		t.Run(tt.folder, func(t *testing.T) {
			assert.Equal(t, tt.want, FolderArchiveName(tt.folder))
		})
	}
}
