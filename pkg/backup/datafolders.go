package backup

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/gzip"
)

// CollectFolders expands the include patterns, drops every path matched by
// an exclude pattern and returns the remaining directories and regular
// files sorted and deduplicated. Trailing slashes in patterns are ignored.
func CollectFolders(include, exclude []string) ([]string, error) {
	excluded := make(map[string]struct{})
	for _, pattern := range exclude {
		matches, err := filepath.Glob(filepath.Clean(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			excluded[m] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var folders []string
	for _, pattern := range include {
		matches, err := filepath.Glob(filepath.Clean(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, skip := excluded[m]; skip {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || !(info.IsDir() || info.Mode().IsRegular()) {
				continue
			}
			seen[m] = struct{}{}
			folders = append(folders, m)
		}
	}

	sort.Strings(folders)
	return folders, nil
}

// ArchiveFolder writes folder as a gzip compressed tarball to dst. Entries
// are stored below the folder's base name; a plain file is stored alone
// under its own name. Symlinked files are stored with
// the content they point to; symlinked directories are stored as links.
// A failed archive leaves no file behind.
func ArchiveFolder(ctx context.Context, folder, dst string, level int) (err error) {
	root, err := filepath.EvalSymlinks(folder)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", folder, err)
	}
	base := filepath.Base(filepath.Clean(folder))

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dst, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %q: %w", dst, cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	zw, err := gzip.NewWriterLevel(f, level)
	if err != nil {
		return fmt.Errorf("invalid compression level %d: %w", level, err)
	}
	tw := tar.NewWriter(zw)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(base, rel))

		return addEntry(tw, path, name, d)
	})
	if walkErr != nil {
		_ = tw.Close()
		_ = zw.Close()
		return fmt.Errorf("failed to archive %q: %w", folder, walkErr)
	}

	if err := tw.Close(); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to finish archive %q: %w", dst, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress %q: %w", dst, err)
	}
	return nil
}

func addEntry(tw *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Stat(path)
		switch {
		case err != nil:
			// Dangling links are kept as links.
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		case target.IsDir():
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		default:
			info = target
		}
	}

	if !info.Mode().IsRegular() && !info.IsDir() && link == "" {
		// Sockets, devices and pipes are not backed up.
		return nil
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("failed to copy %q: %w", path, err)
	}
	return nil
}

// folderArchive pairs a data folder with its archive path.
type folderArchive struct {
	folder string
	dst    string
}
