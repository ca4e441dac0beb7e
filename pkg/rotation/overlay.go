package rotation

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// overlayFS records mutations in memory on top of a read-only base. Reads
// see the pending renames, removes and mkdirs, so a dry run selects files
// exactly as a real run would.
type overlayFS struct {
	base FS

	mu      sync.Mutex
	created map[string]bool
	removed map[string]bool
	added   map[string]map[string]fs.FileInfo
}

func newOverlayFS(base FS) *overlayFS {
	return &overlayFS{
		base:    base,
		created: make(map[string]bool),
		removed: make(map[string]bool),
		added:   make(map[string]map[string]fs.FileInfo),
	}
}

func (o *overlayFS) ReadDir(name string) ([]os.DirEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	name = filepath.Clean(name)
	if o.removed[name] {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}

	entries, err := o.base.ReadDir(name)
	if err != nil && !(o.created[name] && os.IsNotExist(err)) {
		return nil, err
	}

	var out []os.DirEntry
	for _, e := range entries {
		path := filepath.Join(name, e.Name())
		if o.removed[path] {
			continue
		}
		if _, ok := o.added[name][e.Name()]; ok {
			continue
		}
		out = append(out, e)
	}
	for _, info := range o.added[name] {
		out = append(out, fs.FileInfoToDirEntry(info))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (o *overlayFS) Stat(name string) (os.FileInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stat(filepath.Clean(name))
}

func (o *overlayFS) stat(name string) (os.FileInfo, error) {
	if o.removed[name] {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	if info, ok := o.added[filepath.Dir(name)][filepath.Base(name)]; ok {
		return info, nil
	}
	if o.created[name] {
		return pendingDir(filepath.Base(name)), nil
	}
	return o.base.Stat(name)
}

func (o *overlayFS) MkdirAll(path string, _ os.FileMode) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	path = filepath.Clean(path)
	delete(o.removed, path)
	o.created[path] = true
	return nil
}

func (o *overlayFS) Rename(oldpath, newpath string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	info, err := o.stat(oldpath)
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}

	o.drop(oldpath)
	o.removed[oldpath] = true

	delete(o.removed, newpath)
	dir := filepath.Dir(newpath)
	if o.added[dir] == nil {
		o.added[dir] = make(map[string]fs.FileInfo)
	}
	o.added[dir][filepath.Base(newpath)] = renamedInfo{FileInfo: info, name: filepath.Base(newpath)}
	return nil
}

func (o *overlayFS) Remove(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	name = filepath.Clean(name)
	if _, err := o.stat(name); err != nil {
		return err
	}
	o.drop(name)
	o.removed[name] = true
	return nil
}

// drop forgets a pending entry at path.
func (o *overlayFS) drop(path string) {
	if entries := o.added[filepath.Dir(path)]; entries != nil {
		delete(entries, filepath.Base(path))
	}
}

// renamedInfo reports the destination name of a pending rename.
type renamedInfo struct {
	fs.FileInfo
	name string
}

func (i renamedInfo) Name() string { return i.name }

// pendingDir describes a directory that only exists in the overlay.
type pendingDir string

func (d pendingDir) Name() string     { return string(d) }
func (pendingDir) Size() int64        { return 0 }
func (pendingDir) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (pendingDir) ModTime() time.Time { return time.Time{} }
func (pendingDir) IsDir() bool        { return true }
func (pendingDir) Sys() any           { return nil }
