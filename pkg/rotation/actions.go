package rotation

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"
)

// Actor performs file actions on behalf of DatedFile. In dry-run mode it
// also writes the intended action to the preview writer; the engine then
// hands it an in-memory overlay so the disk is left untouched.
type Actor struct {
	fs      FS
	dryRun  bool
	preview io.Writer
	today   time.Time
	logger  *slog.Logger
}

// NewActor creates an Actor. today stamps quarantine entries.
func NewActor(fsys FS, dryRun bool, preview io.Writer, today time.Time, logger *slog.Logger) *Actor {
	if fsys == nil {
		fsys = OSFS{}
	}
	if _, ok := fsys.(*overlayFS); dryRun && !ok {
		fsys = newOverlayFS(fsys)
	}
	if preview == nil {
		preview = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Actor{
		fs:      fsys,
		dryRun:  dryRun,
		preview: preview,
		today:   today,
		logger:  logger,
	}
}

func (a *Actor) rename(from, to string) error {
	if a.dryRun {
		fmt.Fprintf(a.preview, "[dry-run] mv %q %q\n", from, to)
		a.logger.Info("dry-run: rename", "from", from, "to", to)
	}
	return a.fs.Rename(from, to)
}

func (a *Actor) remove(path string) error {
	if a.dryRun {
		fmt.Fprintf(a.preview, "[dry-run] rm %q\n", path)
		a.logger.Info("dry-run: remove", "path", path)
	}
	return a.fs.Remove(path)
}

func (a *Actor) mkdirAll(path string) error {
	if a.dryRun {
		fmt.Fprintf(a.preview, "[dry-run] mkdir -p %q\n", path)
		a.logger.Info("dry-run: mkdir", "path", path)
	}
	return a.fs.MkdirAll(path, 0o755)
}

// MoveTo moves the file from sourceDir to targetDir, keeping its name.
func (f DatedFile) MoveTo(a *Actor, sourceDir, targetDir string) error {
	if !f.dated {
		return fmt.Errorf("refusing to move undated file %q", f.Name)
	}
	a.logger.Info("promoting file", "file", f.Name, "from", sourceDir, "to", targetDir)
	return a.rename(filepath.Join(sourceDir, f.Name), filepath.Join(targetDir, f.Name))
}

// ToQuarantine moves the file from sourceDir into quarantineDir, prefixed
// with the current date. With an empty quarantineDir the file is deleted.
func (f DatedFile) ToQuarantine(a *Actor, sourceDir, quarantineDir string) error {
	if !f.dated {
		return fmt.Errorf("refusing to quarantine undated file %q", f.Name)
	}
	if quarantineDir == "" {
		return f.Destroy(a, sourceDir)
	}
	target := QuarantineName(f.Name, a.today)
	a.logger.Info("quarantining file", "file", f.Name, "from", sourceDir, "to", quarantineDir, "quarantine_name", target)
	return a.rename(filepath.Join(sourceDir, f.Name), filepath.Join(quarantineDir, target))
}

// Destroy deletes the file from dir.
func (f DatedFile) Destroy(a *Actor, dir string) error {
	a.logger.Info("erasing file", "file", f.Name, "folder", dir)
	return a.remove(filepath.Join(dir, f.Name))
}
