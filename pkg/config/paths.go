package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"brainstorm-hq/easybackup/pkg/rotation"
)

// hostnamePlaceholder is replaced with the local host name in target_root.
const hostnamePlaceholder = "{hostname}"

// hostname is swapped in tests.
var hostname = os.Hostname

// ResolveTargetRoot returns the absolute target root with "{hostname}" expanded.
func (g GeneralConfig) ResolveTargetRoot() (string, error) {
	root := g.TargetRoot
	if strings.Contains(root, hostnamePlaceholder) {
		host, err := hostname()
		if err != nil {
			return "", fmt.Errorf("failed to resolve hostname: %w", err)
		}
		root = strings.ReplaceAll(root, hostnamePlaceholder, host)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target root %q: %w", root, err)
	}
	return abs, nil
}

// TargetFolder returns the absolute folder new backups are written to.
func (g GeneralConfig) TargetFolder() (string, error) {
	root, err := g.ResolveTargetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, g.TargetSubfolder), nil
}

// RotationEngineConfig builds the rotation engine settings for cfg.
func (c *Config) RotationEngineConfig(dryRun bool) (rotation.Config, error) {
	root, err := c.General.ResolveTargetRoot()
	if err != nil {
		return rotation.Config{}, err
	}
	return rotation.Config{
		TargetFolder:     root,
		Daily:            c.Rotation.Daily,
		Weekly:           c.Rotation.Weekly,
		Monthly:          c.Rotation.Monthly,
		Yearly:           c.Rotation.Yearly,
		Quarantine:       c.Rotation.QuarantinePath(),
		QuarantineMaxAge: c.Rotation.QuarantineMaxAge,
		WeekStart:        c.Rotation.WeekStart,
		DryRun:           dryRun,
	}, nil
}

// TierFolders returns the tier folders relative to the target root, in
// retention order. The quarantine folder is omitted when disabled.
func (r RotationConfig) TierFolders() []string {
	tiers := []string{r.Daily, r.Weekly, r.Monthly, r.Yearly}
	if q := r.QuarantinePath(); q != "" {
		tiers = append(tiers, q)
	}
	return tiers
}
