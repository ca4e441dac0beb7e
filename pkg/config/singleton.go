package config

import (
	"fmt"
	"sync"
)

// active is the configuration of the running process. The CLI stores the
// file it loaded; the daemon reads it at every scheduled backup and
// replaces it when the file changes on disk.
var active struct {
	sync.RWMutex
	cfg  *Config
	path string
}

// SetConfig records cfg, loaded from path, as the active configuration.
func SetConfig(path string, cfg *Config) {
	active.Lock()
	defer active.Unlock()
	active.cfg = cfg
	active.path = path
}

// GetConfig returns the active configuration, nil before SetConfig.
// A scheduled backup takes it once and keeps using that value, so a
// reload never changes a run halfway.
func GetConfig() *Config {
	active.RLock()
	defer active.RUnlock()
	return active.cfg
}

// Path returns the file the active configuration was loaded from.
func Path() string {
	active.RLock()
	defer active.RUnlock()
	return active.path
}

// ReloadConfig reads path again and makes it the active configuration.
// An unreadable or invalid file leaves the active configuration in place,
// so a half-saved edit does not stop the nightly backup.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(path, cfg)
	return nil
}
