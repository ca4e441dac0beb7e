package config

import (
	"os"
	"testing"
)

func resetActive() {
	SetConfig("", nil)
}

func TestGetConfig_BeforeSetConfig(t *testing.T) {
	resetActive()

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("expected nil config before SetConfig, got %+v", cfg)
	}
	if Path() != "" {
		t.Errorf("expected empty path, got %q", Path())
	}
}

func TestSetConfig(t *testing.T) {
	resetActive()
	defer resetActive()

	cfg := validConfig()
	SetConfig("/etc/easybackup.yaml", cfg)

	if GetConfig() != cfg {
		t.Error("expected GetConfig to return the config passed to SetConfig")
	}
	if Path() != "/etc/easybackup.yaml" {
		t.Errorf("Path() = %q", Path())
	}
}

func TestReloadConfig(t *testing.T) {
	resetActive()
	defer resetActive()

	path := writeConfig(t, "general:\n  target_root: /backups\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	before := GetConfig()

	if err := os.WriteFile(path, []byte("general:\n  target_root: /srv/backups\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if got := GetConfig().General.TargetRoot; got != "/srv/backups" {
		t.Errorf("expected reloaded target root, got %q", got)
	}
	if before.General.TargetRoot != "/backups" {
		t.Error("a reload must not modify the config a running backup holds")
	}
	if Path() != path {
		t.Errorf("Path() = %q, want %q", Path(), path)
	}
}

func TestReloadConfig_InvalidKeepsActive(t *testing.T) {
	resetActive()
	defer resetActive()

	path := writeConfig(t, "general:\n  target_root: /backups\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	before := GetConfig()

	if err := os.WriteFile(path, []byte("schedule:\n  cron: nonsense\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := ReloadConfig(path); err == nil {
		t.Fatal("expected reload to fail")
	}
	if GetConfig() != before {
		t.Error("expected active config to be kept after a failed reload")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(path); err == nil {
		t.Fatal("expected reload of a missing file to fail")
	}
	if GetConfig() != before {
		t.Error("expected active config to be kept when the file disappears")
	}
}
