package secrets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSecret(t *testing.T, dir, name, value string, perm os.FileMode) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value), perm); err != nil {
		t.Fatal(err)
	}
	// WriteFile is subject to umask
	if err := os.Chmod(filepath.Join(dir, name), perm); err != nil {
		t.Fatal(err)
	}
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("EASYBACKUP_SECRET_MYSQL_ROOT_PASSWORD", "s3cret")

	p := NewEnvProvider("EASYBACKUP_SECRET_")

	if got := p.EnvVar("mysql-root-password"); got != "EASYBACKUP_SECRET_MYSQL_ROOT_PASSWORD" {
		t.Errorf("EnvVar() = %q", got)
	}
	if !p.Supports("mysql-root-password") {
		t.Error("expected provider to support a set variable")
	}
	if p.Supports("pg-dsn") {
		t.Error("expected provider not to support an unset variable")
	}

	value, err := p.GetSecret(context.Background(), "mysql-root-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "s3cret" {
		t.Errorf("expected value 's3cret', got '%s'", value)
	}

	if _, err := p.GetSecret(context.Background(), "pg-dsn"); err == nil {
		t.Error("expected error for unset secret, got nil")
	}
}

func TestFileProvider_GetSecret(t *testing.T) {
	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "mysql-root-password", "from-file\n", 0o600)
	writeSecret(t, tmpDir, "read-only", "ro", 0o400)
	writeSecret(t, tmpDir, "insecure", "value", 0o644)

	provider, err := NewFileProvider(tmpDir)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	tests := []struct {
		name    string
		secret  string
		want    string
		wantErr string
	}{
		{"trimmed", "mysql-root-password", "from-file", ""},
		{"read only", "read-only", "ro", ""},
		{"insecure permissions", "insecure", "", "insecure permissions"},
		{"missing", "nonexistent", "", "not found"},
		{"traversal", "../etc/passwd", "", "directory traversal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := provider.GetSecret(context.Background(), tt.secret)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GetSecret() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileProvider_NotDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "file", "x", 0o600)

	if _, err := NewFileProvider(filepath.Join(tmpDir, "file")); err == nil {
		t.Error("expected error for non-directory base path")
	}
	if _, err := NewFileProvider(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("expected error for missing base path")
	}
}

func TestResolver_ResolveReferences(t *testing.T) {
	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "pg-password", "filepass", 0o600)
	writeSecret(t, tmpDir, "shared", "from-file", 0o600)
	t.Setenv("EASYBACKUP_SECRET_SHARED", "from-env")

	fileProvider, err := NewFileProvider(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(NewEnvProvider("EASYBACKUP_SECRET_"), fileProvider)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no reference", "plain", "plain", false},
		{"file", "postgres://backup:${secret:pg-password}@db/postgres", "postgres://backup:filepass@db/postgres", false},
		{"env wins over file", "${secret:shared}", "from-env", false},
		{"unresolved kept", "${secret:missing-secret}", "${secret:missing-secret}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveReferences(context.Background(), tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveReferences() = %q, want %q", got, tt.want)
			}
			if err != nil && strings.Contains(err.Error(), "missing-secret") {
				t.Errorf("error leaks the full secret name: %v", err)
			}
		})
	}
}

func TestHasReferences(t *testing.T) {
	if !HasReferences("${secret:x}") {
		t.Error("expected reference")
	}
	if HasReferences("$secret:x") {
		t.Error("unexpected reference")
	}
}
