package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSecret(t *testing.T, dir, name, value string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), perm); err != nil {
		t.Fatal(err)
	}
	// WriteFile is subject to umask.
	if err := os.Chmod(path, perm); err != nil {
		t.Fatal(err)
	}
}

func TestFileProvider_GetSecret(t *testing.T) {
	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "test-secret", "test-value\n", 0o600)

	provider, err := NewFileProvider(tmpDir)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	value, err := provider.GetSecret(context.Background(), "test-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "test-value" {
		t.Errorf("expected value 'test-value', got '%s'", value)
	}
}

func TestFileProvider_GetSecret_NotFound(t *testing.T) {
	provider, err := NewFileProvider(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.GetSecret(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileProvider_Permissions(t *testing.T) {
	tests := []struct {
		name       string
		perm       os.FileMode
		shouldWork bool
	}{
		{"0600", 0o600, true},
		{"0400", 0o400, true},
		{"0644", 0o644, false},
		{"0640", 0o640, false},
		{"0777", 0o777, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeSecret(t, tmpDir, "secret", "value", tt.perm)

			provider, err := NewFileProvider(tmpDir)
			if err != nil {
				t.Fatalf("failed to create provider: %v", err)
			}

			_, err = provider.GetSecret(context.Background(), "secret")
			if tt.shouldWork && err != nil {
				t.Errorf("expected success, got %v", err)
			}
			if !tt.shouldWork && err == nil {
				t.Error("expected permission error, got nil")
			}
		})
	}
}

func TestFileProvider_DirectoryTraversal(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "secrets")
	if err := os.Mkdir(base, 0o700); err != nil {
		t.Fatal(err)
	}
	writeSecret(t, parent, "outside", "leak", 0o600)

	provider, err := NewFileProvider(base)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	for _, name := range []string{"../outside", "../../etc/passwd", "."} {
		if _, err := provider.GetSecret(context.Background(), name); err == nil {
			t.Errorf("expected traversal error for %q", name)
		}
	}
}

func TestFileProvider_RejectsSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "real", "value", 0o600)
	if err := os.Symlink(filepath.Join(tmpDir, "real"), filepath.Join(tmpDir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	provider, err := NewFileProvider(tmpDir)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	if _, err := provider.GetSecret(context.Background(), "link"); err == nil {
		t.Error("expected error for symlink")
	}
}

func TestFileProvider_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeSecret(t, tmpDir, "blank", "  \n", 0o600)

	provider, err := NewFileProvider(tmpDir)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	if _, err := provider.GetSecret(context.Background(), "blank"); err == nil {
		t.Error("expected error for empty secret file")
	}
}

func TestNewFileProvider_InvalidPath(t *testing.T) {
	if _, err := NewFileProvider(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileProvider(file); err == nil {
		t.Error("expected error for non-directory path")
	}
}
