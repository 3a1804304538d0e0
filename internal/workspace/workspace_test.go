package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrepareDirectoryCreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles")
	if err := PrepareDirectory(path); err != nil {
		t.Fatalf("PrepareDirectory: %v", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestPrepareDirectoryClearsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles")
	if err := os.MkdirAll(filepath.Join(path, "myapp"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "myapp", "profile.123.fdata"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale profile: %v", err)
	}

	if err := PrepareDirectory(path); err != nil {
		t.Fatalf("PrepareDirectory: %v", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected stale content removed, got %d entries", len(entries))
	}
}

func TestPrepareDirectoryIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles")
	for i := 0; i < 2; i++ {
		if err := PrepareDirectory(path); err != nil {
			t.Fatalf("PrepareDirectory call %d: %v", i+1, err)
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("call %d: expected empty dir", i+1)
		}
		// Write between calls to prove the second call clears again.
		if err := os.WriteFile(filepath.Join(path, "leftover"), []byte("x"), 0o644); err != nil {
			t.Fatalf("write leftover: %v", err)
		}
	}
}

func TestProfileDirLayout(t *testing.T) {
	if got := BoltProfileDir("/ws"); got != filepath.Join("/ws", "target", "bolt-profiles") {
		t.Fatalf("unexpected bolt profile dir %q", got)
	}
	if got := PGOProfileDir("/ws"); got != filepath.Join("/ws", "target", "pgo-profiles") {
		t.Fatalf("unexpected pgo profile dir %q", got)
	}
}

func TestRootUsesCargoLocateProject(t *testing.T) {
	binDir := t.TempDir()
	script := "#!/bin/sh\nprintf '/work/myproject/Cargo.toml\\n'\n"
	if err := os.WriteFile(filepath.Join(binDir, "cargo"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub cargo: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	root, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root != "/work/myproject" {
		t.Fatalf("expected /work/myproject, got %q", root)
	}
}

func TestRootReportsCargoStderr(t *testing.T) {
	binDir := t.TempDir()
	script := "#!/bin/sh\nprintf 'error: could not find Cargo.toml in /tmp\\n' >&2\nexit 101\n"
	if err := os.WriteFile(filepath.Join(binDir, "cargo"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub cargo: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	_, err := Root()
	if err == nil {
		t.Fatalf("expected error when cargo fails")
	}
	if !strings.Contains(err.Error(), "could not find Cargo.toml") {
		t.Fatalf("expected cargo's stderr in the error, got %q", err.Error())
	}
}
