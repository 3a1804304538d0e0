// Package workspace locates the Cargo workspace and manages the on-disk
// directories where profile data accumulates.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	boltProfileDirName = "bolt-profiles"
	pgoProfileDirName  = "pgo-profiles"
)

// Root returns the Cargo workspace root directory by asking cargo for
// the workspace manifest path.
func Root() (string, error) {
	out, err := exec.Command("cargo", "locate-project", "--workspace", "--message-format", "plain").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("locate cargo workspace: %w\n%s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("locate cargo workspace: %w", err)
	}
	manifest := strings.TrimSpace(string(out))
	if manifest == "" {
		return "", fmt.Errorf("cargo reported no workspace manifest")
	}
	return filepath.Dir(manifest), nil
}

// BoltProfileDir is where instrumented binaries write BOLT profiles.
func BoltProfileDir(root string) string {
	return filepath.Join(root, "target", boltProfileDirName)
}

// PGOProfileDir is where instrumented binaries write PGO profiles.
func PGOProfileDir(root string) string {
	return filepath.Join(root, "target", pgoProfileDirName)
}

// PrepareDirectory guarantees path exists and is empty: a pre-existing
// directory is removed recursively first, so profile data from an
// earlier run can never be misattributed to the new one.
func PrepareDirectory(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clear profile directory %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create profile directory %s: %w", path, err)
	}
	return nil
}
