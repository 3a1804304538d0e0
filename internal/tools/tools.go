// Package tools resolves and runs the external LLVM binaries the
// optimization modes chain onto build artifacts.
package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// NotFoundError means a required external tool is missing from PATH.
type NotFoundError struct {
	Tool string
	Hint string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find `%s` on PATH. %s", e.Tool, e.Hint)
}

// RunError means an external tool ran and exited non-zero. A failed
// rewrite leaves the artifact set in an unusable state, so callers treat
// this as fatal.
type RunError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s exited with code %d\n%s", e.Tool, e.ExitCode, e.Output)
}

// Find locates tool on PATH, returning hint in the error when missing.
func Find(tool, hint string) (string, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", &NotFoundError{Tool: tool, Hint: hint}
	}
	return path, nil
}

// Run executes the tool and returns its stdout. Stderr is folded into
// the error on failure.
func Run(path string, args ...string) ([]byte, error) {
	cmd := exec.Command(path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &RunError{
				Tool:     path,
				ExitCode: exitErr.ExitCode(),
				Output:   strings.TrimRight(stderr.String(), "\n"),
			}
		}
		return nil, fmt.Errorf("run %s: %w", path, err)
	}
	return stdout.Bytes(), nil
}
