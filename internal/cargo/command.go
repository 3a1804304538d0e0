package cargo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"cargoboost/internal/console"
	"cargoboost/internal/rustc"
)

// Command is the cargo subcommand being wrapped.
type Command string

const (
	CommandBuild Command = "build"
	CommandTest  Command = "test"
	CommandBench Command = "bench"
	CommandRun   Command = "run"
)

const rustflagsEnv = "RUSTFLAGS"

// messageFormat asks cargo for one JSON record per line, with rustc
// diagnostics pre-rendered so they can be replayed to the terminal.
const messageFormat = "json-diagnostic-rendered-ansi"

// Output is the captured result of one cargo invocation.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// BuildError means cargo exited non-zero. It carries everything needed
// to show the user the compiler's own error text even though stdout was
// captured rather than streamed.
type BuildError struct {
	ExitCode int
	Stderr   string
	// Rendered is the human-readable replay of the captured JSON stdout.
	Rendered string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cargo exited with code %d\n%s\n%s", e.ExitCode, e.Stderr, e.Rendered)
}

// Stream carries the writers a build invocation reports through. Stderr
// optionally mirrors the child's stderr (cargo's own progress output)
// while it runs; Out receives the human-readable status lines. The
// child's stdout is always buffered in full so it can be decoded
// afterwards.
type Stream struct {
	Out    io.Writer
	Stderr io.Writer
}

// StatusWriter returns the destination for human-readable status lines,
// defaulting to stdout.
func (s Stream) StatusWriter() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

// RunWithFlags runs `cargo <kind>` in release mode with the provided
// extra RUSTFLAGS and user arguments, capturing its full output.
//
// The extra flags are appended to any RUSTFLAGS already present in the
// environment and passed through an explicit override on the child
// process; the parent's environment is never mutated. The JSON message
// format and --release are always injected, and a --target for the host
// triple is injected unless the user chose one (keeping build scripts,
// which compile for the host tool triple, out of the instrumented flag
// set).
func RunWithFlags(kind Command, flags string, args []string, stream Stream) (Output, error) {
	rustflags := os.Getenv(rustflagsEnv)
	rustflags = strings.TrimSpace(rustflags + " " + flags)

	filtered := FilterArgs(args)
	for _, warning := range filtered.Warnings {
		console.Warnf(stream.StatusWriter(), "%s", warning)
	}

	cmdArgs := []string{string(kind), "--release", "--message-format", messageFormat}
	if !filtered.ContainsTarget {
		target, err := rustc.DefaultTarget()
		if err != nil {
			return Output{}, fmt.Errorf("resolve default target triple: %w", err)
		}
		cmdArgs = append(cmdArgs, "--target", target)
	}
	cmdArgs = append(cmdArgs, filtered.Filtered...)

	cmd := exec.Command("cargo", cmdArgs...)
	cmd.Env = overrideEnv(os.Environ(), rustflagsEnv, rustflags)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	if stream.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, stream.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	execErr := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if execErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(execErr, &exitErr) {
			return Output{}, fmt.Errorf("run cargo: %w", execErr)
		}
		out.ExitCode = exitErr.ExitCode()
		rendered, renderErr := RenderStream(out.Stdout)
		if renderErr != nil {
			rendered = fmt.Sprintf("could not parse cargo stdout: %v", renderErr)
		}
		return out, &BuildError{
			ExitCode: out.ExitCode,
			Stderr:   strings.TrimRight(stderr.String(), "\n"),
			Rendered: rendered,
		}
	}
	return out, nil
}

// overrideEnv returns env with key set to value, replacing an existing
// entry rather than appending a duplicate.
func overrideEnv(env []string, key, value string) []string {
	out := make([]string, 0, len(env)+1)
	prefix := key + "="
	for _, entry := range env {
		if !strings.HasPrefix(entry, prefix) {
			out = append(out, entry)
		}
	}
	return append(out, prefix+value)
}
