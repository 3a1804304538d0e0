package cargo

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStub(t *testing.T, dir, name, script string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

func stubTools(t *testing.T, cargoScript string) string {
	t.Helper()
	binDir := t.TempDir()
	outDir := t.TempDir()

	writeStub(t, binDir, "rustc", `printf 'host: x86_64-unknown-linux-gnu\n'`)
	writeStub(t, binDir, "cargo", cargoScript)

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("STUB_OUT", outDir)
	return outDir
}

func recordedArgs(t *testing.T, outDir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outDir, "args"))
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

const recordingCargo = `printf '%s\n' "$@" > "$STUB_OUT/args"
printf '%s' "$RUSTFLAGS" > "$STUB_OUT/rustflags"
printf '{"reason":"build-finished","success":true}\n'
`

func TestRunWithFlagsInjectsReleaseFormatAndTarget(t *testing.T) {
	outDir := stubTools(t, recordingCargo)
	t.Setenv("RUSTFLAGS", "")

	out, err := RunWithFlags(CommandBuild, "-Cfoo", []string{"--verbose"}, Stream{})
	if err != nil {
		t.Fatalf("RunWithFlags: %v", err)
	}
	if out.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", out.ExitCode)
	}

	args := recordedArgs(t, outDir)
	want := []string{
		"build", "--release", "--message-format", "json-diagnostic-rendered-ansi",
		"--target", "x86_64-unknown-linux-gnu", "--verbose",
	}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Fatalf("expected args %v, got %v", want, args)
	}
}

func TestRunWithFlagsSkipsTargetWhenUserSuppliedOne(t *testing.T) {
	outDir := stubTools(t, recordingCargo)

	_, err := RunWithFlags(CommandBuild, "", []string{"--target", "aarch64-apple-darwin"}, Stream{})
	if err != nil {
		t.Fatalf("RunWithFlags: %v", err)
	}

	args := strings.Join(recordedArgs(t, outDir), " ")
	if strings.Count(args, "--target") != 1 {
		t.Fatalf("expected exactly one --target, got %q", args)
	}
	if !strings.Contains(args, "--target aarch64-apple-darwin") {
		t.Fatalf("expected user target preserved, got %q", args)
	}
}

func TestRunWithFlagsAppendsToExistingRustflags(t *testing.T) {
	outDir := stubTools(t, recordingCargo)
	t.Setenv("RUSTFLAGS", "-Cuser-flag")

	if _, err := RunWithFlags(CommandBuild, "-Cextra", nil, Stream{}); err != nil {
		t.Fatalf("RunWithFlags: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "rustflags"))
	if err != nil {
		t.Fatalf("read recorded rustflags: %v", err)
	}
	if got := string(data); got != "-Cuser-flag -Cextra" {
		t.Fatalf("expected appended rustflags, got %q", got)
	}
	// The parent process env must stay untouched.
	if os.Getenv("RUSTFLAGS") != "-Cuser-flag" {
		t.Fatalf("parent RUSTFLAGS mutated to %q", os.Getenv("RUSTFLAGS"))
	}
}

func TestRunWithFlagsFiltersForbiddenArgs(t *testing.T) {
	outDir := stubTools(t, recordingCargo)

	_, err := RunWithFlags(CommandBuild, "", []string{"--release", "--message-format", "json", "foo"}, Stream{})
	if err != nil {
		t.Fatalf("RunWithFlags: %v", err)
	}

	args := strings.Join(recordedArgs(t, outDir), " ")
	if strings.Count(args, "--release") != 1 || strings.Count(args, "--message-format") != 1 {
		t.Fatalf("expected forbidden flags injected exactly once, got %q", args)
	}
	if !strings.HasSuffix(args, "foo") {
		t.Fatalf("expected user arg kept, got %q", args)
	}
}

func TestRunWithFlagsBuildErrorCarriesDiagnostics(t *testing.T) {
	failingCargo := `printf '{"reason":"compiler-message","message":{"message":"mismatched types","rendered":"error[E0308]: mismatched types\n"}}\n'
printf 'error: could not compile myapp\n' >&2
exit 101
`
	stubTools(t, failingCargo)

	_, err := RunWithFlags(CommandBuild, "", nil, Stream{})
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if buildErr.ExitCode != 101 {
		t.Fatalf("expected exit code 101, got %d", buildErr.ExitCode)
	}
	if !strings.Contains(buildErr.Rendered, "mismatched types") {
		t.Fatalf("expected rendered diagnostics, got %q", buildErr.Rendered)
	}
	if !strings.Contains(buildErr.Stderr, "could not compile") {
		t.Fatalf("expected raw stderr, got %q", buildErr.Stderr)
	}
	if !strings.Contains(buildErr.Error(), "101") {
		t.Fatalf("expected exit code in message, got %q", buildErr.Error())
	}
}

func TestRunWithFlagsStreamsStderr(t *testing.T) {
	streamingCargo := `printf 'Compiling myapp v0.1.0\n' >&2
printf '{"reason":"build-finished","success":true}\n'
`
	stubTools(t, streamingCargo)

	var live bytes.Buffer
	out, err := RunWithFlags(CommandBuild, "", nil, Stream{Stderr: &live})
	if err != nil {
		t.Fatalf("RunWithFlags: %v", err)
	}
	if !strings.Contains(live.String(), "Compiling myapp") {
		t.Fatalf("expected live stderr mirror, got %q", live.String())
	}
	if !bytes.Contains(out.Stderr, []byte("Compiling myapp")) {
		t.Fatalf("expected stderr also buffered, got %q", out.Stderr)
	}
}

func TestRunWithFlagsWarnsOnStreamWriter(t *testing.T) {
	stubTools(t, recordingCargo)

	var status bytes.Buffer
	_, err := RunWithFlags(CommandBuild, "", []string{"--release"}, Stream{Out: &status})
	if err != nil {
		t.Fatalf("RunWithFlags: %v", err)
	}
	if !strings.Contains(status.String(), "do not pass --release manually") {
		t.Fatalf("expected filter warning on the status writer, got %q", status.String())
	}
}
