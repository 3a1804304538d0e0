// Package bolt drives post-link binary instrumentation and optimization
// of compiled artifacts through llvm-bolt.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"

	"cargoboost/internal/cargo"
	"cargoboost/internal/console"
	"cargoboost/internal/tools"
	"cargoboost/internal/workspace"
)

// InstrumentOptions configures an instrumentation build.
type InstrumentOptions struct {
	// CargoArgs are passed through to `cargo build` after filtering.
	CargoArgs []string
	// Stream optionally mirrors cargo's live progress output.
	Stream cargo.Stream
}

// Instrument builds the workspace in release mode with BOLT-compatible
// relocations and rewrites every produced executable into an
// instrumented sibling copy. Profiles gathered by running those copies
// land under the workspace's bolt-profiles directory, one subdirectory
// per binary base name.
func Instrument(opts InstrumentOptions) error {
	env, err := FindEnv()
	if err != nil {
		return err
	}
	root, err := workspace.Root()
	if err != nil {
		return err
	}

	out := opts.Stream.StatusWriter()
	profileDir := workspace.BoltProfileDir(root)
	if _, err := os.Stat(profileDir); err == nil {
		console.Infof(out, "profile directory already exists, it will be cleared")
	}
	if err := workspace.PrepareDirectory(profileDir); err != nil {
		return err
	}
	console.Infof(out, "BOLT profiles will be stored into %s", console.Path(profileDir))

	captured, err := cargo.RunWithFlags(cargo.CommandBuild, rustflags, opts.CargoArgs, opts.Stream)
	if err != nil {
		return err
	}

	messages, err := cargo.ParseStream(captured.Stdout)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		switch msg.Kind {
		case cargo.KindCompilerArtifact:
			if msg.Artifact.Executable == "" {
				continue
			}
			console.Infof(out, "%s %s built successfully, instrumenting it with BOLT",
				msg.Artifact.Kind(), console.Name(msg.Artifact.Target.Name))
			instrumented, err := instrumentBinary(env, msg.Artifact.Executable, profileDir)
			if err != nil {
				return fmt.Errorf("instrument %s: %w", msg.Artifact.Target.Name, err)
			}
			console.Infof(out, "%s %s instrumented successfully, now run %s on your workload",
				msg.Artifact.Kind(), console.Name(msg.Artifact.Target.Name), console.Path(instrumented))
		case cargo.KindBuildFinished:
			if msg.Success {
				console.Infof(out, "BOLT instrumentation build finished %s", console.Success("successfully"))
			} else {
				console.Infof(out, "BOLT instrumentation build has %s", console.Failure("failed"))
			}
		default:
			fmt.Fprint(out, cargo.Render(msg))
		}
	}
	return nil
}

// instrumentBinary rewrites one executable with llvm-bolt and returns
// the instrumented copy's path.
func instrumentBinary(env Env, exe, profileDir string) (string, error) {
	if err := os.MkdirAll(filepath.Join(profileDir, baseName(exe)), 0o755); err != nil {
		return "", fmt.Errorf("create artifact profile directory: %w", err)
	}

	instrumented := InstrumentedPath(exe)
	_, err := tools.Run(env.Bolt,
		"-instrument", exe,
		"--instrumentation-file-append-pid",
		"--instrumentation-file", ProfilePrefix(profileDir, exe),
		"-update-debug-sections",
		"-o", instrumented,
	)
	if err != nil {
		return "", err
	}
	return instrumented, nil
}
