// Package pgo drives the two compiler-level profile-guided optimization
// modes: an instrumented build that records execution data and an
// optimized rebuild that consumes it.
package pgo

import (
	"fmt"
	"os"

	"cargoboost/internal/cargo"
	"cargoboost/internal/console"
	"cargoboost/internal/workspace"
)

// InstrumentOptions configures a PGO instrumentation build.
type InstrumentOptions struct {
	// Command selects the cargo subcommand; instrumented test or bench
	// runs gather profiles directly.
	Command   cargo.Command
	CargoArgs []string
	Stream    cargo.Stream
}

// Instrument builds the workspace with -Cprofile-generate so every
// produced binary records execution profiles into the workspace's
// pgo-profiles directory when run.
func Instrument(opts InstrumentOptions) error {
	root, err := workspace.Root()
	if err != nil {
		return err
	}

	out := opts.Stream.StatusWriter()
	profileDir := workspace.PGOProfileDir(root)
	if _, err := os.Stat(profileDir); err == nil {
		console.Infof(out, "profile directory already exists, it will be cleared")
	}
	if err := workspace.PrepareDirectory(profileDir); err != nil {
		return err
	}
	console.Infof(out, "PGO profiles will be stored into %s", console.Path(profileDir))

	flags := fmt.Sprintf("-Cprofile-generate=%s", profileDir)
	captured, err := cargo.RunWithFlags(opts.Command, flags, opts.CargoArgs, opts.Stream)
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
			console.Infof(out, "%s %s built with PGO instrumentation, now run %s on your workload",
				msg.Artifact.Kind(), console.Name(msg.Artifact.Target.Name), console.Path(msg.Artifact.Executable))
		case cargo.KindBuildFinished:
			if msg.Success {
				console.Infof(out, "PGO instrumentation build finished %s", console.Success("successfully"))
			} else {
				console.Infof(out, "PGO instrumentation build has %s", console.Failure("failed"))
			}
		default:
			fmt.Fprint(out, cargo.Render(msg))
		}
	}
	return nil
}
