package cli

import (
	"io"
	"os"

	"cargoboost/internal/bolt"
	"cargoboost/internal/cargo"
	"cargoboost/internal/check"
	"cargoboost/internal/pgo"
	"cargoboost/internal/tui"
)

func runCheck() error {
	return check.Environment(os.Stdout)
}

func runInstrument(args []string) error {
	return runBuild("PGO instrumentation build", func(out, stderr io.Writer) error {
		return pgo.Instrument(pgo.InstrumentOptions{
			Command:   cargo.CommandBuild,
			CargoArgs: args,
			Stream:    cargo.Stream{Out: out, Stderr: stderr},
		})
	})
}

func runOptimize(args []string) error {
	return runBuild("PGO optimized build", func(out, stderr io.Writer) error {
		return pgo.Optimize(pgo.OptimizeOptions{
			CargoArgs: args,
			Stream:    cargo.Stream{Out: out, Stderr: stderr},
		})
	})
}

func runBoltInstrument(args []string) error {
	return runBuild("BOLT instrumentation build", func(out, stderr io.Writer) error {
		return bolt.Instrument(bolt.InstrumentOptions{
			CargoArgs: args,
			Stream:    cargo.Stream{Out: out, Stderr: stderr},
		})
	})
}

func runBoltOptimize(args []string) error {
	return runBuild("BOLT optimized build", func(out, stderr io.Writer) error {
		return bolt.Optimize(bolt.OptimizeOptions{
			CargoArgs: args,
			Stream:    cargo.Stream{Out: out, Stderr: stderr},
		})
	})
}

// runBuild wraps a build in the live progress view when stdout is a
// terminal, and writes status and cargo's progress straight to stdout
// and stderr otherwise.
func runBuild(title string, run func(out, stderr io.Writer) error) error {
	if progressEnabled() {
		return tui.RunBuild(title, run)
	}
	return run(os.Stdout, os.Stderr)
}

func progressEnabled() bool {
	if os.Getenv("CARGOBOOST_PLAIN") != "" {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
