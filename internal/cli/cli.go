// Package cli dispatches cargoboost's subcommands.
package cli

import (
	"fmt"
	"os"
)

// UsageError is a user mistake on the command line; main prints usage
// and exits 2 for it.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

func Usage() string {
	return `cargoboost: PGO and BOLT builds for Cargo projects

Usage:
  cargoboost check
  cargoboost instrument [cargo build args...]
  cargoboost optimize [cargo build args...]
  cargoboost bolt instrument [cargo build args...]
  cargoboost bolt optimize [cargo build args...]

Workflow:
  1. cargoboost check        verify the required tools are installed
  2. cargoboost instrument   build with PGO instrumentation
  3. run the built binary on a representative workload
  4. cargoboost optimize     rebuild using the gathered profiles

BOLT works the same way on the linked binary: instrument, run the
<name>-bolt-instrumented copy on your workload, then optimize.

Environment:
  RUSTFLAGS          extra compiler flags, preserved and appended to
  CARGOBOOST_PLAIN   disable the live progress view
`
}

func Run(args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "missing command"}
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, Usage())
		return nil
	case "check":
		if len(args) != 1 {
			return UsageError{Message: "check takes no arguments"}
		}
		return runCheck()
	case "instrument":
		return runInstrument(args[1:])
	case "optimize":
		return runOptimize(args[1:])
	case "bolt":
		if len(args) < 2 {
			return UsageError{Message: "bolt requires a subcommand: instrument | optimize"}
		}
		switch args[1] {
		case "instrument":
			return runBoltInstrument(args[2:])
		case "optimize":
			return runBoltOptimize(args[2:])
		default:
			return UsageError{Message: fmt.Sprintf("unknown bolt subcommand: %q", args[1])}
		}
	default:
		return UsageError{Message: fmt.Sprintf("unknown command: %q", args[0])}
	}
}
