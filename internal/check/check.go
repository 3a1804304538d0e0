// Package check verifies that the external tools the optimization
// workflows depend on are installed.
package check

import (
	"fmt"
	"io"
	"os/exec"

	"cargoboost/internal/console"
	"cargoboost/internal/rustc"
	"cargoboost/internal/tools"
)

const llvmToolsHint = "Install it with `rustup component add llvm-tools-preview` " +
	"or make the LLVM `bin` directory part of PATH."

const boltHint = "Build LLVM with BOLT and add its `bin` directory to PATH."

// requirement is one tool the environment check probes for.
type requirement struct {
	tool     string
	hint     string
	optional bool
}

var requirements = []requirement{
	{tool: "cargo"},
	{tool: "rustc"},
	{tool: "llvm-profdata", hint: llvmToolsHint},
	{tool: "llvm-bolt", hint: boltHint, optional: true},
	{tool: "merge-fdata", hint: boltHint, optional: true},
}

// Environment probes every requirement, writes one line per tool to w,
// and fails when a non-optional tool is missing.
func Environment(w io.Writer) error {
	var missing []string

	for _, req := range requirements {
		path, err := exec.LookPath(req.tool)
		if err != nil {
			note := req.hint
			if req.optional {
				note = "optional, BOLT modes unavailable. " + req.hint
			} else {
				missing = append(missing, req.tool)
			}
			fmt.Fprintf(w, "%s %s not found. %s\n", console.Failure("✗"), req.tool, note)
			continue
		}
		fmt.Fprintf(w, "%s %s found (%s)\n", console.Success("✓"), req.tool, path)
	}

	if target, err := rustc.DefaultTarget(); err == nil {
		fmt.Fprintf(w, "%s host target: %s\n", console.Success("✓"), target)
	} else {
		fmt.Fprintf(w, "%s cannot resolve host target: %v\n", console.Failure("✗"), err)
	}

	if len(missing) > 0 {
		return &tools.NotFoundError{Tool: missing[0], Hint: hintFor(missing[0])}
	}
	return nil
}

func hintFor(tool string) string {
	for _, req := range requirements {
		if req.tool == tool {
			if req.hint != "" {
				return req.hint
			}
			return "Install the Rust toolchain, e.g. via rustup."
		}
	}
	return ""
}
