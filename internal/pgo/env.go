package pgo

import "cargoboost/internal/tools"

const installHint = "Install it with `rustup component add llvm-tools-preview` " +
	"or make the LLVM `bin` directory part of PATH."

// FindProfdata locates llvm-profdata, needed to merge raw PGO profiles.
func FindProfdata() (string, error) {
	return tools.Find("llvm-profdata", installHint)
}
