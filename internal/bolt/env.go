package bolt

import "cargoboost/internal/tools"

const installHint = "Build LLVM with BOLT and add its `bin` directory to PATH."

// rustflags adds linker relocations so llvm-bolt can rewrite the binary.
const rustflags = "-C link-args=-Wl,-q"

// Env holds the resolved paths of the BOLT toolchain.
type Env struct {
	Bolt       string
	MergeFdata string
}

// FindEnv locates llvm-bolt and merge-fdata on PATH.
func FindEnv() (Env, error) {
	bolt, err := tools.Find("llvm-bolt", installHint)
	if err != nil {
		return Env{}, err
	}
	mergeFdata, err := tools.Find("merge-fdata", installHint)
	if err != nil {
		return Env{}, err
	}
	return Env{Bolt: bolt, MergeFdata: mergeFdata}, nil
}
