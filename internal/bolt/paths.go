package bolt

import (
	"path/filepath"
	"strings"
)

// baseName returns the executable's file name without its extension.
func baseName(exe string) string {
	name := filepath.Base(exe)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// InstrumentedPath is where the instrumented copy of an executable is
// written: a sibling file named `<basename>-bolt-instrumented`.
func InstrumentedPath(exe string) string {
	return filepath.Join(filepath.Dir(exe), baseName(exe)+"-bolt-instrumented")
}

// OptimizedPath is where the BOLT-optimized copy of an executable is
// written.
func OptimizedPath(exe string) string {
	return filepath.Join(filepath.Dir(exe), baseName(exe)+"-bolt-optimized")
}

// ProfilePrefix is the per-binary profile file prefix inside the profile
// directory. llvm-bolt appends the writing process's pid to each file it
// creates under this prefix.
func ProfilePrefix(profileDir, exe string) string {
	return filepath.Join(profileDir, baseName(exe), "profile")
}
