package pgo

import (
	"fmt"
	"path/filepath"

	"cargoboost/internal/cargo"
	"cargoboost/internal/console"
	"cargoboost/internal/tools"
	"cargoboost/internal/workspace"
)

// OptimizeOptions configures the profile-consuming rebuild.
type OptimizeOptions struct {
	CargoArgs []string
	Stream    cargo.Stream
}

// Optimize merges the raw profiles written by an instrumented run and
// rebuilds the workspace with -Cprofile-use pointing at the result.
func Optimize(opts OptimizeOptions) error {
	profdata, err := FindProfdata()
	if err != nil {
		return err
	}
	root, err := workspace.Root()
	if err != nil {
		return err
	}
	profileDir := workspace.PGOProfileDir(root)
	out := opts.Stream.StatusWriter()

	merged, err := mergeProfiles(profdata, profileDir)
	if err != nil {
		return err
	}
	console.Infof(out, "PGO profiles merged into %s", console.Path(merged))

	flags := fmt.Sprintf("-Cprofile-use=%s -Cllvm-args=-pgo-warn-missing-function", merged)
	captured, err := cargo.RunWithFlags(cargo.CommandBuild, flags, opts.CargoArgs, opts.Stream)
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
			console.Infof(out, "%s %s optimized with PGO, the result is at %s",
				msg.Artifact.Kind(), console.Name(msg.Artifact.Target.Name), console.Path(msg.Artifact.Executable))
		case cargo.KindBuildFinished:
			if msg.Success {
				console.Infof(out, "PGO optimized build finished %s", console.Success("successfully"))
			} else {
				console.Infof(out, "PGO optimized build has %s", console.Failure("failed"))
			}
		default:
			fmt.Fprint(out, cargo.Render(msg))
		}
	}
	return nil
}

// mergeProfiles combines every raw profile in profileDir into a single
// merged.profdata file and returns its path.
func mergeProfiles(profdata, profileDir string) (string, error) {
	profiles, err := filepath.Glob(filepath.Join(profileDir, "*.profraw"))
	if err != nil {
		return "", fmt.Errorf("list PGO profiles: %w", err)
	}
	if len(profiles) == 0 {
		return "", fmt.Errorf("no PGO profiles found in %s, run `cargoboost instrument` and exercise the binary first", profileDir)
	}

	merged := filepath.Join(profileDir, "merged.profdata")
	args := append([]string{"merge", "-o", merged}, profiles...)
	if _, err := tools.Run(profdata, args...); err != nil {
		return "", err
	}
	return merged, nil
}
