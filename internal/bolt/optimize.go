package bolt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cargoboost/internal/cargo"
	"cargoboost/internal/console"
	"cargoboost/internal/tools"
	"cargoboost/internal/workspace"
)

// OptimizeOptions configures an optimized build.
type OptimizeOptions struct {
	CargoArgs []string
	Stream    cargo.Stream
}

// Optimize rebuilds the workspace with BOLT-compatible relocations and
// rewrites every produced executable using the profiles gathered from a
// previous instrumented run.
func Optimize(opts OptimizeOptions) error {
	env, err := FindEnv()
	if err != nil {
		return err
	}
	root, err := workspace.Root()
	if err != nil {
		return err
	}
	profileDir := workspace.BoltProfileDir(root)
	out := opts.Stream.StatusWriter()

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
			optimized, err := optimizeBinary(out, env, msg.Artifact.Executable, profileDir)
			if err != nil {
				return fmt.Errorf("optimize %s: %w", msg.Artifact.Target.Name, err)
			}
			console.Infof(out, "%s %s optimized with BOLT, the result is at %s",
				msg.Artifact.Kind(), console.Name(msg.Artifact.Target.Name), console.Path(optimized))
		case cargo.KindBuildFinished:
			if msg.Success {
				console.Infof(out, "BOLT optimized build finished %s", console.Success("successfully"))
			} else {
				console.Infof(out, "BOLT optimized build has %s", console.Failure("failed"))
			}
		default:
			fmt.Fprint(out, cargo.Render(msg))
		}
	}
	return nil
}

func optimizeBinary(out io.Writer, env Env, exe, profileDir string) (string, error) {
	optimized := OptimizedPath(exe)
	args := []string{
		exe,
		"-reorder-blocks=ext-tsp",
		"-reorder-functions=hfsort",
		"-split-functions",
		"-split-all-cold",
		"-update-debug-sections",
		"-o", optimized,
	}

	merged, err := mergeProfiles(env, exe, profileDir)
	if err != nil {
		return "", err
	}
	if merged == "" {
		console.Warnf(out, "no BOLT profiles found for %s under %s, optimizing without profile data",
			baseName(exe), profileDir)
	} else {
		args = append(args, "-data", merged)
	}

	if _, err := tools.Run(env.Bolt, args...); err != nil {
		return "", err
	}
	return optimized, nil
}

// mergeProfiles combines the per-run profile files an instrumented
// binary wrote into a single file merge-fdata emits on stdout. Returns
// an empty path when no profiles exist.
func mergeProfiles(env Env, exe, profileDir string) (string, error) {
	artifactDir := filepath.Join(profileDir, baseName(exe))
	profiles, err := filepath.Glob(filepath.Join(artifactDir, "profile*"))
	if err != nil {
		return "", fmt.Errorf("list BOLT profiles: %w", err)
	}
	if len(profiles) == 0 {
		return "", nil
	}

	out, err := tools.Run(env.MergeFdata, profiles...)
	if err != nil {
		return "", err
	}
	merged := filepath.Join(profileDir, baseName(exe)+".merged.fdata")
	if err := os.WriteFile(merged, out, 0o644); err != nil {
		return "", fmt.Errorf("write merged BOLT profile: %w", err)
	}
	return merged, nil
}
