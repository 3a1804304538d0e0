package cargo

import "strings"

// FilteredArgs is the result of sanitizing user-supplied cargo arguments.
type FilteredArgs struct {
	// Filtered is the argument list with reserved flags removed, order
	// preserved.
	Filtered []string
	// ContainsTarget reports whether the user passed --target themselves,
	// in which case no default target is injected.
	ContainsTarget bool
	// Warnings describes every argument that was dropped.
	Warnings []string
}

// FilterArgs strips arguments that cargoboost must control itself.
// --release and --message-format are always injected by the build
// invocation layer; passing them again would make cargo fail or make its
// output unparsable.
func FilterArgs(args []string) FilteredArgs {
	var result FilteredArgs

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--release":
			result.Warnings = append(result.Warnings,
				"do not pass --release manually, it is added automatically")
		case arg == "--message-format":
			result.Warnings = append(result.Warnings,
				"do not pass --message-format manually, it is added automatically")
			// Skip the flag value too.
			if i+1 < len(args) {
				i++
			}
		case strings.HasPrefix(arg, "--message-format="):
			result.Warnings = append(result.Warnings,
				"do not pass --message-format manually, it is added automatically")
		case arg == "--target" || strings.HasPrefix(arg, "--target="):
			result.ContainsTarget = true
			result.Filtered = append(result.Filtered, arg)
		default:
			result.Filtered = append(result.Filtered, arg)
		}
	}
	return result
}
