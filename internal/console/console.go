// Package console holds the shared styling and printing helpers used by
// every command's terminal output.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Name renders a build target name.
func Name(s string) string { return nameStyle.Render(s) }

// Path renders a filesystem path the user is expected to act on.
func Path(s string) string { return pathStyle.Render(s) }

// Success renders an affirmative word or sentence.
func Success(s string) string { return successStyle.Render(s) }

// Failure renders a negative word or sentence.
func Failure(s string) string { return failureStyle.Render(s) }

// Infof prints a status line to w. Writes never go straight to the
// terminal: while the progress view runs, w feeds lines through it so
// they are not overdrawn by repaints.
func Infof(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// Warnf prints a warning line to w.
func Warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("warning:"), fmt.Sprintf(format, args...))
}
