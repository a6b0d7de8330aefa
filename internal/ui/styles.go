// Package ui provides styled terminal output for user-facing messages.
// Fatal errors render red, warnings yellow, successes green, and
// informational lines blue.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Errorf writes a red error line.
func Errorf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf(format, a...)))
}

// Warnf writes a yellow warning line.
func Warnf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, a...)))
}

// Successf writes a green success line.
func Successf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf(format, a...)))
}

// Infof writes a blue informational line.
func Infof(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf(format, a...)))
}
