// Package ui provides the CLI's terminal styling and status-line helpers.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Accent style for file paths. Status is conveyed by unicode symbols, not
// color.
var Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DC4E4"))

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
)

// Successf returns a formatted success message with checkmark symbol.
func Successf(format string, args ...interface{}) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, fmt.Sprintf(format, args...))
}

// Errorf returns a formatted error message with X symbol.
func Errorf(format string, args ...interface{}) string {
	return fmt.Sprintf("%s %s", SymbolError, fmt.Sprintf(format, args...))
}

// FilePath returns an accent-styled file path.
func FilePath(path string) string {
	return Accent.Render(path)
}
