// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles provides styled output helpers for the CLI. All styling renders
// through a single lipgloss renderer bound to the output writer, so color
// support detection follows the writer, not the process.
type Styles struct {
	renderer *lipgloss.Renderer

	success  lipgloss.Style
	errs     lipgloss.Style
	filePath lipgloss.Style
	account  lipgloss.Style
	amount   lipgloss.Style
	keyword  lipgloss.Style
	dim      lipgloss.Style
	warning  lipgloss.Style
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		renderer: r,
		success:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		errs:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		filePath: r.NewStyle().Foreground(lipgloss.Color("6")),
		account:  r.NewStyle().Foreground(lipgloss.Color("3")),
		amount:   r.NewStyle().Foreground(lipgloss.Color("5")),
		keyword:  r.NewStyle().Bold(true),
		dim:      r.NewStyle().Faint(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string { return s.success.Render(text) }

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string { return s.errs.Render(text) }

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string { return s.filePath.Render(text) }

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string { return s.account.Render(text) }

// Amount returns a styled amount/currency (magenta).
func (s *Styles) Amount(text string) string { return s.amount.Render(text) }

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string { return s.keyword.Render(text) }

// Dim returns dimmed text for secondary information.
func (s *Styles) Dim(text string) string { return s.dim.Render(text) }

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string { return s.warning.Render(text) }

// Timing styles a duration: dimmed when fast, warning-colored when slow.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.warning.Render(text)
	}
	return s.dim.Render(text)
}
