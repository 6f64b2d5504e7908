package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskoe/beancount-dansk/ast"
	"github.com/haskoe/beancount-dansk/formatter"
	"github.com/haskoe/beancount-dansk/plugins"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// positionedError is the shape shared by parse, rewrite and validation
// errors: a message plus where it happened.
type positionedError interface {
	GetPosition() ast.Position
	Error() string
}

// directiveError additionally carries the offending directive, which is
// rendered below the message.
type directiveError interface {
	positionedError
	GetDirective() ast.Directive
}

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error with styling and context. Advisory errors
// (verification mismatches, render failures) use the warning style.
func (r *ErrorRenderer) Render(err error) string {
	style := errorStyle
	if plugins.IsAdvisory(err) {
		style = warningStyle
	}

	if e, ok := err.(directiveError); ok && e.GetDirective() != nil {
		return r.renderWithDirective(e.Error(), e.GetDirective(), style)
	}

	if e, ok := err.(positionedError); ok && r.source != nil {
		return r.renderWithSourceContext(e.GetPosition(), e.Error(), style)
	}

	if _, ok := err.(positionedError); ok {
		return style.Render(err.Error())
	}

	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithSourceContext(pos ast.Position, message string, style lipgloss.Style) string {
	var buf strings.Builder

	buf.WriteString(style.Render(message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(r.source), "\n")

	startLine := pos.Line - 3
	endLine := pos.Line + 1

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		if i < 0 || i >= len(sourceLines) {
			continue
		}
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(sourceLines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString(errCaretStyle.Render("^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithDirective(message string, directive ast.Directive, style lipgloss.Style) string {
	var buf strings.Builder

	buf.WriteString(style.Render(message))
	buf.WriteString("\n\n")

	rendered := formatter.New().FormatDirective(directive)
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(line))
		buf.WriteByte('\n')
	}

	return buf.String()
}
