package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/haskoe/beancount-dansk/ast"
	"github.com/haskoe/beancount-dansk/ledger"
	"github.com/haskoe/beancount-dansk/parser"
)

func TestErrorRendererParseErrorWithSourceContext(t *testing.T) {
	sourceContent := `2025-01-01 open Assets:Bank:Erhverv
2025-01-01 open not-an-account
2025-01-01 open Expenses:Food`

	parseErr := &parser.ParseError{
		Pos: ast.Position{
			Filename: "test.beancount",
			Line:     2,
			Column:   17,
		},
		Message: "invalid account",
	}

	renderer := NewErrorRenderer([]byte(sourceContent))
	output := renderer.Render(parseErr)

	assert.Contains(t, output, "invalid account")
	assert.Contains(t, output, "not-an-account")
	assert.Contains(t, output, "^")

	foundIndentedLine := false
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "   ") && strings.Contains(line, "not-an-account") {
			foundIndentedLine = true
			break
		}
	}
	assert.True(t, foundIndentedLine, "expected indented source lines")
}

func TestErrorRendererParseErrorWithoutSource(t *testing.T) {
	parseErr := &parser.ParseError{
		Pos:     ast.Position{Filename: "test.beancount", Line: 6},
		Message: "expected amount",
	}

	renderer := NewErrorRenderer(nil)
	output := renderer.Render(parseErr)

	assert.Contains(t, output, "test.beancount:6: expected amount")
}

func TestErrorRendererValidationErrorWithDirective(t *testing.T) {
	tree, err := parser.ParseString(context.Background(), `
2025-03-14 * "Lunch"
  Expenses:Food          125.00 DKK
  Assets:Bank:Erhverv   -120.00 DKK
`)
	assert.NoError(t, err)

	l := ledger.New()
	err = l.Process(context.Background(), tree)
	assert.Error(t, err)

	verr, ok := err.(*ledger.ValidationErrors)
	assert.True(t, ok)

	renderer := NewErrorRenderer(nil)
	output := renderer.RenderAll(verr.Errors)

	// Each error renders its message followed by the offending directive.
	assert.Contains(t, output, "Expenses:Food")
	assert.Contains(t, output, `"Lunch"`)
}

func TestErrorRendererPlainError(t *testing.T) {
	renderer := NewErrorRenderer(nil)
	assert.Equal(t, "boom", renderer.Render(plainError("boom")))
}

func TestErrorRendererRenderAllSeparatesErrors(t *testing.T) {
	renderer := NewErrorRenderer(nil)
	output := renderer.RenderAll([]error{plainError("first"), plainError("second")})

	assert.Contains(t, output, "first\n\nsecond")
}

type plainError string

func (e plainError) Error() string { return string(e) }
