package plugins

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// Rewrite errors are accumulated, never thrown as control flow: the pass
// continues after appending one, skipping only the offending directive.
// ShapeError, TypeError, UnknownVariantError and RateLookupError drop the
// directive. VerificationError and RenderError are advisory: the transaction
// is still emitted.
//
// All types expose GetPosition/GetDirective so the CLI error renderer can
// show source context, mirroring the ledger package's error shape.

// Advisory is implemented by errors that do not block the transaction.
type Advisory interface {
	Advisory() bool
}

// ShapeError reports a directive with the wrong number of arguments.
type ShapeError struct {
	Pos       ast.Position
	Directive ast.Directive
	Message   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", location(e.Pos, e.Directive), e.Message)
}

func (e *ShapeError) GetPosition() ast.Position   { return e.Pos }
func (e *ShapeError) GetDirective() ast.Directive { return e.Directive }

// TypeError reports a directive value with the wrong tag, e.g. a string
// where an amount is expected.
type TypeError struct {
	Pos       ast.Position
	Directive ast.Directive
	Message   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", location(e.Pos, e.Directive), e.Message)
}

func (e *TypeError) GetPosition() ast.Position   { return e.Pos }
func (e *TypeError) GetDirective() ast.Directive { return e.Directive }

// UnknownVariantError reports an unrecognized VAT variant tag.
type UnknownVariantError struct {
	Pos       ast.Position
	Directive ast.Directive
	Variant   string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("%s: Unknown VAT type: %s", location(e.Pos, e.Directive), e.Variant)
}

func (e *UnknownVariantError) GetPosition() ast.Position   { return e.Pos }
func (e *UnknownVariantError) GetDirective() ast.Directive { return e.Directive }

// RateLookupError reports a mileage directive dated in a year with no rate.
type RateLookupError struct {
	Pos       ast.Position
	Directive ast.Directive
	Year      int
}

func (e *RateLookupError) Error() string {
	return fmt.Sprintf("%s: No mileage rate found for year %d", location(e.Pos, e.Directive), e.Year)
}

func (e *RateLookupError) GetPosition() ast.Position   { return e.Pos }
func (e *RateLookupError) GetDirective() ast.Directive { return e.Directive }

// LineItemError reports a single malformed sales-invoice line item. The
// directive proceeds with its remaining valid lines.
type LineItemError struct {
	Pos       ast.Position
	Directive ast.Directive
	Item      string
	Reason    string
}

func (e *LineItemError) Error() string {
	return fmt.Sprintf("%s: Invalid line item %q: %s", location(e.Pos, e.Directive), e.Item, e.Reason)
}

func (e *LineItemError) GetPosition() ast.Position   { return e.Pos }
func (e *LineItemError) GetDirective() ast.Directive { return e.Directive }

// VerificationError reports a net-amount hint that disagrees with the
// computed expense leg beyond tolerance. Advisory: the transaction is still
// emitted.
type VerificationError struct {
	Pos        ast.Position
	Directive  ast.Directive
	Calculated decimal.Decimal
	Hint       decimal.Decimal
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: Net amount verification failed. Calculated: %s, Hint: %s",
		location(e.Pos, e.Directive), e.Calculated, e.Hint)
}

func (e *VerificationError) Advisory() bool              { return true }
func (e *VerificationError) GetPosition() ast.Position   { return e.Pos }
func (e *VerificationError) GetDirective() ast.Directive { return e.Directive }

// RenderError reports a failed invoice document rendering. Advisory: the
// accounting effect never depends on documentation success.
type RenderError struct {
	Pos       ast.Position
	Directive ast.Directive
	InvoiceID string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: Failed to generate document for invoice %s: %v",
		location(e.Pos, e.Directive), e.InvoiceID, e.Err)
}

func (e *RenderError) Advisory() bool              { return true }
func (e *RenderError) Unwrap() error               { return e.Err }
func (e *RenderError) GetPosition() ast.Position   { return e.Pos }
func (e *RenderError) GetDirective() ast.Directive { return e.Directive }

// IsAdvisory reports whether err only warns and did not drop a directive.
func IsAdvisory(err error) bool {
	a, ok := err.(Advisory)
	return ok && a.Advisory()
}

// location formats the error prefix as filename:line, falling back to the
// directive date when no source position is known.
func location(pos ast.Position, d ast.Directive) string {
	if pos.Filename != "" {
		return fmt.Sprintf("%s:%d", pos.Filename, pos.Line)
	}
	if d != nil {
		if date := ast.DateOf(d); !date.IsZero() {
			return date.String()
		}
	}
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}
