package plugins

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// Shape validation for the three recognized directive forms. Each parse
// function either extracts fully typed fields or returns exactly one error
// describing the first independent problem; the caller drops the directive
// on any non-nil error.

// expenseShape is the typed form of a quick-expense directive, covering both
// the legacy long form (4-7 values) and the short form (exactly 3 values).
// Optional fields are zero-valued when not given positionally; the rewriter
// resolves them from metadata and filename classification afterwards.
type expenseShape struct {
	Account     ast.Account
	Description string
	Total       decimal.Decimal
	Currency    string

	// Legacy-form positional extras.
	VariantTag string // empty in the short form
	Credit     string // raw token, alias resolution happens later
	Ref        string
	Hint       *decimal.Decimal
}

// parseExpenseShape validates a quick-expense directive against the two
// accepted arities. The short form carries only account, description and
// amount; the legacy form continues with VAT variant tag, credit account,
// external reference and net-amount hint, each optional in that order.
func parseExpenseShape(d *ast.Custom) (*expenseShape, error) {
	n := len(d.Values)
	if n != 3 && (n < 4 || n > 7) {
		return nil, &ShapeError{
			Pos:       d.Pos,
			Directive: d,
			Message:   "Expected 3 to 7 arguments for quick-expense",
		}
	}

	account, ok := d.Values[0].Text()
	if !ok {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "First argument must be an account"}
	}
	expenseAccount, err := ast.NewAccount(account)
	if err != nil {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: fmt.Sprintf("First argument must be an account: %v", err)}
	}

	description, ok := d.Values[1].Text()
	if !ok {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Second argument must be a string"}
	}

	if !d.Values[2].IsAmount() {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Third argument must be an amount"}
	}
	total, err := d.Values[2].Amount.Decimal()
	if err != nil {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: fmt.Sprintf("Third argument must be an amount: %v", err)}
	}

	shape := &expenseShape{
		Account:     expenseAccount,
		Description: description,
		Total:       total,
		Currency:    d.Values[2].Amount.Currency,
	}

	if n >= 4 {
		tag, ok := d.Values[3].Text()
		if !ok {
			return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Fourth argument must be a VAT type string"}
		}
		shape.VariantTag = tag
	}

	if n >= 5 {
		credit, ok := d.Values[4].Text()
		if !ok {
			return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Fifth argument must be an account"}
		}
		shape.Credit = credit
	}

	if n >= 6 {
		ref, ok := d.Values[5].Text()
		if !ok {
			return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Sixth argument must be a string"}
		}
		shape.Ref = ref
	}

	if n == 7 {
		if !d.Values[6].IsAmount() {
			return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Seventh argument must be an amount"}
		}
		hint, err := d.Values[6].Amount.Decimal()
		if err != nil {
			return nil, &TypeError{Pos: d.Pos, Directive: d, Message: fmt.Sprintf("Seventh argument must be an amount: %v", err)}
		}
		shape.Hint = &hint
	}

	return shape, nil
}

// parseMileageShape validates a quick-mileage directive: exactly one value,
// which must be an amount whose currency position carries the distance unit,
// e.g. 100 KM.
func parseMileageShape(d *ast.Custom) (decimal.Decimal, error) {
	if len(d.Values) != 1 {
		return decimal.Zero, &ShapeError{
			Pos:       d.Pos,
			Directive: d,
			Message:   "Expected 1 argument for quick-mileage (Distance)",
		}
	}

	if !d.Values[0].IsAmount() {
		return decimal.Zero, &TypeError{
			Pos:       d.Pos,
			Directive: d,
			Message:   "Argument must be an amount (e.g. 100 KM)",
		}
	}

	dist, err := d.Values[0].Amount.Decimal()
	if err != nil {
		return decimal.Zero, &TypeError{
			Pos:       d.Pos,
			Directive: d,
			Message:   fmt.Sprintf("Argument must be an amount (e.g. 100 KM): %v", err),
		}
	}

	return dist, nil
}

// invoiceShape is the typed header of a sales-invoice directive. Line items
// are kept raw here; parseLineItem validates them one at a time so a bad
// line only costs itself.
type invoiceShape struct {
	ClientName string
	InvoiceID  string
	Income     ast.Account
	RawLines   []*ast.CustomValue
}

// parseInvoiceShape validates a sales-invoice directive: client name,
// invoice identifier, income account, then one or more line-item strings.
func parseInvoiceShape(d *ast.Custom) (*invoiceShape, error) {
	if len(d.Values) < 4 {
		return nil, &ShapeError{
			Pos:       d.Pos,
			Directive: d,
			Message:   "Expected at least 4 arguments for sales-invoice",
		}
	}

	client, ok := d.Values[0].Text()
	if !ok {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "First argument must be a client name string"}
	}

	invoiceID, ok := d.Values[1].Text()
	if !ok {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Second argument must be an invoice identifier string"}
	}

	incomeName, ok := d.Values[2].Text()
	if !ok {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: "Third argument must be an income account"}
	}
	income, err := ast.NewAccount(incomeName)
	if err != nil {
		return nil, &TypeError{Pos: d.Pos, Directive: d, Message: fmt.Sprintf("Third argument must be an income account: %v", err)}
	}

	return &invoiceShape{
		ClientName: client,
		InvoiceID:  invoiceID,
		Income:     income,
		RawLines:   d.Values[3:],
	}, nil
}

// parseLineItem validates one semicolon-delimited line item of the exact
// form "Description;Quantity;Price". The second result carries the reason
// on failure.
func parseLineItem(value *ast.CustomValue) (InvoiceLine, string) {
	raw, ok := value.Text()
	if !ok {
		return InvoiceLine{}, "must be a string"
	}

	parts := strings.Split(raw, ";")
	if len(parts) != 3 {
		return InvoiceLine{}, "expected 'Desc;Qty;Price'"
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return InvoiceLine{}, fmt.Sprintf("invalid quantity %q", parts[1])
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return InvoiceLine{}, fmt.Sprintf("invalid price %q", parts[2])
	}

	return InvoiceLine{
		Description: parts[0],
		Quantity:    qty,
		Price:       price,
		LineTotal:   qty.Mul(price),
	}, ""
}
