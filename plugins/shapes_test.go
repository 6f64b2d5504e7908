package plugins

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/haskoe/beancount-dansk/ast"
)

func TestParseExpenseShapeLegacy(t *testing.T) {
	date := mustDate(t, "2025-03-14")

	d := ast.NewCustom(date, TypeQuickExpense,
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
		ast.StringValue("standard"),
		ast.StringValue("kreditorer"),
		ast.StringValue("F-2025-017"),
		ast.AmountValue("100.00", "DKK"),
	)

	shape, err := parseExpenseShape(d)
	assert.NoError(t, err)
	assert.Equal(t, ast.Account("Expenses:Food"), shape.Account)
	assert.Equal(t, "Lunch", shape.Description)
	assertAmount(t, "125.00", shape.Total)
	assert.Equal(t, "DKK", shape.Currency)
	assert.Equal(t, "standard", shape.VariantTag)
	assert.Equal(t, "kreditorer", shape.Credit)
	assert.Equal(t, "F-2025-017", shape.Ref)
	assert.NotZero(t, shape.Hint)
	assertAmount(t, "100.00", *shape.Hint)
}

func TestParseExpenseShapeShort(t *testing.T) {
	date := mustDate(t, "2025-03-14")

	d := ast.NewCustom(date, TypeQuickExpense,
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
	)

	shape, err := parseExpenseShape(d)
	assert.NoError(t, err)
	assert.Equal(t, "", shape.VariantTag)
	assert.Equal(t, "", shape.Credit)
	assert.Equal(t, "", shape.Ref)
	assert.Zero(t, shape.Hint)
}

func TestParseExpenseShapeErrors(t *testing.T) {
	date := mustDate(t, "2025-03-14")

	tests := []struct {
		name   string
		values []*ast.CustomValue
	}{
		{
			name: "too few arguments",
			values: []*ast.CustomValue{
				ast.AccountValue("Expenses:Food"),
				ast.StringValue("Lunch"),
			},
		},
		{
			name: "too many arguments",
			values: []*ast.CustomValue{
				ast.AccountValue("Expenses:Food"),
				ast.StringValue("Lunch"),
				ast.AmountValue("125.00", "DKK"),
				ast.StringValue("standard"),
				ast.StringValue("kreditorer"),
				ast.StringValue("F-2025-017"),
				ast.AmountValue("100.00", "DKK"),
				ast.StringValue("extra"),
			},
		},
		{
			name: "amount where account expected",
			values: []*ast.CustomValue{
				ast.AmountValue("1.00", "DKK"),
				ast.StringValue("Lunch"),
				ast.AmountValue("125.00", "DKK"),
				ast.StringValue("standard"),
			},
		},
		{
			name: "invalid account name",
			values: []*ast.CustomValue{
				ast.StringValue("food"),
				ast.StringValue("Lunch"),
				ast.AmountValue("125.00", "DKK"),
				ast.StringValue("standard"),
			},
		},
		{
			name: "string where amount expected",
			values: []*ast.CustomValue{
				ast.AccountValue("Expenses:Food"),
				ast.StringValue("Lunch"),
				ast.StringValue("125.00"),
				ast.StringValue("standard"),
			},
		},
		{
			name: "string where hint amount expected",
			values: []*ast.CustomValue{
				ast.AccountValue("Expenses:Food"),
				ast.StringValue("Lunch"),
				ast.AmountValue("125.00", "DKK"),
				ast.StringValue("standard"),
				ast.StringValue("kreditorer"),
				ast.StringValue("F-2025-017"),
				ast.StringValue("100.00"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ast.NewCustom(date, TypeQuickExpense, tt.values...)
			_, err := parseExpenseShape(d)
			assert.Error(t, err)
		})
	}
}

func TestParseMileageShape(t *testing.T) {
	date := mustDate(t, "2025-03-14")

	d := ast.NewCustom(date, TypeQuickMileage, ast.AmountValue("100", "KM"))
	dist, err := parseMileageShape(d)
	assert.NoError(t, err)
	assertAmount(t, "100", dist)
}

func TestParseMileageShapeErrors(t *testing.T) {
	date := mustDate(t, "2025-03-14")

	wrongArity := ast.NewCustom(date, TypeQuickMileage,
		ast.AmountValue("100", "KM"), ast.AmountValue("50", "KM"))
	_, err := parseMileageShape(wrongArity)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))

	noArgs := ast.NewCustom(date, TypeQuickMileage)
	_, err = parseMileageShape(noArgs)
	assert.True(t, errors.As(err, &shapeErr))

	wrongType := ast.NewCustom(date, TypeQuickMileage, ast.StringValue("100 KM"))
	_, err = parseMileageShape(wrongType)
	var typeErr *TypeError
	assert.True(t, errors.As(err, &typeErr))
}

func TestParseInvoiceShape(t *testing.T) {
	date := mustDate(t, "2025-03-14")

	d := ast.NewCustom(date, TypeSalesInvoice,
		ast.StringValue("Acme"),
		ast.StringValue("INV-1"),
		ast.AccountValue("Income:Konsulent"),
		ast.StringValue("Consulting;10;1000"),
		ast.StringValue("Support;2;500"),
	)

	shape, err := parseInvoiceShape(d)
	assert.NoError(t, err)
	assert.Equal(t, "Acme", shape.ClientName)
	assert.Equal(t, "INV-1", shape.InvoiceID)
	assert.Equal(t, ast.Account("Income:Konsulent"), shape.Income)
	assert.Equal(t, 2, len(shape.RawLines))

	short := ast.NewCustom(date, TypeSalesInvoice,
		ast.StringValue("Acme"),
		ast.StringValue("INV-1"),
		ast.AccountValue("Income:Konsulent"),
	)
	_, err = parseInvoiceShape(short)
	assert.Error(t, err)
}

func TestParseLineItem(t *testing.T) {
	tests := []struct {
		name       string
		item       string
		wantTotal  string
		wantReason bool
	}{
		{name: "basic", item: "Consulting;10;1000", wantTotal: "10000"},
		{name: "decimal quantity", item: "Hours;7.5;800", wantTotal: "6000.0"},
		{name: "spaces around numbers", item: "Support; 2 ; 500", wantTotal: "1000"},
		{name: "missing field", item: "Consulting;10", wantReason: true},
		{name: "extra field", item: "Consulting;10;1000;extra", wantReason: true},
		{name: "bad quantity", item: "Consulting;ten;1000", wantReason: true},
		{name: "bad price", item: "Consulting;10;1,000", wantReason: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, reason := parseLineItem(ast.StringValue(tt.item))
			if tt.wantReason {
				assert.NotEqual(t, "", reason)
				return
			}
			assert.Equal(t, "", reason)
			assertAmount(t, tt.wantTotal, line.LineTotal)
		})
	}
}
