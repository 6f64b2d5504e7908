package ast

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{name: "valid asset account", account: "Assets:Bank:Erhverv"},
		{name: "valid expense account", account: "Expenses:Food"},
		{name: "valid with digits", account: "Assets:2025:Opsparing"},
		{name: "valid with hyphens", account: "Income:Some-Client"},
		{name: "single segment", account: "Assets", wantErr: true},
		{name: "unknown root", account: "Banana:Checking", wantErr: true},
		{name: "lowercase segment", account: "Assets:checking", wantErr: true},
		{name: "empty segment", account: "Assets::Checking", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Account(tt.account).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccountRoot(t *testing.T) {
	assert.Equal(t, "Assets", Account("Assets:Bank:Erhverv").Root())
	assert.Equal(t, "Expenses", Account("Expenses:Food").Root())
}

func TestAmountDecimal(t *testing.T) {
	a := NewAmount("125.00", "DKK")
	d, err := a.Decimal()
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("125.00")))

	bad := NewAmount("12x.0", "DKK")
	_, err = bad.Decimal()
	assert.Error(t, err)

	var nilAmount *Amount
	_, err = nilAmount.Decimal()
	assert.Error(t, err)
}

func TestDateParsing(t *testing.T) {
	d, err := NewDate("2025-03-14")
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-14", d.String())

	_, err = NewDate("14-03-2025")
	assert.Error(t, err)
}

func TestMetadataValueString(t *testing.T) {
	s := "F-2025-017"
	acc := Account("Assets:Bank:Erhverv")
	num := "42"
	yes := true
	date, _ := NewDate("2025-03-28")

	tests := []struct {
		name  string
		value *MetadataValue
		want  string
	}{
		{name: "string", value: &MetadataValue{StringValue: &s}, want: "F-2025-017"},
		{name: "account", value: &MetadataValue{Account: &acc}, want: "Assets:Bank:Erhverv"},
		{name: "number", value: &MetadataValue{Number: &num}, want: "42"},
		{name: "boolean", value: &MetadataValue{Boolean: &yes}, want: "TRUE"},
		{name: "date", value: &MetadataValue{Date: date}, want: "2025-03-28"},
		{name: "amount", value: &MetadataValue{Amount: NewAmount("1000.00", "DKK")}, want: "1000.00 DKK"},
		{name: "nil", value: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestSortDirectives(t *testing.T) {
	jan, _ := NewDate("2025-01-01")
	feb, _ := NewDate("2025-02-01")

	txn := NewTransaction(feb, "Later")
	open := NewOpen(jan, "Assets:Bank:Erhverv", nil)
	sameDayTxn := NewTransaction(jan, "Same day as open")

	tree := &AST{Directives: Directives{txn, sameDayTxn, open}}
	SortDirectives(tree)

	// Open sorts before the same-day transaction, transaction date order otherwise.
	assert.Equal(t, Directive(open), tree.Directives[0])
	assert.Equal(t, Directive(sameDayTxn), tree.Directives[1])
	assert.Equal(t, Directive(txn), tree.Directives[2])
}
