package plugins

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/haskoe/beancount-dansk/ast"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ast.Account("Assets:Bank:Erhverv"), cfg.Accounts.Bank)
	assert.Equal(t, ast.Account("Assets:Moms:Koeb"), cfg.Accounts.VatPurchase)
	assert.Equal(t, ast.Account("Liabilities:Moms:Salgs"), cfg.Accounts.VatSale)
	assert.Equal(t, ast.Account("Assets:Debitorer"), cfg.Accounts.Receivables)
	assert.Equal(t, ast.Account("Expenses:Personnel:Mileage"), cfg.Accounts.MileageExpense)
	assert.Equal(t, "DKK", cfg.Currency)

	rate, ok := cfg.RateFor(2025)
	assert.True(t, ok)
	assertAmount(t, "3.80", rate)

	rate, ok = cfg.RateFor(2026)
	assert.True(t, ok)
	assertAmount(t, "3.82", rate)

	_, ok = cfg.RateFor(2024)
	assert.False(t, ok)
}

func TestResolveAccount(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ast.Account("Liabilities:Kreditorer"), cfg.ResolveAccount("creditors"))
	assert.Equal(t, ast.Account("Liabilities:Kreditorer"), cfg.ResolveAccount("kreditorer"))
	assert.Equal(t, ast.Account("Liabilities:Firmakort"), cfg.ResolveAccount("Liabilities:Firmakort"))
}

func TestClassifyFilename(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		filename string
		want     VatVariant
		wantOk   bool
	}{
		{filename: "2025/koeb-standard.beancount", want: VatStandard, wantOk: true},
		{filename: "2025/restaurant.beancount", want: VatRestaurant, wantOk: true},
		{filename: "2025/momsfri.beancount", want: VatZeroRated, wantOk: true},
		{filename: "2025/u-moms.beancount", want: VatReverseCharge, wantOk: true},
		{filename: "2025/main.beancount"},
		{filename: ""},
	}

	for _, tt := range tests {
		variant, ok := cfg.ClassifyFilename(tt.filename)
		assert.Equal(t, tt.wantOk, ok, "filename %q", tt.filename)
		if tt.wantOk {
			assert.Equal(t, tt.want, variant)
		}
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
accounts:
  bank: Assets:Bank:Nordea
  vat_purchase: Assets:Moms:Indgaaende
aliases:
  leverandoer: Liabilities:Leverandoerer
currency: EUR
mileage_rates:
  2027: "3.85"
classification:
  - match: takeaway
    variant: restaurant
invoice:
  output_dir: fakturaer
  company_name: Testfirma ApS
`))
	assert.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, ast.Account("Assets:Bank:Nordea"), cfg.Accounts.Bank)
	assert.Equal(t, ast.Account("Assets:Moms:Indgaaende"), cfg.Accounts.VatPurchase)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, ast.Account("Liabilities:Leverandoerer"), cfg.ResolveAccount("leverandoer"))
	assert.Equal(t, "fakturaer", cfg.Invoice.OutputDir)
	assert.Equal(t, "Testfirma ApS", cfg.Invoice.CompanyName)

	rate, ok := cfg.RateFor(2027)
	assert.True(t, ok)
	assertAmount(t, "3.85", rate)

	// Rate and classification tables are replaced wholesale.
	_, ok = cfg.RateFor(2025)
	assert.False(t, ok)

	variant, ok := cfg.ClassifyFilename("2025/takeaway.beancount")
	assert.True(t, ok)
	assert.Equal(t, VatRestaurant, variant)
	_, ok = cfg.ClassifyFilename("2025/restaurant.beancount")
	assert.False(t, ok)

	// Untouched fields keep their defaults.
	assert.Equal(t, ast.Account("Liabilities:Moms:Salgs"), cfg.Accounts.VatSale)
	assert.Equal(t, "templates", cfg.Invoice.TemplateDir)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "invalid yaml", yaml: "accounts: ["},
		{name: "invalid account", yaml: "accounts:\n  bank: not-an-account"},
		{name: "invalid alias target", yaml: "aliases:\n  x: lowercase"},
		{name: "invalid rate", yaml: "mileage_rates:\n  2027: abc"},
		{name: "unknown classification variant", yaml: "classification:\n  - match: x\n    variant: reduced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
