package plugins

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestComputeVat(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		variant   VatVariant
		expense   string
		inputVat  string
		outputVat string
	}{
		{
			name:     "standard backs out 25 percent",
			total:    "125.00",
			variant:  VatStandard,
			expense:  "100.00",
			inputVat: "25.00",
		},
		{
			name:     "standard odd total",
			total:    "99.95",
			variant:  VatStandard,
			expense:  "79.96",
			inputVat: "19.99",
		},
		{
			name:     "restaurant quarter deductible",
			total:    "1000.00",
			variant:  VatRestaurant,
			expense:  "950.00",
			inputVat: "50.00",
		},
		{
			name:    "zero rated has no vat legs",
			total:   "250.00",
			variant: VatZeroRated,
			expense: "250.00",
		},
		{
			name:      "reverse charge self assesses both sides",
			total:     "100.00",
			variant:   VatReverseCharge,
			expense:   "100.00",
			inputVat:  "25.00",
			outputVat: "-25.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			b, err := ComputeVat(total, tt.variant)
			assert.NoError(t, err)

			assertAmount(t, tt.expense, b.Expense)
			if tt.inputVat == "" {
				assert.True(t, b.InputVat.IsZero())
			} else {
				assertAmount(t, tt.inputVat, b.InputVat)
			}
			if tt.outputVat == "" {
				assert.True(t, b.OutputVat.IsZero())
			} else {
				assertAmount(t, tt.outputVat, b.OutputVat)
			}
		})
	}
}

func TestComputeVatStandardIsExact(t *testing.T) {
	// Expense + InputVat must reproduce the total exactly, not within an
	// epsilon, for any total.
	for _, total := range []string{"125.00", "0.01", "1.00", "3.33", "99999999.99", "7.77"} {
		d := decimal.RequireFromString(total)
		b, err := ComputeVat(d, VatStandard)
		assert.NoError(t, err)
		assert.True(t, b.Expense.Add(b.InputVat).Equal(d),
			"expense %s + vat %s != total %s", b.Expense, b.InputVat, total)
	}
}

func TestComputeVatReverseChargePairNetsToZero(t *testing.T) {
	b, err := ComputeVat(decimal.RequireFromString("847.50"), VatReverseCharge)
	assert.NoError(t, err)
	assert.True(t, b.InputVat.Add(b.OutputVat).IsZero())
	assert.False(t, b.InputVat.IsZero())
}

func TestComputeVatUnknownVariant(t *testing.T) {
	_, err := ComputeVat(decimal.RequireFromString("100.00"), VatVariant(42))
	assert.Error(t, err)
}

func TestParseVatVariant(t *testing.T) {
	tests := []struct {
		tag    string
		want   VatVariant
		wantOk bool
	}{
		{tag: "standard", want: VatStandard, wantOk: true},
		{tag: "restaurant", want: VatRestaurant, wantOk: true},
		{tag: "momsfri", want: VatZeroRated, wantOk: true},
		{tag: "u-moms", want: VatReverseCharge, wantOk: true},
		{tag: "reduced"},
		{tag: ""},
		{tag: "Standard"},
	}

	for _, tt := range tests {
		variant, ok := ParseVatVariant(tt.tag)
		assert.Equal(t, tt.wantOk, ok, "tag %q", tt.tag)
		if tt.wantOk {
			assert.Equal(t, tt.want, variant)
			assert.Equal(t, tt.tag, variant.String())
		}
	}
}

func TestVerifyNetHint(t *testing.T) {
	computed := decimal.RequireFromString("100.00")

	assert.True(t, verifyNetHint(decimal.RequireFromString("100.00"), computed))
	assert.True(t, verifyNetHint(decimal.RequireFromString("100.05"), computed))
	assert.True(t, verifyNetHint(decimal.RequireFromString("99.95"), computed))
	assert.False(t, verifyNetHint(decimal.RequireFromString("100.06"), computed))
	assert.False(t, verifyNetHint(decimal.RequireFromString("99.94"), computed))
}
