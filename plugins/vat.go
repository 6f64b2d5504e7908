package plugins

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// VatVariant selects how Danish VAT is derived from a directive amount. The
// set is closed; unrecognized tags are a validation error, never a default.
type VatVariant int

const (
	// VatStandard treats the amount as a VAT-inclusive total at the 25% rate.
	VatStandard VatVariant = iota

	// VatRestaurant treats the amount as a VAT-inclusive total of which only
	// a quarter of the VAT is deductible (representation).
	VatRestaurant

	// VatZeroRated carries no VAT at all (momsfri).
	VatZeroRated

	// VatReverseCharge treats the amount as the net; the buyer self-assesses
	// 25% on both the purchase and sales VAT accounts (u-moms, EU/foreign).
	VatReverseCharge
)

// Source tags as they appear in directives and classified filenames.
var variantTags = map[string]VatVariant{
	"standard":   VatStandard,
	"restaurant": VatRestaurant,
	"momsfri":    VatZeroRated,
	"u-moms":     VatReverseCharge,
}

// ParseVatVariant maps a source tag to its variant.
func ParseVatVariant(tag string) (VatVariant, bool) {
	v, ok := variantTags[tag]
	return v, ok
}

func (v VatVariant) String() string {
	switch v {
	case VatStandard:
		return "standard"
	case VatRestaurant:
		return "restaurant"
	case VatZeroRated:
		return "momsfri"
	case VatReverseCharge:
		return "u-moms"
	default:
		return fmt.Sprintf("VatVariant(%d)", int(v))
	}
}

var (
	// vatDivisor backs out the net from a 25% VAT-inclusive total.
	vatDivisor = decimal.RequireFromString("1.25")

	// vatFraction is the 25% rate applied to a net amount, and also the
	// deductible share of restaurant VAT.
	vatFraction = decimal.RequireFromString("0.25")

	// netHintTolerance is the absolute tolerance for the optional net-amount
	// verification hint, in the ledger's minor unit.
	netHintTolerance = decimal.RequireFromString("0.05")
)

// VatBreakdown is the result of splitting a directive amount into its ledger
// legs. All three values share the currency of the input amount. A zero VAT
// leg means no posting is synthesized for it.
type VatBreakdown struct {
	Expense   decimal.Decimal
	InputVat  decimal.Decimal
	OutputVat decimal.Decimal
}

// ComputeVat splits total into expense and VAT legs for the given variant.
// All arithmetic is exact decimal; for the Standard variant the identity
// Expense + InputVat == total holds exactly.
func ComputeVat(total decimal.Decimal, variant VatVariant) (VatBreakdown, error) {
	switch variant {
	case VatStandard:
		// Total = Net * 1.25 => Net = Total / 1.25, VAT = Total - Net.
		net := total.Div(vatDivisor)
		return VatBreakdown{
			Expense:  net,
			InputVat: total.Sub(net),
		}, nil

	case VatRestaurant:
		// Only a quarter of the included VAT is deductible; the rest stays
		// in the expense.
		net := total.Div(vatDivisor)
		fullVat := total.Sub(net)
		deductible := fullVat.Mul(vatFraction)
		return VatBreakdown{
			Expense:  total.Sub(deductible),
			InputVat: deductible,
		}, nil

	case VatZeroRated:
		return VatBreakdown{Expense: total}, nil

	case VatReverseCharge:
		// Total paid is the net; 25% is self-assessed on both sides so the
		// VAT pair nets to zero but both legs stay individually visible.
		vat := total.Mul(vatFraction)
		return VatBreakdown{
			Expense:   total,
			InputVat:  vat,
			OutputVat: vat.Neg(),
		}, nil

	default:
		return VatBreakdown{}, fmt.Errorf("unknown VAT variant %d", int(variant))
	}
}

// verifyNetHint checks the caller-supplied expected-net amount against the
// computed expense leg. Exceeding the fixed tolerance is advisory: it is
// reported but does not block the transaction.
func verifyNetHint(hint, computed decimal.Decimal) bool {
	return hint.Sub(computed).Abs().LessThanOrEqual(netHintTolerance)
}
