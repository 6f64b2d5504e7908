package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal amount from its string representation.
func ParseAmount(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}

// MustParseAmount parses a decimal amount and panics on failure. Intended
// for constants and tests.
func MustParseAmount(value string) decimal.Decimal {
	d, err := ParseAmount(value)
	if err != nil {
		panic(err)
	}
	return d
}

// ToleranceConfig controls how strictly balance checks compare amounts.
// The default tolerance is used when an amount carries no decimal places to
// infer a tolerance from; the multiplier scales tolerances inferred from the
// precision of the amounts involved.
type ToleranceConfig struct {
	DefaultTolerance            decimal.Decimal
	InferredToleranceMultiplier decimal.Decimal
}

// NewToleranceConfig returns the default tolerance configuration: half of
// the smallest representable unit at two decimal places, with inferred
// tolerances scaled by one half.
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		DefaultTolerance:            decimal.RequireFromString("0.005"),
		InferredToleranceMultiplier: decimal.RequireFromString("0.5"),
	}
}

// ParseToleranceConfig builds a tolerance configuration from file-level
// options, falling back to the defaults for options not present.
func ParseToleranceConfig(options map[string]string) (*ToleranceConfig, error) {
	config := NewToleranceConfig()

	if value, ok := options["inferred_tolerance_default"]; ok {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid option inferred_tolerance_default %q: %w", value, err)
		}
		config.DefaultTolerance = d
	}

	if value, ok := options["inferred_tolerance_multiplier"]; ok {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid option inferred_tolerance_multiplier %q: %w", value, err)
		}
		config.InferredToleranceMultiplier = d
	}

	return config, nil
}

// InferTolerance derives a tolerance from the precision of the given
// amounts: one unit of the most precise amount, scaled by the configured
// multiplier. With no fractional amounts the default tolerance applies.
func (c *ToleranceConfig) InferTolerance(amounts ...decimal.Decimal) decimal.Decimal {
	minExp := int32(0)
	for _, amount := range amounts {
		if amount.Exponent() < minExp {
			minExp = amount.Exponent()
		}
	}
	if minExp == 0 {
		return c.DefaultTolerance
	}

	unit := decimal.New(1, minExp)
	return unit.Mul(c.InferredToleranceMultiplier)
}

// GetDefaultTolerance returns the configured default tolerance.
func (c *ToleranceConfig) GetDefaultTolerance() decimal.Decimal {
	return c.DefaultTolerance
}

// AmountEqual reports whether two amounts are equal within the given
// tolerance.
func AmountEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// formatResiduals formats per-currency residuals for balance error messages,
// one "amount currency" pair per entry, in a stable order.
func formatResiduals(residuals map[string]decimal.Decimal, currencies []string) string {
	parts := make([]string, 0, len(residuals))
	for _, currency := range currencies {
		residual, ok := residuals[currency]
		if !ok {
			continue
		}
		parts = append(parts, residual.String()+" "+currency)
	}
	return strings.Join(parts, ", ")
}

// formatAmount renders an amount with at least two decimal places, the way
// balances appear in error messages.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}
