package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount represents a numerical value with its associated currency code. The
// value is stored as a string to preserve the exact decimal representation
// from the input, avoiding floating-point precision issues.
type Amount struct {
	Value    string
	Currency string
}

// Decimal parses the amount value into an exact decimal.
func (a *Amount) Decimal() (decimal.Decimal, error) {
	if a == nil {
		return decimal.Zero, fmt.Errorf("amount is nil")
	}

	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: %w", a.Value, err)
	}

	return d, nil
}

// MustDecimal parses the amount value and panics on error. Use only in tests
// or when the amount is known to be valid.
func (a *Amount) MustDecimal() decimal.Decimal {
	d, err := a.Decimal()
	if err != nil {
		panic(err)
	}
	return d
}

func (a *Amount) String() string {
	return a.Value + " " + a.Currency
}

// Account represents an account name consisting of at least two
// colon-separated segments. The first segment must be one of the five account
// categories: Assets, Liabilities, Equity, Income, or Expenses. Subsequent
// segments must start with an uppercase letter or digit.
//
// Example accounts:
//
//	Assets:Bank:Erhverv
//	Liabilities:Moms:Salgs
//	Income:Konsulent
//	Expenses:Personnel:Mileage
type Account string

// accountSegmentRegex validates account segments after the first.
var accountSegmentRegex = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

// Validate checks the account name against the naming rules above.
func (a Account) Validate() error {
	parts := strings.Split(string(a), ":")

	if len(parts) < 2 {
		return fmt.Errorf("account must have at least two segments: %s", a)
	}

	switch parts[0] {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
	default:
		return fmt.Errorf(`unexpected account type %q`, parts[0])
	}

	for i := 1; i < len(parts); i++ {
		if !accountSegmentRegex.MatchString(parts[i]) {
			return fmt.Errorf("invalid account segment at position %d: %s", i, parts[i])
		}
	}

	return nil
}

// Root returns the account category, e.g. "Expenses" for Expenses:Food.
func (a Account) Root() string {
	if i := strings.IndexByte(string(a), ':'); i >= 0 {
		return string(a[:i])
	}
	return string(a)
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD). All
// directives must have a date; dates order directives chronologically.
type Date struct {
	time.Time
}

func (d *Date) String() string {
	return d.Format("2006-01-02")
}

// IsZero returns true if the Date is nil or represents the zero time.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// Link represents a reference token written with a ^ prefix in source, used
// to connect related transactions. The prefix is not part of the value.
type Link string

// Tag represents a hashtag written with a # prefix in source, used to
// categorize transactions. The prefix is not part of the value.
type Tag string

// MetadataValue represents a typed value stored in metadata. This is a
// discriminated union where exactly one field is set.
//
// Example metadata with different value types:
//
//	invoice: "F-2025-017"            ; String (quoted)
//	due_date: 2025-03-28             ; Date (ISO format)
//	credit: Liabilities:Kreditorer   ; Account (colon-separated)
//	moms: "u-moms"                   ; String
//	quantity: 42                     ; Number (decimal)
//	budget: 1000.00 DKK              ; Amount (number + currency)
type MetadataValue struct {
	StringValue *string
	Date        *Date
	Account     *Account
	Currency    *string
	Number      *string // Stored as string to preserve precision
	Amount      *Amount
	Boolean     *bool
}

// String returns the string form of the metadata value.
func (m *MetadataValue) String() string {
	if m == nil {
		return ""
	}
	switch {
	case m.StringValue != nil:
		return *m.StringValue
	case m.Date != nil:
		return m.Date.String()
	case m.Account != nil:
		return string(*m.Account)
	case m.Currency != nil:
		return *m.Currency
	case m.Number != nil:
		return *m.Number
	case m.Amount != nil:
		return m.Amount.String()
	case m.Boolean != nil:
		if *m.Boolean {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Metadata represents a key-value pair attached to a directive or posting,
// written indented on the lines following the item it annotates.
//
// Example:
//
//	2025-03-14 * "Payment"
//	  invoice: "F-2025-017"
//	  Assets:Bank:Erhverv  -100.00 DKK
//	  Expenses:Services     100.00 DKK
type Metadata struct {
	Key   string
	Value *MetadataValue
}
