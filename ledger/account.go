package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// AccountType represents the five root account types.
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeAssets
	AccountTypeLiabilities
	AccountTypeEquity
	AccountTypeIncome
	AccountTypeExpenses
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeAssets:
		return "Assets"
	case AccountTypeLiabilities:
		return "Liabilities"
	case AccountTypeEquity:
		return "Equity"
	case AccountTypeIncome:
		return "Income"
	case AccountTypeExpenses:
		return "Expenses"
	default:
		return "Unknown"
	}
}

// ParseAccountType derives the account type from the account name's root
// component.
func ParseAccountType(name ast.Account) (AccountType, error) {
	root := name.Root()
	switch root {
	case "Assets":
		return AccountTypeAssets, nil
	case "Liabilities":
		return AccountTypeLiabilities, nil
	case "Equity":
		return AccountTypeEquity, nil
	case "Income":
		return AccountTypeIncome, nil
	case "Expenses":
		return AccountTypeExpenses, nil
	default:
		return AccountTypeUnknown, fmt.Errorf("unknown account type: %s", root)
	}
}

// Account represents the ledger state of a single account: when it was
// opened and closed, which currencies it may hold, and its running balance
// per currency.
type Account struct {
	Name                 ast.Account
	Type                 AccountType
	OpenDate             *ast.Date
	CloseDate            *ast.Date
	ConstraintCurrencies []string
	Metadata             []*ast.Metadata
	Balances             map[string]decimal.Decimal
}

// IsOpen returns true if the account is open on the given date. An account
// is open from its open date and remains usable through its close date.
func (a *Account) IsOpen(date *ast.Date) bool {
	if a.OpenDate == nil || date == nil {
		return false
	}
	if date.Before(a.OpenDate.Time) {
		return false
	}
	if a.CloseDate != nil && date.After(a.CloseDate.Time) {
		return false
	}
	return true
}

// IsClosed returns true if the account has been closed on or before the
// given date.
func (a *Account) IsClosed(date *ast.Date) bool {
	if a.CloseDate == nil || date == nil {
		return false
	}
	return !date.Before(a.CloseDate.Time)
}

// AllowsCurrency reports whether the account's currency constraint, when
// present, permits the given currency.
func (a *Account) AllowsCurrency(currency string) bool {
	if len(a.ConstraintCurrencies) == 0 {
		return true
	}
	for _, c := range a.ConstraintCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// Balance returns the account's balance in the given currency.
func (a *Account) Balance(currency string) decimal.Decimal {
	if a.Balances == nil {
		return decimal.Zero
	}
	return a.Balances[currency]
}

func (a *Account) add(currency string, amount decimal.Decimal) {
	if a.Balances == nil {
		a.Balances = make(map[string]decimal.Decimal)
	}
	a.Balances[currency] = a.Balances[currency].Add(amount)
}
