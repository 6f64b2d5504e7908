package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// ledgerError carries the shared context every validation error exposes:
// where it happened, which directive raised it, and for which account.
type ledgerError struct {
	Pos       ast.Position
	Directive ast.Directive
	Account   ast.Account
	Date      *ast.Date
}

// GetPosition returns the position where the error occurred
func (e *ledgerError) GetPosition() ast.Position {
	return e.Pos
}

// GetDirective returns the directive associated with this error
func (e *ledgerError) GetDirective() ast.Directive {
	return e.Directive
}

// GetAccount returns the account associated with this error
func (e *ledgerError) GetAccount() ast.Account {
	return e.Account
}

// GetDate returns the date associated with this error
func (e *ledgerError) GetDate() *ast.Date {
	return e.Date
}

func (e *ledgerError) location() string {
	if e.Pos.Filename != "" {
		return e.Pos.String()
	}
	if e.Date != nil {
		return e.Date.String()
	}
	return ""
}

func newLedgerError(d ast.Directive, account ast.Account) ledgerError {
	return ledgerError{
		Pos:       ast.PositionOf(d),
		Directive: d,
		Account:   account,
		Date:      ast.DateOf(d),
	}
}

// AccountNotOpenError is raised when a directive references an account that
// is unknown, not yet open, or already closed on the directive's date.
type AccountNotOpenError struct {
	ledgerError
}

func (e *AccountNotOpenError) Error() string {
	return fmt.Sprintf("%s: Invalid reference to unknown account '%s'", e.location(), e.Account)
}

// NewAccountNotOpenError creates a new AccountNotOpenError
func NewAccountNotOpenError(d ast.Directive, account ast.Account) *AccountNotOpenError {
	return &AccountNotOpenError{ledgerError: newLedgerError(d, account)}
}

// AccountAlreadyOpenError is raised when an account is opened twice.
type AccountAlreadyOpenError struct {
	ledgerError
}

func (e *AccountAlreadyOpenError) Error() string {
	return fmt.Sprintf("%s: Account '%s' is already open", e.location(), e.Account)
}

// NewAccountAlreadyOpenError creates a new AccountAlreadyOpenError
func NewAccountAlreadyOpenError(d ast.Directive, account ast.Account) *AccountAlreadyOpenError {
	return &AccountAlreadyOpenError{ledgerError: newLedgerError(d, account)}
}

// AccountAlreadyClosedError is raised when a closed account is closed again.
type AccountAlreadyClosedError struct {
	ledgerError
}

func (e *AccountAlreadyClosedError) Error() string {
	return fmt.Sprintf("%s: Account '%s' is already closed", e.location(), e.Account)
}

// NewAccountAlreadyClosedError creates a new AccountAlreadyClosedError
func NewAccountAlreadyClosedError(d ast.Directive, account ast.Account) *AccountAlreadyClosedError {
	return &AccountAlreadyClosedError{ledgerError: newLedgerError(d, account)}
}

// CurrencyConstraintError is raised when a posting uses a currency outside
// the account's declared constraint.
type CurrencyConstraintError struct {
	ledgerError
	Currency string
}

func (e *CurrencyConstraintError) Error() string {
	return fmt.Sprintf("%s: Account '%s' does not allow currency %s", e.location(), e.Account, e.Currency)
}

// NewCurrencyConstraintError creates a new CurrencyConstraintError
func NewCurrencyConstraintError(d ast.Directive, account ast.Account, currency string) *CurrencyConstraintError {
	return &CurrencyConstraintError{
		ledgerError: newLedgerError(d, account),
		Currency:    currency,
	}
}

// TransactionNotBalancedError is raised when a transaction's postings do not
// sum to zero within tolerance.
type TransactionNotBalancedError struct {
	ledgerError
	Residuals  map[string]decimal.Decimal
	Currencies []string
}

func (e *TransactionNotBalancedError) Error() string {
	return fmt.Sprintf("%s: Transaction does not balance: %s", e.location(), formatResiduals(e.Residuals, e.Currencies))
}

// NewTransactionNotBalancedError creates a new TransactionNotBalancedError
func NewTransactionNotBalancedError(t *ast.Transaction, residuals map[string]decimal.Decimal, currencies []string) *TransactionNotBalancedError {
	return &TransactionNotBalancedError{
		ledgerError: newLedgerError(t, ""),
		Residuals:   residuals,
		Currencies:  currencies,
	}
}

// InvalidAmountError is raised for postings whose amounts cannot be
// interpreted, such as multiple elided amounts in a single transaction.
type InvalidAmountError struct {
	ledgerError
	Message string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: %s", e.location(), e.Message)
}

// NewInvalidAmountError creates a new InvalidAmountError
func NewInvalidAmountError(d ast.Directive, account ast.Account, message string) *InvalidAmountError {
	return &InvalidAmountError{
		ledgerError: newLedgerError(d, account),
		Message:     message,
	}
}

// BalanceMismatchError is raised when a balance assertion does not match the
// account's computed balance.
type BalanceMismatchError struct {
	ledgerError
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Currency string
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("%s: Balance mismatch for %s:\n  Expected: %s %s\n  Actual:   %s %s",
		e.location(), e.Account,
		formatAmount(e.Expected), e.Currency,
		formatAmount(e.Actual), e.Currency)
}

// NewBalanceMismatchError creates a new BalanceMismatchError
func NewBalanceMismatchError(d ast.Directive, account ast.Account, expected, actual decimal.Decimal, currency string) *BalanceMismatchError {
	return &BalanceMismatchError{
		ledgerError: newLedgerError(d, account),
		Expected:    expected,
		Actual:      actual,
		Currency:    currency,
	}
}
