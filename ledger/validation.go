package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// validator checks a single directive against current ledger state without
// mutating it. Each validate method returns the errors found and, where
// applicable, a delta describing the state change to apply when validation
// passes.
type validator struct {
	accounts        map[string]*Account
	toleranceConfig *ToleranceConfig
}

func newValidator(accounts map[string]*Account, toleranceConfig *ToleranceConfig) *validator {
	return &validator{
		accounts:        accounts,
		toleranceConfig: toleranceConfig,
	}
}

// OpenDelta holds the account to register after a validated open directive.
type OpenDelta struct {
	Account *Account
}

// BalanceChange is a single per-account, per-currency balance mutation.
type BalanceChange struct {
	Account  string
	Currency string
	Amount   decimal.Decimal
}

// TransactionDelta holds the balance changes of a validated transaction.
type TransactionDelta struct {
	Changes []BalanceChange
}

func (v *validator) validateOpen(d *ast.Open) ([]error, *OpenDelta) {
	if existing, ok := v.accounts[string(d.Account)]; ok && !existing.IsClosed(d.Date) {
		return []error{NewAccountAlreadyOpenError(d, d.Account)}, nil
	}

	accountType, err := ParseAccountType(d.Account)
	if err != nil {
		return []error{NewInvalidAmountError(d, d.Account, err.Error())}, nil
	}

	return nil, &OpenDelta{
		Account: &Account{
			Name:                 d.Account,
			Type:                 accountType,
			OpenDate:             d.Date,
			ConstraintCurrencies: d.ConstraintCurrencies,
			Metadata:             d.Metadata,
			Balances:             make(map[string]decimal.Decimal),
		},
	}
}

func (v *validator) validateClose(d *ast.Close) ([]error, *Account) {
	account, ok := v.accounts[string(d.Account)]
	if !ok {
		return []error{NewAccountNotOpenError(d, d.Account)}, nil
	}
	if account.CloseDate != nil {
		return []error{NewAccountAlreadyClosedError(d, d.Account)}, nil
	}
	return nil, account
}

func (v *validator) validateTransaction(t *ast.Transaction) ([]error, *TransactionDelta) {
	var errs []error

	// Resolve posting amounts first: at most one posting may elide its
	// amount, which is then inferred from the residual of the others.
	residuals := make(map[string]decimal.Decimal)
	currencies := make([]string, 0, 2)
	amounts := make([]decimal.Decimal, 0, len(t.Postings))
	var elided *ast.Posting

	for _, posting := range t.Postings {
		if posting.Amount == nil {
			if elided != nil {
				return []error{NewInvalidAmountError(t, posting.Account, "Only one posting may omit its amount")}, nil
			}
			elided = posting
			continue
		}

		amount, err := posting.Amount.Decimal()
		if err != nil {
			return []error{NewInvalidAmountError(t, posting.Account, err.Error())}, nil
		}

		currency := posting.Amount.Currency
		if _, ok := residuals[currency]; !ok {
			currencies = append(currencies, currency)
		}
		residuals[currency] = residuals[currency].Add(amount)
		amounts = append(amounts, amount)
	}

	if elided != nil {
		// The elided posting absorbs the residual. With amounts in more
		// than one currency the inference is ambiguous.
		nonZero := nonZeroCurrencies(residuals, currencies)
		if len(nonZero) > 1 {
			return []error{NewInvalidAmountError(t, elided.Account, "Cannot infer amount across multiple currencies")}, nil
		}

		var currency string
		inferred := decimal.Zero
		switch {
		case len(nonZero) == 1:
			currency = nonZero[0]
			inferred = residuals[currency].Neg()
		case len(currencies) == 1:
			currency = currencies[0]
		default:
			return []error{NewInvalidAmountError(t, elided.Account, "Cannot infer amount without any explicit amounts")}, nil
		}

		elided.Amount = &ast.Amount{Value: inferred.String(), Currency: currency}
		elided.Inferred = true
		if _, ok := residuals[currency]; !ok {
			currencies = append(currencies, currency)
		}
		residuals[currency] = residuals[currency].Add(inferred)
	}

	tolerance := v.toleranceConfig.InferTolerance(amounts...)
	if unbalanced := nonZeroOutsideTolerance(residuals, currencies, tolerance); len(unbalanced) > 0 {
		errs = append(errs, NewTransactionNotBalancedError(t, residuals, unbalanced))
	}

	changes := make([]BalanceChange, 0, len(t.Postings))
	for _, posting := range t.Postings {
		account, ok := v.accounts[string(posting.Account)]
		if !ok || !account.IsOpen(t.Date) {
			errs = append(errs, NewAccountNotOpenError(t, posting.Account))
			continue
		}

		if !account.AllowsCurrency(posting.Amount.Currency) {
			errs = append(errs, NewCurrencyConstraintError(t, posting.Account, posting.Amount.Currency))
			continue
		}

		amount, err := posting.Amount.Decimal()
		if err != nil {
			errs = append(errs, NewInvalidAmountError(t, posting.Account, err.Error()))
			continue
		}

		changes = append(changes, BalanceChange{
			Account:  string(posting.Account),
			Currency: posting.Amount.Currency,
			Amount:   amount,
		})
	}

	if len(errs) > 0 {
		return errs, nil
	}
	return nil, &TransactionDelta{Changes: changes}
}

func (v *validator) validateBalance(d *ast.Balance) []error {
	account, ok := v.accounts[string(d.Account)]
	if !ok || !account.IsOpen(d.Date) {
		return []error{NewAccountNotOpenError(d, d.Account)}
	}

	expected, err := d.Amount.Decimal()
	if err != nil {
		return []error{NewInvalidAmountError(d, d.Account, err.Error())}
	}

	actual := account.Balance(d.Amount.Currency)
	tolerance := v.toleranceConfig.InferTolerance(expected)
	if !AmountEqual(expected, actual, tolerance) {
		return []error{NewBalanceMismatchError(d, d.Account, expected, actual, d.Amount.Currency)}
	}
	return nil
}

// validateAccountRef checks directives that merely reference an account
// (note, document) against the account's lifetime.
func (v *validator) validateAccountRef(d ast.Directive) []error {
	var account ast.Account
	switch ref := d.(type) {
	case *ast.Note:
		account = ref.Account
	case *ast.Document:
		account = ref.Account
	default:
		return nil
	}

	acc, ok := v.accounts[string(account)]
	if !ok || !acc.IsOpen(ast.DateOf(d)) {
		return []error{NewAccountNotOpenError(d, account)}
	}
	return nil
}

func nonZeroCurrencies(residuals map[string]decimal.Decimal, currencies []string) []string {
	nonZero := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		if !residuals[currency].IsZero() {
			nonZero = append(nonZero, currency)
		}
	}
	sort.Strings(nonZero)
	return nonZero
}

func nonZeroOutsideTolerance(residuals map[string]decimal.Decimal, currencies []string, tolerance decimal.Decimal) []string {
	unbalanced := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		if residuals[currency].Abs().GreaterThan(tolerance) {
			unbalanced = append(unbalanced, currency)
		}
	}
	return unbalanced
}
