// Constructor functions for programmatically building AST nodes. The
// synthesis pass uses these to emit the transactions it builds from shorthand
// directives; they are equally useful for importers and tests.
//
// Complex types like transactions and postings use functional options,
// following Go idioms for configurable constructors.
package ast

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NewAmount creates a new Amount with the given value and currency. The value
// should be a decimal string (e.g., "100.50", "-42.00"). No validation is
// performed on the value or currency.
func NewAmount(value, currency string) *Amount {
	return &Amount{
		Value:    value,
		Currency: currency,
	}
}

// NewAmountFromDecimal creates an Amount from an exact decimal value.
func NewAmountFromDecimal(d decimal.Decimal, currency string) *Amount {
	return &Amount{
		Value:    d.String(),
		Currency: currency,
	}
}

// NewDate parses a date string in YYYY-MM-DD format and returns a Date.
func NewDate(s string) (*Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &Date{Time: t}, nil
}

// NewDateFromTime creates a Date from a time.Time value.
func NewDateFromTime(t time.Time) *Date {
	return &Date{Time: t}
}

// NewAccount creates an Account from the given name and validates it against
// the account naming rules.
func NewAccount(name string) (Account, error) {
	account := Account(name)
	if err := account.Validate(); err != nil {
		return "", err
	}
	return account, nil
}

// NewLink creates a Link from the given name, stripping a leading ^ if present.
func NewLink(name string) Link {
	return Link(strings.TrimPrefix(name, "^"))
}

// NewTag creates a Tag from the given name, stripping a leading # if present.
func NewTag(name string) Tag {
	return Tag(strings.TrimPrefix(name, "#"))
}

// NewMetadata creates a Metadata key-value pair with a string value.
func NewMetadata(key, value string) *Metadata {
	return &Metadata{
		Key: key,
		Value: &MetadataValue{
			StringValue: &value,
		},
	}
}

// TransactionOption is a functional option for configuring a Transaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a new Transaction with the given date and narration.
// Additional fields can be set using functional options.
//
// Example:
//
//	txn := ast.NewTransaction(date, "Lunch with client",
//	    ast.WithFlag("*"),
//	    ast.WithLinks("250314-Expenses-Food"),
//	    ast.WithPostings(
//	        ast.NewPosting(expenses, ast.WithAmount("125.00", "DKK")),
//	        ast.NewPosting(bank),
//	    ),
//	)
func NewTransaction(date *Date, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Date:      date,
		Narration: narration,
	}

	for _, opt := range opts {
		opt(txn)
	}

	return txn
}

// WithFlag sets the transaction flag. Common values: "*" (cleared), "!" (pending).
func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) {
		t.Flag = flag
	}
}

// WithPayee sets the transaction payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) {
		t.Payee = payee
	}
}

// WithTags adds tags to the transaction, without the # prefix.
func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) {
		for _, tag := range tags {
			t.Tags = append(t.Tags, NewTag(tag))
		}
	}
}

// WithLinks adds links to the transaction, without the ^ prefix.
func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) {
		for _, link := range links {
			t.AddLink(NewLink(link))
		}
	}
}

// WithTransactionMetadata adds metadata entries to the transaction.
func WithTransactionMetadata(metadata ...*Metadata) TransactionOption {
	return func(t *Transaction) {
		t.AddMetadata(metadata...)
	}
}

// WithPostings sets the postings for the transaction.
func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) {
		t.Postings = postings
	}
}

// PostingOption is a functional option for configuring a Posting.
type PostingOption func(*Posting)

// NewPosting creates a new Posting for the given account.
func NewPosting(account Account, opts ...PostingOption) *Posting {
	posting := &Posting{
		Account: account,
	}

	for _, opt := range opts {
		opt(posting)
	}

	return posting
}

// WithAmount sets the amount for a posting from a decimal string and currency.
func WithAmount(value, currency string) PostingOption {
	return func(p *Posting) {
		p.Amount = NewAmount(value, currency)
	}
}

// WithDecimalAmount sets the amount for a posting from an exact decimal.
func WithDecimalAmount(d decimal.Decimal, currency string) PostingOption {
	return func(p *Posting) {
		p.Amount = NewAmountFromDecimal(d, currency)
	}
}

// WithPostingMetadata adds metadata entries to the posting.
func WithPostingMetadata(metadata ...*Metadata) PostingOption {
	return func(p *Posting) {
		p.AddMetadata(metadata...)
	}
}

// NewOpen creates an Open directive for an account. The constraintCurrencies
// parameter can be nil for no currency constraints.
func NewOpen(date *Date, account Account, constraintCurrencies []string) *Open {
	return &Open{
		Date:                 date,
		Account:              account,
		ConstraintCurrencies: constraintCurrencies,
	}
}

// NewClose creates a Close directive for an account.
func NewClose(date *Date, account Account) *Close {
	return &Close{
		Date:    date,
		Account: account,
	}
}

// NewBalance creates a Balance assertion directive.
func NewBalance(date *Date, account Account, amount *Amount) *Balance {
	return &Balance{
		Date:    date,
		Account: account,
		Amount:  amount,
	}
}

// NewNote creates a Note directive for an account.
func NewNote(date *Date, account Account, description string) *Note {
	return &Note{
		Date:        date,
		Account:     account,
		Description: description,
	}
}

// NewDocument creates a Document directive linking a file to an account.
func NewDocument(date *Date, account Account, pathToDocument string) *Document {
	return &Document{
		Date:           date,
		Account:        account,
		PathToDocument: pathToDocument,
	}
}

// NewEvent creates an Event directive.
func NewEvent(date *Date, name, value string) *Event {
	return &Event{
		Date:  date,
		Name:  name,
		Value: value,
	}
}

// NewCustom creates a Custom directive.
func NewCustom(date *Date, typeName string, values ...*CustomValue) *Custom {
	return &Custom{
		Date:   date,
		Type:   typeName,
		Values: values,
	}
}

// StringValue wraps a quoted string as a custom directive value.
func StringValue(s string) *CustomValue {
	return &CustomValue{String: &s}
}

// AccountValue wraps an account name as a custom directive value.
func AccountValue(a Account) *CustomValue {
	return &CustomValue{Account: &a}
}

// AmountValue wraps an amount as a custom directive value.
func AmountValue(value, currency string) *CustomValue {
	return &CustomValue{Amount: NewAmount(value, currency)}
}

// NumberValue wraps a bare number as a custom directive value.
func NumberValue(n string) *CustomValue {
	return &CustomValue{Number: &n}
}

// BooleanValue wraps a boolean as a custom directive value.
func BooleanValue(b bool) *CustomValue {
	return &CustomValue{Boolean: &b}
}
