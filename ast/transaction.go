package ast

// Transaction records a financial transaction with a date, flag, optional
// payee, narration, and a list of postings. The flag indicates status: '*'
// for cleared transactions, '!' for pending ones. The sum of all posting
// amounts must balance to zero per currency (double-entry bookkeeping). Links
// connect related transactions; the synthesis pass derives one link per
// rewritten directive so repeated runs stay idempotent.
//
// Example:
//
//	2025-03-14 * "Cafe Katrine" "Lunch with client" ^250314-Expenses-Food
//	  Expenses:Food          100.00 DKK
//	  Assets:Moms:Koeb        25.00 DKK
//	  Assets:Bank:Erhverv   -125.00 DKK
type Transaction struct {
	Pos       Position
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Links     []Link
	Tags      []Tag

	withMetadata

	Postings []*Posting
}

var _ Directive = &Transaction{}

func (t *Transaction) date() *Date       { return t.Date }
func (t *Transaction) Directive() string { return "transaction" }

// HasLink reports whether the transaction carries the given link.
func (t *Transaction) HasLink(link Link) bool {
	for _, l := range t.Links {
		if l == link {
			return true
		}
	}
	return false
}

// AddLink appends a link, keeping the link set free of duplicates.
func (t *Transaction) AddLink(link Link) {
	if !t.HasLink(link) {
		t.Links = append(t.Links, link)
	}
}

// Posting represents a single leg of a transaction, specifying an account and
// an optional amount. One posting per currency may omit its amount, which is
// then inferred by the ledger during validation.
//
// Example postings within transactions:
//
//	Expenses:Food          100.00 DKK
//	Assets:Bank:Erhverv                 ; inferred amount
type Posting struct {
	Pos      Position
	Flag     string
	Account  Account
	Amount   *Amount
	Inferred bool // True if Amount was inferred by the ledger (not parsed)

	withMetadata
}
