package ast

// Commodity declares a currency that can be used in the ledger. The directive
// is optional but documents which currencies are expected in the accounts.
//
// Example:
//
//	2024-01-01 commodity DKK
type Commodity struct {
	Pos      Position
	Date     *Date
	Currency string

	withMetadata
}

var _ Directive = &Commodity{}

func (c *Commodity) date() *Date       { return c.Date }
func (c *Commodity) Directive() string { return "commodity" }

// Open declares the opening of an account at a specific date, marking the
// beginning of its lifetime in the ledger. All accounts must be opened before
// they can be used in transactions.
//
// Example:
//
//	2024-01-01 open Assets:Bank:Erhverv DKK
type Open struct {
	Pos                  Position
	Date                 *Date
	Account              Account
	ConstraintCurrencies []string

	withMetadata
}

var _ Directive = &Open{}

func (o *Open) date() *Date       { return o.Date }
func (o *Open) Directive() string { return "open" }

// Close declares the closing of an account, marking the end of its lifetime.
// After this date no new transactions should post to the account.
//
// Example:
//
//	2025-12-31 close Assets:Bank:Gammel
type Close struct {
	Pos     Position
	Date    *Date
	Account Account

	withMetadata
}

var _ Directive = &Close{}

func (c *Close) date() *Date       { return c.Date }
func (c *Close) Directive() string { return "close" }

// Balance asserts that an account has a specific balance at the beginning of
// a given date, verifying the ledger against external statements.
//
// Example:
//
//	2024-08-09 balance Assets:Bank:Erhverv 56200.00 DKK
type Balance struct {
	Pos     Position
	Date    *Date
	Account Account
	Amount  *Amount

	withMetadata
}

var _ Directive = &Balance{}

func (b *Balance) date() *Date       { return b.Date }
func (b *Balance) Directive() string { return "balance" }

// Note attaches a dated comment to an account.
//
// Example:
//
//	2024-07-09 note Assets:Bank:Erhverv "Called bank about pending transfer"
type Note struct {
	Pos         Position
	Date        *Date
	Account     Account
	Description string

	withMetadata
}

var _ Directive = &Note{}

func (n *Note) date() *Date       { return n.Date }
func (n *Note) Directive() string { return "note" }

// Document associates an external file such as a receipt or invoice with an
// account at a specific date, creating an audit trail.
//
// Example:
//
//	2024-11-02 document Expenses:Kontor "bilag/koeb/faktura-2024-11.pdf"
type Document struct {
	Pos            Position
	Date           *Date
	Account        Account
	PathToDocument string

	withMetadata
}

var _ Directive = &Document{}

func (d *Document) date() *Date       { return d.Date }
func (d *Document) Directive() string { return "document" }

// Event records a named value at a specific date, used to track time-based
// state such as location or employer.
//
// Example:
//
//	2024-09-01 event "location" "Aarhus, Denmark"
type Event struct {
	Pos   Position
	Date  *Date
	Name  string
	Value string

	withMetadata
}

var _ Directive = &Event{}

func (e *Event) date() *Date       { return e.Date }
func (e *Event) Directive() string { return "event" }

// Custom is the extension directive: a type tag followed by arbitrary typed
// values. The synthesis pass recognizes a small set of type tags
// (quick-expense, quick-mileage, sales-invoice) and rewrites them into full
// transactions; unrecognized tags pass through untouched.
//
// Example:
//
//	2025-03-14 custom "quick-expense" Expenses:Food "Lunch" 125.00 DKK "standard"
type Custom struct {
	Pos    Position
	Date   *Date
	Type   string
	Values []*CustomValue

	withMetadata
}

var _ Directive = &Custom{}

func (c *Custom) date() *Date       { return c.Date }
func (c *Custom) Directive() string { return "custom" }

// CustomValue represents a single value in a custom directive. Exactly one
// field is non-nil; anything outside this closed union is rejected by the
// parser.
type CustomValue struct {
	String  *string
	Account *Account
	Amount  *Amount
	Number  *string
	Boolean *bool
}

// IsString reports whether the value is a quoted string.
func (cv *CustomValue) IsString() bool { return cv.String != nil }

// IsAmount reports whether the value is a number with a currency.
func (cv *CustomValue) IsAmount() bool { return cv.Amount != nil }

// Text returns the value as a string for the positions where either a quoted
// string or a bare account name is acceptable. The second result is false for
// amounts, numbers and booleans.
func (cv *CustomValue) Text() (string, bool) {
	switch {
	case cv.String != nil:
		return *cv.String, true
	case cv.Account != nil:
		return string(*cv.Account), true
	default:
		return "", false
	}
}
