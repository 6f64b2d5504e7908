package plugins

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/haskoe/beancount-dansk/ast"
)

func quickExpense(t *testing.T, date string, values ...*ast.CustomValue) *ast.Custom {
	t.Helper()
	return ast.NewCustom(mustDate(t, date), TypeQuickExpense, values...)
}

func applyOne(t *testing.T, p *Plugins, entry ast.Directive) (*ast.Transaction, []error) {
	t.Helper()
	entries, errs := p.Apply(context.Background(), ast.Directives{entry})
	assert.Equal(t, 1, len(entries))
	txn, ok := entries[0].(*ast.Transaction)
	assert.True(t, ok)
	return txn, errs
}

func TestRewriteExpenseStandard(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
		ast.StringValue("standard"),
	)

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))

	assert.Equal(t, "*", txn.Flag)
	assert.Equal(t, "Lunch", txn.Narration)
	assert.True(t, txn.HasLink("250314-Expenses-Food"))
	assertBalanced(t, txn)

	amounts := postingsByAccount(t, txn)
	assert.Equal(t, 3, len(amounts))
	assertAmount(t, "100.00", amounts["Expenses:Food"])
	assertAmount(t, "25.00", amounts["Assets:Moms:Koeb"])
	assertAmount(t, "-125.00", amounts["Assets:Bank:Erhverv"])

	// Posting order is fixed: expense, input VAT, credit.
	assert.Equal(t, ast.Account("Expenses:Food"), txn.Postings[0].Account)
	assert.Equal(t, ast.Account("Assets:Moms:Koeb"), txn.Postings[1].Account)
	assert.Equal(t, ast.Account("Assets:Bank:Erhverv"), txn.Postings[2].Account)
}

func TestRewriteExpenseRestaurant(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Dinner"),
		ast.AmountValue("1000.00", "DKK"),
		ast.StringValue("restaurant"),
	)

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))
	assertBalanced(t, txn)

	amounts := postingsByAccount(t, txn)
	assertAmount(t, "950.00", amounts["Expenses:Food"])
	assertAmount(t, "50.00", amounts["Assets:Moms:Koeb"])
	assertAmount(t, "-1000.00", amounts["Assets:Bank:Erhverv"])
}

func TestRewriteExpenseReverseCharge(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Software"),
		ast.StringValue("SaaS"),
		ast.AmountValue("100.00", "EUR"),
		ast.StringValue("u-moms"),
	)

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))
	assertBalanced(t, txn)

	amounts := postingsByAccount(t, txn)
	assert.Equal(t, 4, len(amounts))
	assertAmount(t, "100.00", amounts["Expenses:Software"])
	assertAmount(t, "25.00", amounts["Assets:Moms:Koeb"])
	assertAmount(t, "-25.00", amounts["Liabilities:Moms:Salgs"])
	assertAmount(t, "-100.00", amounts["Assets:Bank:Erhverv"])

	for _, posting := range txn.Postings {
		assert.Equal(t, "EUR", posting.Amount.Currency)
	}
}

func TestRewriteExpenseZeroRatedOmitsVatLegs(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Forsikring"),
		ast.StringValue("Insurance"),
		ast.AmountValue("500.00", "DKK"),
		ast.StringValue("momsfri"),
	)

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 2, len(txn.Postings))
	assertBalanced(t, txn)
}

func TestRewriteExpenseCreditAlias(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Kontor"),
		ast.StringValue("Desk"),
		ast.AmountValue("1250.00", "DKK"),
		ast.StringValue("standard"),
		ast.StringValue("kreditorer"),
	)

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))

	amounts := postingsByAccount(t, txn)
	assertAmount(t, "-1250.00", amounts["Liabilities:Kreditorer"])
}

func TestRewriteExpenseInvoiceRef(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Kontor"),
		ast.StringValue("Desk"),
		ast.AmountValue("1250.00", "DKK"),
		ast.StringValue("standard"),
		ast.StringValue("kreditorer"),
		ast.StringValue("F-2025-017"),
	)

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))

	assert.True(t, txn.HasLink("250314-Expenses-Kontor"))
	assert.True(t, txn.HasLink("F-2025-017"))

	ref, ok := txn.Meta("invoice")
	assert.True(t, ok)
	assert.Equal(t, "F-2025-017", ref)
}

func TestRewriteExpenseNetHint(t *testing.T) {
	p := New(DefaultConfig())

	within := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
		ast.StringValue("standard"),
		ast.StringValue("kreditorer"),
		ast.StringValue("F-1"),
		ast.AmountValue("100.03", "DKK"),
	)

	_, errs := applyOne(t, p, within)
	assert.Equal(t, 0, len(errs))

	outside := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
		ast.StringValue("standard"),
		ast.StringValue("kreditorer"),
		ast.StringValue("F-1"),
		ast.AmountValue("95.00", "DKK"),
	)

	// Transaction is still emitted, the mismatch is advisory.
	txn, errs := applyOne(t, p, outside)
	assert.Equal(t, 1, len(errs))
	assert.True(t, IsAdvisory(errs[0]))
	assertBalanced(t, txn)
}

func TestRewriteExpenseUnknownVariant(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
		ast.StringValue("reduced"),
	)

	entries, errs := p.Apply(context.Background(), ast.Directives{d})
	assert.Equal(t, 0, len(entries))
	assert.Equal(t, 1, len(errs))
	assert.Contains(t, errs[0].Error(), "Unknown VAT type: reduced")
}

func TestRewriteExpenseShortFormMetadataVariant(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
	)
	d.AddMetadata(ast.NewMetadata("moms", "standard"))
	d.AddMetadata(ast.NewMetadata("credit", "kreditorer"))

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))

	amounts := postingsByAccount(t, txn)
	assertAmount(t, "100.00", amounts["Expenses:Food"])
	assertAmount(t, "25.00", amounts["Assets:Moms:Koeb"])
	assertAmount(t, "-125.00", amounts["Liabilities:Kreditorer"])
}

func TestRewriteExpenseShortFormFilenameClassification(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Dinner"),
		ast.AmountValue("1000.00", "DKK"),
	)
	d.Pos = ast.Position{Filename: "2025/restaurant.beancount", Line: 3}

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))

	amounts := postingsByAccount(t, txn)
	assertAmount(t, "950.00", amounts["Expenses:Food"])
	assertAmount(t, "50.00", amounts["Assets:Moms:Koeb"])
}

func TestRewriteExpenseShortFormDefaultsToZeroRated(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Gebyr"),
		ast.StringValue("Bank fee"),
		ast.AmountValue("40.00", "DKK"),
	)
	d.Pos = ast.Position{Filename: "2025/diverse.beancount", Line: 8}

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 2, len(txn.Postings))

	amounts := postingsByAccount(t, txn)
	assertAmount(t, "40.00", amounts["Expenses:Gebyr"])
	assertAmount(t, "-40.00", amounts["Assets:Bank:Erhverv"])
}

func TestRewriteExpensePositionalVariantWinsOverMetadata(t *testing.T) {
	p := New(DefaultConfig())

	d := quickExpense(t, "2025-03-14",
		ast.AccountValue("Expenses:Food"),
		ast.StringValue("Lunch"),
		ast.AmountValue("125.00", "DKK"),
		ast.StringValue("momsfri"),
	)
	d.AddMetadata(ast.NewMetadata("moms", "standard"))

	txn, errs := applyOne(t, p, d)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 2, len(txn.Postings))
}

func TestRewriteClassifiedAutoFill(t *testing.T) {
	p := New(DefaultConfig())
	date := mustDate(t, "2025-03-14")

	txn := ast.NewTransaction(date, "Team dinner",
		ast.WithFlag("*"),
		ast.WithPayee("Cafe Katrine"),
		ast.WithPostings(
			ast.NewPosting("Expenses:Food", ast.WithAmount("1000.00", "DKK")),
		),
	)
	txn.Pos = ast.Position{Filename: "2025/restaurant.beancount", Line: 12}

	out, errs := applyOne(t, p, txn)
	assert.Equal(t, 0, len(errs))

	// Narration, payee and date survive untouched.
	assert.Equal(t, "Team dinner", out.Narration)
	assert.Equal(t, "Cafe Katrine", out.Payee)
	assert.Equal(t, "2025-03-14", out.Date.String())
	assert.True(t, out.HasLink("250314-Expenses-Food"))
	assertBalanced(t, out)

	amounts := postingsByAccount(t, out)
	assertAmount(t, "950.00", amounts["Expenses:Food"])
	assertAmount(t, "50.00", amounts["Assets:Moms:Koeb"])
	assertAmount(t, "-1000.00", amounts["Assets:Bank:Erhverv"])
}

func TestRewriteClassifiedIsIdempotent(t *testing.T) {
	p := New(DefaultConfig())
	date := mustDate(t, "2025-03-14")

	txn := ast.NewTransaction(date, "Team dinner",
		ast.WithFlag("*"),
		ast.WithPostings(
			ast.NewPosting("Expenses:Food", ast.WithAmount("1000.00", "DKK")),
		),
	)
	txn.Pos = ast.Position{Filename: "2025/restaurant.beancount", Line: 12}

	first, errs := applyOne(t, p, txn)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 3, len(first.Postings))

	// A second pass over the expanded transaction must not touch it.
	second, errs := applyOne(t, p, first)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, first, second)
}

func TestRewriteClassifiedMetadataOverridesFilename(t *testing.T) {
	p := New(DefaultConfig())
	date := mustDate(t, "2025-03-14")

	txn := ast.NewTransaction(date, "Insurance",
		ast.WithFlag("*"),
		ast.WithPostings(
			ast.NewPosting("Expenses:Forsikring", ast.WithAmount("500.00", "DKK")),
		),
	)
	txn.Pos = ast.Position{Filename: "2025/standard.beancount", Line: 4}
	txn.AddMetadata(ast.NewMetadata("moms", "momsfri"))

	out, errs := applyOne(t, p, txn)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 2, len(out.Postings))
}

func TestUnclassifiedSinglePostingPassesThrough(t *testing.T) {
	p := New(DefaultConfig())
	date := mustDate(t, "2025-03-14")

	txn := ast.NewTransaction(date, "Incomplete",
		ast.WithFlag("!"),
		ast.WithPostings(
			ast.NewPosting("Expenses:Food", ast.WithAmount("1000.00", "DKK")),
		),
	)
	txn.Pos = ast.Position{Filename: "2025/main.beancount", Line: 2}

	out, errs := applyOne(t, p, txn)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, txn, out)
	assert.Equal(t, 1, len(out.Postings))
}
