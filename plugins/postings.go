package plugins

import (
	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// buildExpensePostings assembles the ordered posting list for an expense
// transaction: expense leg, input-VAT leg, output-VAT leg, then a single
// credit leg equal to the negated total. Zero-amount VAT legs are omitted,
// never synthesized. The list sums to exactly zero by construction:
//
//	Standard:       net + vat - total            == 0
//	Restaurant:     (total - ded) + ded - total  == 0
//	ZeroRated:      total - total                == 0
//	ReverseCharge:  total + vat - vat - total    == 0
func (p *Plugins) buildExpensePostings(expense ast.Account, b VatBreakdown, currency string, credit ast.Account, total decimal.Decimal) []*ast.Posting {
	postings := make([]*ast.Posting, 0, 4)

	postings = append(postings, ast.NewPosting(expense,
		ast.WithDecimalAmount(b.Expense, currency)))

	if !b.InputVat.IsZero() {
		postings = append(postings, ast.NewPosting(p.cfg.Accounts.VatPurchase,
			ast.WithDecimalAmount(b.InputVat, currency)))
	}

	if !b.OutputVat.IsZero() {
		postings = append(postings, ast.NewPosting(p.cfg.Accounts.VatSale,
			ast.WithDecimalAmount(b.OutputVat, currency)))
	}

	postings = append(postings, ast.NewPosting(credit,
		ast.WithDecimalAmount(total.Neg(), currency)))

	return postings
}
