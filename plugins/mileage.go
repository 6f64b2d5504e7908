package plugins

import (
	"fmt"

	"github.com/haskoe/beancount-dansk/ast"
)

// rewriteMileage turns a quick-mileage directive into a two-leg
// reimbursement transaction. The per-kilometre rate is keyed by the calendar
// year of the directive date; a year without a configured rate drops the
// directive. The payout is rounded to two decimals, half away from zero.
func (p *Plugins) rewriteMileage(d *ast.Custom) (ast.Directive, []error) {
	dist, err := parseMileageShape(d)
	if err != nil {
		return nil, []error{err}
	}

	year := d.Date.Year()
	rate, ok := p.cfg.RateFor(year)
	if !ok {
		return nil, []error{&RateLookupError{Pos: d.Pos, Directive: d, Year: year}}
	}

	payout := dist.Mul(rate).Round(2)
	currency := p.cfg.Currency

	narration := fmt.Sprintf("Mileage: %s km @ %s %s/km", dist, rate, currency)

	txn := ast.NewTransaction(d.Date, narration,
		ast.WithFlag("*"),
		ast.WithPostings(
			ast.NewPosting(p.cfg.Accounts.MileageExpense,
				ast.WithDecimalAmount(payout, currency)),
			ast.NewPosting(p.cfg.Accounts.Bank,
				ast.WithDecimalAmount(payout.Neg(), currency)),
		),
	)
	txn.Pos = d.Pos
	txn.AddMetadata(d.Metadata...)

	return txn, nil
}
