package plugins

import (
	"github.com/haskoe/beancount-dansk/ast"
)

// rewriteExpense turns a quick-expense directive into a balanced transaction.
// The same rewriter serves the legacy long form and the short form; they
// differ only in where the VAT variant, credit account and external
// reference come from, resolved here in a fixed order:
//
//	variant: positional > "moms" metadata > filename classification > momsfri
//	credit:  positional > "credit" metadata > configured bank account
//	ref:     positional > "invoice" metadata > absent
//
// Alias rewriting on the credit account is always applied last.
func (p *Plugins) rewriteExpense(d *ast.Custom) (ast.Directive, []error) {
	shape, err := parseExpenseShape(d)
	if err != nil {
		return nil, []error{err}
	}

	variant, err := p.resolveVariant(d, shape.VariantTag)
	if err != nil {
		return nil, []error{err}
	}

	credit := shape.Credit
	if credit == "" {
		credit, _ = d.Meta(metaCredit)
	}
	creditAccount := p.cfg.Accounts.Bank
	if credit != "" {
		creditAccount = p.cfg.ResolveAccount(credit)
	}

	ref := shape.Ref
	if ref == "" {
		ref, _ = d.Meta(metaInvoiceRef)
	}

	breakdown, err := ComputeVat(shape.Total, variant)
	if err != nil {
		return nil, []error{&UnknownVariantError{Pos: d.Pos, Directive: d, Variant: variant.String()}}
	}

	var errs []error
	if shape.Hint != nil && !verifyNetHint(*shape.Hint, breakdown.Expense) {
		errs = append(errs, &VerificationError{
			Pos:        d.Pos,
			Directive:  d,
			Calculated: breakdown.Expense,
			Hint:       *shape.Hint,
		})
	}

	txn := ast.NewTransaction(d.Date, shape.Description,
		ast.WithFlag("*"),
		ast.WithPostings(p.buildExpensePostings(shape.Account, breakdown, shape.Currency, creditAccount, shape.Total)...),
	)
	txn.Pos = d.Pos
	txn.AddMetadata(d.Metadata...)
	txn.AddLink(DeriveLink(d.Date, shape.Account))

	if ref != "" {
		txn.AddLink(ast.NewLink(ref))
		txn.AddMetadata(ast.NewMetadata(metaInvoiceRef, ref))
	}

	return txn, errs
}

// resolveVariant applies the VAT-variant resolution order for a directive.
// An explicit tag that fails to parse, positional or from metadata, is an
// error rather than a fallthrough to the next source.
func (p *Plugins) resolveVariant(d *ast.Custom, positional string) (VatVariant, error) {
	tag := positional
	if tag == "" {
		tag, _ = d.Meta(metaVatVariant)
	}
	if tag != "" {
		variant, ok := ParseVatVariant(tag)
		if !ok {
			return 0, &UnknownVariantError{Pos: d.Pos, Directive: d, Variant: tag}
		}
		return variant, nil
	}

	if variant, ok := p.cfg.ClassifyFilename(d.Pos.Filename); ok {
		return variant, nil
	}

	return VatZeroRated, nil
}

// classifyTransaction maps a transaction's source file to a VAT variant.
// Only transactions in classified files are eligible for auto-fill.
func (p *Plugins) classifyTransaction(t *ast.Transaction) (VatVariant, bool) {
	return p.cfg.ClassifyFilename(t.Pos.Filename)
}

// rewriteClassified expands a single-posting transaction from a classified
// file into a fully balanced one. The existing posting supplies the expense
// account and the total amount; the variant comes from metadata or the
// filename classification, the credit account from metadata or the bank
// default. Date, payee and narration are left untouched, the posting list
// and link set are replaced. The expanded result has more than one posting,
// so a second pass over it is a no-op.
func (p *Plugins) rewriteClassified(t *ast.Transaction) (ast.Directive, []error) {
	src := t.Postings[0]
	if src.Amount == nil {
		// Nothing to expand against; leave it for ledger validation.
		return t, nil
	}

	total, err := src.Amount.Decimal()
	if err != nil {
		return nil, []error{&TypeError{Pos: t.Pos, Directive: t, Message: err.Error()}}
	}

	variant := VatZeroRated
	if tag, ok := t.Meta(metaVatVariant); ok {
		v, ok := ParseVatVariant(tag)
		if !ok {
			return nil, []error{&UnknownVariantError{Pos: t.Pos, Directive: t, Variant: tag}}
		}
		variant = v
	} else if v, ok := p.classifyTransaction(t); ok {
		variant = v
	}

	creditAccount := p.cfg.Accounts.Bank
	if credit, ok := t.Meta(metaCredit); ok && credit != "" {
		creditAccount = p.cfg.ResolveAccount(credit)
	}

	breakdown, err := ComputeVat(total, variant)
	if err != nil {
		return nil, []error{&UnknownVariantError{Pos: t.Pos, Directive: t, Variant: variant.String()}}
	}

	out := *t
	out.Postings = p.buildExpensePostings(src.Account, breakdown, src.Amount.Currency, creditAccount, total)
	out.Links = nil
	out.AddLink(DeriveLink(t.Date, src.Account))

	return &out, nil
}
