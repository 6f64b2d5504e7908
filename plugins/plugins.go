// Package plugins implements the synthesis pass that rewrites shorthand
// directives into fully balanced double-entry transactions with Danish VAT
// (moms) postings.
//
// The pass recognizes three custom directive type tags plus partially
// specified transactions in classified files:
//
//	custom "quick-expense" Expenses:Food "Lunch" 125.00 DKK "standard"
//	custom "quick-mileage" 100 KM
//	custom "sales-invoice" "Acme" "F-2025-017" Income:Konsulent "Consulting;10;1000"
//
// Every rewrite either produces a complete balanced transaction or reports an
// error and drops the directive; the pass itself always runs to completion
// and returns the rewritten entry list together with all accumulated errors.
// Entries that match nothing are passed through untouched.
//
// Example usage:
//
//	p := plugins.New(plugins.DefaultConfig())
//	entries, errs := p.Apply(ctx, tree.Directives)
package plugins

import (
	"context"
	"fmt"
	"os/user"
	"time"

	"github.com/haskoe/beancount-dansk/ast"
	"github.com/haskoe/beancount-dansk/telemetry"
)

// Directive type tags recognized by the pass.
const (
	TypeQuickExpense = "quick-expense"
	TypeQuickMileage = "quick-mileage"
	TypeSalesInvoice = "sales-invoice"
)

// Metadata keys read from directives and written onto synthesized transactions.
const (
	metaVatVariant = "moms"
	metaCredit     = "credit"
	metaInvoiceRef = "invoice"
	metaDueDate    = "due_date"
	metaFilename   = "filename"
)

// Plugins runs the synthesis pass. It is stateless between invocations apart
// from the injected configuration and the optional document renderer.
type Plugins struct {
	cfg      *Config
	renderer DocumentRenderer

	// now and generatedBy feed the invoice document payload; overridable in tests.
	now         func() time.Time
	generatedBy string
}

// Option configures a Plugins instance.
type Option func(*Plugins)

// WithRenderer attaches a document renderer used by the sales-invoice
// rewriter. Without one, rendering is skipped and the accounting transaction
// is still emitted.
func WithRenderer(r DocumentRenderer) Option {
	return func(p *Plugins) {
		p.renderer = r
	}
}

// New creates a synthesis pass with the given configuration.
func New(cfg *Config, opts ...Option) *Plugins {
	p := &Plugins{
		cfg:         cfg,
		now:         time.Now,
		generatedBy: currentUser(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func currentUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "Unknown"
	}
	return u.Username
}

// Apply runs the pass once over the entries, in input order. It returns the
// rewritten entry list and all accumulated errors. Directives that fail
// validation are omitted from the output and reported; advisory errors
// (verification mismatches, render failures) are reported while the
// transaction is still emitted.
func (p *Plugins) Apply(ctx context.Context, entries ast.Directives) (ast.Directives, []error) {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("plugins.apply (%d entries)", len(entries)))
	defer timer.End()

	out := make(ast.Directives, 0, len(entries))
	var errs []error

	for _, entry := range entries {
		rewritten, entryErrs := p.rewriteEntry(ctx, entry)
		errs = append(errs, entryErrs...)
		if rewritten != nil {
			out = append(out, rewritten)
		}
	}

	return out, errs
}

// ApplyAST runs Apply over tree.Directives and swaps in the result.
func (p *Plugins) ApplyAST(ctx context.Context, tree *ast.AST) []error {
	entries, errs := p.Apply(ctx, tree.Directives)
	tree.Directives = entries
	return errs
}

// rewriteEntry dispatches a single entry to the matching rewriter. A nil
// result means the entry was dropped (after reporting at least one error).
func (p *Plugins) rewriteEntry(ctx context.Context, entry ast.Directive) (ast.Directive, []error) {
	switch d := entry.(type) {
	case *ast.Custom:
		switch d.Type {
		case TypeQuickExpense:
			return p.rewriteExpense(d)
		case TypeQuickMileage:
			return p.rewriteMileage(d)
		case TypeSalesInvoice:
			return p.rewriteInvoice(ctx, d)
		}

	case *ast.Transaction:
		// Auto-fill only triggers on a single-posting transaction in a
		// classified file. Anything else (including its own previous output,
		// which has more than one posting) passes through untouched.
		if len(d.Postings) == 1 {
			if _, ok := p.classifyTransaction(d); ok {
				return p.rewriteClassified(d)
			}
		}
	}

	return entry, nil
}
