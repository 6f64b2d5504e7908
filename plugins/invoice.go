package plugins

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haskoe/beancount-dansk/ast"
)

// Payment term applied to every sales invoice.
const invoiceDueDays = 14

// InvoiceLine is one billed line of a sales invoice.
type InvoiceLine struct {
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	LineTotal   decimal.Decimal
}

// InvoiceDocument is the structured payload handed to the document renderer.
type InvoiceDocument struct {
	CompanyName string
	ClientName  string
	InvoiceID   string
	Date        string
	DueDate     string
	Lines       []InvoiceLine
	TotalNet    decimal.Decimal
	TotalVat    decimal.Decimal
	TotalGross  decimal.Decimal
	GeneratedAt time.Time
	GeneratedBy string
}

// DocumentRenderer persists a human-readable invoice document. Rendering is
// render-once: an existing file at the deterministic path is never
// overwritten, which keeps repeated passes over the same ledger idempotent.
type DocumentRenderer interface {
	// DocumentPath returns the absolute path the document for this invoice
	// identifier will be (or already has been) written to.
	DocumentPath(invoiceID string) (string, error)

	// RenderOnce renders and persists the document unless it already exists.
	// It reports whether a new file was written.
	RenderOnce(ctx context.Context, doc *InvoiceDocument) (written bool, err error)
}

// rewriteInvoice turns a sales-invoice directive into a three-leg
// receivables transaction and, when a renderer is attached, requests the
// invoice document. Line items are validated individually: a malformed line
// is reported and skipped while the rest of the directive proceeds. A
// directive with no valid line at all is dropped, since it would synthesize
// zero-amount postings.
func (p *Plugins) rewriteInvoice(ctx context.Context, d *ast.Custom) (ast.Directive, []error) {
	shape, err := parseInvoiceShape(d)
	if err != nil {
		return nil, []error{err}
	}

	var errs []error
	var lines []InvoiceLine
	totalNet := decimal.Zero

	for _, raw := range shape.RawLines {
		line, reason := parseLineItem(raw)
		if reason != "" {
			item, _ := raw.Text()
			errs = append(errs, &LineItemError{Pos: d.Pos, Directive: d, Item: item, Reason: reason})
			continue
		}
		lines = append(lines, line)
		totalNet = totalNet.Add(line.LineTotal)
	}

	if len(lines) == 0 {
		return nil, errs
	}

	totalVat := totalNet.Mul(vatFraction)
	totalGross := totalNet.Add(totalVat)
	currency := p.cfg.Currency

	dueDate := ast.NewDateFromTime(d.Date.AddDate(0, 0, invoiceDueDays))

	txn := ast.NewTransaction(d.Date, fmt.Sprintf("Invoice %s", shape.InvoiceID),
		ast.WithFlag("*"),
		ast.WithPayee(shape.ClientName),
		ast.WithPostings(
			ast.NewPosting(p.cfg.Accounts.Receivables,
				ast.WithDecimalAmount(totalGross, currency)),
			ast.NewPosting(shape.Income,
				ast.WithDecimalAmount(totalNet.Neg(), currency)),
			ast.NewPosting(p.cfg.Accounts.VatSale,
				ast.WithDecimalAmount(totalVat.Neg(), currency)),
		),
	)
	txn.Pos = d.Pos
	txn.AddMetadata(d.Metadata...)
	txn.AddMetadata(ast.NewMetadata(metaDueDate, dueDate.String()))

	if p.renderer != nil {
		doc := &InvoiceDocument{
			CompanyName: p.cfg.Invoice.CompanyName,
			ClientName:  shape.ClientName,
			InvoiceID:   shape.InvoiceID,
			Date:        d.Date.String(),
			DueDate:     dueDate.String(),
			Lines:       lines,
			TotalNet:    totalNet,
			TotalVat:    totalVat,
			TotalGross:  totalGross,
			GeneratedAt: p.now(),
			GeneratedBy: p.generatedBy,
		}

		if path, pathErr := p.renderer.DocumentPath(shape.InvoiceID); pathErr == nil {
			txn.AddMetadata(ast.NewMetadata(metaFilename, path))
		}

		if _, renderErr := p.renderer.RenderOnce(ctx, doc); renderErr != nil {
			errs = append(errs, &RenderError{
				Pos:       d.Pos,
				Directive: d,
				InvoiceID: shape.InvoiceID,
				Err:       renderErr,
			})
		}
	}

	return txn, errs
}
