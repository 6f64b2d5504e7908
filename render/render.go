// Package render persists sales-invoice documents as standalone HTML files.
//
// Rendering is render-once: a document that already exists on disk is never
// overwritten, so repeated passes over the same ledger are idempotent and
// issued invoices cannot be silently regenerated with different content.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/haskoe/beancount-dansk/plugins"
)

//go:embed templates/invoice.html
var builtin embed.FS

const templateName = "invoice.html"

// HTMLRenderer writes invoice documents under a fixed output directory. A
// template directory can override the built-in invoice template by providing
// its own invoice.html.
type HTMLRenderer struct {
	templateDir string
	outputDir   string
}

var _ plugins.DocumentRenderer = (*HTMLRenderer)(nil)

// New creates a renderer writing to outputDir. An empty templateDir uses the
// built-in template only.
func New(templateDir, outputDir string) *HTMLRenderer {
	return &HTMLRenderer{
		templateDir: templateDir,
		outputDir:   outputDir,
	}
}

// DocumentPath returns the absolute path the document for an invoice
// identifier is written to.
func (r *HTMLRenderer) DocumentPath(invoiceID string) (string, error) {
	return filepath.Abs(filepath.Join(r.outputDir, invoiceID+".html"))
}

// RenderOnce renders and persists the invoice document unless a file already
// exists at its deterministic path. It reports whether a new file was
// written.
func (r *HTMLRenderer) RenderOnce(ctx context.Context, doc *plugins.InvoiceDocument) (bool, error) {
	path, err := r.DocumentPath(doc.InvoiceID)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	tmpl, err := r.loadTemplate()
	if err != nil {
		return false, err
	}

	// Render fully into memory first so a template error never leaves a
	// truncated document behind.
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return false, fmt.Errorf("failed to render invoice %s: %w", doc.InvoiceID, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("failed to write invoice %s: %w", doc.InvoiceID, err)
	}

	return true, nil
}

// Probe verifies the renderer can produce documents: the template must
// parse and execute against a sample document. Nothing is written to disk.
func (r *HTMLRenderer) Probe() error {
	tmpl, err := r.loadTemplate()
	if err != nil {
		return fmt.Errorf("invoice template unusable: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, &plugins.InvoiceDocument{InvoiceID: "probe"}); err != nil {
		return fmt.Errorf("invoice template unusable: %w", err)
	}
	return nil
}

// loadTemplate prefers an invoice.html in the configured template directory
// and falls back to the built-in template.
func (r *HTMLRenderer) loadTemplate() (*template.Template, error) {
	if r.templateDir != "" {
		custom := filepath.Join(r.templateDir, templateName)
		if _, err := os.Stat(custom); err == nil {
			return template.ParseFiles(custom)
		}
	}
	return template.ParseFS(builtin, "templates/"+templateName)
}
