// Package formatter serializes an AST back to aligned ledger text.
//
// Amounts are right-aligned so that currencies line up in a single column,
// matching the conventional bean-format layout. Column widths are measured
// with display width rather than byte length so accounts and narrations
// containing non-ASCII characters align correctly.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/haskoe/beancount-dansk/ast"
)

const (
	// DefaultCurrencyColumn is the default column position for currency
	// alignment, matching bean-format behavior.
	DefaultCurrencyColumn = 52

	// DefaultIndentation is the indentation for postings and metadata.
	DefaultIndentation = 2

	// minimumSpacing is the smallest gap between an account name and its
	// amount.
	minimumSpacing = 2
)

// Formatter renders an AST as ledger text.
type Formatter struct {
	// CurrencyColumn is the target column for currency alignment. When 0 a
	// column is chosen from the widest posting in the file, with
	// DefaultCurrencyColumn as the lower bound.
	CurrencyColumn int

	// Indentation is the number of spaces for postings and metadata.
	// When 0, DefaultIndentation applies.
	Indentation int
}

// New returns a formatter with default settings.
func New() *Formatter {
	return &Formatter{}
}

// Format writes the tree as ledger text to w. Directives are separated by
// blank lines; file-level options, plugins and includes come first.
func (f *Formatter) Format(tree *ast.AST, w io.Writer) error {
	var buf strings.Builder

	column := f.CurrencyColumn
	if column == 0 {
		column = f.measureCurrencyColumn(tree)
	}

	wroteHeader := false
	for _, opt := range tree.Options {
		fmt.Fprintf(&buf, "option %q %q\n", opt.Name, opt.Value)
		wroteHeader = true
	}
	for _, plugin := range tree.Plugins {
		if plugin.Config != "" {
			fmt.Fprintf(&buf, "plugin %q %q\n", plugin.Name, plugin.Config)
		} else {
			fmt.Fprintf(&buf, "plugin %q\n", plugin.Name)
		}
		wroteHeader = true
	}
	for _, include := range tree.Includes {
		fmt.Fprintf(&buf, "include %q\n", include.Filename)
		wroteHeader = true
	}

	for i, directive := range tree.Directives {
		if wroteHeader || i > 0 {
			buf.WriteString("\n")
		}
		f.formatDirective(&buf, directive, column)
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// FormatDirective renders a single directive as ledger text, using the
// default currency column.
func (f *Formatter) FormatDirective(directive ast.Directive) string {
	var buf strings.Builder
	f.formatDirective(&buf, directive, DefaultCurrencyColumn)
	return buf.String()
}

// FormatString renders the tree and returns the result as a string.
func (f *Formatter) FormatString(tree *ast.AST) string {
	var buf strings.Builder
	_ = f.Format(tree, &buf)
	return buf.String()
}

func (f *Formatter) indent() string {
	n := f.Indentation
	if n == 0 {
		n = DefaultIndentation
	}
	return strings.Repeat(" ", n)
}

// measureCurrencyColumn finds the column that fits every posting's amount,
// never below the default.
func (f *Formatter) measureCurrencyColumn(tree *ast.AST) int {
	column := DefaultCurrencyColumn
	indentWidth := len(f.indent())

	for _, directive := range tree.Directives {
		t, ok := directive.(*ast.Transaction)
		if !ok {
			continue
		}
		for _, p := range t.Postings {
			if p.Amount == nil {
				continue
			}
			prefix := indentWidth + postingPrefixWidth(p)
			needed := prefix + minimumSpacing + len(p.Amount.Value) + 1
			if needed > column {
				column = needed
			}
		}
	}

	return column
}

func postingPrefixWidth(p *ast.Posting) int {
	width := runewidth.StringWidth(string(p.Account))
	if p.Flag != "" {
		width += len(p.Flag) + 1
	}
	return width
}

func (f *Formatter) formatDirective(buf *strings.Builder, directive ast.Directive, column int) {
	switch d := directive.(type) {
	case *ast.Commodity:
		fmt.Fprintf(buf, "%s commodity %s\n", d.Date, d.Currency)
		f.formatMetadata(buf, d.Metadata)
	case *ast.Open:
		fmt.Fprintf(buf, "%s open %s", d.Date, d.Account)
		if len(d.ConstraintCurrencies) > 0 {
			fmt.Fprintf(buf, " %s", strings.Join(d.ConstraintCurrencies, ","))
		}
		buf.WriteString("\n")
		f.formatMetadata(buf, d.Metadata)
	case *ast.Close:
		fmt.Fprintf(buf, "%s close %s\n", d.Date, d.Account)
		f.formatMetadata(buf, d.Metadata)
	case *ast.Balance:
		fmt.Fprintf(buf, "%s balance %s %s\n", d.Date, d.Account, d.Amount)
		f.formatMetadata(buf, d.Metadata)
	case *ast.Note:
		fmt.Fprintf(buf, "%s note %s \"%s\"\n", d.Date, d.Account, escapeString(d.Description))
		f.formatMetadata(buf, d.Metadata)
	case *ast.Document:
		fmt.Fprintf(buf, "%s document %s %q\n", d.Date, d.Account, d.PathToDocument)
		f.formatMetadata(buf, d.Metadata)
	case *ast.Event:
		fmt.Fprintf(buf, "%s event \"%s\" \"%s\"\n", d.Date, escapeString(d.Name), escapeString(d.Value))
		f.formatMetadata(buf, d.Metadata)
	case *ast.Custom:
		f.formatCustom(buf, d)
	case *ast.Transaction:
		f.formatTransaction(buf, d, column)
	}
}

func (f *Formatter) formatCustom(buf *strings.Builder, d *ast.Custom) {
	fmt.Fprintf(buf, "%s custom \"%s\"", d.Date, escapeString(d.Type))
	for _, value := range d.Values {
		buf.WriteString(" ")
		buf.WriteString(formatCustomValue(value))
	}
	buf.WriteString("\n")
	f.formatMetadata(buf, d.Metadata)
}

func formatCustomValue(value *ast.CustomValue) string {
	switch {
	case value.String != nil:
		return fmt.Sprintf("\"%s\"", escapeString(*value.String))
	case value.Account != nil:
		return string(*value.Account)
	case value.Amount != nil:
		return value.Amount.String()
	case value.Number != nil:
		return *value.Number
	case value.Boolean != nil:
		if *value.Boolean {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

func (f *Formatter) formatTransaction(buf *strings.Builder, t *ast.Transaction, column int) {
	flag := t.Flag
	if flag == "" {
		flag = "*"
	}

	fmt.Fprintf(buf, "%s %s", t.Date, flag)
	if t.Payee != "" {
		fmt.Fprintf(buf, " \"%s\"", escapeString(t.Payee))
	}
	fmt.Fprintf(buf, " \"%s\"", escapeString(t.Narration))
	for _, tag := range t.Tags {
		fmt.Fprintf(buf, " #%s", tag)
	}
	for _, link := range t.Links {
		fmt.Fprintf(buf, " ^%s", link)
	}
	buf.WriteString("\n")

	f.formatMetadata(buf, t.Metadata)

	for _, p := range t.Postings {
		f.formatPosting(buf, p, column)
	}
}

func (f *Formatter) formatPosting(buf *strings.Builder, p *ast.Posting, column int) {
	indent := f.indent()
	buf.WriteString(indent)

	prefix := postingPrefixWidth(p)
	if p.Flag != "" {
		buf.WriteString(p.Flag)
		buf.WriteString(" ")
	}
	buf.WriteString(string(p.Account))

	if p.Amount != nil {
		// Right-align the number so the currency starts at column.
		padding := column - len(indent) - prefix - len(p.Amount.Value) - 1
		if padding < minimumSpacing {
			padding = minimumSpacing
		}
		buf.WriteString(strings.Repeat(" ", padding))
		buf.WriteString(p.Amount.Value)
		buf.WriteString(" ")
		buf.WriteString(p.Amount.Currency)
	}
	buf.WriteString("\n")

	for _, m := range p.Metadata {
		buf.WriteString(indent)
		buf.WriteString(indent)
		fmt.Fprintf(buf, "%s: %s\n", m.Key, formatMetadataValue(m.Value))
	}
}

func (f *Formatter) formatMetadata(buf *strings.Builder, metadata []*ast.Metadata) {
	indent := f.indent()
	for _, m := range metadata {
		buf.WriteString(indent)
		fmt.Fprintf(buf, "%s: %s\n", m.Key, formatMetadataValue(m.Value))
	}
}

func formatMetadataValue(value *ast.MetadataValue) string {
	if value == nil {
		return `""`
	}
	switch {
	case value.StringValue != nil:
		return fmt.Sprintf("\"%s\"", escapeString(*value.StringValue))
	case value.Date != nil:
		return value.Date.String()
	case value.Account != nil:
		return string(*value.Account)
	case value.Amount != nil:
		return value.Amount.String()
	case value.Number != nil:
		return *value.Number
	case value.Boolean != nil:
		if *value.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case value.Currency != nil:
		return *value.Currency
	default:
		return `""`
	}
}
