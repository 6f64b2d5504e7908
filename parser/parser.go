// Package parser turns ledger source text into an ast.AST.
//
// The grammar is line-oriented: every directive starts at column zero with a
// date (or one of the file-level keywords option, include, plugin), and
// continuation lines (postings and metadata) are indented. The parser
// reports the first syntax error it hits, with file position.
package parser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/haskoe/beancount-dansk/ast"
)

var (
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numberRegex   = regexp.MustCompile(`^[-+]?\d+(\.\d+)?$`)
	currencyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9._-]*$`)
	metaKeyRegex  = regexp.MustCompile(`^[a-z][a-zA-Z0-9_-]*:$`)
)

// Parse parses a ledger from a reader.
func Parse(ctx context.Context, r io.Reader) (*ast.AST, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(ctx, data)
}

// ParseString parses a ledger from a string.
func ParseString(ctx context.Context, source string) (*ast.AST, error) {
	return ParseBytes(ctx, []byte(source))
}

// ParseBytes parses a ledger from bytes without a filename for positions.
func ParseBytes(ctx context.Context, data []byte) (*ast.AST, error) {
	return ParseBytesWithFilename(ctx, "", data)
}

// ParseBytesWithFilename parses a ledger from bytes, attaching the filename
// to every source position. Directives are sorted by date before returning.
func ParseBytesWithFilename(ctx context.Context, filename string, data []byte) (*ast.AST, error) {
	p := &parser{
		filename: filename,
		lines:    strings.Split(string(data), "\n"),
		tree:     &ast.AST{},
	}

	if err := p.run(ctx); err != nil {
		return nil, err
	}

	ast.SortDirectives(p.tree)
	return p.tree, nil
}

type parser struct {
	filename string
	lines    []string
	idx      int
	tree     *ast.AST
}

// pos returns the position of the current line.
func (p *parser) pos() ast.Position {
	return ast.Position{Filename: p.filename, Line: p.idx + 1, Column: 1}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.pos(), Message: fmt.Sprintf(format, args...)}
}

func (p *parser) run(ctx context.Context) error {
	for p.idx < len(p.lines) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := p.lines[p.idx]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || isComment(trimmed) {
			p.idx++
			continue
		}

		if isIndented(line) {
			return p.errorf("unexpected indented line outside a directive")
		}

		if err := p.parseTopLevel(trimmed); err != nil {
			return err
		}
	}

	return nil
}

// parseTopLevel dispatches one directive starting at the current line and
// advances past it, including any indented continuation lines.
func (p *parser) parseTopLevel(line string) error {
	tokens, err := tokenizeLine(line)
	if err != nil {
		return &ParseError{Pos: p.pos(), Message: err.Error()}
	}
	if len(tokens) == 0 {
		p.idx++
		return nil
	}

	head := tokens[0]
	switch {
	case head.text == "option" && !head.quoted:
		return p.parseOption(tokens)
	case head.text == "include" && !head.quoted:
		return p.parseInclude(tokens)
	case head.text == "plugin" && !head.quoted:
		return p.parsePlugin(tokens)
	case dateRegex.MatchString(head.text) && !head.quoted:
		return p.parseDated(tokens)
	default:
		return p.errorf("expected date or file-level keyword, got %q", head.text)
	}
}

func (p *parser) parseOption(tokens []token) error {
	if len(tokens) != 3 || !tokens[1].quoted || !tokens[2].quoted {
		return p.errorf("option expects two quoted strings")
	}
	p.tree.Options = append(p.tree.Options, &ast.Option{
		Pos:   p.pos(),
		Name:  tokens[1].text,
		Value: tokens[2].text,
	})
	p.idx++
	return nil
}

func (p *parser) parseInclude(tokens []token) error {
	if len(tokens) != 2 || !tokens[1].quoted {
		return p.errorf("include expects one quoted filename")
	}
	p.tree.Includes = append(p.tree.Includes, &ast.Include{
		Pos:      p.pos(),
		Filename: tokens[1].text,
	})
	p.idx++
	return nil
}

func (p *parser) parsePlugin(tokens []token) error {
	if len(tokens) < 2 || len(tokens) > 3 || !tokens[1].quoted {
		return p.errorf("plugin expects a quoted name and optional quoted config")
	}
	plugin := &ast.Plugin{Pos: p.pos(), Name: tokens[1].text}
	if len(tokens) == 3 {
		if !tokens[2].quoted {
			return p.errorf("plugin config must be a quoted string")
		}
		plugin.Config = tokens[2].text
	}
	p.tree.Plugins = append(p.tree.Plugins, plugin)
	p.idx++
	return nil
}

// parseDated parses a date-prefixed directive, consuming its indented block.
func (p *parser) parseDated(tokens []token) error {
	date, err := ast.NewDate(tokens[0].text)
	if err != nil {
		return p.errorf("invalid date %q: %v", tokens[0].text, err)
	}

	if len(tokens) < 2 {
		return p.errorf("date must be followed by a directive keyword or transaction flag")
	}

	keyword := tokens[1]
	rest := tokens[2:]

	if keyword.quoted {
		return p.errorf("expected directive keyword or transaction flag, got a string")
	}

	switch keyword.text {
	case "open":
		return p.parseOpen(date, rest)
	case "close":
		return p.parseClose(date, rest)
	case "commodity":
		return p.parseCommodity(date, rest)
	case "balance":
		return p.parseBalance(date, rest)
	case "note":
		return p.parseNote(date, rest)
	case "document":
		return p.parseDocument(date, rest)
	case "event":
		return p.parseEvent(date, rest)
	case "custom":
		return p.parseCustom(date, rest)
	case "*", "!", "txn":
		flag := keyword.text
		if flag == "txn" {
			flag = "*"
		}
		return p.parseTransaction(date, flag, rest)
	default:
		return p.errorf("unknown directive %q", keyword.text)
	}
}

func (p *parser) parseOpen(date *ast.Date, rest []token) error {
	if len(rest) < 1 {
		return p.errorf("open expects an account")
	}
	account, err := ast.NewAccount(rest[0].text)
	if err != nil {
		return p.errorf("invalid account: %v", err)
	}

	var currencies []string
	for _, tok := range rest[1:] {
		for _, currency := range strings.Split(tok.text, ",") {
			if currency == "" {
				continue
			}
			if !currencyRegex.MatchString(currency) {
				return p.errorf("invalid currency %q", currency)
			}
			currencies = append(currencies, currency)
		}
	}

	open := ast.NewOpen(date, account, currencies)
	open.Pos = p.pos()
	p.idx++
	if err := p.parseMetadataBlock(open); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, open)
	return nil
}

func (p *parser) parseClose(date *ast.Date, rest []token) error {
	if len(rest) != 1 {
		return p.errorf("close expects exactly one account")
	}
	account, err := ast.NewAccount(rest[0].text)
	if err != nil {
		return p.errorf("invalid account: %v", err)
	}

	closed := ast.NewClose(date, account)
	closed.Pos = p.pos()
	p.idx++
	if err := p.parseMetadataBlock(closed); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, closed)
	return nil
}

func (p *parser) parseCommodity(date *ast.Date, rest []token) error {
	if len(rest) != 1 || !currencyRegex.MatchString(rest[0].text) {
		return p.errorf("commodity expects exactly one currency")
	}

	commodity := &ast.Commodity{Pos: p.pos(), Date: date, Currency: rest[0].text}
	p.idx++
	if err := p.parseMetadataBlock(commodity); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, commodity)
	return nil
}

func (p *parser) parseBalance(date *ast.Date, rest []token) error {
	if len(rest) != 3 {
		return p.errorf("balance expects an account and an amount")
	}
	account, err := ast.NewAccount(rest[0].text)
	if err != nil {
		return p.errorf("invalid account: %v", err)
	}
	amount, err := p.parseAmount(rest[1], rest[2])
	if err != nil {
		return err
	}

	balance := ast.NewBalance(date, account, amount)
	balance.Pos = p.pos()
	p.idx++
	if err := p.parseMetadataBlock(balance); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, balance)
	return nil
}

func (p *parser) parseNote(date *ast.Date, rest []token) error {
	if len(rest) != 2 || !rest[1].quoted {
		return p.errorf("note expects an account and a quoted description")
	}
	account, err := ast.NewAccount(rest[0].text)
	if err != nil {
		return p.errorf("invalid account: %v", err)
	}

	note := ast.NewNote(date, account, rest[1].text)
	note.Pos = p.pos()
	p.idx++
	if err := p.parseMetadataBlock(note); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, note)
	return nil
}

func (p *parser) parseDocument(date *ast.Date, rest []token) error {
	if len(rest) != 2 || !rest[1].quoted {
		return p.errorf("document expects an account and a quoted path")
	}
	account, err := ast.NewAccount(rest[0].text)
	if err != nil {
		return p.errorf("invalid account: %v", err)
	}

	document := ast.NewDocument(date, account, rest[1].text)
	document.Pos = p.pos()
	p.idx++
	if err := p.parseMetadataBlock(document); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, document)
	return nil
}

func (p *parser) parseEvent(date *ast.Date, rest []token) error {
	if len(rest) != 2 || !rest[0].quoted || !rest[1].quoted {
		return p.errorf("event expects two quoted strings")
	}

	event := ast.NewEvent(date, rest[0].text, rest[1].text)
	event.Pos = p.pos()
	p.idx++
	if err := p.parseMetadataBlock(event); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, event)
	return nil
}

func (p *parser) parseCustom(date *ast.Date, rest []token) error {
	if len(rest) < 1 || !rest[0].quoted {
		return p.errorf("custom expects a quoted type tag")
	}

	custom := &ast.Custom{Pos: p.pos(), Date: date, Type: rest[0].text}

	values := rest[1:]
	for i := 0; i < len(values); i++ {
		tok := values[i]
		switch {
		case tok.quoted:
			custom.Values = append(custom.Values, ast.StringValue(tok.text))

		case tok.text == "TRUE" || tok.text == "FALSE":
			custom.Values = append(custom.Values, ast.BooleanValue(tok.text == "TRUE"))

		case numberRegex.MatchString(tok.text):
			// A number followed by a currency is an amount; a bare number
			// stays a number.
			if i+1 < len(values) && isCurrencyToken(values[i+1]) {
				custom.Values = append(custom.Values, ast.AmountValue(tok.text, values[i+1].text))
				i++
			} else {
				custom.Values = append(custom.Values, ast.NumberValue(tok.text))
			}

		default:
			account, err := ast.NewAccount(tok.text)
			if err != nil {
				return p.errorf("invalid custom value %q", tok.text)
			}
			custom.Values = append(custom.Values, ast.AccountValue(account))
		}
	}

	p.idx++
	if err := p.parseMetadataBlock(custom); err != nil {
		return err
	}
	p.tree.Directives = append(p.tree.Directives, custom)
	return nil
}

func (p *parser) parseTransaction(date *ast.Date, flag string, rest []token) error {
	txn := &ast.Transaction{Pos: p.pos(), Date: date, Flag: flag}

	var labels []string
	i := 0
	for ; i < len(rest) && rest[i].quoted; i++ {
		labels = append(labels, rest[i].text)
	}
	switch len(labels) {
	case 0:
		return p.errorf("transaction expects a quoted narration")
	case 1:
		txn.Narration = labels[0]
	case 2:
		txn.Payee = labels[0]
		txn.Narration = labels[1]
	default:
		return p.errorf("transaction expects at most payee and narration strings")
	}

	for ; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case !tok.quoted && strings.HasPrefix(tok.text, "#"):
			txn.Tags = append(txn.Tags, ast.NewTag(tok.text))
		case !tok.quoted && strings.HasPrefix(tok.text, "^"):
			txn.AddLink(ast.NewLink(tok.text))
		default:
			return p.errorf("unexpected token %q after narration", tok.text)
		}
	}

	p.idx++
	if err := p.parseTransactionBlock(txn); err != nil {
		return err
	}

	p.tree.Directives = append(p.tree.Directives, txn)
	return nil
}

// parseTransactionBlock consumes the indented lines under a transaction:
// metadata first, then postings (metadata after the first posting attaches
// to that posting).
func (p *parser) parseTransactionBlock(txn *ast.Transaction) error {
	var lastPosting *ast.Posting

	for p.idx < len(p.lines) {
		line := p.lines[p.idx]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			p.idx++
			continue
		}
		if !isIndented(line) {
			break
		}

		tokens, err := tokenizeLine(trimmed)
		if err != nil {
			return &ParseError{Pos: p.pos(), Message: err.Error()}
		}
		if len(tokens) == 0 {
			p.idx++
			continue
		}

		if !tokens[0].quoted && metaKeyRegex.MatchString(tokens[0].text) {
			meta, err := p.parseMetadataLine(tokens)
			if err != nil {
				return err
			}
			if lastPosting != nil {
				lastPosting.AddMetadata(meta)
			} else {
				txn.AddMetadata(meta)
			}
			p.idx++
			continue
		}

		posting, err := p.parsePosting(tokens)
		if err != nil {
			return err
		}
		txn.Postings = append(txn.Postings, posting)
		lastPosting = posting
		p.idx++
	}

	return nil
}

func (p *parser) parsePosting(tokens []token) (*ast.Posting, error) {
	posting := &ast.Posting{Pos: p.pos()}

	i := 0
	if !tokens[i].quoted && (tokens[i].text == "*" || tokens[i].text == "!") {
		posting.Flag = tokens[i].text
		i++
	}

	if i >= len(tokens) {
		return nil, p.errorf("posting expects an account")
	}
	account, err := ast.NewAccount(tokens[i].text)
	if err != nil {
		return nil, p.errorf("invalid account: %v", err)
	}
	posting.Account = account
	i++

	switch len(tokens) - i {
	case 0:
		// Amount elided, inferred during validation.
	case 2:
		amount, err := p.parseAmount(tokens[i], tokens[i+1])
		if err != nil {
			return nil, err
		}
		posting.Amount = amount
	default:
		return nil, p.errorf("posting expects an optional amount after the account")
	}

	return posting, nil
}

// parseMetadataBlock consumes indented metadata lines under a non-transaction
// directive.
func (p *parser) parseMetadataBlock(d ast.WithMetadata) error {
	for p.idx < len(p.lines) {
		line := p.lines[p.idx]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || isComment(trimmed) {
			p.idx++
			continue
		}
		if !isIndented(line) {
			return nil
		}

		tokens, err := tokenizeLine(trimmed)
		if err != nil {
			return &ParseError{Pos: p.pos(), Message: err.Error()}
		}
		if len(tokens) == 0 || tokens[0].quoted || !metaKeyRegex.MatchString(tokens[0].text) {
			return p.errorf("expected metadata key")
		}

		meta, err := p.parseMetadataLine(tokens)
		if err != nil {
			return err
		}
		d.AddMetadata(meta)
		p.idx++
	}

	return nil
}

// parseMetadataLine parses "key:" followed by a typed value.
func (p *parser) parseMetadataLine(tokens []token) (*ast.Metadata, error) {
	key := strings.TrimSuffix(tokens[0].text, ":")
	values := tokens[1:]

	if len(values) == 0 {
		return nil, p.errorf("metadata %q expects a value", key)
	}

	value := values[0]
	switch {
	case value.quoted:
		if len(values) != 1 {
			return nil, p.errorf("metadata %q expects a single value", key)
		}
		return &ast.Metadata{Key: key, Value: &ast.MetadataValue{StringValue: &value.text}}, nil

	case value.text == "TRUE" || value.text == "FALSE":
		b := value.text == "TRUE"
		return &ast.Metadata{Key: key, Value: &ast.MetadataValue{Boolean: &b}}, nil

	case dateRegex.MatchString(value.text):
		date, err := ast.NewDate(value.text)
		if err != nil {
			return nil, p.errorf("invalid metadata date: %v", err)
		}
		return &ast.Metadata{Key: key, Value: &ast.MetadataValue{Date: date}}, nil

	case numberRegex.MatchString(value.text):
		if len(values) == 2 && isCurrencyToken(values[1]) {
			amount, err := p.parseAmount(value, values[1])
			if err != nil {
				return nil, err
			}
			return &ast.Metadata{Key: key, Value: &ast.MetadataValue{Amount: amount}}, nil
		}
		return &ast.Metadata{Key: key, Value: &ast.MetadataValue{Number: &value.text}}, nil

	default:
		if account, err := ast.NewAccount(value.text); err == nil {
			return &ast.Metadata{Key: key, Value: &ast.MetadataValue{Account: &account}}, nil
		}
		if currencyRegex.MatchString(value.text) {
			return &ast.Metadata{Key: key, Value: &ast.MetadataValue{Currency: &value.text}}, nil
		}
		return nil, p.errorf("invalid metadata value %q", value.text)
	}
}

func (p *parser) parseAmount(number, currency token) (*ast.Amount, error) {
	if number.quoted || !numberRegex.MatchString(number.text) {
		return nil, p.errorf("invalid amount number %q", number.text)
	}
	if currency.quoted || !currencyRegex.MatchString(currency.text) {
		return nil, p.errorf("invalid amount currency %q", currency.text)
	}
	return ast.NewAmount(number.text, currency.text), nil
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// isComment recognizes full-line comments at the top level: semicolon
// comments and org-mode section headings.
func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "*")
}

// isCurrencyToken reports whether a token can be the currency half of an
// amount. TRUE and FALSE read as booleans even though they match the
// currency syntax.
func isCurrencyToken(tok token) bool {
	if tok.quoted || tok.text == "TRUE" || tok.text == "FALSE" {
		return false
	}
	return currencyRegex.MatchString(tok.text)
}
