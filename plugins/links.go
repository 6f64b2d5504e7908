package plugins

import (
	"strings"

	"github.com/haskoe/beancount-dansk/ast"
)

// DeriveLink builds the deterministic cross-reference token for a synthesized
// transaction: the two-digit year, month and day followed by the expense
// account with its hierarchy separators replaced by hyphens, e.g.
// "250314-Expenses-Food". The same (date, account) pair always yields the
// same token, which makes repeated runs over the same source idempotent and
// lets downstream tooling detect duplicates.
func DeriveLink(date *ast.Date, account ast.Account) ast.Link {
	safe := strings.ReplaceAll(string(account), ":", "-")
	return ast.Link(date.Format("060102") + "-" + safe)
}
