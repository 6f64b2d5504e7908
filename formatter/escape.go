package formatter

import "strings"

// escapeString escapes double quotes and backslashes for quoted ledger
// strings.
func escapeString(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 8)
	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		default:
			buf.WriteRune(c)
		}
	}
	return buf.String()
}
