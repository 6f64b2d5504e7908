package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// token is one lexical element of a source line. Quoted tokens carry their
// unescaped content; everything else is a bare word.
type token struct {
	text   string
	quoted bool
	column int
}

// tokenizeLine splits one line into tokens. Double-quoted strings may
// contain spaces, semicolons and escaped quotes; an unquoted semicolon
// starts a comment that runs to the end of the line.
func tokenizeLine(line string) ([]token, error) {
	var tokens []token
	runes := []rune(line)

	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == ';':
			return tokens, nil

		case r == '"':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				switch runes[i] {
				case '\\':
					if i+1 < len(runes) {
						i++
						sb.WriteRune(runes[i])
					}
				case '"':
					closed = true
				default:
					sb.WriteRune(runes[i])
				}
				i++
				if closed {
					break
				}
			}
			if !closed {
				return nil, fmt.Errorf("unterminated string at column %d", start+1)
			}
			tokens = append(tokens, token{text: sb.String(), quoted: true, column: start + 1})

		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != ';' && runes[i] != '"' {
				i++
			}
			tokens = append(tokens, token{text: string(runes[start:i]), column: start + 1})
		}
	}

	return tokens, nil
}
