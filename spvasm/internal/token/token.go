package token

import (
	"fmt"
	"strings"
	"unicode"
)

type Type int

const (
	Ident Type = iota
	ID
	String
	Number
	Assign
	Newline
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case ID:
		return "id"
	case String:
		return "string"
	case Number:
		return "number"
	case Assign:
		return "'='"
	case Newline:
		return "end of line"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Tokenize splits assembly source into tokens. Every non-empty source line
// ends with a Newline token so the parser can treat lines as instructions.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line := 1
	runes := []rune(input)

	endLine := func() {
		if n := len(tokens); n > 0 && tokens[n-1].Type != Newline {
			tokens = append(tokens, Token{"", Newline, line})
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			endLine()
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == ';' {
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		}

		if r == '=' {
			tokens = append(tokens, Token{"=", Assign, line})
			continue
		}

		if r == '"' {
			var sb strings.Builder
			start := line
			i++
			for ; i < len(runes) && runes[i] != '"'; i++ {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				if runes[i] == '\n' {
					line++
				}
				sb.WriteRune(runes[i])
			}
			if i >= len(runes) {
				return nil, fmt.Errorf("line %d: unterminated string", start)
			}
			tokens = append(tokens, Token{sb.String(), String, start})
			continue
		}

		if r == '%' {
			start := i
			for i+1 < len(runes) && isIDRune(runes[i+1]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("line %d: empty id", line)
			}
			tokens = append(tokens, Token{string(runes[start+1 : i+1]), ID, line})
			continue
		}

		if r == '-' || r == '+' || unicode.IsDigit(r) {
			start := i
			for i+1 < len(runes) && isNumberRune(runes[i], runes[i+1]) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start : i+1]), Number, line})
			continue
		}

		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i+1 < len(runes) && (unicode.IsLetter(runes[i+1]) || unicode.IsDigit(runes[i+1]) || runes[i+1] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start : i+1]), Ident, line})
			continue
		}

		return nil, fmt.Errorf("line %d: unexpected character %q", line, r)
	}
	endLine()
	return tokens, nil
}

func isIDRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// isNumberRune reports whether next continues a numeric literal after prev.
// Exponent signs are accepted after e or p.
func isNumberRune(prev, next rune) bool {
	switch {
	case unicode.IsDigit(next), unicode.IsLetter(next), next == '.', next == '_':
		return true
	case next == '-' || next == '+':
		return prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'
	}
	return false
}
