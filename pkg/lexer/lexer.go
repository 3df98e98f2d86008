// Package lexer turns source text into a token stream using an ordered list
// of tagged regular expressions. It also performs newline-based semicolon
// insertion and escape-sequence processing for string data.
package lexer

import (
	"fmt"
	"regexp"
)

// Spec pairs a token type with the regular expression recognizing it.
// Between matches of equal length, earlier specs take precedence over later
// ones.
type Spec struct {
	Type    string
	Pattern string
}

type compiledSpec struct {
	typ string
	re  *regexp.Regexp
}

// Lexer tokenizes source text against a fixed spec list.
type Lexer struct {
	specs []compiledSpec
}

// New compiles the spec list. Patterns are anchored at the current scan
// position.
func New(specs []Spec) (*Lexer, error) {
	l := &Lexer{}
	for _, s := range specs {
		re, err := regexp.Compile("^(?:" + s.Pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("token spec %s: %v", s.Type, err)
		}
		l.specs = append(l.specs, compiledSpec{typ: s.Type, re: re})
	}
	return l, nil
}

// Tokenize scans the input. At each position the longest match wins, and
// among matches of equal length the earliest spec. Characters no spec
// matches are skipped. COMMENT tokens are elided.
func (l *Lexer) Tokenize(input string) []Token {
	var tokens []Token
	for len(input) > 0 {
		best, bestType := "", ""
		for _, s := range l.specs {
			if m := s.re.FindString(input); len(m) > len(best) {
				best, bestType = m, s.typ
			}
		}
		if best == "" {
			input = input[1:]
			continue
		}
		if bestType != "COMMENT" {
			tokens = append(tokens, Token{Type: bestType, Value: best})
		}
		input = input[len(best):]
	}
	return tokens
}

// InsertSemicolons collapses runs of NEWLINE tokens and converts a NEWLINE
// into a SEMICOLON when the previous token can end a statement and the next
// token does not continue one. Remaining NEWLINEs are dropped.
func InsertSemicolons(tokens []Token) []Token {
	var collapsed []Token
	for _, tok := range tokens {
		if tok.Type == "NEWLINE" && len(collapsed) > 0 && collapsed[len(collapsed)-1].Type == "NEWLINE" {
			continue
		}
		collapsed = append(collapsed, tok)
	}
	for i := 1; i+1 < len(collapsed); i++ {
		if collapsed[i].Type == "NEWLINE" && isLineTerminating(collapsed[i-1].Type) && !isContinuation(collapsed[i+1].Type) {
			collapsed[i] = Token{Type: "SEMICOLON", Value: ";"}
		}
	}
	var result []Token
	for _, tok := range collapsed {
		if tok.Type != "NEWLINE" {
			result = append(result, tok)
		}
	}
	return result
}

func isLineTerminating(typ string) bool {
	switch typ {
	case "VAR", "TYPE",
		"INTEGER", "FLOATING_POINT", "CHAR", "STRING", "BOOL", "NULL",
		"BREAK", "CONTINUE", "RETURN", "NOOP", "FALLTHROUGH", "END",
		"INCREMENT", "DECREMENT", "RPAREN", "RBRACE":
		return true
	}
	return false
}

func isContinuation(typ string) bool {
	return typ == "DOT"
}
