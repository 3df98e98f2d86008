// Package grammar models context-free grammars and computes the FIRST and
// FOLLOW sets needed to drive LR table construction.
package grammar

import (
	"fmt"
	"strings"
)

// Epsilon is the empty production marker.
const Epsilon = "''"

// End is the end-of-input terminal.
const End = "$"

// Rule is a single production: Nonterminal -> Development.
type Rule struct {
	Index       int
	Nonterminal string
	Development []string
}

// IsEpsilon reports whether the rule is an empty production.
func (r Rule) IsEpsilon() bool {
	return len(r.Development) == 1 && r.Development[0] == Epsilon
}

func (r Rule) String() string {
	return r.Nonterminal + " -> " + strings.Join(r.Development, " ")
}

// Grammar holds the rules of a context-free grammar together with its
// alphabet partition and the computed FIRST and FOLLOW sets. Symbol lists
// preserve insertion order so table construction is deterministic.
type Grammar struct {
	Rules        []Rule
	Alphabet     []string
	Nonterminals []string
	Terminals    []string
	Firsts       map[string][]string
	Follows      map[string][]string
	Axiom        string
}

// New parses grammar text, one production per line in the form
// "NT -> sym sym ...", and computes FIRST and FOLLOW sets. The nonterminal
// of the first rule becomes the axiom.
func New(text string) (*Grammar, error) {
	g := &Grammar{
		Firsts:  map[string][]string{},
		Follows: map[string][]string{},
	}
	if err := g.initRules(text); err != nil {
		return nil, err
	}
	g.initTerminals()
	g.initFirsts()
	g.initFollows()
	return g, nil
}

func (g *Grammar) initRules(text string) error {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lhs, rhs, ok := strings.Cut(line, "->")
		if !ok {
			return fmt.Errorf("malformed production %q: missing \"->\"", line)
		}
		nt := strings.TrimSpace(lhs)
		if nt == "" {
			return fmt.Errorf("malformed production %q: empty nonterminal", line)
		}
		dev := strings.Fields(rhs)
		if len(dev) == 0 {
			return fmt.Errorf("malformed production %q: empty development", line)
		}
		rule := Rule{Index: len(g.Rules), Nonterminal: nt, Development: dev}
		g.Rules = append(g.Rules, rule)
		if g.Axiom == "" {
			g.Axiom = nt
		}
		addUnique(nt, &g.Alphabet)
		addUnique(nt, &g.Nonterminals)
	}
	if len(g.Rules) == 0 {
		return fmt.Errorf("grammar has no productions")
	}
	return nil
}

func (g *Grammar) initTerminals() {
	for _, rule := range g.Rules {
		for _, symbol := range rule.Development {
			if symbol != Epsilon && symbol != End && !contains(symbol, g.Nonterminals) {
				addUnique(symbol, &g.Alphabet)
				addUnique(symbol, &g.Terminals)
			}
		}
	}
}

func (g *Grammar) initFirsts() {
	for notDone := true; notDone; {
		notDone = false
		for _, rule := range g.Rules {
			firsts := g.Firsts[rule.Nonterminal]
			if rule.IsEpsilon() {
				notDone = addUnique(Epsilon, &firsts) || notDone
			} else {
				notDone = g.collectDevelopmentFirsts(rule.Development, &firsts) || notDone
			}
			g.Firsts[rule.Nonterminal] = firsts
		}
	}
}

func (g *Grammar) collectDevelopmentFirsts(development []string, firsts *[]string) bool {
	changed := false
	epsilonInSymbolFirsts := true
	for _, symbol := range development {
		epsilonInSymbolFirsts = false
		if contains(symbol, g.Terminals) {
			changed = addUnique(symbol, firsts) || changed
			break
		}
		for _, first := range g.Firsts[symbol] {
			epsilonInSymbolFirsts = epsilonInSymbolFirsts || first == Epsilon
			changed = addUnique(first, firsts) || changed
		}
		if !epsilonInSymbolFirsts {
			break
		}
	}
	if epsilonInSymbolFirsts {
		changed = addUnique(Epsilon, firsts) || changed
	}
	return changed
}

func (g *Grammar) initFollows() {
	for notDone := true; notDone; {
		notDone = false
		for ri, rule := range g.Rules {
			if ri == 0 {
				follows := g.Follows[rule.Nonterminal]
				notDone = addUnique(End, &follows) || notDone
				g.Follows[rule.Nonterminal] = follows
			}
			for i, symbol := range rule.Development {
				if !contains(symbol, g.Nonterminals) {
					continue
				}
				follows := g.Follows[symbol]
				for _, first := range g.SequenceFirsts(rule.Development[i+1:]) {
					if first == Epsilon {
						for _, f := range g.Follows[rule.Nonterminal] {
							notDone = addUnique(f, &follows) || notDone
						}
					} else {
						notDone = addUnique(first, &follows) || notDone
					}
				}
				g.Follows[symbol] = follows
			}
		}
	}
}

// SequenceFirsts computes the FIRST set of a symbol sequence. Epsilon is
// included when the whole sequence can derive the empty string.
func (g *Grammar) SequenceFirsts(sequence []string) []string {
	var result []string
	epsilonInSymbolFirsts := true
	for _, symbol := range sequence {
		epsilonInSymbolFirsts = false
		if contains(symbol, g.Terminals) {
			addUnique(symbol, &result)
			break
		}
		for _, first := range g.Firsts[symbol] {
			epsilonInSymbolFirsts = epsilonInSymbolFirsts || first == Epsilon
			if first != Epsilon {
				addUnique(first, &result)
			}
		}
		epsilonInSymbolFirsts = epsilonInSymbolFirsts || len(g.Firsts[symbol]) == 0
		if !epsilonInSymbolFirsts {
			break
		}
	}
	if epsilonInSymbolFirsts {
		addUnique(Epsilon, &result)
	}
	return result
}

// RulesFor returns every rule whose left-hand side is the given nonterminal.
func (g *Grammar) RulesFor(nonterminal string) []Rule {
	var result []Rule
	for _, rule := range g.Rules {
		if rule.Nonterminal == nonterminal {
			result = append(result, rule)
		}
	}
	return result
}

// IsTerminal reports whether the symbol is a terminal of the grammar.
func (g *Grammar) IsTerminal(symbol string) bool {
	return contains(symbol, g.Terminals)
}

// IsNonterminal reports whether the symbol is a nonterminal of the grammar.
func (g *Grammar) IsNonterminal(symbol string) bool {
	return contains(symbol, g.Nonterminals)
}

// TransformCompact rewrites a compact grammar file using ":" and "|"
// separators into the arrow form New understands. Alternatives on
// continuation lines inherit the most recent left-hand side.
func TransformCompact(text string) string {
	var b strings.Builder
	var lastColonPart string
	for _, line := range strings.Split(text, "\n") {
		if i := strings.LastIndex(line, ":"); i >= 0 {
			lastColonPart = line[:i]
		}
		if i := strings.LastIndex(line, "|"); i >= 0 {
			line = line[:i] + lastColonPart + line[i:]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	out := b.String()
	out = strings.ReplaceAll(out, ":", "->")
	out = strings.ReplaceAll(out, "|", "->")
	return out
}

func addUnique(symbol string, list *[]string) bool {
	if contains(symbol, *list) {
		return false
	}
	*list = append(*list, symbol)
	return true
}

func contains(symbol string, list []string) bool {
	for _, s := range list {
		if s == symbol {
			return true
		}
	}
	return false
}
