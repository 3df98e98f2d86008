// Package lr builds canonical LR(1) parse tables and runs the shift-reduce
// driver over them.
package lr

import (
	"strings"

	"github.com/babel-lang/babel/pkg/grammar"
)

// Item is an LR(1) item: a rule position plus its lookahead set. Items with
// the same rule and dot merge by unioning lookaheads.
type Item struct {
	Rule       grammar.Rule
	Dot        int
	Lookaheads []string
}

func newItem(rule grammar.Rule, dot int) *Item {
	it := &Item{Rule: rule, Dot: dot}
	if rule.Index == 0 {
		it.Lookaheads = []string{grammar.End}
	}
	return it
}

func (it *Item) String() string {
	var b strings.Builder
	b.WriteString(it.Rule.Nonterminal)
	b.WriteString(" ->")
	for i, sym := range it.Rule.Development {
		if i == it.Dot {
			b.WriteString(" .")
		}
		b.WriteString(" " + sym)
	}
	if it.Dot == len(it.Rule.Development) {
		b.WriteString(" .")
	}
	b.WriteString(", " + strings.Join(it.Lookaheads, "/"))
	return b.String()
}

// symbolAfterDot returns the development symbol at the dot, or "" past the
// end.
func (it *Item) symbolAfterDot() string {
	if it.Dot < len(it.Rule.Development) {
		return it.Rule.Development[it.Dot]
	}
	return ""
}

// reducible reports whether the item calls for a reduction: dot at the end
// or an empty production.
func (it *Item) reducible() bool {
	return it.Dot == len(it.Rule.Development) || it.Rule.Development[0] == grammar.Epsilon
}

// expand returns the fresh items the dot's nonterminal contributes to a
// closure. Their lookaheads are FIRST of the rest of the development, with
// epsilon standing in for this item's own lookaheads.
func (it *Item) expand(g *grammar.Grammar) []*Item {
	sym := it.symbolAfterDot()
	if sym == "" {
		return nil
	}
	var result []*Item
	for _, rule := range g.RulesFor(sym) {
		newItem(rule, 0).addUniqueTo(&result)
	}
	if len(result) == 0 {
		return nil
	}
	var lookaheads []string
	epsilonPresent := false
	for _, first := range g.SequenceFirsts(it.Rule.Development[it.Dot+1:]) {
		if first == grammar.Epsilon {
			epsilonPresent = true
		} else {
			addUnique(first, &lookaheads)
		}
	}
	if epsilonPresent {
		for _, la := range it.Lookaheads {
			addUnique(la, &lookaheads)
		}
	}
	for _, item := range result {
		item.Lookaheads = append([]string(nil), lookaheads...)
	}
	return result
}

// afterShift returns the item with the dot advanced over one symbol, or nil
// when there is nothing to shift.
func (it *Item) afterShift() *Item {
	if it.Dot >= len(it.Rule.Development) || it.Rule.Development[it.Dot] == grammar.Epsilon {
		return nil
	}
	return &Item{
		Rule:       it.Rule,
		Dot:        it.Dot + 1,
		Lookaheads: append([]string(nil), it.Lookaheads...),
	}
}

// addUniqueTo merges the item into the list. An existing item with the same
// rule and dot absorbs the lookaheads; the return value reports whether the
// list changed.
func (it *Item) addUniqueTo(items *[]*Item) bool {
	for _, other := range *items {
		if it.coreEquals(other) {
			changed := false
			for _, la := range it.Lookaheads {
				changed = addUnique(la, &other.Lookaheads) || changed
			}
			return changed
		}
	}
	*items = append(*items, it)
	return true
}

func (it *Item) coreEquals(other *Item) bool {
	return it.Rule.Index == other.Rule.Index && it.Dot == other.Dot
}

func (it *Item) equals(other *Item) bool {
	return it.coreEquals(other) &&
		includes(it.Lookaheads, other.Lookaheads) &&
		includes(other.Lookaheads, it.Lookaheads)
}

func addUnique(symbol string, list *[]string) bool {
	for _, s := range *list {
		if s == symbol {
			return false
		}
	}
	*list = append(*list, symbol)
	return true
}

func includes(subset, set []string) bool {
	for _, s := range subset {
		found := false
		for _, t := range set {
			if s == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
