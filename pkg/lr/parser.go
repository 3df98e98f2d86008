package lr

import (
	"sort"
	"strings"

	"github.com/babel-lang/babel/pkg/grammar"
	"github.com/babel-lang/babel/pkg/lexer"
)

// Node is a concrete parse-tree node. Token nodes carry the lexeme in Data.
type Node struct {
	Name     string
	Data     string
	Token    bool
	Children []*Node
}

// HasTokenizedChild reports whether any direct child is a token node.
func (n *Node) HasTokenizedChild() bool {
	for _, child := range n.Children {
		if child.Token {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	var b strings.Builder
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := 0; i < f.depth; i++ {
			b.WriteString("  ")
		}
		if f.depth > 0 {
			b.WriteString("|_ ")
		}
		b.WriteString(f.node.Name)
		if f.node.Token {
			b.WriteString(" '" + f.node.Data + "'")
		}
		b.WriteByte('\n')
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return b.String()
}

// Builder receives parse events so a semantic layer can assemble its own
// structures alongside the parse tree. Reduce fires only for productions
// that consumed at least one token directly, and for empty productions.
type Builder interface {
	Shift(tok lexer.Token)
	Reduce(lhs string, count int) error
}

// SyntaxError describes a parse failure with the token set the failing
// state would have accepted.
type SyntaxError struct {
	Expected []string
	Found    string
}

func (e *SyntaxError) Error() string {
	msg := "SyntaxError: Expected"
	for _, sym := range e.Expected {
		msg += " '" + sym + "' or"
	}
	msg = msg[:strings.LastIndex(msg, " ")]
	msg += " but found '" + e.Found + "'"
	return strings.ReplaceAll(msg, "'"+grammar.End+"'", "EOF")
}

// Parser drives the shift-reduce loop over a parse table.
type Parser struct {
	table *Table
}

// NewParser wraps a built table.
func NewParser(t *Table) *Parser {
	return &Parser{table: t}
}

// Parse runs the driver over the token stream. The builder may be nil when
// only the parse tree is wanted. On success the tree is rooted at the axiom;
// on failure the error is a *SyntaxError, or the builder's own error.
func (p *Parser) Parse(tokens []lexer.Token, builder Builder) (*Node, error) {
	tokens = append(append([]lexer.Token(nil), tokens...), lexer.Token{Type: grammar.End, Value: grammar.End})

	g := p.table.Closures.Grammar
	var nodeStack []*Node
	stateStack := []int{0}
	tokenIndex := 0

	state := p.table.States[0]
	symbol := tokens[0].Type
	action, ok := state.Mapping[symbol]

	for ok && !(action.Type == ActionReduce && action.Value == 0) {
		switch action.Type {
		case ActionShift:
			tok := tokens[tokenIndex]
			nodeStack = append(nodeStack, &Node{Name: tok.Type, Data: tok.Value, Token: true})
			stateStack = append(stateStack, action.Value)
			if builder != nil {
				builder.Shift(tok)
			}
			tokenIndex++
		case ActionReduce:
			rule := g.Rules[action.Value]
			removeCount := len(rule.Development)
			if rule.IsEpsilon() {
				removeCount = 0
			}
			newNode := &Node{Name: rule.Nonterminal}
			for i := 0; i < removeCount; i++ {
				child := nodeStack[len(nodeStack)-1]
				nodeStack = nodeStack[:len(nodeStack)-1]
				stateStack = stateStack[:len(stateStack)-1]
				newNode.Children = append([]*Node{child}, newNode.Children...)
			}
			nodeStack = append(nodeStack, newNode)
			if builder != nil && (newNode.HasTokenizedChild() || rule.IsEpsilon()) {
				if err := builder.Reduce(rule.Nonterminal, removeCount); err != nil {
					return nil, err
				}
			}
		default:
			stateStack = append(stateStack, action.Value)
		}

		state = p.table.States[stateStack[len(stateStack)-1]]
		if (len(nodeStack)+len(stateStack))%2 == 0 {
			symbol = nodeStack[len(nodeStack)-1].Name
		} else {
			symbol = tokens[tokenIndex].Type
		}
		action, ok = state.Mapping[symbol]
	}

	if ok {
		return &Node{Name: g.Axiom, Children: []*Node{nodeStack[len(nodeStack)-1]}}, nil
	}
	return nil, p.syntaxError(state, tokens[tokenIndex].Value)
}

// syntaxError assembles the expected-token set of a state: terminals
// directly, nonterminals through their FIRST sets, sorted with end-of-input
// last.
func (p *Parser) syntaxError(state *State, found string) *SyntaxError {
	g := p.table.Closures.Grammar
	var expected []string
	for symbol := range state.Mapping {
		if g.IsNonterminal(symbol) {
			for _, first := range g.Firsts[symbol] {
				if first != grammar.Epsilon {
					addUnique(first, &expected)
				}
			}
		} else {
			addUnique(symbol, &expected)
		}
	}
	sort.Strings(expected)
	for i, sym := range expected {
		if sym == grammar.End {
			expected = append(append(expected[:i:i], expected[i+1:]...), grammar.End)
			break
		}
	}
	return &SyntaxError{Expected: expected, Found: found}
}
