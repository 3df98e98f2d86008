// Package parser ties the Babel token specs, the surface grammar and the
// reduction actions to the LR(1) driver. Building a Parser constructs the
// parse table once; Parse then turns source text into an AST per call.
package parser

import (
	"github.com/babel-lang/babel/pkg/ast"
	"github.com/babel-lang/babel/pkg/grammar"
	"github.com/babel-lang/babel/pkg/lexer"
	"github.com/babel-lang/babel/pkg/lr"
)

// Parser holds the compiled lexer and parse table for Babel source.
type Parser struct {
	lex    *lexer.Lexer
	driver *lr.Parser
}

// New compiles the token specs and builds the LR(1) table for the Babel
// grammar.
func New() (*Parser, error) {
	lex, err := lexer.New(Specs)
	if err != nil {
		return nil, err
	}
	g, err := grammar.New(babelGrammar)
	if err != nil {
		return nil, err
	}
	table, err := lr.NewTable(lr.NewClosureTable(g))
	if err != nil {
		return nil, err
	}
	return &Parser{lex: lex, driver: lr.NewParser(table)}, nil
}

// Tokenize scans source text and applies semicolon insertion.
func (p *Parser) Tokenize(src string) []lexer.Token {
	return lexer.InsertSemicolons(p.lex.Tokenize(src))
}

// Parse turns source text into a program. Syntax errors come back as
// *lr.SyntaxError; malformed literals and misshapen constructs as plain
// errors.
func (p *Parser) Parse(src string) (*ast.Root, error) {
	b := &builder{}
	if _, err := p.driver.Parse(p.Tokenize(src), b); err != nil {
		return nil, err
	}
	return b.Root()
}

// Tree returns the concrete parse tree without building an AST.
func (p *Parser) Tree(src string) (*lr.Node, error) {
	return p.driver.Parse(p.Tokenize(src), nil)
}
