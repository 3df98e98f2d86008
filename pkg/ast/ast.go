// Package ast defines the abstract syntax tree for Babel programs and the
// parsing of numeric literals into typed values.
package ast

import (
	"math/big"

	"github.com/babel-lang/babel/pkg/types"
)

// Node is the base interface for all AST nodes
type Node interface {
	implNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implStmt()
}

// Bool is a boolean literal
type Bool struct {
	Val bool
}

// Integer is an integer literal carrying its parsed value and sized type
type Integer struct {
	Val  *big.Int
	Type types.Type
}

// Float is a floating-point literal. NaN literals set NaN and carry a zero
// Val.
type Float struct {
	Val  *big.Float
	NaN  bool
	Type types.Type
}

// Char is a character literal
type Char struct {
	Val byte
}

// CString is a string literal with escapes already processed
type CString struct {
	Val string
}

// Variable is a name reference. At a declaration site Decl is set and Type
// optionally carries the annotation; Const marks let-less constants.
type Variable struct {
	Name  string
	Type  types.Type
	Const bool
	Decl  bool
}

// ArrayLit is an Array(...) construction; element types must agree
type ArrayLit struct {
	Elems []Expr
}

// Binary applies an infix operator, "=" included
type Binary struct {
	Op  string
	LHS Expr
	RHS Expr
}

// Unary applies a prefix operator
type Unary struct {
	Op      string
	Operand Expr
}

// Index accesses one element of an array
type Index struct {
	Container Expr
	Idx       Expr
}

// Deref loads through a pointer
type Deref struct {
	Operand Expr
}

// AddressOf takes the address of a variable
type AddressOf struct {
	Operand Expr
}

// TaskCall invokes a task by name
type TaskCall struct {
	Callee string
	Args   []Expr
}

// Param is one task parameter
type Param struct {
	Name string
	Type types.Type
}

// TaskHeader declares a task signature. Extern headers have no body.
type TaskHeader struct {
	Name   string
	Params []Param
	Ret    types.Type
	Extern bool
}

// Task is a task definition
type Task struct {
	Header *TaskHeader
	Body   []Stmt
}

// If is a conditional; Else may be empty. elif chains nest in Else.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// Return exits a task; Expr may be nil
type Return struct {
	Expr Expr
}

// Goto jumps to a label
type Goto struct {
	Label string
}

// Label marks a jump target
type Label struct {
	Name string
}

// ExprStmt evaluates an expression for its effect
type ExprStmt struct {
	Expr Expr
}

// Root is a whole program
type Root struct {
	Stmts []Stmt
}

// Marker methods for Node interface
func (Bool) implNode()       {}
func (Integer) implNode()    {}
func (Float) implNode()      {}
func (Char) implNode()       {}
func (CString) implNode()    {}
func (Variable) implNode()   {}
func (ArrayLit) implNode()   {}
func (Binary) implNode()     {}
func (Unary) implNode()      {}
func (Index) implNode()      {}
func (Deref) implNode()      {}
func (AddressOf) implNode()  {}
func (TaskCall) implNode()   {}
func (TaskHeader) implNode() {}
func (Task) implNode()       {}
func (If) implNode()         {}
func (Return) implNode()     {}
func (Goto) implNode()       {}
func (Label) implNode()      {}
func (ExprStmt) implNode()   {}
func (Root) implNode()       {}

// Marker methods for Expr interface
func (Bool) implExpr()      {}
func (Integer) implExpr()   {}
func (Float) implExpr()     {}
func (Char) implExpr()      {}
func (CString) implExpr()   {}
func (Variable) implExpr()  {}
func (ArrayLit) implExpr()  {}
func (Binary) implExpr()    {}
func (Unary) implExpr()     {}
func (Index) implExpr()     {}
func (Deref) implExpr()     {}
func (AddressOf) implExpr() {}
func (TaskCall) implExpr()  {}

// Marker methods for Stmt interface
func (TaskHeader) implStmt() {}
func (Task) implStmt()       {}
func (If) implStmt()         {}
func (Return) implStmt()     {}
func (Goto) implStmt()       {}
func (Label) implStmt()      {}
func (ExprStmt) implStmt()   {}
