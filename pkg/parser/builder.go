package parser

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/babel-lang/babel/pkg/ast"
	"github.com/babel-lang/babel/pkg/lexer"
	"github.com/babel-lang/babel/pkg/types"
)

// A frame is one entry on the reduction stack: a shifted token, a built AST
// node, or one of the carrier types below for syntactic glue. The driver
// only reports reductions that consumed a token directly (or matched ε), so
// pass-through productions like statement -> expression leave their single
// frame untouched.
type frame interface{}

type stmtsFrame struct{ stmts []ast.Stmt }
type elifFrame struct{ stmts []ast.Stmt }
type annotationFrame struct{ typ types.Type }
type typeFrame struct{ typ types.Type }
type headerFrame struct{ header *ast.TaskHeader }
type paramFrame struct{ param ast.Param }
type paramsFrame struct{ params []ast.Param }
type argsFrame struct{ args []ast.Expr }

// builder assembles AST nodes from parse events. One builder serves one
// Parse call.
type builder struct {
	stack []frame
}

func (b *builder) Shift(tok lexer.Token) {
	b.stack = append(b.stack, tok)
}

func (b *builder) push(f frame) {
	b.stack = append(b.stack, f)
}

// take removes the top n frames and returns them oldest-first, matching the
// production's left-to-right symbol order.
func (b *builder) take(n int) ([]frame, error) {
	if len(b.stack) < n {
		return nil, errors.Errorf("reduction needs %d frames but only %d are on the stack", n, len(b.stack))
	}
	frames := b.stack[len(b.stack)-n:]
	b.stack = b.stack[:len(b.stack)-n]
	return frames, nil
}

func (b *builder) Reduce(lhs string, count int) error {
	frames, err := b.take(count)
	if err != nil {
		return err
	}

	switch lhs {
	case "atom":
		return b.buildAtom(frames[0].(lexer.Token))

	case "sum", "term", "shift_expression", "comparison", "conjunction",
		"disjunction", "contravalence", "bitwise_or", "bitwise_xor", "bitwise_and":
		lhsExpr, err := asExpr(frames[0])
		if err != nil {
			return err
		}
		rhsExpr, err := asExpr(frames[2])
		if err != nil {
			return err
		}
		b.push(ast.Binary{Op: frames[1].(lexer.Token).Value, LHS: lhsExpr, RHS: rhsExpr})
		return nil

	case "factor":
		return b.buildPrefix(frames[0].(lexer.Token), frames[1])
	case "inversion":
		operand, err := asExpr(frames[1])
		if err != nil {
			return err
		}
		b.push(ast.Unary{Op: "!", Operand: operand})
		return nil

	case "target":
		operand, err := asExpr(frames[1])
		if err != nil {
			return err
		}
		b.push(ast.Deref{Operand: operand})
		return nil

	case "primary":
		return b.buildPrimary(frames)

	case "assignment":
		return b.buildAssignment(frames)

	case "annotation":
		if count == 0 {
			b.push(annotationFrame{})
			return nil
		}
		typ, err := asType(frames[1])
		if err != nil {
			return err
		}
		b.push(annotationFrame{typ: typ})
		return nil

	case "type_spec":
		return b.buildTypeSpec(frames)

	case "statement":
		// Only NOOP reaches the builder; every other statement form passes
		// its node through untouched.
		b.push(stmtsFrame{})
		return nil

	case "statement_list":
		return b.buildStatementList(frames)

	case "if_stmt":
		return b.buildIf(frames)
	case "elif_chain":
		return b.buildElifChain(frames)

	case "task_def":
		return b.buildTaskDef(frames)
	case "task_header":
		return b.buildTaskHeader(frames)
	case "extern_task":
		hdr, ok := frames[2].(headerFrame)
		if !ok {
			return errors.New("extern declaration is missing its task header")
		}
		header := *hdr.header
		header.Extern = true
		b.push(header)
		return nil
	case "param":
		typ, err := asType(frames[2])
		if err != nil {
			return err
		}
		b.push(paramFrame{param: ast.Param{Name: frames[0].(lexer.Token).Value, Type: typ}})
		return nil
	case "param_list":
		params, err := asParams(frames[0])
		if err != nil {
			return err
		}
		p, ok := frames[2].(paramFrame)
		if !ok {
			return errors.New("parameter list holds a non-parameter")
		}
		b.push(paramsFrame{params: append(params, p.param)})
		return nil

	case "function_call":
		args, err := callArgs(frames)
		if err != nil {
			return err
		}
		b.push(ast.TaskCall{Callee: frames[0].(lexer.Token).Value, Args: args})
		return nil
	case "class_construction":
		name := frames[0].(lexer.Token).Value
		if name != "Array" {
			return errors.Errorf("Unknown class '%s' referenced", name)
		}
		args, err := callArgs(frames)
		if err != nil {
			return err
		}
		b.push(ast.ArrayLit{Elems: args})
		return nil
	case "arg_list":
		args, err := asArgs(frames[0])
		if err != nil {
			return err
		}
		arg, err := asExpr(frames[2])
		if err != nil {
			return err
		}
		b.push(argsFrame{args: append(args, arg)})
		return nil

	case "goto_stmt":
		b.push(ast.Goto{Label: frames[1].(lexer.Token).Value})
		return nil
	case "label_stmt":
		b.push(ast.Label{Name: frames[1].(lexer.Token).Value})
		return nil
	case "return_stmt":
		if count == 1 {
			b.push(ast.Return{})
			return nil
		}
		expr, err := asExpr(frames[1])
		if err != nil {
			return err
		}
		b.push(ast.Return{Expr: expr})
		return nil
	}

	return errors.Errorf("no constructor for production %s", lhs)
}

// Root collects the fully reduced program. After a successful parse exactly
// one frame remains: the top-level statement list.
func (b *builder) Root() (*ast.Root, error) {
	if len(b.stack) == 0 {
		return &ast.Root{}, nil
	}
	if len(b.stack) != 1 {
		return nil, errors.Errorf("parse left %d dangling fragments", len(b.stack))
	}
	stmts, err := asStmts(b.stack[0])
	if err != nil {
		return nil, err
	}
	return &ast.Root{Stmts: stmts}, nil
}

func (b *builder) buildAtom(tok lexer.Token) error {
	switch tok.Type {
	case "INTEGER":
		lit, err := ast.ParseInteger(tok.Value)
		if err != nil {
			return err
		}
		b.push(lit)
	case "FLOATING_POINT":
		lit, err := ast.ParseFloat(tok.Value)
		if err != nil {
			return err
		}
		b.push(lit)
	case "CHAR":
		s, err := lexer.Unescape(tok.Value[1 : len(tok.Value)-1])
		if err != nil {
			return err
		}
		if len(s) != 1 {
			return errors.Errorf("character literal %s must hold exactly one character", tok.Value)
		}
		b.push(ast.Char{Val: s[0]})
	case "STRING":
		s, err := lexer.Unescape(tok.Value[1 : len(tok.Value)-1])
		if err != nil {
			return err
		}
		b.push(ast.CString{Val: s})
	case "BOOL":
		b.push(ast.Bool{Val: tok.Value == "true"})
	case "VAR":
		b.push(ast.Variable{Name: tok.Value})
	default:
		return errors.Errorf("token %s cannot form an atom", tok.Type)
	}
	return nil
}

func (b *builder) buildPrefix(op lexer.Token, operand frame) error {
	expr, err := asExpr(operand)
	if err != nil {
		return err
	}
	switch op.Type {
	case "STAR":
		b.push(ast.Deref{Operand: expr})
	case "AMP":
		b.push(ast.AddressOf{Operand: expr})
	default:
		b.push(ast.Unary{Op: op.Value, Operand: expr})
	}
	return nil
}

func (b *builder) buildPrimary(frames []frame) error {
	if len(frames) == 3 {
		expr, err := asExpr(frames[1])
		if err != nil {
			return err
		}
		b.push(expr)
		return nil
	}
	container, err := asExpr(frames[0])
	if err != nil {
		return err
	}
	idx, err := asExpr(frames[2])
	if err != nil {
		return err
	}
	b.push(ast.Index{Container: container, Idx: idx})
	return nil
}

func (b *builder) buildAssignment(frames []frame) error {
	if tok, ok := frames[0].(lexer.Token); ok && (tok.Type == "LET" || tok.Type == "CONST") {
		ann, ok := frames[2].(annotationFrame)
		if !ok {
			return errors.New("declaration is missing its annotation slot")
		}
		rhs, err := asExpr(frames[4])
		if err != nil {
			return err
		}
		lhs := ast.Variable{
			Name:  frames[1].(lexer.Token).Value,
			Type:  ann.typ,
			Const: tok.Type == "CONST",
			Decl:  true,
		}
		b.push(ast.Binary{Op: "=", LHS: lhs, RHS: rhs})
		return nil
	}

	lhs, err := asExpr(frames[0])
	if err != nil {
		return err
	}
	op := frames[1].(lexer.Token)
	switch op.Type {
	case "INCREMENT", "DECREMENT":
		one := ast.Integer{Val: big.NewInt(1), Type: types.Int32}
		b.push(ast.Binary{Op: "=", LHS: lhs, RHS: ast.Binary{Op: op.Value[:1], LHS: lhs, RHS: one}})
		return nil
	}
	rhs, err := asExpr(frames[2])
	if err != nil {
		return err
	}
	if op.Type == "ASSIGN" {
		b.push(ast.Binary{Op: "=", LHS: lhs, RHS: rhs})
		return nil
	}
	// Compound assignment lowers to a plain assignment of the widened
	// operation, x += e becoming x = x + e.
	inner := op.Value[:len(op.Value)-1]
	b.push(ast.Binary{Op: "=", LHS: lhs, RHS: ast.Binary{Op: inner, LHS: lhs, RHS: rhs}})
	return nil
}

func (b *builder) buildTypeSpec(frames []frame) error {
	switch len(frames) {
	case 1:
		typ, err := types.FromName(frames[0].(lexer.Token).Value)
		if err != nil {
			return err
		}
		b.push(typeFrame{typ: typ})
	case 2:
		inner, err := asType(frames[0])
		if err != nil {
			return err
		}
		b.push(typeFrame{typ: types.PointerTo(inner, false)})
	default:
		name := frames[0].(lexer.Token).Value
		if name != "Array" {
			return errors.Errorf("Unknown class '%s' referenced", name)
		}
		inner, err := asType(frames[2])
		if err != nil {
			return err
		}
		var size int64
		if len(frames) == 6 {
			lit, err := ast.ParseInteger(frames[4].(lexer.Token).Value)
			if err != nil {
				return err
			}
			size = lit.Val.Int64()
		}
		b.push(typeFrame{typ: types.ArrayOf(inner, size)})
	}
	return nil
}

func (b *builder) buildStatementList(frames []frame) error {
	stmts, err := asStmts(frames[0])
	if err != nil {
		return err
	}
	if len(frames) == 3 {
		tail, err := asStmts(frames[2])
		if err != nil {
			return err
		}
		stmts = append(stmts, tail...)
	}
	b.push(stmtsFrame{stmts: stmts})
	return nil
}

func (b *builder) buildIf(frames []frame) error {
	cond, err := asExpr(frames[1])
	if err != nil {
		return err
	}
	then, err := asStmts(frames[3])
	if err != nil {
		return err
	}
	chain, ok := frames[4].(elifFrame)
	if !ok {
		return errors.New("if statement is missing its else slot")
	}
	b.push(ast.If{Cond: cond, Then: then, Else: chain.stmts})
	return nil
}

// buildElifChain folds elif arms right to left: each arm becomes an If whose
// else branch is the already-folded remainder.
func (b *builder) buildElifChain(frames []frame) error {
	switch len(frames) {
	case 0:
		b.push(elifFrame{})
	case 2:
		stmts, err := asStmts(frames[1])
		if err != nil {
			return err
		}
		b.push(elifFrame{stmts: stmts})
	default:
		cond, err := asExpr(frames[1])
		if err != nil {
			return err
		}
		then, err := asStmts(frames[3])
		if err != nil {
			return err
		}
		rest, ok := frames[4].(elifFrame)
		if !ok {
			return errors.New("elif arm is missing its else slot")
		}
		b.push(elifFrame{stmts: []ast.Stmt{ast.If{Cond: cond, Then: then, Else: rest.stmts}}})
	}
	return nil
}

func (b *builder) buildTaskDef(frames []frame) error {
	hdr, ok := frames[1].(headerFrame)
	if !ok {
		return errors.New("task definition is missing its header")
	}
	var body []ast.Stmt
	if len(frames) == 5 {
		var err error
		if body, err = asStmts(frames[3]); err != nil {
			return err
		}
	}
	b.push(ast.Task{Header: hdr.header, Body: body})
	return nil
}

func (b *builder) buildTaskHeader(frames []frame) error {
	header := &ast.TaskHeader{Name: frames[0].(lexer.Token).Value, Ret: types.Void}
	if params, ok := paramsAt(frames, 2); ok {
		ps, err := asParams(params)
		if err != nil {
			return err
		}
		header.Params = ps
	}
	if len(frames) >= 5 {
		typ, err := asType(frames[len(frames)-1])
		if err != nil {
			return err
		}
		header.Ret = typ
	}
	b.push(headerFrame{header: header})
	return nil
}

// paramsAt reports whether the frame at i is a parameter list rather than
// the closing RPAREN of an empty one.
func paramsAt(frames []frame, i int) (frame, bool) {
	if _, ok := frames[i].(lexer.Token); ok {
		return nil, false
	}
	return frames[i], true
}

func callArgs(frames []frame) ([]ast.Expr, error) {
	if len(frames) == 3 {
		return nil, nil
	}
	return asArgs(frames[2])
}

func asExpr(f frame) (ast.Expr, error) {
	if expr, ok := f.(ast.Expr); ok {
		return expr, nil
	}
	return nil, errors.Errorf("fragment %T is not an expression", f)
}

func asStmts(f frame) ([]ast.Stmt, error) {
	switch v := f.(type) {
	case stmtsFrame:
		return v.stmts, nil
	case ast.Expr:
		return []ast.Stmt{ast.ExprStmt{Expr: v}}, nil
	case ast.Stmt:
		return []ast.Stmt{v}, nil
	}
	return nil, errors.Errorf("fragment %T is not a statement", f)
}

func asType(f frame) (types.Type, error) {
	if t, ok := f.(typeFrame); ok {
		return t.typ, nil
	}
	return nil, errors.Errorf("fragment %T is not a type", f)
}

func asParams(f frame) ([]ast.Param, error) {
	switch v := f.(type) {
	case paramsFrame:
		return v.params, nil
	case paramFrame:
		return []ast.Param{v.param}, nil
	}
	return nil, errors.Errorf("fragment %T is not a parameter list", f)
}

func asArgs(f frame) ([]ast.Expr, error) {
	if v, ok := f.(argsFrame); ok {
		return v.args, nil
	}
	expr, err := asExpr(f)
	if err != nil {
		return nil, err
	}
	return []ast.Expr{expr}, nil
}
