package codegen

import (
	"math/big"
	"strings"
	"testing"

	"github.com/babel-lang/babel/pkg/ast"
	"github.com/babel-lang/babel/pkg/types"
)

func intLit(v int64) ast.Integer {
	return ast.Integer{Val: big.NewInt(v), Type: types.Int32}
}

func declare(name string, typ types.Type, konst bool, rhs ast.Expr) ast.Stmt {
	return ast.ExprStmt{Expr: ast.Binary{
		Op:  "=",
		LHS: ast.Variable{Name: name, Type: typ, Const: konst, Decl: true},
		RHS: rhs,
	}}
}

func emit(t *testing.T, stmts ...ast.Stmt) (*Emitter, error) {
	t.Helper()
	e := New()
	_, err := e.EmitRoot(&ast.Root{Stmts: stmts})
	return e, err
}

func funcNames(e *Emitter) map[string]bool {
	names := make(map[string]bool)
	for _, fn := range e.Module.Funcs {
		names[fn.Name()] = true
	}
	return names
}

func TestEmitGlobalDeclaration(t *testing.T) {
	e, err := emit(t,
		declare("x", types.Int32, false, intLit(5)),
		ast.ExprStmt{Expr: ast.Binary{Op: "+", LHS: ast.Variable{Name: "x"}, RHS: intLit(1)}},
	)
	if err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}

	var found bool
	for _, g := range e.Module.Globals {
		if g.Name() == "x" {
			found = true
			if g.Init == nil {
				t.Error("global x has no initializer")
			}
		}
	}
	if !found {
		t.Fatal("global x was not emitted")
	}

	names := funcNames(e)
	for _, want := range []string{"main", "__global_main"} {
		if !names[want] {
			t.Errorf("function %s missing from module", want)
		}
	}
}

func TestConstReassignment(t *testing.T) {
	_, err := emit(t,
		declare("c", nil, true, intLit(3)),
		ast.ExprStmt{Expr: ast.Binary{Op: "=", LHS: ast.Variable{Name: "c"}, RHS: intLit(4)}},
	)
	if err == nil {
		t.Fatal("assignment to constant succeeded")
	}
	if got := err.Error(); got != "Cannot assign to constant 'c'" {
		t.Errorf("error = %q", got)
	}
}

func TestRedefinitionErrors(t *testing.T) {
	_, err := emit(t,
		declare("x", types.Int32, false, intLit(1)),
		declare("x", types.Int32, false, intLit(2)),
	)
	if err == nil || err.Error() != "Redefinition of global variable 'x'" {
		t.Errorf("global redefinition error = %v", err)
	}

	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body: []ast.Stmt{
			declare("y", types.Int32, false, intLit(1)),
			declare("y", types.Int32, false, intLit(2)),
		},
	}
	_, err = emit(t, task)
	if err == nil || err.Error() != "Redefinition of local variable 'y'" {
		t.Errorf("local redefinition error = %v", err)
	}
}

func TestUndeclaredAssignment(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body: []ast.Stmt{
			ast.ExprStmt{Expr: ast.Binary{Op: "=", LHS: ast.Variable{Name: "x"}, RHS: intLit(1)}},
		},
	}
	_, err := emit(t, task)
	if err == nil || err.Error() != "Variable 'x' was never declared" {
		t.Errorf("error = %v", err)
	}
}

func TestPolymorphicTasks(t *testing.T) {
	intTask := ast.Task{
		Header: &ast.TaskHeader{Name: "dup", Params: []ast.Param{{Name: "v", Type: types.Int32}}, Ret: types.Int32},
		Body:   []ast.Stmt{ast.Return{Expr: ast.Variable{Name: "v"}}},
	}
	fltTask := ast.Task{
		Header: &ast.TaskHeader{Name: "dup", Params: []ast.Param{{Name: "v", Type: types.Float32}}, Ret: types.Float32},
		Body:   []ast.Stmt{ast.Return{Expr: ast.Variable{Name: "v"}}},
	}

	e, err := emit(t, intTask, fltTask,
		ast.ExprStmt{Expr: ast.TaskCall{Callee: "dup", Args: []ast.Expr{intLit(1)}}},
	)
	if err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	names := funcNames(e)
	for _, want := range []string{"dup.polymorphic.int32", "dup.polymorphic.float32"} {
		if !names[want] {
			t.Errorf("specialization %s missing from module", want)
		}
	}

	_, err = emit(t, intTask, fltTask,
		ast.ExprStmt{Expr: ast.TaskCall{Callee: "dup", Args: []ast.Expr{ast.Bool{Val: true}}}},
	)
	if err == nil {
		t.Fatal("call with unknown signature succeeded")
	}
	if msg := err.Error(); !strings.Contains(msg, "(int32)") || !strings.Contains(msg, "(float32)") {
		t.Errorf("error does not enumerate signatures: %q", msg)
	}
}

func TestUserMainDispatch(t *testing.T) {
	userMain := ast.Task{
		Header: &ast.TaskHeader{Name: "main", Ret: types.Int32},
		Body:   []ast.Stmt{ast.Return{Expr: intLit(7)}},
	}
	e, err := emit(t, userMain)
	if err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	names := funcNames(e)
	if !names["user.main"] {
		t.Error("user main was not renamed to user.main")
	}
	if !names["main"] {
		t.Error("synthetic entry point missing")
	}

	badMain := ast.Task{
		Header: &ast.TaskHeader{Name: "main", Ret: types.Float64},
		Body:   []ast.Stmt{ast.Return{Expr: ast.Float{Val: big.NewFloat(1), Type: types.Float64}}},
	}
	_, err = emit(t, badMain)
	if err == nil || err.Error() != "main method must return integer or void type" {
		t.Errorf("bad main return type error = %v", err)
	}
}

func TestCallingMainForbidden(t *testing.T) {
	_, err := emit(t, ast.ExprStmt{Expr: ast.TaskCall{Callee: "main"}})
	if err == nil || !strings.Contains(err.Error(), "Calling main is not allowed") {
		t.Errorf("error = %v", err)
	}
}

func TestReturnOutsideTask(t *testing.T) {
	_, err := emit(t, ast.Return{Expr: intLit(0)})
	if err == nil || err.Error() != "Return statements must be inside of a task" {
		t.Errorf("error = %v", err)
	}
}

func TestIfConditionMustBeBool(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body: []ast.Stmt{
			ast.If{Cond: intLit(1), Then: []ast.Stmt{}},
		},
	}
	_, err := emit(t, task)
	if err == nil || !strings.Contains(err.Error(), "Boolean Type") {
		t.Errorf("error = %v", err)
	}
}

func TestIfEmitsBranchStructure(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body: []ast.Stmt{
			ast.If{
				Cond: ast.Bool{Val: true},
				Then: []ast.Stmt{declare("a", types.Int32, false, intLit(1))},
				Else: []ast.Stmt{declare("b", types.Int32, false, intLit(2))},
			},
		},
	}
	e, err := emit(t, task)
	if err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	fn := e.findFunc("f")
	if fn == nil {
		t.Fatal("task f missing from module")
	}
	blockNames := make(map[string]bool)
	for _, b := range fn.Blocks {
		blockNames[b.Name()] = true
	}
	for _, want := range []string{"entry", "then", "else", "ifcont"} {
		if !blockNames[want] {
			t.Errorf("block %s missing, have %v", want, blockNames)
		}
	}
}

func TestGotoLabel(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body: []ast.Stmt{
			ast.Goto{Label: "end"},
			ast.Label{Name: "end"},
		},
	}
	e, err := emit(t, task)
	if err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	fn := e.findFunc("f")
	var found bool
	for _, b := range fn.Blocks {
		if b.Name() == "end" {
			found = true
		}
	}
	if !found {
		t.Error("label block was not attached to the task")
	}

	dupLabels := ast.Task{
		Header: &ast.TaskHeader{Name: "g", Ret: types.Void},
		Body: []ast.Stmt{
			ast.Label{Name: "l"},
			ast.Label{Name: "l"},
		},
	}
	_, err = emit(t, dupLabels)
	if err == nil || err.Error() != "Label was possibly inserted twice" {
		t.Errorf("duplicate label error = %v", err)
	}
}

func TestArrayCopyUsesMemCpy(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body: []ast.Stmt{
			declare("a", nil, false, ast.ArrayLit{Elems: []ast.Expr{intLit(1), intLit(2)}}),
		},
	}
	e, err := emit(t, task)
	if err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	if !funcNames(e)["llvm.memcpy.p0i8.p0i8.i64"] {
		t.Error("memcpy intrinsic was not declared")
	}
}

func TestDerefNonPointer(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Params: []ast.Param{{Name: "x", Type: types.Int32}}, Ret: types.Void},
		Body: []ast.Stmt{
			ast.ExprStmt{Expr: ast.Deref{Operand: ast.Variable{Name: "x"}}},
		},
	}
	_, err := emit(t, task)
	if err == nil || err.Error() != "Cannot dereference non-pointer" {
		t.Errorf("error = %v", err)
	}
}

func TestTaskRedefinition(t *testing.T) {
	task := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body:   []ast.Stmt{},
	}
	other := ast.Task{
		Header: &ast.TaskHeader{Name: "f", Ret: types.Void},
		Body:   []ast.Stmt{},
	}
	// Two identical signatures mangle to the same specialization.
	_, err := emit(t, task, other)
	if err == nil || err.Error() != "Task cannot be redefined" {
		t.Errorf("error = %v", err)
	}
}
