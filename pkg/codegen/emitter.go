// Package codegen lowers a Babel AST into an LLVM IR module. All emission
// flows through an Emitter context so no state outlives one compilation.
package codegen

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"

	"github.com/babel-lang/babel/pkg/ast"
	"github.com/babel-lang/babel/pkg/symbols"
	"github.com/babel-lang/babel/pkg/types"
)

// Emitter carries the module under construction, the current insertion
// point, and the symbol state of the compilation unit.
type Emitter struct {
	Module *ir.Module

	fn    *ir.Func
	block *ir.Block

	syms  *symbols.Tables
	arena *types.Arena

	globalMain *ir.Func
	memcpy     *ir.Func

	ifSeq  int
	strSeq int
}

// New returns an emitter with a fresh module and empty symbol tables.
func New() *Emitter {
	return &Emitter{
		Module: ir.NewModule(),
		syms:   symbols.NewTables(),
		arena:  types.NewArena(),
	}
}

// globalScope reports whether emission is currently inside the synthetic
// top-level function rather than a user task body.
func (e *Emitter) globalScope() bool {
	return e.fn == e.globalMain
}

// EmitRoot lowers a whole program. It synthesizes the process entry point:
// a user task named main is emitted as user.main, the real main(argc, argv,
// envp) stores its parameters into the __argc__/__argv__/__envp__ globals
// and tail-calls an internal __global_main holding all top-level code, which
// finally dispatches to user.main if one exists.
func (e *Emitter) EmitRoot(root *ast.Root) (*ir.Module, error) {
	m := e.Module
	bytePtr := lltypes.NewPointer(lltypes.I8)

	mainFn := m.NewFunc("main", lltypes.I32,
		ir.NewParam("argc", lltypes.I32),
		ir.NewParam("argv", bytePtr),
		ir.NewParam("envp", bytePtr))
	mainEntry := mainFn.NewBlock("entry")

	gArgc := m.NewGlobalDef("__argc__", constant.NewInt(lltypes.I32, 0))
	gArgv := m.NewGlobalDef("__argv__", constant.NewNull(bytePtr))
	gEnvp := m.NewGlobalDef("__envp__", constant.NewNull(bytePtr))
	mainEntry.NewStore(mainFn.Params[0], gArgc)
	mainEntry.NewStore(mainFn.Params[1], gArgv)
	mainEntry.NewStore(mainFn.Params[2], gEnvp)

	e.syms.Globals["__argc__"] = symbols.Global{Cell: gArgc, Type: types.Int32}
	e.syms.Globals["__argv__"] = symbols.Global{Cell: gArgv, Type: types.CString}
	e.syms.Globals["__envp__"] = symbols.Global{Cell: gEnvp, Type: types.CString}

	e.globalMain = m.NewFunc("__global_main", lltypes.I32)
	e.globalMain.Linkage = enum.LinkageInternal
	e.fn = e.globalMain
	e.block = e.globalMain.NewBlock("entry")

	// Register every task signature before emitting any body, so that the
	// polymorph flag reflects the whole unit when the first body is named.
	for _, stmt := range root.Stmts {
		switch s := stmt.(type) {
		case ast.Task:
			e.syms.DeclareTask(s.Header.Name, taskInfo(s.Header))
		case ast.TaskHeader:
			e.syms.DeclareTask(s.Name, taskInfo(&s))
		}
	}

	for _, stmt := range root.Stmts {
		if err := e.emitStmt(stmt); err != nil {
			return nil, err
		}
	}

	if userMain := e.findFunc("user.main"); userMain != nil {
		switch {
		case userMain.Sig.RetType.Equal(lltypes.Void):
			e.block.NewCall(userMain)
			e.block.NewRet(constant.NewInt(lltypes.I32, 0))
		case userMain.Sig.RetType.Equal(lltypes.I32):
			ret := e.block.NewCall(userMain)
			e.block.NewRet(ret)
		default:
			return nil, errors.New("main method must return integer or void type")
		}
	} else if e.block.Term == nil {
		e.block.NewRet(constant.NewInt(lltypes.I32, 0))
	}
	seal(e.globalMain)

	ret := mainEntry.NewCall(e.globalMain)
	mainEntry.NewRet(ret)

	for _, fn := range m.Funcs {
		if len(fn.Blocks) == 0 {
			continue
		}
		if err := verify(fn); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func taskInfo(h *ast.TaskHeader) symbols.TaskInfo {
	args := make([]types.Type, len(h.Params))
	for i, p := range h.Params {
		args[i] = p.Type
	}
	return symbols.TaskInfo{Args: args, Ret: h.Ret}
}

func (e *Emitter) emitStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.ExprStmt:
		_, err := e.emitValue(s.Expr)
		return err
	case ast.If:
		return e.emitIf(s)
	case ast.Return:
		return e.emitReturn(s)
	case ast.Goto:
		return e.emitGoto(s)
	case ast.Label:
		return e.emitLabel(s)
	case ast.TaskHeader:
		_, err := e.emitTaskHeader(&s)
		return err
	case ast.Task:
		return e.emitTask(s)
	}
	return errors.Errorf("cannot emit statement %T", stmt)
}

// emitTaskHeader declares the task's function with external linkage and
// named parameters. A polymorphic header is declared under its mangled name;
// a task named main is declared as user.main so the synthetic entry point
// keeps the name the C runtime expects.
func (e *Emitter) emitTaskHeader(h *ast.TaskHeader) (*ir.Func, error) {
	info := taskInfo(h)
	name := e.syms.CanonicalTaskName(h.Name, info)
	if name == "main" {
		name = "user.main"
		e.syms.Tasks[name] = info
	}
	if existing := e.findFunc(name); existing != nil {
		return existing, nil
	}

	params := make([]*ir.Param, len(h.Params))
	for i, p := range h.Params {
		params[i] = ir.NewParam(p.Name, types.LLVM(p.Type))
	}
	return e.Module.NewFunc(name, types.LLVM(h.Ret), params...), nil
}

func (e *Emitter) emitTask(t ast.Task) error {
	fn, err := e.emitTaskHeader(t.Header)
	if err != nil {
		return err
	}
	if len(fn.Blocks) > 0 {
		return errors.New("Task cannot be redefined")
	}

	prevFn, prevBlock, prevSeq := e.fn, e.block, e.ifSeq
	e.fn = fn
	e.block = fn.NewBlock("entry")
	e.ifSeq = 0
	e.syms.ClearLocals()
	e.syms.Labels = make(map[string]*ir.Block)

	for i, param := range fn.Params {
		slot := e.entryAlloca(t.Header.Params[i].Name, types.LLVM(t.Header.Params[i].Type))
		e.block.NewStore(param, slot)
		e.syms.Locals[t.Header.Params[i].Name] = symbols.Local{Slot: slot, Type: t.Header.Params[i].Type}
	}

	for _, stmt := range t.Body {
		if err := e.emitStmt(stmt); err != nil {
			return err
		}
	}
	if types.Equal(t.Header.Ret, types.Void) && e.block.Term == nil {
		e.block.NewRet(nil)
	}
	seal(fn)

	e.fn, e.block, e.ifSeq = prevFn, prevBlock, prevSeq
	return verify(fn)
}

func (e *Emitter) emitIf(s ast.If) error {
	cond, err := e.emitValue(s.Cond)
	if err != nil {
		return err
	}
	if !cond.Type().Equal(lltypes.I1) {
		return errors.New("Condition of if statement does not meet requirement: Boolean Type")
	}

	seq := e.ifSeq
	e.ifSeq++
	thenBB := e.fn.NewBlock(suffixed("then", seq))
	elseBB := ir.NewBlock(suffixed("else", seq))
	mergeBB := ir.NewBlock(suffixed("ifcont", seq))
	e.block.NewCondBr(cond, thenBB, elseBB)

	e.block = thenBB
	for _, stmt := range s.Then {
		if err := e.emitStmt(stmt); err != nil {
			return err
		}
	}
	if e.block.Term == nil {
		e.block.NewBr(mergeBB)
	}

	attach(e.fn, elseBB)
	e.block = elseBB
	for _, stmt := range s.Else {
		if err := e.emitStmt(stmt); err != nil {
			return err
		}
	}
	if e.block.Term == nil {
		e.block.NewBr(mergeBB)
	}

	attach(e.fn, mergeBB)
	e.block = mergeBB
	return nil
}

func (e *Emitter) emitReturn(s ast.Return) error {
	if e.globalScope() {
		return errors.New("Return statements must be inside of a task")
	}
	if s.Expr == nil {
		e.block.NewRet(nil)
	} else {
		val, err := e.emitValue(s.Expr)
		if err != nil {
			return err
		}
		exprType, err := e.typeOf(s.Expr)
		if err != nil {
			return err
		}
		retType := e.syms.Tasks[e.fn.Name()].Ret
		if types.CanCoerce(exprType, retType) {
			if val, err = types.Coerce(e.block, val, exprType, retType); err != nil {
				return err
			}
		}
		e.block.NewRet(val)
	}
	// Anything emitted after the return lands in a fresh dead block so the
	// terminated block stays well formed.
	e.block = e.fn.NewBlock("")
	return nil
}

func (e *Emitter) emitGoto(s ast.Goto) error {
	target, ok := e.syms.Labels[s.Label]
	if !ok {
		target = ir.NewBlock(s.Label)
		e.syms.Labels[s.Label] = target
	}
	e.block.NewBr(target)
	e.block = e.fn.NewBlock("")
	return nil
}

func (e *Emitter) emitLabel(s ast.Label) error {
	block, ok := e.syms.Labels[s.Name]
	if !ok {
		block = e.fn.NewBlock(s.Name)
		e.syms.Labels[s.Name] = block
	} else {
		if block.Parent == e.fn {
			return errors.New("Label was possibly inserted twice")
		}
		attach(e.fn, block)
	}
	if e.block.Term == nil {
		e.block.NewBr(block)
	}
	e.block = block
	return nil
}

// entryAlloca creates a named stack slot at the top of the current
// function's entry block.
func (e *Emitter) entryAlloca(name string, t lltypes.Type) *ir.InstAlloca {
	slot := ir.NewAlloca(t)
	slot.SetName(name)
	entry := e.fn.Blocks[0]
	entry.Insts = append([]ir.Instruction{slot}, entry.Insts...)
	return slot
}

func (e *Emitter) findFunc(name string) *ir.Func {
	for _, fn := range e.Module.Funcs {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

func attach(fn *ir.Func, block *ir.Block) {
	block.Parent = fn
	fn.Blocks = append(fn.Blocks, block)
}

// seal terminates any block left open: void functions return, everything
// else becomes an explicit dead end.
func seal(fn *ir.Func) {
	void := fn.Sig.RetType.Equal(lltypes.Void)
	for _, block := range fn.Blocks {
		if block.Term != nil {
			continue
		}
		if void {
			block.NewRet(nil)
		} else {
			block.NewUnreachable()
		}
	}
}

func suffixed(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + strconv.Itoa(n)
}
