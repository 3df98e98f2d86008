package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/babel-lang/babel/pkg/ast"
	"github.com/babel-lang/babel/pkg/types"
)

// typeOf reports the result type of an expression without emitting code.
func (e *Emitter) typeOf(expr ast.Expr) (types.Type, error) {
	switch n := expr.(type) {
	case ast.Bool:
		return types.Boolean, nil
	case ast.Integer:
		return n.Type, nil
	case ast.Float:
		return n.Type, nil
	case ast.Char:
		return types.Character, nil
	case ast.CString:
		return types.CString, nil
	case ast.Variable:
		if n.Type != nil {
			return n.Type, nil
		}
		return e.syms.TypeOf(n.Name)
	case ast.ArrayLit:
		inner := types.Type(types.Int32)
		if len(n.Elems) > 0 {
			var err error
			if inner, err = e.typeOf(n.Elems[0]); err != nil {
				return nil, err
			}
		}
		return e.arena.Intern(types.ArrayOf(inner, int64(len(n.Elems)))), nil
	case ast.Binary:
		lhs, err := e.typeOf(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := e.typeOf(n.RHS)
		if err != nil {
			return nil, err
		}
		switch {
		case types.CanCoerce(lhs, rhs):
			return rhs, nil
		case types.CanCoerce(rhs, lhs):
			return lhs, nil
		}
		return nil, errors.Errorf("Cannot implicitly cast between %s and %s", lhs, rhs)
	case ast.Unary:
		return e.typeOf(n.Operand)
	case ast.Index:
		container, err := e.typeOf(n.Container)
		if err != nil {
			return nil, err
		}
		arr, ok := container.(types.Array)
		if !ok {
			return nil, errors.Errorf("'%s' object is not subscriptable", container)
		}
		return arr.Elem, nil
	case ast.Deref:
		operand, err := e.typeOf(n.Operand)
		if err != nil {
			return nil, err
		}
		ptr, ok := operand.(types.Pointer)
		if !ok {
			return nil, errors.New("Cannot dereference non-pointer")
		}
		return ptr.To, nil
	case ast.AddressOf:
		v, ok := n.Operand.(ast.Variable)
		if !ok {
			return nil, errors.New("Can only take the address of a variable")
		}
		varType, err := e.typeOf(v)
		if err != nil {
			return nil, err
		}
		return e.arena.Intern(types.PointerTo(varType, e.varConst(v))), nil
	case ast.TaskCall:
		name, err := e.resolveCallee(n)
		if err != nil {
			return nil, err
		}
		info, ok := e.syms.Tasks[name]
		if !ok {
			return nil, errors.Errorf("Unknown Task '%s' referenced", name)
		}
		return info.Ret, nil
	}
	return nil, errors.Errorf("cannot type expression %T", expr)
}

// comptimeAssignable reports whether the expression folds to a constant the
// module can carry as a global initializer.
func (e *Emitter) comptimeAssignable(expr ast.Expr) bool {
	switch n := expr.(type) {
	case ast.Bool, ast.Integer, ast.Float, ast.Char, ast.CString:
		return true
	case ast.Variable:
		return e.syms.Globals[n.Name].Comptime
	case ast.ArrayLit:
		for _, elem := range n.Elems {
			if !e.comptimeAssignable(elem) {
				return false
			}
		}
		return true
	case ast.AddressOf:
		if v, ok := n.Operand.(ast.Variable); ok {
			return e.comptimeAssignable(v)
		}
	}
	return false
}

// varConst resolves a variable's constness: declarations carry their own
// flag, references take it from the declared symbol.
func (e *Emitter) varConst(v ast.Variable) bool {
	if v.Decl {
		return v.Const
	}
	if l, ok := e.syms.Locals[v.Name]; ok && l.Slot != nil {
		return l.Const
	}
	if g, ok := e.syms.Globals[v.Name]; ok {
		return g.Const
	}
	return v.Const
}

func (e *Emitter) emitValue(expr ast.Expr) (value.Value, error) {
	switch n := expr.(type) {
	case ast.Bool, ast.Integer, ast.Float, ast.Char, ast.CString:
		return e.emitConst(expr)
	case ast.Variable:
		if l, ok := e.syms.Locals[n.Name]; ok && l.Slot != nil {
			return e.block.NewLoad(types.LLVM(l.Type), l.Slot), nil
		}
		if g, ok := e.syms.Globals[n.Name]; ok && g.Cell != nil {
			return e.block.NewLoad(types.LLVM(g.Type), g.Cell), nil
		}
		return nil, errors.Errorf("Unknown variable '%s' referenced", n.Name)
	case ast.ArrayLit:
		return e.emitArray(n)
	case ast.Binary:
		return e.emitBinary(n)
	case ast.Unary:
		return e.emitUnary(n)
	case ast.Index:
		return e.emitIndex(n, false)
	case ast.Deref:
		return e.emitDeref(n, false)
	case ast.AddressOf:
		// Pointer values are untyped: the slot address is erased to a
		// byte pointer the moment it becomes a value.
		addr, err := e.emitLValue(n.Operand)
		if err != nil {
			return nil, err
		}
		return e.block.NewBitCast(addr, lltypes.NewPointer(lltypes.I8)), nil
	case ast.TaskCall:
		return e.emitCall(n)
	}
	return nil, errors.Errorf("cannot emit expression %T", expr)
}

// emitLValue emits the address of an assignable expression.
func (e *Emitter) emitLValue(expr ast.Expr) (value.Value, error) {
	switch n := expr.(type) {
	case ast.Variable:
		if l, ok := e.syms.Locals[n.Name]; ok && l.Slot != nil {
			return l.Slot, nil
		}
		if g, ok := e.syms.Globals[n.Name]; ok && g.Cell != nil {
			return g.Cell, nil
		}
		return nil, errors.Errorf("Unknown variable '%s' referenced", n.Name)
	case ast.Index:
		return e.emitIndex(n, true)
	case ast.Deref:
		return e.emitDeref(n, true)
	}
	return nil, errors.Errorf("No lvalue available for this AST node")
}

// emitConst folds a comptime-assignable expression into a module-level
// constant without touching the instruction stream.
func (e *Emitter) emitConst(expr ast.Expr) (constant.Constant, error) {
	switch n := expr.(type) {
	case ast.Bool:
		if n.Val {
			return constant.NewInt(lltypes.I1, 1), nil
		}
		return constant.NewInt(lltypes.I1, 0), nil
	case ast.Integer:
		c, err := constant.NewIntFromString(types.LLVM(n.Type).(*lltypes.IntType), n.Val.String())
		if err != nil {
			return nil, errors.Wrap(err, "integer constant out of range")
		}
		return c, nil
	case ast.Float:
		return &constant.Float{Typ: types.LLVM(n.Type).(*lltypes.FloatType), X: n.Val, NaN: n.NaN}, nil
	case ast.Char:
		return constant.NewInt(lltypes.I8, int64(n.Val)), nil
	case ast.CString:
		data := constant.NewCharArrayFromString(n.Val + "\x00")
		g := e.Module.NewGlobalDef(suffixed(".cstr", e.strSeq), data)
		e.strSeq++
		zero := constant.NewInt(lltypes.I64, 0)
		return constant.NewGetElementPtr(data.Typ, g, zero, zero), nil
	case ast.Variable:
		g, ok := e.syms.Globals[n.Name]
		if !ok || !g.Comptime || g.Init == nil {
			return nil, errors.New("Cannot generate value at compile time")
		}
		return g.Init, nil
	case ast.ArrayLit:
		inner := types.Type(types.Int32)
		if len(n.Elems) > 0 {
			var err error
			if inner, err = e.typeOf(n.Elems[0]); err != nil {
				return nil, err
			}
		}
		elems := make([]constant.Constant, len(n.Elems))
		for i, elem := range n.Elems {
			c, err := e.emitConst(elem)
			if err != nil {
				return nil, err
			}
			elems[i] = c
		}
		return constant.NewArray(lltypes.NewArray(uint64(len(n.Elems)), types.LLVM(inner)), elems...), nil
	case ast.AddressOf:
		v, ok := n.Operand.(ast.Variable)
		if !ok {
			return nil, errors.New("Can only take the address of a variable")
		}
		if g, ok := e.syms.Globals[v.Name]; ok && g.Cell != nil {
			return constant.NewBitCast(g.Cell, lltypes.NewPointer(lltypes.I8)), nil
		}
		return nil, errors.New("Cannot generate value at compile time")
	}
	return nil, errors.New("Cannot generate value at compile time")
}

// emitArray allocates a stack array and fills it element by element.
// Elements that are themselves aggregates are copied, scalars stored.
func (e *Emitter) emitArray(n ast.ArrayLit) (value.Value, error) {
	inner := types.Type(types.Int32)
	if len(n.Elems) > 0 {
		var err error
		if inner, err = e.typeOf(n.Elems[0]); err != nil {
			return nil, err
		}
	}
	arrType := lltypes.NewArray(uint64(len(n.Elems)), types.LLVM(inner))
	ptr := e.block.NewAlloca(arrType)
	zero := constant.NewInt(lltypes.I32, 0)

	for i, elem := range n.Elems {
		elemType, err := e.typeOf(elem)
		if err != nil {
			return nil, err
		}
		idx := constant.NewInt(lltypes.I32, int64(i))
		slot := e.block.NewGetElementPtr(arrType, ptr, zero, idx)
		if err := e.storeOrMemCpy(elem, elemType, slot, inner); err != nil {
			return nil, err
		}
	}
	return ptr, nil
}

func (e *Emitter) emitBinary(n ast.Binary) (value.Value, error) {
	if n.Op == "=" {
		return e.emitAssign(n)
	}

	left, err := e.emitValue(n.LHS)
	if err != nil {
		return nil, err
	}
	right, err := e.emitValue(n.RHS)
	if err != nil {
		return nil, err
	}
	lhsType, err := e.typeOf(n.LHS)
	if err != nil {
		return nil, err
	}
	rhsType, err := e.typeOf(n.RHS)
	if err != nil {
		return nil, err
	}

	switch {
	case types.CanCoerce(lhsType, rhsType):
		if left, err = types.Coerce(e.block, left, lhsType, rhsType); err != nil {
			return nil, err
		}
	case types.CanCoerce(rhsType, lhsType):
		if right, err = types.Coerce(e.block, right, rhsType, lhsType); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("Types dont match for binary operator; implicit cast failed or is not allowed")
	}

	switch n.Op {
	case "+":
		return e.block.NewAdd(left, right), nil
	case "-":
		return e.block.NewSub(left, right), nil
	case "*":
		return e.block.NewMul(left, right), nil
	case "/":
		// Division is always real: both operands widen to float64 first.
		lhs := e.block.NewSIToFP(left, lltypes.Double)
		rhs := e.block.NewSIToFP(right, lltypes.Double)
		return e.block.NewFDiv(lhs, rhs), nil
	case "//":
		return e.block.NewSDiv(left, right), nil
	case "%":
		return e.block.NewSRem(left, right), nil
	case "<<":
		return e.block.NewShl(left, right), nil
	case ">>":
		return e.block.NewLShr(left, right), nil
	case "|", "||":
		return e.block.NewOr(left, right), nil
	case "&", "&&":
		return e.block.NewAnd(left, right), nil
	case "^", "^^":
		return e.block.NewXor(left, right), nil
	case "==":
		return e.block.NewICmp(enum.IPredEQ, left, right), nil
	case "!=":
		return e.block.NewICmp(enum.IPredNE, left, right), nil
	case "<=":
		return e.block.NewICmp(enum.IPredSLE, left, right), nil
	case ">=":
		return e.block.NewICmp(enum.IPredSGE, left, right), nil
	case "<":
		return e.block.NewICmp(enum.IPredSLT, left, right), nil
	case ">":
		return e.block.NewICmp(enum.IPredSGT, left, right), nil
	}
	return nil, errors.Errorf("Invalid binary operator %s", n.Op)
}

func (e *Emitter) emitUnary(n ast.Unary) (value.Value, error) {
	operand, err := e.emitValue(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "!":
		intType, ok := operand.Type().(*lltypes.IntType)
		if !ok {
			return nil, errors.New("Invalid unary operator")
		}
		return e.block.NewXor(operand, constant.NewInt(intType, -1)), nil
	case "-":
		intType, ok := operand.Type().(*lltypes.IntType)
		if !ok {
			return nil, errors.New("Invalid unary operator")
		}
		return e.block.NewSub(constant.NewInt(intType, 0), operand), nil
	case "+":
		return operand, nil
	}
	return nil, errors.New("Invalid unary operator")
}

func (e *Emitter) emitIndex(n ast.Index, lvalue bool) (value.Value, error) {
	idxType, err := e.typeOf(n.Idx)
	if err != nil {
		return nil, err
	}
	if !types.IsInteger(idxType) {
		return nil, errors.New("Element access must use integer index")
	}
	containerType, err := e.typeOf(n.Container)
	if err != nil {
		return nil, err
	}
	arr, ok := containerType.(types.Array)
	if !ok {
		return nil, errors.Errorf("'%s' object is not subscriptable", containerType)
	}

	base, err := e.emitLValue(n.Container)
	if err != nil {
		return nil, err
	}
	idx, err := e.emitValue(n.Idx)
	if err != nil {
		return nil, err
	}
	zero := constant.NewInt(lltypes.I32, 0)
	elemPtr := e.block.NewGetElementPtr(types.LLVM(containerType), base, zero, idx)
	elemPtr.InBounds = true

	if lvalue {
		if v, ok := n.Container.(ast.Variable); ok && e.varConst(v) {
			return nil, errors.New("The underlying array is constant")
		}
		return elemPtr, nil
	}
	return e.block.NewLoad(types.LLVM(arr.Elem), elemPtr), nil
}

func (e *Emitter) emitDeref(n ast.Deref, lvalue bool) (value.Value, error) {
	operandType, err := e.typeOf(n.Operand)
	if err != nil {
		return nil, err
	}
	ptr, ok := operandType.(types.Pointer)
	if !ok {
		return nil, errors.New("Cannot dereference non-pointer")
	}
	if lvalue {
		if ptr.ToConst {
			return nil, errors.New("The pointer points to constant data")
		}
		return e.emitValue(n.Operand)
	}
	operand, err := e.emitValue(n.Operand)
	if err != nil {
		return nil, err
	}
	return e.block.NewLoad(types.LLVM(ptr.To), operand), nil
}

func (e *Emitter) resolveCallee(n ast.TaskCall) (string, error) {
	argTypes := make([]types.Type, len(n.Args))
	for i, arg := range n.Args {
		t, err := e.typeOf(arg)
		if err != nil {
			return "", err
		}
		argTypes[i] = t
	}
	return e.syms.ResolveCall(n.Callee, argTypes)
}

func (e *Emitter) emitCall(n ast.TaskCall) (value.Value, error) {
	if n.Callee == "main" {
		return nil, errors.New("Calling main is not allowed, as the programs entry point it is invoked automatically")
	}
	name, err := e.resolveCallee(n)
	if err != nil {
		return nil, err
	}
	callee := e.findFunc(name)
	if callee == nil {
		return nil, errors.Errorf("Unknown Task '%s' referenced", name)
	}
	info := e.syms.Tasks[name]
	if len(callee.Params) != len(n.Args) {
		return nil, errors.Errorf("Passed incorrect number of arguments (expected %d but got %d)", len(callee.Params), len(n.Args))
	}

	args := make([]value.Value, len(n.Args))
	for i, arg := range n.Args {
		val, err := e.emitValue(arg)
		if err != nil {
			return nil, err
		}
		argType, err := e.typeOf(arg)
		if err != nil {
			return nil, err
		}
		if types.CanCoerce(argType, info.Args[i]) {
			if val, err = types.Coerce(e.block, val, argType, info.Args[i]); err != nil {
				return nil, err
			}
		}
		args[i] = val
	}
	return e.block.NewCall(callee, args...), nil
}
