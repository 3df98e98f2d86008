package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/babel-lang/babel/pkg/ast"
	"github.com/babel-lang/babel/pkg/symbols"
	"github.com/babel-lang/babel/pkg/types"
)

// emitAssign dispatches the "=" operator on the shape of its destination:
// plain variables go through the declaration-aware handler, element and
// pointer destinations store through their computed address.
func (e *Emitter) emitAssign(n ast.Binary) (value.Value, error) {
	switch lhs := n.LHS.(type) {
	case ast.Variable:
		varType := lhs.Type
		if varType == nil {
			var err error
			if varType, err = e.typeOf(n.RHS); err != nil {
				return nil, err
			}
		}
		return e.assign(n.RHS, varType, lhs.Name, e.varConst(lhs), lhs.Decl)
	case ast.Index:
		ptr, err := e.emitIndex(lhs, true)
		if err != nil {
			return nil, err
		}
		val, err := e.emitValue(n.RHS)
		if err != nil {
			return nil, err
		}
		e.block.NewStore(val, ptr)
		return nil, nil
	case ast.Deref:
		ptr, err := e.emitLValue(lhs)
		if err != nil {
			return nil, err
		}
		derefType, err := e.typeOf(lhs)
		if err != nil {
			return nil, err
		}
		rhsType, err := e.typeOf(n.RHS)
		if err != nil {
			return nil, err
		}
		return nil, e.storeOrMemCpy(n.RHS, rhsType, ptr, derefType)
	}
	return nil, errors.New("Destination of '=' must be assignable")
}

// assign binds a value to a named variable, handling every combination of
// scope, declaration and constness. In global scope a comptime-assignable
// initializer becomes the cell's static initializer; a runtime initializer
// gets a zero-initialized cell and an explicit store.
func (e *Emitter) assign(rhs ast.Expr, varType types.Type, name string, isConst, isDecl bool) (value.Value, error) {
	rhsType, err := e.typeOf(rhs)
	if err != nil {
		return nil, err
	}

	if e.globalScope() {
		if existing, ok := e.syms.Globals[name]; ok && existing.Cell != nil {
			if isDecl {
				return nil, errors.Errorf("Redefinition of global variable '%s'", name)
			}
			if existing.Const {
				return nil, errors.Errorf("Cannot assign to constant '%s'", name)
			}
			if err := e.storeOrMemCpy(rhs, rhsType, existing.Cell, existing.Type); err != nil {
				return nil, err
			}
			return existing.Cell, nil
		}
		if !isDecl {
			return nil, errors.Errorf("Variable '%s' used before declaration", name)
		}

		isComptime := e.comptimeAssignable(rhs)
		initializer := constant.Constant(constant.NewZeroInitializer(types.LLVM(varType)))
		if isComptime {
			c, err := e.emitConst(rhs)
			if err != nil {
				return nil, err
			}
			if initializer, err = types.CoerceConst(c, rhsType, varType); err != nil {
				return nil, err
			}
		}

		cell := e.Module.NewGlobalDef(name, initializer)
		cell.Immutable = isConst
		if !isComptime {
			if err := e.storeOrMemCpy(rhs, rhsType, cell, varType); err != nil {
				return nil, err
			}
		}
		e.syms.Globals[name] = symbols.Global{Cell: cell, Type: varType, Const: isConst, Comptime: isComptime, Init: initializer}
		return cell, nil
	}

	local := e.syms.Locals[name]
	if local.Slot == nil {
		if existing, ok := e.syms.Globals[name]; ok && existing.Cell != nil {
			if isDecl {
				return nil, errors.Errorf("Redefinition of global variable '%s'", name)
			}
			if existing.Const {
				return nil, errors.Errorf("Cannot assign to constant '%s'", name)
			}
			if err := e.storeOrMemCpy(rhs, rhsType, existing.Cell, existing.Type); err != nil {
				return nil, err
			}
			return existing.Cell, nil
		}
		if !isDecl {
			return nil, errors.Errorf("Variable '%s' was never declared", name)
		}
		local = symbols.Local{Slot: e.entryAlloca(name, types.LLVM(varType)), Type: varType, Const: isConst}
		e.syms.Locals[name] = local
	} else {
		if isDecl {
			return nil, errors.Errorf("Redefinition of local variable '%s'", name)
		}
		if local.Const {
			return nil, errors.Errorf("Cannot assign to constant '%s'", name)
		}
	}

	if err := e.storeOrMemCpy(rhs, rhsType, local.Slot, local.Type); err != nil {
		return nil, err
	}
	return local.Slot, nil
}

// storeOrMemCpy writes an expression's value through a destination pointer.
// Aggregates are copied byte-wise, sized by the data layout; scalars are
// coerced and stored.
func (e *Emitter) storeOrMemCpy(src ast.Expr, srcType types.Type, dest value.Value, destType types.Type) error {
	if _, ok := srcType.(types.Array); ok {
		size := types.AllocSize(srcType)
		if v, ok := src.(ast.Variable); ok {
			from, err := e.emitLValue(v)
			if err != nil {
				return err
			}
			e.emitMemCpy(dest, from, size)
			return nil
		}
		from, err := e.emitValue(src)
		if err != nil {
			return err
		}
		if types.CanCoerce(srcType, destType) {
			if from, err = types.Coerce(e.block, from, srcType, destType); err != nil {
				return err
			}
		}
		e.emitMemCpy(dest, from, size)
		return nil
	}

	val, err := e.emitValue(src)
	if err != nil {
		return err
	}
	if types.CanCoerce(srcType, destType) {
		if val, err = types.Coerce(e.block, val, srcType, destType); err != nil {
			return err
		}
	}
	e.block.NewStore(val, dest)
	return nil
}

// emitMemCpy copies size bytes between two pointers through the memcpy
// intrinsic, declared on first use.
func (e *Emitter) emitMemCpy(dest, src value.Value, size int64) {
	bytePtr := lltypes.NewPointer(lltypes.I8)
	if e.memcpy == nil {
		e.memcpy = e.Module.NewFunc("llvm.memcpy.p0i8.p0i8.i64", lltypes.Void,
			ir.NewParam("dest", bytePtr),
			ir.NewParam("src", bytePtr),
			ir.NewParam("len", lltypes.I64),
			ir.NewParam("isvolatile", lltypes.I1))
	}
	d := e.block.NewBitCast(dest, bytePtr)
	s := e.block.NewBitCast(src, bytePtr)
	e.block.NewCall(e.memcpy, d, s,
		constant.NewInt(lltypes.I64, size),
		constant.NewInt(lltypes.I1, 0))
}
