package types

import (
	lltypes "github.com/llir/llvm/ir/types"
)

// opaquePtr is the single lowering of every pointer type. Pointers are
// untyped at the IR level; the pointee type lives only in the Babel type.
var opaquePtr = lltypes.NewPointer(lltypes.I8)

// LLVM lowers a Babel type to its LLVM IR representation. Characters are
// bytes, booleans are i1, cstrings and pointers are untyped byte pointers.
func LLVM(t Type) lltypes.Type {
	switch tt := t.(type) {
	case Basic:
		switch tt {
		case Int8:
			return lltypes.I8
		case Int16:
			return lltypes.I16
		case Int32:
			return lltypes.I32
		case Int64:
			return lltypes.I64
		case Int128:
			return lltypes.I128
		case Float16:
			return lltypes.Half
		case Float32:
			return lltypes.Float
		case Float64:
			return lltypes.Double
		case Float128:
			return lltypes.FP128
		case Boolean:
			return lltypes.I1
		case Character:
			return lltypes.I8
		case CString:
			return opaquePtr
		case Void:
			return lltypes.Void
		}
	case Array:
		return lltypes.NewArray(uint64(tt.Size), LLVM(tt.Elem))
	case Pointer:
		return opaquePtr
	}
	panic("unreachable type lowering")
}

// AllocSize returns the in-memory size of a type in bytes, assuming a
// 64-bit data layout. Used to size aggregate copies.
func AllocSize(t Type) int64 {
	switch tt := t.(type) {
	case Basic:
		switch tt {
		case Int8, Character, Boolean:
			return 1
		case Int16, Float16:
			return 2
		case Int32, Float32:
			return 4
		case Int64, Float64:
			return 8
		case Int128, Float128:
			return 16
		case CString:
			return 8
		case Void:
			return 0
		}
	case Array:
		return tt.Size * AllocSize(tt.Elem)
	case Pointer:
		return 8
	}
	return 0
}
