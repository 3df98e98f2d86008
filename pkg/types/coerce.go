package types

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

// widenings is the closed implicit-coercion lattice. Every edge widens:
// integers into wider integers or into floats with enough range, floats
// into wider floats. Nothing ever narrows implicitly.
var widenings = map[Basic][]Basic{
	Int8:     {Int16, Int32, Int64, Int128, Float16, Float32, Float64, Float128},
	Int16:    {Int32, Int64, Int128, Float16, Float32, Float64, Float128},
	Int32:    {Int64, Int128, Float32, Float64, Float128},
	Int64:    {Int128, Float64, Float128},
	Int128:   {Float128},
	Float16:  {Float32, Float64, Float128},
	Float32:  {Float64, Float128},
	Float64:  {Float128},
}

// CanCoerce reports whether from implicitly coerces to to. Coercion is
// reflexive; arrays and pointers coerce only to themselves.
func CanCoerce(from, to Type) bool {
	if Equal(from, to) {
		return true
	}
	fb, ok := from.(Basic)
	if !ok {
		return false
	}
	tb, ok := to.(Basic)
	if !ok {
		return false
	}
	for _, b := range widenings[fb] {
		if b == tb {
			return true
		}
	}
	return false
}

// Coerce emits the instruction widening val from one type to another in the
// given block: sext between integers, sitofp from integer to float, fpext
// between floats.
func Coerce(block *ir.Block, val value.Value, from, to Type) (value.Value, error) {
	if Equal(from, to) {
		return val, nil
	}
	switch {
	case IsInteger(from) && IsInteger(to):
		return block.NewSExt(val, LLVM(to)), nil
	case IsInteger(from) && IsFloat(to):
		return block.NewSIToFP(val, LLVM(to)), nil
	case IsFloat(from) && IsFloat(to):
		return block.NewFPExt(val, LLVM(to)), nil
	}
	return nil, errors.Errorf("cannot perform illegal type cast from %s to %s", from, to)
}

// CoerceConst widens a constant without emitting instructions, using
// constant expressions.
func CoerceConst(c constant.Constant, from, to Type) (constant.Constant, error) {
	if Equal(from, to) {
		return c, nil
	}
	switch {
	case IsInteger(from) && IsInteger(to):
		return constant.NewSExt(c, LLVM(to)), nil
	case IsInteger(from) && IsFloat(to):
		return constant.NewSIToFP(c, LLVM(to)), nil
	case IsFloat(from) && IsFloat(to):
		return constant.NewFPExt(c, LLVM(to)), nil
	}
	return nil, errors.Errorf("cannot perform illegal type cast from %s to %s", from, to)
}
