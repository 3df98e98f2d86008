package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
)

// verify performs the structural checks a broken emitter is most likely to
// trip: every block must be terminated and every branch must target a block
// of the same function.
func verify(fn *ir.Func) error {
	blocks := make(map[*ir.Block]bool, len(fn.Blocks))
	for _, block := range fn.Blocks {
		blocks[block] = true
	}
	for _, block := range fn.Blocks {
		if block.Term == nil {
			return errors.Errorf("verification of '%s' failed: block %s has no terminator", fn.Name(), block.Ident())
		}
		switch term := block.Term.(type) {
		case *ir.TermBr:
			if target, ok := term.Target.(*ir.Block); !ok || !blocks[target] {
				return errors.Errorf("verification of '%s' failed: branch to foreign block", fn.Name())
			}
		case *ir.TermCondBr:
			tt, ok1 := term.TargetTrue.(*ir.Block)
			tf, ok2 := term.TargetFalse.(*ir.Block)
			if !ok1 || !ok2 || !blocks[tt] || !blocks[tf] {
				return errors.Errorf("verification of '%s' failed: branch to foreign block", fn.Name())
			}
		}
	}
	return nil
}
