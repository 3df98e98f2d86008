package lr

import (
	"github.com/babel-lang/babel/pkg/grammar"
)

// Kernel is one state of the canonical collection: its kernel items, the
// closure grown from them, and the transitions keyed by grammar symbol.
// Keys preserves discovery order so state numbering is deterministic.
type Kernel struct {
	Index   int
	Items   []*Item
	Closure []*Item
	Gotos   map[string]int
	Keys    []string
}

func newKernel(index int, items []*Item) *Kernel {
	k := &Kernel{Index: index, Items: items, Gotos: map[string]int{}}
	// Closure shares the kernel item pointers so lookahead merges reach both.
	k.Closure = append(k.Closure, items...)
	return k
}

func (k *Kernel) equals(other *Kernel) bool {
	if len(k.Items) != len(other.Items) {
		return false
	}
	for _, it := range k.Items {
		found := false
		for _, jt := range other.Items {
			if it.equals(jt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ClosureTable is the canonical collection of LR(1) states for a grammar.
type ClosureTable struct {
	Grammar *grammar.Grammar
	Kernels []*Kernel
}

// NewClosureTable computes the canonical collection, restarting from the
// first kernel whenever a goto merges new lookaheads into an existing one.
func NewClosureTable(g *grammar.Grammar) *ClosureTable {
	ct := &ClosureTable{Grammar: g}
	ct.Kernels = append(ct.Kernels, newKernel(0, []*Item{newItem(g.Rules[0], 0)}))
	for i := 0; i < len(ct.Kernels); {
		kernel := ct.Kernels[i]
		ct.updateClosure(kernel)
		if ct.addGotos(kernel) {
			i = 0
		} else {
			i++
		}
	}
	return ct
}

// updateClosure expands the kernel's closure until no item gains a new
// lookahead, so lookaheads merged into an already expanded item still reach
// the items it derives.
func (ct *ClosureTable) updateClosure(kernel *Kernel) {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(kernel.Closure); i++ {
			for _, item := range kernel.Closure[i].expand(ct.Grammar) {
				changed = item.addUniqueTo(&kernel.Closure) || changed
			}
		}
	}
}

// addGotos wires the kernel's transitions, creating target kernels as
// needed. It reports whether lookaheads propagated into an existing kernel.
func (ct *ClosureTable) addGotos(kernel *Kernel) bool {
	propagated := false
	targets := map[string][]*Item{}

	for _, item := range kernel.Closure {
		shifted := item.afterShift()
		if shifted == nil {
			continue
		}
		sym := item.Rule.Development[item.Dot]
		addUnique(sym, &kernel.Keys)
		items := targets[sym]
		shifted.addUniqueTo(&items)
		targets[sym] = items
	}

	for _, key := range kernel.Keys {
		candidate := newKernel(len(ct.Kernels), targets[key])
		target := -1
		for _, existing := range ct.Kernels {
			if existing.equals(candidate) {
				target = existing.Index
				break
			}
		}
		if target < 0 {
			ct.Kernels = append(ct.Kernels, candidate)
			target = candidate.Index
		} else {
			for _, item := range candidate.Items {
				propagated = item.addUniqueTo(&ct.Kernels[target].Items) || propagated
			}
		}
		if _, ok := kernel.Gotos[key]; !ok {
			kernel.Gotos[key] = target
		}
	}
	return propagated
}
