// Package symbols holds the name-resolution state of one compilation unit:
// local and global variable bindings, the task signature table with
// polymorphic mangling, and the label map of the current task.
package symbols

import (
	"sort"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/pkg/errors"

	"github.com/babel-lang/babel/pkg/types"
)

// Local is a stack-slot binding inside the current task.
type Local struct {
	Slot  *ir.InstAlloca
	Type  types.Type
	Const bool
}

// Global is a module-level binding. Comptime globals additionally carry
// their constant initializer so call sites can fold them.
type Global struct {
	Cell     *ir.Global
	Type     types.Type
	Const    bool
	Comptime bool
	Init     constant.Constant
}

// TaskInfo records a task signature under its canonical name.
type TaskInfo struct {
	Args []types.Type
	Ret  types.Type
}

// Tables bundles the per-compilation symbol state. Locals and Labels are
// reset at the start of every task body; the other maps live for the whole
// unit.
type Tables struct {
	Locals    map[string]Local
	Globals   map[string]Global
	Tasks     map[string]TaskInfo
	Polymorph map[string]bool
	Labels    map[string]*ir.Block
}

// NewTables returns empty symbol tables.
func NewTables() *Tables {
	return &Tables{
		Locals:    make(map[string]Local),
		Globals:   make(map[string]Global),
		Tasks:     make(map[string]TaskInfo),
		Polymorph: make(map[string]bool),
		Labels:    make(map[string]*ir.Block),
	}
}

// ClearLocals drops all local bindings. Called on entry to a task body.
func (t *Tables) ClearLocals() {
	t.Locals = make(map[string]Local)
}

// TypeOf resolves a variable name to its declared type, locals first.
func (t *Tables) TypeOf(name string) (types.Type, error) {
	if l, ok := t.Locals[name]; ok {
		return l.Type, nil
	}
	if g, ok := t.Globals[name]; ok {
		return g.Type, nil
	}
	return nil, errors.Errorf("Unknown variable '%s' referenced", name)
}

// DeclareTask registers a signature under its base name and updates the
// polymorph flag: a name becomes polymorphic the second time it is declared.
func (t *Tables) DeclareTask(name string, info TaskInfo) {
	t.Tasks[name] = info
	_, seen := t.Polymorph[name]
	t.Polymorph[name] = seen
}

// Mangle encodes argument types into a canonical polymorphic name,
// base.polymorphic.t1_t2_... using each type's display name.
func Mangle(base string, args []types.Type) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.String()
	}
	return base + ".polymorphic." + strings.Join(names, "_")
}

// CanonicalTaskName rekeys a polymorphic declaration to its mangled name and
// returns it. Non-polymorphic names pass through unchanged. The base-name
// entry, if still present, is removed so later declarations of the same base
// do not resolve to a stale signature.
func (t *Tables) CanonicalTaskName(name string, info TaskInfo) string {
	if !t.Polymorph[name] {
		return name
	}
	delete(t.Tasks, name)
	mangled := Mangle(name, info.Args)
	t.Tasks[mangled] = info
	return mangled
}

// ResolveCall maps a call-site name and argument-type tuple to the canonical
// task name. For a polymorphic callee with no matching specialization the
// error enumerates every declared signature of that base name.
func (t *Tables) ResolveCall(name string, args []types.Type) (string, error) {
	if !t.Polymorph[name] {
		return name, nil
	}
	mangled := Mangle(name, args)
	if _, ok := t.Tasks[mangled]; ok {
		return mangled, nil
	}

	var keys []string
	for key := range t.Tasks {
		if strings.HasPrefix(key, name+".polymorphic") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	var expected strings.Builder
	for _, key := range keys {
		info := t.Tasks[key]
		sig := make([]string, len(info.Args))
		for i, a := range info.Args {
			sig[i] = a.String()
		}
		expected.WriteString("(" + strings.Join(sig, ", ") + ")\n")
	}

	typeinfo := make([]string, len(args))
	for i, a := range args {
		typeinfo[i] = a.String()
	}
	return "", errors.Errorf("Task '%s' was called with argument list %s but only the following were valid:\n%s",
		name, strings.Join(typeinfo, "_"), expected.String())
}
