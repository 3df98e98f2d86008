package symbols

import (
	"strings"
	"testing"

	"github.com/babel-lang/babel/pkg/types"
)

func TestTypeOfPrecedence(t *testing.T) {
	tbl := NewTables()
	tbl.Globals["x"] = Global{Type: types.Int64}
	tbl.Locals["x"] = Local{Type: types.Int32}

	typ, err := tbl.TypeOf("x")
	if err != nil {
		t.Fatalf("TypeOf: %v", err)
	}
	if !types.Equal(typ, types.Int32) {
		t.Errorf("local did not shadow global: got %v", typ)
	}

	tbl.ClearLocals()
	typ, err = tbl.TypeOf("x")
	if err != nil {
		t.Fatalf("TypeOf after clear: %v", err)
	}
	if !types.Equal(typ, types.Int64) {
		t.Errorf("global not visible after clearing locals: got %v", typ)
	}

	if _, err := tbl.TypeOf("y"); err == nil {
		t.Error("TypeOf accepted an undeclared name")
	}
}

func TestDeclareTaskPolymorphFlag(t *testing.T) {
	tbl := NewTables()
	tbl.DeclareTask("add", TaskInfo{Args: []types.Type{types.Int32}, Ret: types.Int32})
	if tbl.Polymorph["add"] {
		t.Error("first declaration marked polymorphic")
	}
	tbl.DeclareTask("add", TaskInfo{Args: []types.Type{types.Float32}, Ret: types.Float32})
	if !tbl.Polymorph["add"] {
		t.Error("second declaration not marked polymorphic")
	}
}

func TestMangle(t *testing.T) {
	got := Mangle("add", []types.Type{types.Int32, types.Float64})
	if got != "add.polymorphic.int32_float64" {
		t.Errorf("Mangle = %q", got)
	}
	if got := Mangle("f", []types.Type{types.ArrayOf(types.Int8, 3)}); got != "f.polymorphic.Array<int8>" {
		t.Errorf("Mangle with array arg = %q", got)
	}
}

func TestCanonicalTaskName(t *testing.T) {
	tbl := NewTables()
	mono := TaskInfo{Args: []types.Type{types.Int32}, Ret: types.Void}
	tbl.DeclareTask("solo", mono)
	if name := tbl.CanonicalTaskName("solo", mono); name != "solo" {
		t.Errorf("monomorphic name rewritten to %q", name)
	}

	intInfo := TaskInfo{Args: []types.Type{types.Int32}, Ret: types.Int32}
	fltInfo := TaskInfo{Args: []types.Type{types.Float32}, Ret: types.Float32}
	tbl.DeclareTask("dup", intInfo)
	tbl.DeclareTask("dup", fltInfo)

	name := tbl.CanonicalTaskName("dup", intInfo)
	if name != "dup.polymorphic.int32" {
		t.Errorf("mangled name = %q", name)
	}
	if _, ok := tbl.Tasks["dup"]; ok {
		t.Error("base-name entry survived the rekey")
	}
	if info, ok := tbl.Tasks[name]; !ok || !types.Equal(info.Ret, types.Int32) {
		t.Errorf("rekeyed entry = %+v, ok = %v", info, ok)
	}

	name = tbl.CanonicalTaskName("dup", fltInfo)
	if name != "dup.polymorphic.float32" {
		t.Errorf("second mangled name = %q", name)
	}
	if len(tbl.Tasks) != 3 {
		t.Errorf("task table has %d entries, want 3", len(tbl.Tasks))
	}
}

func TestResolveCall(t *testing.T) {
	tbl := NewTables()
	intInfo := TaskInfo{Args: []types.Type{types.Int32}, Ret: types.Int32}
	fltInfo := TaskInfo{Args: []types.Type{types.Float32}, Ret: types.Float32}
	tbl.DeclareTask("print", TaskInfo{Args: []types.Type{types.CString}, Ret: types.Void})
	tbl.DeclareTask("dup", intInfo)
	tbl.DeclareTask("dup", fltInfo)
	tbl.CanonicalTaskName("dup", intInfo)
	tbl.CanonicalTaskName("dup", fltInfo)

	name, err := tbl.ResolveCall("print", []types.Type{types.CString})
	if err != nil || name != "print" {
		t.Errorf("monomorphic call resolved to %q, %v", name, err)
	}

	name, err = tbl.ResolveCall("dup", []types.Type{types.Float32})
	if err != nil || name != "dup.polymorphic.float32" {
		t.Errorf("polymorphic call resolved to %q, %v", name, err)
	}

	_, err = tbl.ResolveCall("dup", []types.Type{types.Boolean})
	if err == nil {
		t.Fatal("call with unknown signature resolved")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Task 'dup' was called with argument list bool") {
		t.Errorf("error missing call description: %q", msg)
	}
	if !strings.Contains(msg, "(int32)\n") || !strings.Contains(msg, "(float32)\n") {
		t.Errorf("error does not enumerate declared signatures: %q", msg)
	}
}
