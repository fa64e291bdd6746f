package bytecode_test

import (
	"testing"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/hostparse"
	"github.com/liautaud/boldr/internal/source"
)

type discardReporter struct{ bag *diag.Bag }

func (r discardReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.bag.Add(diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

func compileSrc(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("<test>", []byte(src))
	bag := diag.NewBag(64)
	reporter := discardReporter{bag: bag}
	toks := hostlex.New(fs.Get(id), reporter).Tokenize()
	fn, err := hostparse.Parse(toks, reporter)
	if err != nil || bag.HasErrors() {
		t.Fatalf("parse failed for %q: err=%v diags=%+v", src, err, bag.Items())
	}
	prog, err := bytecode.Compile(fn, reporter)
	if err != nil {
		t.Fatalf("compile failed for %q: %v", src, err)
	}
	return prog
}

func opcodes(prog *bytecode.Program) []bytecode.Opcode {
	out := make([]bytecode.Opcode, len(prog.Instrs))
	for i, instr := range prog.Instrs {
		out[i] = instr.Op
	}
	return out
}

func TestCompileAddition(t *testing.T) {
	prog := compileSrc(t, "lambda: 1 + 2")
	want := []bytecode.Opcode{bytecode.LOAD_CONST, bytecode.LOAD_CONST, bytecode.BINARY_OP, bytecode.RETURN_VALUE}
	got := opcodes(prog)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instr %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if len(prog.Consts) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(prog.Consts))
	}
}

func TestCompileTernaryEmitsJumps(t *testing.T) {
	prog := compileSrc(t, "lambda x: 1 if x else 0")
	found := false
	for _, instr := range prog.Instrs {
		if instr.Op == bytecode.JUMP_IF_FALSE {
			found = true
			jt, ok := instr.Arg.(bytecode.JumpTarget)
			if !ok || !jt.Pop {
				t.Fatalf("expected JUMP_IF_FALSE with Pop=true, got %+v", instr.Arg)
			}
		}
	}
	if !found {
		t.Fatalf("expected a JUMP_IF_FALSE in %+v", prog.Instrs)
	}
}

func TestCompileComprehensionShape(t *testing.T) {
	prog := compileSrc(t, "def f(s): return [e.name for e in employees if e.salary < s]")
	var makeFunc *bytecode.Program
	for _, instr := range prog.Instrs {
		if instr.Op == bytecode.MAKE_FUNCTION {
			makeFunc = instr.Arg.(*bytecode.Program)
		}
	}
	if makeFunc == nil {
		t.Fatalf("expected a MAKE_FUNCTION instruction, got %+v", prog.Instrs)
	}
	if len(makeFunc.FreeVars) != 1 || makeFunc.FreeVars[0] != "s" {
		t.Fatalf("expected inner program to free-capture 's', got %+v", makeFunc.FreeVars)
	}
	if len(makeFunc.Params) != 1 || makeFunc.Params[0] != ".0" {
		t.Fatalf("expected inner program's sole param to be '.0', got %+v", makeFunc.Params)
	}
	hasAppend := false
	for _, instr := range makeFunc.Instrs {
		if instr.Op == bytecode.LIST_APPEND {
			hasAppend = true
		}
	}
	if !hasAppend {
		t.Fatalf("expected inner program to end its loop body with LIST_APPEND")
	}
}

func TestCompileTryExceptEmitsUnsupported(t *testing.T) {
	prog := compileSrc(t, "def f(): { try { return 1 } except { return 0 } }")
	if len(prog.Instrs) != 1 || prog.Instrs[0].Op != bytecode.UNSUPPORTED {
		t.Fatalf("expected a single UNSUPPORTED instruction, got %+v", prog.Instrs)
	}
}

// A function whose body never reaches a `return` has no final expression to
// introspect into a QIR term — §7's NotIntrospectable kind.
func TestCompileFallthroughBodyReportsNotIntrospectable(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<test>", []byte("def f(): { 1 + 2 }"))
	bag := diag.NewBag(64)
	reporter := discardReporter{bag: bag}
	toks := hostlex.New(fs.Get(id), reporter).Tokenize()
	fn, err := hostparse.Parse(toks, reporter)
	if err != nil || bag.HasErrors() {
		t.Fatalf("unexpected parse failure: err=%v diags=%+v", err, bag.Items())
	}
	if _, err := bytecode.Compile(fn, reporter); err == nil {
		t.Fatalf("expected Compile to fail for a fallthrough body")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a reported diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.AdaptNotIntrospectable {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AdaptNotIntrospectable among %+v", bag.Items())
	}
}
