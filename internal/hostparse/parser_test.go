package hostparse_test

import (
	"testing"

	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostast"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/hostparse"
	"github.com/liautaud/boldr/internal/source"
)

type collectReporter struct {
	bag *diag.Bag
}

func (r collectReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.bag.Add(diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

func parse(t *testing.T, src string) *hostast.FuncDef {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("<test>", []byte(src))
	bag := diag.NewBag(64)
	reporter := collectReporter{bag: bag}
	toks := hostlex.New(fs.Get(id), reporter).Tokenize()
	fn, err := hostparse.Parse(toks, reporter)
	if err != nil || bag.HasErrors() {
		t.Fatalf("unexpected parse errors for %q: err=%v diags=%+v", src, err, bag.Items())
	}
	return fn
}

func TestParseSimpleLambda(t *testing.T) {
	fn := parse(t, "lambda: 1 + 2")
	if fn.Name != "" || len(fn.Params) != 0 {
		t.Fatalf("expected anonymous, zero-arg lambda, got %+v", fn)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected single return statement, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(hostast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(hostast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected '+' binary, got %+v", ret.Value)
	}
}

func TestParseLambdaWithParam(t *testing.T) {
	fn := parse(t, "lambda x: x * 2")
	if len(fn.Params) != 1 || fn.Params[0] != "x" {
		t.Fatalf("expected single param 'x', got %+v", fn.Params)
	}
}

func TestParseComprehensionFuncDef(t *testing.T) {
	fn := parse(t, "def f(s): return [e.name for e in employees if e.salary < s]")
	if fn.Name != "f" || len(fn.Params) != 1 || fn.Params[0] != "s" {
		t.Fatalf("unexpected signature: %+v", fn)
	}
	ret := fn.Body[0].(hostast.ReturnStmt)
	comp, ok := ret.Value.(hostast.ListComp)
	if !ok {
		t.Fatalf("expected ListComp, got %T", ret.Value)
	}
	if comp.Var != "e" {
		t.Fatalf("expected loop variable 'e', got %q", comp.Var)
	}
	if len(comp.Ifs) != 1 {
		t.Fatalf("expected a single guard clause, got %d", len(comp.Ifs))
	}
	if _, ok := comp.Elt.(hostast.Attr); !ok {
		t.Fatalf("expected projection to be an attribute access, got %T", comp.Elt)
	}
}

func TestParseTernary(t *testing.T) {
	fn := parse(t, "lambda x: 1 if x else 0")
	ret := fn.Body[0].(hostast.ReturnStmt)
	ifExp, ok := ret.Value.(hostast.IfExp)
	if !ok {
		t.Fatalf("expected IfExp, got %T", ret.Value)
	}
	if _, ok := ifExp.Cond.(hostast.Name); !ok {
		t.Fatalf("expected condition to be a bare name, got %T", ifExp.Cond)
	}
}

func TestParseTryExceptBlock(t *testing.T) {
	fn := parse(t, "def f(): { try { return 1 } except { return 0 } }")
	if len(fn.Body) != 1 {
		t.Fatalf("expected a single try statement, got %d stmts", len(fn.Body))
	}
	if _, ok := fn.Body[0].(hostast.TryStmt); !ok {
		t.Fatalf("expected TryStmt, got %T", fn.Body[0])
	}
}

func TestParseNestedForComprehension(t *testing.T) {
	fn := parse(t, "def f(): return [p for e in employees for p in e.projects if p.active]")
	ret := fn.Body[0].(hostast.ReturnStmt)
	outer, ok := ret.Value.(hostast.ListComp)
	if !ok {
		t.Fatalf("expected outer ListComp, got %T", ret.Value)
	}
	if outer.Var != "e" || len(outer.Ifs) != 0 {
		t.Fatalf("unexpected outer clause: %+v", outer)
	}
	inner, ok := outer.Elt.(hostast.ListComp)
	if !ok {
		t.Fatalf("expected inner ListComp nested as the outer's projection, got %T", outer.Elt)
	}
	if inner.Var != "p" || len(inner.Ifs) != 1 {
		t.Fatalf("unexpected inner clause: %+v", inner)
	}
	if _, ok := inner.Elt.(hostast.Name); !ok {
		t.Fatalf("expected innermost projection to be a bare name, got %T", inner.Elt)
	}
}

func TestParseDictComprehension(t *testing.T) {
	fn := parse(t, "def f(): return {e.name: e.salary for e in employees}")
	ret := fn.Body[0].(hostast.ReturnStmt)
	if _, ok := ret.Value.(hostast.DictComp); !ok {
		t.Fatalf("expected DictComp, got %T", ret.Value)
	}
}
