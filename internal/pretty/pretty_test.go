package pretty_test

import (
	"strings"
	"testing"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostlex"
	"github.com/liautaud/boldr/internal/hostparse"
	"github.com/liautaud/boldr/internal/pretty"
	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/source"
)

func TestTreeRendersConditional(t *testing.T) {
	e := qir.Conditional(
		qir.Value(qir.BoolScalar(true)),
		qir.Value(qir.NumberScalar(1)),
		qir.Value(qir.NumberScalar(0)),
	)
	out := pretty.Tree(e)
	for _, want := range []string{"Conditional", "Value", "true", "1", "0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Tree output missing %q:\n%s", want, out)
		}
	}
}

func TestTreeRendersNilListAsLeaf(t *testing.T) {
	out := pretty.Tree(qir.ListNil())
	if !strings.Contains(out, "ListConstr") || !strings.Contains(out, "nil") {
		t.Fatalf("Tree output for ListNil = %q, want it to mention ListConstr and nil", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("Tree output for ListNil should be a single leaf line, got:\n%s", out)
	}
}

func TestTreeRendersOperatorTree(t *testing.T) {
	scan := qir.MustOperator(qir.OpScan, qir.Value(qir.StringScalar("employees")))
	proj := qir.Lambda("e", qir.Identifier("e"))
	tree := qir.MustOperator(qir.OpProject, scan, proj)

	out := pretty.Tree(tree)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines (Operator PROJECT, Operator SCAN, Scan operand, Lambda, Identifier), got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Operator") {
		t.Fatalf("first line = %q, want it to start with Operator", lines[0])
	}
	if !strings.Contains(lines[2], "Value") || !strings.Contains(lines[2], "employees") {
		t.Fatalf("third line = %q, want the Scan's string operand", lines[2])
	}
}

func compileLambda(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("<test>", []byte(src))
	bag := diag.NewBag(64)
	reporter := diag.BagReporter{Bag: bag}
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

func TestDisassemblyListsConstsAndInstructions(t *testing.T) {
	prog := compileLambda(t, "lambda: 1 + 2")
	out := pretty.Disassembly(prog)
	for _, want := range []string{"consts:", "[0]", "LOAD_CONST", "BINARY_OP", "RETURN_VALUE"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Disassembly output missing %q:\n%s", want, out)
		}
	}
}

func TestDisassemblyRendersJumpTargets(t *testing.T) {
	prog := compileLambda(t, "lambda: 1 if True else 0")
	out := pretty.Disassembly(prog)
	if !strings.Contains(out, "target=") {
		t.Fatalf("Disassembly output for a ternary should render a jump target:\n%s", out)
	}
}
