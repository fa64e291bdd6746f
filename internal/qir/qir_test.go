package qir_test

import (
	"testing"

	"github.com/liautaud/boldr/internal/qir"
)

func TestScalarNumberOverflowsToDouble(t *testing.T) {
	cases := []struct {
		name string
		in   int64
		want qir.ScalarKind
	}{
		{"fits", 42, qir.ScalarNumber},
		{"max", qir.MaxNumber, qir.ScalarNumber},
		{"overflow", qir.MaxNumber + 1, qir.ScalarDouble},
		{"min", -qir.MaxNumber - 1, qir.ScalarNumber},
		{"underflow", -qir.MaxNumber - 2, qir.ScalarDouble},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := qir.NumberScalar(tc.in)
			if got.Kind != tc.want {
				t.Fatalf("NumberScalar(%d).Kind = %s, want %s", tc.in, got.Kind, tc.want)
			}
		})
	}
}

func TestEqualStructural(t *testing.T) {
	a := qir.Lambda("x", qir.ApplyN(
		qir.Builtin("operator", "mul"),
		qir.Identifier("x"),
		qir.Value(qir.NumberScalar(2)),
	))
	b := qir.Lambda("x", qir.ApplyN(
		qir.Builtin("operator", "mul"),
		qir.Identifier("x"),
		qir.Value(qir.NumberScalar(2)),
	))
	if !qir.Equal(a, b) {
		t.Fatalf("expected structurally equal trees, got:\n%s\nvs\n%s", qir.Sprint(a), qir.Sprint(b))
	}

	c := qir.Lambda("x", qir.ApplyN(
		qir.Builtin("operator", "mul"),
		qir.Identifier("x"),
		qir.Value(qir.NumberScalar(3)),
	))
	if qir.Equal(a, c) {
		t.Fatalf("expected trees with different literals to differ")
	}
}

func TestEqualNilHandling(t *testing.T) {
	if !qir.Equal(nil, nil) {
		t.Fatalf("nil should equal nil")
	}
	if qir.Equal(nil, qir.ListNil()) {
		t.Fatalf("nil should not equal a non-nil expression")
	}
}

func TestOperatorArityValidation(t *testing.T) {
	if _, err := qir.NewOperator(qir.OpScan, qir.Identifier("employees")); err != nil {
		t.Fatalf("SCAN with one operand should be valid: %v", err)
	}
	if _, err := qir.NewOperator(qir.OpScan); err == nil {
		t.Fatalf("SCAN with zero operands should be rejected")
	}
	if _, err := qir.NewOperator(qir.OpJoin, qir.ListNil(), qir.ListNil()); err == nil {
		t.Fatalf("JOIN with two operands should be rejected, wants three")
	}
}

func TestChildrenVisitsEverySubtree(t *testing.T) {
	tree := qir.TupleFromFields([]qir.Field{
		{Name: "name", Value: qir.Reference("e", "name")},
	})
	var kinds []qir.Kind
	qir.Visit(tree, func(e *qir.Expr) { kinds = append(kinds, e.Kind) })
	if len(kinds) != 4 {
		t.Fatalf("expected 4 visited nodes (TupleConstr, key Value, Reference, nil TupleConstr), got %d", len(kinds))
	}
	if kinds[0] != qir.KindTupleConstr {
		t.Fatalf("expected root kind TupleConstr, got %s", kinds[0])
	}
}

func TestListFromSliceBuildsConsChain(t *testing.T) {
	elems := []*qir.Expr{
		qir.Value(qir.NumberScalar(1)),
		qir.Value(qir.NumberScalar(2)),
	}
	got := qir.ListFromSlice(elems)
	want := qir.ListCons(elems[0], qir.ListCons(elems[1], qir.ListNil()))
	if !qir.Equal(got, want) {
		t.Fatalf("ListFromSlice mismatch:\n%s\nvs\n%s", qir.Sprint(got), qir.Sprint(want))
	}
}
