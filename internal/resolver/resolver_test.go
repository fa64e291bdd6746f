package resolver_test

import (
	"testing"

	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/resolver"
)

func TestResolveCollectionSource(t *testing.T) {
	sources := resolver.Sources{
		"employees": {Kind: resolver.SourceCollection, Collection: "employees"},
	}
	r := resolver.New(sources, resolver.DefaultBuiltins(), resolver.DefaultModules(), nil)
	got, err := r.Resolve("employees")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := qir.MustOperator(qir.OpScan, qir.Value(qir.StringScalar("employees")))
	if !qir.Equal(got.(*qir.Expr), want) {
		t.Fatalf("got %s, want %s", qir.Sprint(got.(*qir.Expr)), qir.Sprint(want))
	}
}

func TestResolveBuiltinOperator(t *testing.T) {
	r := resolver.New(nil, resolver.DefaultBuiltins(), nil, nil)
	got, err := r.Resolve("add")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := qir.Builtin("operator", "add")
	if !qir.Equal(got.(*qir.Expr), want) {
		t.Fatalf("got %s, want %s", qir.Sprint(got.(*qir.Expr)), qir.Sprint(want))
	}
}

func TestResolveModuleThenAttr(t *testing.T) {
	r := resolver.New(nil, nil, resolver.DefaultModules(), nil)
	got, err := r.Resolve("math")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mod, ok := got.(*resolver.ModuleRef)
	if !ok || mod.Name != "math" {
		t.Fatalf("expected ModuleRef(math), got %+v", got)
	}
	fn, err := r.ResolveAttr(mod, "sqrt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := qir.Builtin("math", "sqrt")
	if !qir.Equal(fn, want) {
		t.Fatalf("got %s, want %s", qir.Sprint(fn), qir.Sprint(want))
	}
}

func TestResolveBoundGlobal(t *testing.T) {
	r := resolver.New(nil, nil, nil, map[string]qir.Scalar{"s": qir.NumberScalar(1500)})
	got, err := r.Resolve("s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := qir.Value(qir.NumberScalar(1500))
	if !qir.Equal(got.(*qir.Expr), want) {
		t.Fatalf("got %s, want %s", qir.Sprint(got.(*qir.Expr)), qir.Sprint(want))
	}
}

func TestResolveUnresolvedName(t *testing.T) {
	r := resolver.New(nil, nil, nil, nil)
	_, err := r.Resolve("mystery")
	if err == nil {
		t.Fatalf("expected an UnresolvedNameError")
	}
	if _, ok := err.(*resolver.UnresolvedNameError); !ok {
		t.Fatalf("expected *UnresolvedNameError, got %T", err)
	}
}
