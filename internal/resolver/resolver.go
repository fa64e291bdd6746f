// Package resolver implements the Binding Resolver (§4.4): it turns a
// LOAD_GLOBAL/LOAD_ATTR name that the Symbolic Interpreter can't satisfy out
// of its own locals/closure cells into either a module namespace reference,
// an injected data source, a builtin operator/function reference, or a bound
// host value — in that fixed order, failing with ResolveUnresolvedName
// otherwise.
//
// Grounded on the teacher's internal/resolve, which walks the same kind of
// layered scope chain (locals, module scope, builtins) for name lookup
// during surge's own semantic analysis.
package resolver

import (
	"fmt"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/qir"
)

// SourceKind distinguishes the two ways a name can be injected as a data
// source (§4.4, §8's `employees` example).
type SourceKind uint8

const (
	// SourceCollection binds a name directly to a named relation, compiling
	// to SCAN(name).
	SourceCollection SourceKind = iota + 1
	// SourceFunction binds a name to another host function value, compiled
	// in its own right (used for e.g. passing a helper as an argument).
	SourceFunction
)

// SourceBinding is one entry of the Sources table a caller of
// internal/translate supplies to name the external collections and
// functions a host function may reference.
type SourceBinding struct {
	Kind       SourceKind
	Collection string
	Function   *bytecode.Program
}

// Sources is the name -> binding table supplied by the translation caller.
type Sources map[string]SourceBinding

// ModuleRef is pushed by Resolve, instead of a *qir.Expr, when a name
// resolves to a module namespace rather than a value — e.g. `math` in
// `math.sqrt(x)`. internal/interp's LOAD_ATTR case recognizes it and
// collapses the pair into a single qir.Builtin rather than a TupleDestr
// field projection (SPEC_FULL.md §C, grounded on original_source/meta.py's
// global_value dotted lookup).
type ModuleRef struct {
	Name string
}

// Resolver resolves a single free name using a fixed lookup order: module
// namespaces, then injected sources, then builtins, then bound globals.
type Resolver struct {
	Sources  Sources
	Builtins map[string]*qir.Expr
	Modules  map[string]bool // recognized module namespaces, e.g. "math"
	Globals  map[string]qir.Scalar
}

// New constructs a Resolver. builtins and modules may be nil; DefaultBuiltins
// is usually passed for the former.
func New(sources Sources, builtins map[string]*qir.Expr, modules map[string]bool, globals map[string]qir.Scalar) *Resolver {
	return &Resolver{Sources: sources, Builtins: builtins, Modules: modules, Globals: globals}
}

// UnresolvedNameError is returned (and also reported via diag.Code
// ResolveUnresolvedName by the caller) when no layer of the resolution
// order can account for name.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("resolver: unresolved name %q", e.Name)
}

// Resolve returns either a *qir.Expr, a *ModuleRef (for a bare module
// namespace reference awaiting a LOAD_ATTR), or an error.
func (r *Resolver) Resolve(name string) (interface{}, error) {
	if r.Modules[name] {
		return &ModuleRef{Name: name}, nil
	}
	if b, ok := r.Sources[name]; ok {
		switch b.Kind {
		case SourceCollection:
			return qir.MustOperator(qir.OpScan, qir.Value(qir.StringScalar(b.Collection))), nil
		case SourceFunction:
			return qir.Reference(name, ""), nil
		}
	}
	if r.Builtins != nil {
		if e, ok := r.Builtins[name]; ok {
			return e, nil
		}
	}
	if s, ok := r.Globals[name]; ok {
		return qir.Value(s), nil
	}
	return nil, &UnresolvedNameError{Name: name}
}

// ResolveAttr handles a ModuleRef.symbol pair (`math.sqrt`), the dotted-
// global supplement of SPEC_FULL.md §C.
func (r *Resolver) ResolveAttr(mod *ModuleRef, field string) (*qir.Expr, error) {
	if r.Modules[mod.Name] {
		return qir.Builtin(mod.Name, field), nil
	}
	return nil, &UnresolvedNameError{Name: mod.Name + "." + field}
}

// DefaultBuiltins is the operator builtin table used when a caller doesn't
// supply its own: one qir.Builtin("operator", name) reference per canonical
// operator name bytecode.CanonicalOperatorName maps host tokens onto (plus
// "neg", the unary-minus counterpart to "sub"), so a Resolve lookup and the
// COMPARE_OP/BINARY_OP/UNARY_* instructions the bytecode compiler emits agree
// on the same closed vocabulary.
func DefaultBuiltins() map[string]*qir.Expr {
	names := []string{"add", "sub", "mul", "div", "mod", "pow", "lt", "le", "eq", "ne", "ge", "gt", "and", "or", "not", "neg"}
	out := make(map[string]*qir.Expr, len(names))
	for _, n := range names {
		out[n] = qir.Builtin("operator", n)
	}
	return out
}

// DefaultModules is the set of module namespaces ResolveAttr recognizes out
// of the box (SPEC_FULL.md §C's `math.sqrt` example).
func DefaultModules() map[string]bool {
	return map[string]bool{"math": true}
}
