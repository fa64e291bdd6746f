// Package interp is the Symbolic Interpreter (§4.3): it walks a compiled
// bytecode.Program and reconstructs a qir.Expr tree, recognizing the
// non-linear control-flow shapes the bytecode adapter leaves in place
// (ternary, short-circuit and/or, single-source comprehensions) as isolated
// sub-interpretations over instruction sub-ranges rather than as a
// multi-pass CFG reconstruction — grounded directly on spec.md §4.3's own
// design note to that effect, and on the teacher's internal/eval, which
// walks surge's typed expression tree the same recursive way.
package interp

import (
	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/resolver"
)

// Interp runs one translation. DefaultLimit bounds the number of
// instructions processed across every sub-range, the adapter's answer to
// §7's InterpTranslationLimitExceeded (guards against runaway recursion over
// adversarial or malformed programs — there is no other loop-termination
// proof available over arbitrary bytecode).
type Interp struct {
	Resolver *resolver.Resolver
	Limit    int
	steps    int
}

const DefaultLimit = 100000

func New(r *resolver.Resolver) *Interp {
	return &Interp{Resolver: r, Limit: DefaultLimit}
}

// closureMarker is pushed by MAKE_FUNCTION and consumed by the immediately
// following CALL. It never reaches the final QIR tree: a comprehension's
// MAKE_FUNCTION/CALL pair is always fully resolved into a SELECT/PROJECT
// operator application before control returns to the enclosing execRange.
type closureMarker struct {
	Inner    *bytecode.Program
	Captured map[string]*qir.Expr
}

// Run executes prog from the start, with locals seeded by the caller
// (internal/translate binds Params to either qir.Identifier for an unbound
// argument or qir.Value for an inlined closure capture, §8 example 4).
// freeVars is usually nil at the top level; it is populated automatically
// for the synthesized inner Programs of comprehensions and lambdas.
func (ip *Interp) Run(prog *bytecode.Program, locals map[string]*qir.Expr) (*qir.Expr, error) {
	vals, err := ip.execRange(prog, 0, len(prog.Instrs), locals, nil)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, errAt(diag.InterpStackUnderflow, len(prog.Instrs), "function body did not reduce to a single value")
	}
	e, ok := vals[0].(*qir.Expr)
	if !ok {
		return nil, errAt(diag.InterpUnsupportedControlFlow, len(prog.Instrs), "function result is not a value expression")
	}
	return e, nil
}

func copyExprMap(m map[string]*qir.Expr) map[string]*qir.Expr {
	out := make(map[string]*qir.Expr, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
