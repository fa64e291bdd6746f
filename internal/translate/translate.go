// Package translate is the public entry point (§6.3): it wires a compiled
// host function together with the caller's source/builtin bindings and runs
// it through the Symbolic Interpreter, producing the finished QIR term that
// internal/wire serializes and internal/evalclient hands to the remote
// evaluator.
package translate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/interp"
	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/resolver"
	"github.com/liautaud/boldr/internal/source"
)

// zeroSpan is used when reporting a translation failure: instruction
// offsets (internal/bytecode.Instr.Offset) don't carry host source
// positions, so there is no real span to point at.
func zeroSpan() source.Span { return source.Span{} }

// Translate compiles prog's parameters into their QIR bindings and runs the
// interpreter. A parameter present in bound is inlined as a constant
// (modeling §8 example 4's closure capture — `f(1500)` inlines `s` as
// Value(Number 1500)); every other parameter stays an unbound
// qir.Identifier, free for the caller to apply the result to later.
func Translate(prog *bytecode.Program, sources resolver.Sources, bound map[string]qir.Scalar) (*qir.Expr, error) {
	return TranslateWith(resolver.New(sources, resolver.DefaultBuiltins(), resolver.DefaultModules(), nil), prog, bound)
}

// TranslateWith runs with a caller-supplied Resolver, letting tests and
// cmd/qirc override the builtin/module tables.
func TranslateWith(r *resolver.Resolver, prog *bytecode.Program, bound map[string]qir.Scalar) (*qir.Expr, error) {
	locals := make(map[string]*qir.Expr, len(prog.Params))
	for _, p := range prog.Params {
		if s, ok := bound[p]; ok {
			locals[p] = qir.Value(s)
		} else {
			locals[p] = qir.Identifier(p)
		}
	}
	return interp.New(r).Run(prog, locals)
}

// Report runs Translate and, on failure, forwards the interpreter's error to
// reporter as a diagnostic carrying the §7 error-taxonomy code, rather than
// just returning a bare Go error — the same diag.Reporter contract
// internal/hostlex and internal/hostparse already use.
func Report(prog *bytecode.Program, sources resolver.Sources, bound map[string]qir.Scalar, reporter diag.Reporter) (*qir.Expr, error) {
	e, err := Translate(prog, sources, bound)
	if err != nil {
		if ierr, ok := err.(*interp.Error); ok && reporter != nil {
			reporter.Report(ierr.Code, diag.SevError, zeroSpan(), ierr.Message, nil)
		}
		return nil, err
	}
	return e, nil
}

// Request is one item of a TranslateAll batch.
type Request struct {
	Name    string
	Prog    *bytecode.Program
	Sources resolver.Sources
	Bound   map[string]qir.Scalar
}

// Outcome is one item of a TranslateAll batch's results, in request order.
type Outcome struct {
	Name string
	Expr *qir.Expr
	Err  error
}

// TranslateAll runs a batch of independent translations concurrently with
// golang.org/x/sync/errgroup (§5's "translation of independent functions is
// embarrassingly parallel"). A single request's failure does not cancel the
// others — every Outcome is populated, successful or not.
func TranslateAll(ctx context.Context, reqs []Request) []Outcome {
	out := make([]Outcome, len(reqs))
	g, _ := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			e, err := Translate(req.Prog, req.Sources, req.Bound)
			out[i] = Outcome{Name: req.Name, Expr: e, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Cache memoizes Translate by key (typically the host function's qualified
// name), using golang.org/x/sync/singleflight so concurrent requests for the
// same key share one translation instead of racing to duplicate it — the
// optional memoization layer of §5.
type Cache struct {
	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]*qir.Expr
}

func NewCache() *Cache {
	return &Cache{memo: make(map[string]*qir.Expr)}
}

func (c *Cache) Translate(key string, prog *bytecode.Program, sources resolver.Sources, bound map[string]qir.Scalar) (*qir.Expr, error) {
	c.mu.Lock()
	if e, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return Translate(prog, sources, bound)
	})
	if err != nil {
		return nil, err
	}
	e := v.(*qir.Expr)
	c.mu.Lock()
	c.memo[key] = e
	c.mu.Unlock()
	return e, nil
}
