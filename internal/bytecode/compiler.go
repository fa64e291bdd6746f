package bytecode

import (
	"fmt"

	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/hostast"
	"github.com/liautaud/boldr/internal/qir"
)

// JumpTarget is the Arg payload of JUMP_IF_TRUE/JUMP_IF_FALSE: a target
// instruction index plus whether the jump pops its controlling value. A
// ternary's branch test pops (only one branch's value survives); and/or's
// short-circuit test does not (the controlling value itself may be the
// result, per §4.3).
type JumpTarget struct {
	Target int
	Pop    bool
}

// scope tracks the state needed to compile one Program: which names are
// bound to local slots so far, and whether an unbound name should resolve
// through a closure cell (LOAD_DEREF, inside a comprehension's synthesized
// function) or fall all the way to the host environment (LOAD_GLOBAL, at
// the top level).
type scope struct {
	prog   *Program
	bound  map[string]bool
	nested bool
}

// NotIntrospectableError is returned by Compile when a function's body never
// reaches a `return` (or the try/except escape hatch) and so reduces to no
// final expression at all — the bytecode adapter's analogue of
// original_source/meta.py's Function wrapper rejecting a value with no
// __code__ to introspect.
type NotIntrospectableError struct{}

func (*NotIntrospectableError) Error() string {
	return "bytecode: function body has no reachable return and cannot be introspected into a QIR term"
}

// Compile turns a parsed function (named def or lambda, both normalized to
// a hostast.FuncDef by internal/hostparse) into a flat instruction Program.
// Diagnostics are sent through reporter the same way hostlex.New and
// hostparse.Parse report theirs, so a caller can collect lex, parse and
// compile diagnostics into a single diag.Bag.
func Compile(fn *hostast.FuncDef, reporter diag.Reporter) (*Program, error) {
	prog := &Program{Params: append([]string(nil), fn.Params...)}
	bound := map[string]bool{}
	for _, p := range fn.Params {
		prog.localSlot(p)
		bound[p] = true
	}
	s := &scope{prog: prog, bound: bound, nested: false}
	if err := s.compileBody(fn.Body); err != nil {
		if _, ok := err.(*NotIntrospectableError); ok {
			reporter.Report(diag.AdaptNotIntrospectable, diag.SevError, fn.Sp,
				"function body has no reachable return and cannot be translated to a QIR term", nil)
		}
		return nil, err
	}
	return prog, nil
}

func (s *scope) compileBody(stmts []hostast.Stmt) error {
	returned := false
	for _, stmt := range stmts {
		switch st := stmt.(type) {
		case hostast.ReturnStmt:
			s.compileExpr(st.Value)
			s.prog.emit(RETURN_VALUE, nil)
			returned = true
		case hostast.ExprStmt:
			s.compileExpr(st.Value)
		case hostast.TryStmt:
			// try/except has no QIR mapping (§8 scenario 6): the whole
			// function compiles down to a single UNSUPPORTED instruction
			// and translation of it must fail with UnsupportedOpcode.
			s.prog.emit(UNSUPPORTED, "try/except")
			return nil
		default:
			return fmt.Errorf("bytecode: unknown statement type %T", stmt)
		}
	}
	if !returned {
		return &NotIntrospectableError{}
	}
	return nil
}

func (s *scope) compileExpr(e hostast.Expr) {
	switch x := e.(type) {
	case hostast.NumberLit:
		s.prog.emit(LOAD_CONST, s.prog.addConst(qir.NumberScalar(x.Value)))
	case hostast.FloatLit:
		s.prog.emit(LOAD_CONST, s.prog.addConst(qir.DoubleScalar(x.Value)))
	case hostast.StringLit:
		s.prog.emit(LOAD_CONST, s.prog.addConst(qir.StringScalar(x.Value)))
	case hostast.BoolLit:
		s.prog.emit(LOAD_CONST, s.prog.addConst(qir.BoolScalar(x.Value)))
	case hostast.NoneLit:
		s.prog.emit(LOAD_CONST, s.prog.addConst(qir.Null()))
	case hostast.Name:
		s.compileName(x.Ident)
	case hostast.Attr:
		s.compileExpr(x.Value)
		s.prog.emit(LOAD_ATTR, x.Field)
	case hostast.Unary:
		s.compileExpr(x.X)
		if x.Op == "not" {
			s.prog.emit(UNARY_NOT, nil)
		} else {
			s.prog.emit(UNARY_NEG, nil)
		}
	case hostast.Binary:
		s.compileBinary(x)
	case hostast.IfExp:
		s.compileTernary(x)
	case hostast.Call:
		s.compileExpr(x.Fn)
		for _, a := range x.Args {
			s.compileExpr(a)
		}
		s.prog.emit(CALL, len(x.Args))
	case hostast.ListLit:
		for _, el := range x.Elems {
			s.compileExpr(el)
		}
		s.prog.emit(BUILD_LIST, len(x.Elems))
	case hostast.DictLit:
		for _, entry := range x.Entries {
			s.compileExpr(entry.Key)
			s.compileExpr(entry.Value)
		}
		s.prog.emit(BUILD_MAP, len(x.Entries))
	case hostast.ListComp:
		s.compileComprehension(x.Var, x.Iter, x.Ifs, x.Elt, nil, nil, false)
	case hostast.DictComp:
		s.compileComprehension(x.Var, x.Iter, x.Ifs, nil, x.Key, x.Value, true)
	case hostast.Lambda:
		inner := compileClosure(x.Params, x.Body)
		s.prog.emit(MAKE_FUNCTION, inner)
	default:
		s.prog.emit(UNSUPPORTED, fmt.Sprintf("unknown expression node %T", e))
	}
}

var compareOps = map[string]bool{"<": true, "<=": true, "==": true, "!=": true, ">=": true, ">": true}

func (s *scope) compileBinary(x hostast.Binary) {
	switch x.Op {
	case "and":
		s.compileExpr(x.X)
		jmp := s.prog.emit(JUMP_IF_FALSE, JumpTarget{Pop: false})
		s.compileExpr(x.Y)
		s.prog.patchTarget(jmp, len(s.prog.Instrs))
	case "or":
		s.compileExpr(x.X)
		jmp := s.prog.emit(JUMP_IF_TRUE, JumpTarget{Pop: false})
		s.compileExpr(x.Y)
		s.prog.patchTarget(jmp, len(s.prog.Instrs))
	default:
		s.compileExpr(x.X)
		s.compileExpr(x.Y)
		if compareOps[x.Op] {
			s.prog.emit(COMPARE_OP, CanonicalOperatorName(x.Op))
		} else {
			s.prog.emit(BINARY_OP, CanonicalOperatorName(x.Op))
		}
	}
}

func (s *scope) compileTernary(x hostast.IfExp) {
	s.compileExpr(x.Cond)
	jmpFalse := s.prog.emit(JUMP_IF_FALSE, JumpTarget{Pop: true})
	s.compileExpr(x.Then)
	jmpEnd := s.prog.emit(JUMP, -1)
	elseStart := len(s.prog.Instrs)
	s.prog.patchTarget(jmpFalse, elseStart)
	s.compileExpr(x.Else)
	s.prog.patchTarget(jmpEnd, len(s.prog.Instrs))
}

func (s *scope) compileName(name string) {
	if s.bound[name] {
		s.prog.emit(LOAD_FAST, s.prog.localSlot(name))
		return
	}
	if s.nested {
		s.prog.emit(LOAD_DEREF, name)
		return
	}
	s.prog.emit(LOAD_GLOBAL, name)
}

// compileComprehension emits the MAKE_FUNCTION/CALL shape described in
// §4.3's design note: the loop body is compiled into its own Program whose
// sole parameter is the iterable (slot ".0"), and the outer code just
// invokes it with the source expression.
func (s *scope) compileComprehension(v string, iter hostast.Expr, ifs []hostast.Expr, elt, key, value hostast.Expr, isDict bool) {
	inner := &Program{Params: []string{".0"}}
	inner.localSlot(".0")

	bound := map[string]bool{v: true}
	var free []string
	for _, g := range ifs {
		free = append(free, freeNames(g, bound)...)
	}
	if isDict {
		free = append(free, freeNames(key, bound)...)
		free = append(free, freeNames(value, bound)...)
	} else {
		free = append(free, freeNames(elt, bound)...)
	}
	inner.FreeVars = dedup(free)

	ic := &scope{prog: inner, bound: map[string]bool{".0": true}, nested: true}

	buildOp, appendOp := BUILD_LIST, LIST_APPEND
	if isDict {
		buildOp, appendOp = BUILD_MAP, MAP_ADD
	}
	inner.emit(buildOp, 0)
	inner.emit(LOAD_FAST, inner.localSlot(".0"))
	inner.emit(GET_ITER, nil)
	forIter := inner.emit(FOR_ITER, -1)
	ic.bound[v] = true
	inner.emit(STORE_FAST, inner.localSlot(v))
	for _, g := range ifs {
		ic.compileExpr(g)
		inner.emit(JUMP_IF_FALSE, JumpTarget{Pop: true, Target: forIter})
	}
	if isDict {
		ic.compileExpr(key)
		ic.compileExpr(value)
	} else {
		ic.compileExpr(elt)
	}
	inner.emit(appendOp, 2)
	inner.emit(JUMP, forIter)
	inner.patchTarget(forIter, len(inner.Instrs))
	inner.emit(RETURN_VALUE, nil)

	s.prog.emit(MAKE_FUNCTION, inner)
	s.compileExpr(iter)
	s.prog.emit(CALL, 1)
}

// compileClosure compiles a bare `lambda ...: expr` that appears as a value
// in its own right (not the comprehension shorthand above) into its own
// Program, capturing whatever names from the enclosing scope it references.
func compileClosure(params []string, body hostast.Expr) *Program {
	inner := &Program{Params: append([]string(nil), params...)}
	bound := map[string]bool{}
	for _, p := range params {
		inner.localSlot(p)
		bound[p] = true
	}
	inner.FreeVars = dedup(freeNames(body, bound))
	ic := &scope{prog: inner, bound: bound, nested: true}
	ic.compileExpr(body)
	inner.emit(RETURN_VALUE, nil)
	return inner
}

func dedup(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
