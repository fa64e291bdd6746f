package interp

import (
	"strconv"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/resolver"
)

// popFunc pops and returns the top of the symbolic value stack being built
// by the execRange call that created it.
type popFunc func(offset int) (interface{}, error)

// execRange interprets prog.Instrs[start:end] over a fresh symbolic value
// stack, returning whatever is left on it when the range is exhausted (or,
// for a RETURN_VALUE, the single value it popped — RETURN_VALUE always ends
// interpretation immediately, matching a host function body that returns
// unconditionally). Every value on the stack is either a *qir.Expr, a
// *closureMarker (between MAKE_FUNCTION and its consuming CALL), or a
// *resolver.ModuleRef (between LOAD_GLOBAL "math" and the following
// LOAD_ATTR).
func (ip *Interp) execRange(prog *bytecode.Program, start, end int, locals, freeVars map[string]*qir.Expr) ([]interface{}, error) {
	var stack []interface{}
	push := func(v interface{}) { stack = append(stack, v) }
	pop := func(offset int) (interface{}, error) {
		if len(stack) == 0 {
			return nil, errAt(diag.InterpStackUnderflow, offset, "value stack exhausted")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	popExpr := func(offset int) (*qir.Expr, error) {
		v, err := pop(offset)
		if err != nil {
			return nil, err
		}
		e, ok := v.(*qir.Expr)
		if !ok {
			return nil, errAt(diag.InterpUnsupportedControlFlow, offset, "expected a value, found a closure or module reference")
		}
		return e, nil
	}

	pc := start
	for pc < end {
		instr := prog.Instrs[pc]
		ip.steps++
		if ip.Limit > 0 && ip.steps > ip.Limit {
			return nil, errAt(diag.InterpTranslationLimitExceeded, instr.Offset, "translation exceeded the instruction budget")
		}

		switch instr.Op {
		case bytecode.LOAD_CONST:
			push(qir.Value(prog.Consts[instr.Arg.(int)]))

		case bytecode.LOAD_FAST:
			name := prog.Locals[instr.Arg.(int)]
			e, ok := locals[name]
			if !ok {
				return nil, errAt(diag.InterpStackUnderflow, instr.Offset, "local %q has no bound value", name)
			}
			push(e)

		case bytecode.LOAD_DEREF:
			name := instr.Arg.(string)
			if e, ok := freeVars[name]; ok {
				push(e)
				break
			}
			v, err := ip.resolveName(instr.Offset, name)
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.LOAD_GLOBAL:
			v, err := ip.resolveName(instr.Offset, instr.Arg.(string))
			if err != nil {
				return nil, err
			}
			push(v)

		case bytecode.LOAD_ATTR:
			field := instr.Arg.(string)
			top, err := pop(instr.Offset)
			if err != nil {
				return nil, err
			}
			switch x := top.(type) {
			case *resolver.ModuleRef:
				fn, err := ip.Resolver.ResolveAttr(x, field)
				if err != nil {
					return nil, errAt(diag.ResolveUnresolvedName, instr.Offset, "%s", err)
				}
				push(fn)
			case *qir.Expr:
				push(qir.TupleDestr(x, qir.Value(qir.StringScalar(field))))
			default:
				return nil, errAt(diag.InterpUnsupportedControlFlow, instr.Offset, "LOAD_ATTR on an unexpected stack value")
			}

		case bytecode.STORE_FAST:
			name := prog.Locals[instr.Arg.(int)]
			v, err := popExpr(instr.Offset)
			if err != nil {
				return nil, err
			}
			locals[name] = v

		case bytecode.COMPARE_OP, bytecode.BINARY_OP:
			y, err := popExpr(instr.Offset)
			if err != nil {
				return nil, err
			}
			x, err := popExpr(instr.Offset)
			if err != nil {
				return nil, err
			}
			push(qir.ApplyN(qir.Builtin("operator", instr.Arg.(string)), x, y))

		case bytecode.UNARY_NOT:
			x, err := popExpr(instr.Offset)
			if err != nil {
				return nil, err
			}
			push(qir.ApplyN(qir.Builtin("operator", "not"), x))

		case bytecode.UNARY_NEG:
			x, err := popExpr(instr.Offset)
			if err != nil {
				return nil, err
			}
			push(qir.ApplyN(qir.Builtin("operator", "neg"), x))

		case bytecode.BUILD_LIST:
			n := instr.Arg.(int)
			elems := make([]*qir.Expr, n)
			for i := n - 1; i >= 0; i-- {
				e, err := popExpr(instr.Offset)
				if err != nil {
					return nil, err
				}
				elems[i] = e
			}
			push(qir.ListFromSlice(elems))

		case bytecode.BUILD_TUPLE:
			n := instr.Arg.(int)
			elems := make([]*qir.Expr, n)
			for i := n - 1; i >= 0; i-- {
				e, err := popExpr(instr.Offset)
				if err != nil {
					return nil, err
				}
				elems[i] = e
			}
			fields := make([]qir.Field, n)
			for i, e := range elems {
				fields[i] = qir.Field{Name: itoa(i), Value: e}
			}
			push(qir.TupleFromFields(fields))

		case bytecode.BUILD_MAP:
			n := instr.Arg.(int)
			fields := make([]qir.Field, n)
			for i := n - 1; i >= 0; i-- {
				v, err := popExpr(instr.Offset)
				if err != nil {
					return nil, err
				}
				k, err := popExpr(instr.Offset)
				if err != nil {
					return nil, err
				}
				fields[i] = qir.Field{Name: constStringOf(k), Value: v}
			}
			push(qir.TupleFromFields(fields))

		case bytecode.CALL:
			nargs := instr.Arg.(int)
			args := make([]interface{}, nargs)
			for i := nargs - 1; i >= 0; i-- {
				v, err := pop(instr.Offset)
				if err != nil {
					return nil, err
				}
				args[i] = v
			}
			callee, err := pop(instr.Offset)
			if err != nil {
				return nil, err
			}
			if marker, ok := callee.(*closureMarker); ok {
				result, err := ip.callClosure(instr.Offset, marker, args)
				if err != nil {
					return nil, err
				}
				push(result)
				break
			}
			calleeExpr, ok := callee.(*qir.Expr)
			if !ok {
				return nil, errAt(diag.InterpUnsupportedControlFlow, instr.Offset, "call target is not a value expression")
			}
			argExprs := make([]*qir.Expr, nargs)
			for i, a := range args {
				e, ok := a.(*qir.Expr)
				if !ok {
					return nil, errAt(diag.InterpUnsupportedControlFlow, instr.Offset, "call argument is not a value expression")
				}
				argExprs[i] = e
			}
			push(qir.ApplyN(calleeExpr, argExprs...))

		case bytecode.MAKE_FUNCTION:
			inner := instr.Arg.(*bytecode.Program)
			captured := map[string]*qir.Expr{}
			for _, name := range inner.FreeVars {
				if e, ok := locals[name]; ok {
					captured[name] = e
				} else if e, ok := freeVars[name]; ok {
					captured[name] = e
				}
			}
			push(&closureMarker{Inner: inner, Captured: captured})

		case bytecode.RETURN_VALUE:
			v, err := pop(instr.Offset)
			if err != nil {
				return nil, err
			}
			return []interface{}{v}, nil

		case bytecode.JUMP_IF_FALSE, bytecode.JUMP_IF_TRUE:
			jt := instr.Arg.(bytecode.JumpTarget)
			cond, err := popExpr(instr.Offset)
			if err != nil {
				return nil, err
			}
			if jt.Pop {
				result, nextPC, err := ip.evalTernary(prog, instr, cond, jt.Target, locals, freeVars)
				if err != nil {
					return nil, err
				}
				push(result)
				pc = nextPC
				continue
			}
			result, nextPC, err := ip.evalShortCircuit(prog, instr, cond, jt.Target, locals, freeVars)
			if err != nil {
				return nil, err
			}
			push(result)
			pc = nextPC
			continue

		case bytecode.GET_ITER:
			result, nextPC, err := ip.evalComprehensionBody(prog, pc, end, locals, freeVars, pop)
			if err != nil {
				return nil, err
			}
			push(result)
			pc = nextPC
			continue

		case bytecode.JUMP, bytecode.FOR_ITER:
			return nil, errAt(diag.InterpUnsupportedControlFlow, instr.Offset, "%s reached outside a recognized control-flow shape", instr.Op)

		case bytecode.LIST_APPEND, bytecode.MAP_ADD:
			return nil, errAt(diag.InterpUnsupportedControlFlow, instr.Offset, "%s reached outside a recognized comprehension body", instr.Op)

		case bytecode.UNSUPPORTED:
			return nil, errAt(diag.AdaptUnsupportedOpcode, instr.Offset, "unsupported construct: %v", instr.Arg)

		default:
			return nil, errAt(diag.AdaptUnsupportedOpcode, instr.Offset, "unrecognized opcode %s", instr.Op)
		}

		pc++
	}
	return stack, nil
}

func (ip *Interp) resolveName(offset int, name string) (interface{}, error) {
	v, err := ip.Resolver.Resolve(name)
	if err != nil {
		return nil, errAt(diag.ResolveUnresolvedName, offset, "%s", err)
	}
	return v, nil
}

func (ip *Interp) callClosure(offset int, marker *closureMarker, args []interface{}) (*qir.Expr, error) {
	innerLocals := map[string]*qir.Expr{}
	if len(marker.Inner.Params) > 0 {
		e, ok := args[0].(*qir.Expr)
		if !ok {
			return nil, errAt(diag.InterpUnsupportedControlFlow, offset, "closure argument is not a value expression")
		}
		innerLocals[marker.Inner.Params[0]] = e
	}
	vals, err := ip.execRange(marker.Inner, 0, len(marker.Inner.Instrs), innerLocals, marker.Captured)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, errAt(diag.InterpStackUnderflow, offset, "closure body produced no value")
	}
	e, ok := vals[len(vals)-1].(*qir.Expr)
	if !ok {
		return nil, errAt(diag.InterpUnsupportedControlFlow, offset, "closure body did not reduce to a value expression")
	}
	return e, nil
}

// evalTernary handles a JUMP_IF_FALSE/JUMP_IF_TRUE with Pop=true: the
// instruction immediately preceding Target is an unconditional JUMP to the
// end of the conditional, per the shape internal/bytecode's compiler emits
// for `then if cond else els`.
func (ip *Interp) evalTernary(prog *bytecode.Program, jump bytecode.Instr, cond *qir.Expr, target int, locals, freeVars map[string]*qir.Expr) (*qir.Expr, int, error) {
	if target == 0 || prog.Instrs[target-1].Op != bytecode.JUMP {
		return nil, 0, errAt(diag.InterpUnbalancedJump, jump.Offset, "ternary jump target is not preceded by an unconditional JUMP")
	}
	endIdx, ok := prog.Instrs[target-1].Arg.(int)
	if !ok {
		return nil, 0, errAt(diag.InterpUnbalancedJump, jump.Offset, "malformed ternary end jump")
	}
	thenVals, err := ip.execRange(prog, jump.Offset+1, target-1, copyExprMap(locals), freeVars)
	if err != nil {
		return nil, 0, err
	}
	elseVals, err := ip.execRange(prog, target, endIdx, copyExprMap(locals), freeVars)
	if err != nil {
		return nil, 0, err
	}
	thenExpr, err := lastExpr(thenVals, jump.Offset)
	if err != nil {
		return nil, 0, err
	}
	elseExpr, err := lastExpr(elseVals, jump.Offset)
	if err != nil {
		return nil, 0, err
	}
	return qir.Conditional(cond, thenExpr, elseExpr), endIdx, nil
}

// evalShortCircuit handles a JUMP_IF_FALSE/JUMP_IF_TRUE with Pop=false: the
// `and`/`or` shape, eagerly combined via operator.and/operator.or rather
// than modeled as a Conditional (grounded on original_source/qir/algebra.py,
// where And/Or are plain eager BinaryOperator subclasses, not branches).
func (ip *Interp) evalShortCircuit(prog *bytecode.Program, jump bytecode.Instr, cond *qir.Expr, target int, locals, freeVars map[string]*qir.Expr) (*qir.Expr, int, error) {
	op := "and"
	if jump.Op == bytecode.JUMP_IF_TRUE {
		op = "or"
	}
	rightVals, err := ip.execRange(prog, jump.Offset+1, target, copyExprMap(locals), freeVars)
	if err != nil {
		return nil, 0, err
	}
	rightExpr, err := lastExpr(rightVals, jump.Offset)
	if err != nil {
		return nil, 0, err
	}
	return qir.ApplyN(qir.Builtin("operator", op), cond, rightExpr), target, nil
}

func lastExpr(vals []interface{}, offset int) (*qir.Expr, error) {
	if len(vals) == 0 {
		return nil, errAt(diag.InterpStackUnderflow, offset, "branch produced no value")
	}
	e, ok := vals[len(vals)-1].(*qir.Expr)
	if !ok {
		return nil, errAt(diag.InterpUnsupportedControlFlow, offset, "branch did not reduce to a value expression")
	}
	return e, nil
}

func constStringOf(e *qir.Expr) string {
	vd, ok := e.Data.(qir.ValueData)
	if !ok || vd.Scalar.Kind != qir.ScalarString {
		return ""
	}
	return vd.Scalar.Str
}

func itoa(n int) string { return strconv.Itoa(n) }
