// Package evalclient is the consumer of a translated QIR term (§6.2): a
// thin RPC client that hands the expression to an external evaluator, plus
// a separate local reference evaluator used only by tests
// (SPEC_FULL.md §0), mirroring the split between `evaluate_remotely` and
// `evaluate_locally` in original_source/qir.py. internal/translate never
// imports this package — translation stays pure.
package evalclient

import (
	"fmt"
	"math"

	"github.com/liautaud/boldr/internal/qir"
)

// Rows supplies the backing data a SCAN operator reads from: a collection
// name to an ordered slice of row expressions (normally TupleConstr chains
// built with qir.TupleFromFields).
type Rows map[string][]*qir.Expr

// EvaluateLocally reduces e to a normal-form qir.Expr, the Go equivalent of
// original_source's `Expression.evaluate_locally` default — recursively
// evaluate the subexpressions, then fold. Unlike the Python reference (whose
// TODO list names "finding a way to evaluate lambda functions locally... by
// passing on an environment" as unfinished work), Application here does beta
// reduce Lambda values by threading an explicit environment, since nothing
// in the spec's Non-goals excludes it and the translator output is full of
// unapplied Lambdas (every SELECT/PROJECT predicate and projection).
func EvaluateLocally(e *qir.Expr, rows Rows) (*qir.Expr, error) {
	return eval(e, nil, rows)
}

func eval(e *qir.Expr, env map[string]*qir.Expr, rows Rows) (*qir.Expr, error) {
	if e == nil {
		return nil, fmt.Errorf("evalclient: cannot evaluate a nil expression")
	}
	switch e.Kind {
	case qir.KindValue, qir.KindBuiltin, qir.KindLambda:
		return e, nil
	case qir.KindIdentifier:
		d := e.Data.(qir.IdentifierData)
		if v, ok := env[d.Name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("evalclient: unbound identifier %q", d.Name)
	case qir.KindConditional:
		d := e.Data.(qir.ConditionalData)
		cond, err := eval(d.Cond, env, rows)
		if err != nil {
			return nil, err
		}
		b, err := asBool(cond)
		if err != nil {
			return nil, err
		}
		if b {
			return eval(d.Then, env, rows)
		}
		return eval(d.Else, env, rows)
	case qir.KindApplication:
		return evalApplication(e, env, rows)
	case qir.KindListConstr:
		d := e.Data.(qir.ListConstrData)
		if d.IsNil {
			return e, nil
		}
		head, err := eval(d.Head, env, rows)
		if err != nil {
			return nil, err
		}
		tail, err := eval(d.Tail, env, rows)
		if err != nil {
			return nil, err
		}
		return qir.ListCons(head, tail), nil
	case qir.KindListDestr:
		d := e.Data.(qir.ListDestrData)
		scrutinee, err := eval(d.Scrutinee, env, rows)
		if err != nil {
			return nil, err
		}
		sd, ok := scrutinee.Data.(qir.ListConstrData)
		if !ok {
			return nil, fmt.Errorf("evalclient: ListDestr scrutinee is not a list")
		}
		if sd.IsNil {
			return eval(d.OnNil, env, rows)
		}
		applied := qir.ApplyN(d.OnCons, sd.Head, sd.Tail)
		return eval(applied, env, rows)
	case qir.KindTupleConstr:
		d := e.Data.(qir.TupleConstrData)
		if d.IsNil {
			return e, nil
		}
		key, err := eval(d.Key, env, rows)
		if err != nil {
			return nil, err
		}
		value, err := eval(d.Value, env, rows)
		if err != nil {
			return nil, err
		}
		tail, err := eval(d.Tail, env, rows)
		if err != nil {
			return nil, err
		}
		return qir.TupleCons(key, value, tail), nil
	case qir.KindTupleDestr:
		d := e.Data.(qir.TupleDestrData)
		scrutinee, err := eval(d.Scrutinee, env, rows)
		if err != nil {
			return nil, err
		}
		key, err := eval(d.Key, env, rows)
		if err != nil {
			return nil, err
		}
		return tupleLookup(scrutinee, key)
	case qir.KindOperator:
		return evalOperator(e, env, rows)
	case qir.KindReference:
		d := e.Data.(qir.ReferenceData)
		return nil, fmt.Errorf("evalclient: cannot locally evaluate an unresolved Reference(%s, %s)", d.Source, d.Field)
	default:
		return nil, fmt.Errorf("evalclient: unhandled expression kind %s", e.Kind)
	}
}

// evalApplication collects the whole Application spine (§9 "currying of
// multi-argument calls": CALL k left-associates into k nested
// Applications) before reducing, so a two-argument builtin or a
// fully-saturated lambda sees every argument at once.
func evalApplication(e *qir.Expr, env map[string]*qir.Expr, rows Rows) (*qir.Expr, error) {
	var argExprs []*qir.Expr
	cur := e
	for cur.Kind == qir.KindApplication {
		d := cur.Data.(qir.ApplicationData)
		argExprs = append([]*qir.Expr{d.Arg}, argExprs...)
		cur = d.Fn
	}
	fnVal, err := eval(cur, env, rows)
	if err != nil {
		return nil, err
	}
	args := make([]*qir.Expr, len(argExprs))
	for i, a := range argExprs {
		if args[i], err = eval(a, env, rows); err != nil {
			return nil, err
		}
	}
	return applyValue(fnVal, args, env, rows)
}

func applyValue(fnVal *qir.Expr, args []*qir.Expr, env map[string]*qir.Expr, rows Rows) (*qir.Expr, error) {
	if len(args) == 0 {
		return fnVal, nil
	}
	switch fd := fnVal.Data.(type) {
	case qir.BuiltinData:
		return applyBuiltin(fd.Module, fd.Symbol, args)
	case qir.LambdaData:
		inner := make(map[string]*qir.Expr, len(env)+1)
		for k, v := range env {
			inner[k] = v
		}
		inner[fd.Param] = args[0]
		result, err := eval(fd.Body, inner, rows)
		if err != nil {
			return nil, err
		}
		return applyValue(result, args[1:], env, rows)
	default:
		return nil, fmt.Errorf("evalclient: cannot apply a value of kind %s", fnVal.Kind)
	}
}

func tupleLookup(scrutinee, key *qir.Expr) (*qir.Expr, error) {
	for scrutinee.Kind == qir.KindTupleConstr {
		d := scrutinee.Data.(qir.TupleConstrData)
		if d.IsNil {
			break
		}
		if qir.Equal(d.Key, key) {
			return d.Value, nil
		}
		scrutinee = d.Tail
	}
	return nil, fmt.Errorf("evalclient: TupleDestr key %s not present in tuple", qir.Sprint(key))
}

func asBool(e *qir.Expr) (bool, error) {
	d, ok := e.Data.(qir.ValueData)
	if !ok || d.Scalar.Kind != qir.ScalarBool {
		return false, fmt.Errorf("evalclient: expected a Bool value, got %s", qir.Sprint(e))
	}
	return d.Scalar.Bool, nil
}

func asNumericPair(a, b *qir.Expr) (float64, float64, bool, error) {
	av, aok := a.Data.(qir.ValueData)
	bv, bok := b.Data.(qir.ValueData)
	if !aok || !bok {
		return 0, 0, false, fmt.Errorf("evalclient: operator operands must be Value expressions")
	}
	af, aIsInt, err := scalarToFloat(av.Scalar)
	if err != nil {
		return 0, 0, false, err
	}
	bf, bIsInt, err := scalarToFloat(bv.Scalar)
	if err != nil {
		return 0, 0, false, err
	}
	return af, bf, aIsInt && bIsInt, nil
}

func scalarToFloat(s qir.Scalar) (float64, bool, error) {
	switch s.Kind {
	case qir.ScalarNumber:
		return float64(s.Number), true, nil
	case qir.ScalarDouble:
		return s.Double, false, nil
	default:
		return 0, false, fmt.Errorf("evalclient: expected a numeric Value, got %s", s.Kind)
	}
}

func numericResult(v float64, bothInt bool) *qir.Expr {
	if bothInt {
		return qir.Value(qir.NumberScalar(int64(v)))
	}
	return qir.Value(qir.DoubleScalar(v))
}

// applyBuiltin evaluates internal/resolver's DefaultBuiltins table (§4.4) plus the
// math.sqrt dotted-global supplement (SPEC_FULL.md §C).
func applyBuiltin(module, symbol string, args []*qir.Expr) (*qir.Expr, error) {
	switch module {
	case "operator":
		return applyOperator(symbol, args)
	case "math":
		return applyMath(symbol, args)
	default:
		return nil, fmt.Errorf("evalclient: unknown builtin module %q", module)
	}
}

// applyOperator evaluates a canonical operator name (§4.3's fixed table,
// bytecode.CanonicalOperatorName) against its already-evaluated operands.
func applyOperator(name string, args []*qir.Expr) (*qir.Expr, error) {
	if name == "not" || name == "neg" {
		if len(args) != 1 {
			return nil, fmt.Errorf("evalclient: operator %q expects 1 operand, got %d", name, len(args))
		}
		if name == "not" {
			b, err := asBool(args[0])
			if err != nil {
				return nil, err
			}
			return qir.Value(qir.BoolScalar(!b)), nil
		}
		f, isInt, err := scalarToFloat(args[0].Data.(qir.ValueData).Scalar)
		if err != nil {
			return nil, err
		}
		return numericResult(-f, isInt), nil
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("evalclient: operator %q expects 2 operands, got %d", name, len(args))
	}
	switch name {
	case "and":
		a, err := asBool(args[0])
		if err != nil {
			return nil, err
		}
		if !a {
			return qir.Value(qir.BoolScalar(false)), nil
		}
		b, err := asBool(args[1])
		if err != nil {
			return nil, err
		}
		return qir.Value(qir.BoolScalar(b)), nil
	case "or":
		a, err := asBool(args[0])
		if err != nil {
			return nil, err
		}
		if a {
			return qir.Value(qir.BoolScalar(true)), nil
		}
		b, err := asBool(args[1])
		if err != nil {
			return nil, err
		}
		return qir.Value(qir.BoolScalar(b)), nil
	case "eq":
		return qir.Value(qir.BoolScalar(qir.Equal(args[0], args[1]))), nil
	case "ne":
		return qir.Value(qir.BoolScalar(!qir.Equal(args[0], args[1]))), nil
	}

	af, bf, bothInt, err := asNumericPair(args[0], args[1])
	if err != nil {
		return nil, err
	}
	switch name {
	case "add":
		return numericResult(af+bf, bothInt), nil
	case "sub":
		return numericResult(af-bf, bothInt), nil
	case "mul":
		return numericResult(af*bf, bothInt), nil
	case "div":
		return qir.Value(qir.DoubleScalar(af / bf)), nil
	case "mod":
		return numericResult(math.Mod(af, bf), bothInt), nil
	case "pow":
		return numericResult(math.Pow(af, bf), bothInt && bf >= 0), nil
	case "lt":
		return qir.Value(qir.BoolScalar(af < bf)), nil
	case "le":
		return qir.Value(qir.BoolScalar(af <= bf)), nil
	case "gt":
		return qir.Value(qir.BoolScalar(af > bf)), nil
	case "ge":
		return qir.Value(qir.BoolScalar(af >= bf)), nil
	default:
		return nil, fmt.Errorf("evalclient: unknown operator %q", name)
	}
}

func applyMath(symbol string, args []*qir.Expr) (*qir.Expr, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("evalclient: math.%s expects 1 operand, got %d", symbol, len(args))
	}
	v, ok := args[0].Data.(qir.ValueData)
	if !ok {
		return nil, fmt.Errorf("evalclient: math.%s operand must be a Value", symbol)
	}
	f, _, err := scalarToFloat(v.Scalar)
	if err != nil {
		return nil, err
	}
	switch symbol {
	case "sqrt":
		return qir.Value(qir.DoubleScalar(math.Sqrt(f))), nil
	default:
		return nil, fmt.Errorf("evalclient: unknown math builtin %q", symbol)
	}
}

func evalOperator(e *qir.Expr, env map[string]*qir.Expr, rows Rows) (*qir.Expr, error) {
	d := e.Data.(qir.OperatorData)
	switch d.Op {
	case qir.OpScan:
		table, err := eval(d.Operands[0], env, rows)
		if err != nil {
			return nil, err
		}
		name, ok := table.Data.(qir.ValueData)
		if !ok || name.Scalar.Kind != qir.ScalarString {
			return nil, fmt.Errorf("evalclient: SCAN table must be a String value")
		}
		return qir.ListFromSlice(rows[name.Scalar.Str]), nil
	case qir.OpSelect:
		input, err := eval(d.Operands[0], env, rows)
		if err != nil {
			return nil, err
		}
		elems, err := listElements(input)
		if err != nil {
			return nil, err
		}
		filter, err := eval(d.Operands[1], env, rows)
		if err != nil {
			return nil, err
		}
		var out []*qir.Expr
		for _, v := range elems {
			r, err := applyValue(filter, []*qir.Expr{v}, env, rows)
			if err != nil {
				return nil, err
			}
			ok, err := asBool(r)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, v)
			}
		}
		return qir.ListFromSlice(out), nil
	case qir.OpProject:
		input, err := eval(d.Operands[0], env, rows)
		if err != nil {
			return nil, err
		}
		elems, err := listElements(input)
		if err != nil {
			return nil, err
		}
		format, err := eval(d.Operands[1], env, rows)
		if err != nil {
			return nil, err
		}
		out := make([]*qir.Expr, len(elems))
		for i, v := range elems {
			out[i], err = applyValue(format, []*qir.Expr{v}, env, rows)
			if err != nil {
				return nil, err
			}
		}
		return qir.ListFromSlice(out), nil
	default:
		return nil, fmt.Errorf("evalclient: %s is representable but not locally evaluable (SPEC_FULL.md OQ-2)", d.Op)
	}
}

func listElements(e *qir.Expr) ([]*qir.Expr, error) {
	var out []*qir.Expr
	for e.Kind == qir.KindListConstr {
		d := e.Data.(qir.ListConstrData)
		if d.IsNil {
			return out, nil
		}
		out = append(out, d.Head)
		e = d.Tail
	}
	return nil, fmt.Errorf("evalclient: expected a list, got %s", e.Kind)
}
