package qir

// Visit calls fn for e and every expression reachable from it, in
// pre-order. It is the structural-traversal primitive required by §4.1 for
// tests and for internal/testkit's invariant checkers; there is no
// corresponding mutation primitive (§3.2 "trees are acyclic... no need for
// identity-based equality").
func Visit(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	for _, child := range Children(e) {
		Visit(child, fn)
	}
}

// Children returns the immediate child expressions of e, skipping absent
// slots (e.g. a nil ListConstr has none, an Operator with Arity 1 has one).
func Children(e *Expr) []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case ValueData, IdentifierData, BuiltinData, ReferenceData:
		return nil
	case LambdaData:
		return []*Expr{d.Body}
	case ApplicationData:
		return []*Expr{d.Fn, d.Arg}
	case ConditionalData:
		return []*Expr{d.Cond, d.Then, d.Else}
	case ListConstrData:
		if d.IsNil {
			return nil
		}
		return []*Expr{d.Head, d.Tail}
	case ListDestrData:
		return []*Expr{d.Scrutinee, d.OnNil, d.OnCons}
	case TupleConstrData:
		if d.IsNil {
			return nil
		}
		return []*Expr{d.Key, d.Value, d.Tail}
	case TupleDestrData:
		return []*Expr{d.Scrutinee, d.Key}
	case OperatorData:
		return d.Operands[:d.Op.Arity()]
	default:
		return nil
	}
}
