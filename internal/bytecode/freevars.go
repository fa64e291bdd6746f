package bytecode

import "github.com/liautaud/boldr/internal/hostast"

// freeNames collects every identifier referenced by e that is not in bound,
// in encounter order with duplicates removed. Used to compute a
// comprehension's synthesized inner Program's FreeVars (§4.2's MAKE_FUNCTION
// closure-capture mechanism) without needing a full lexical-scope pass.
func freeNames(e hostast.Expr, bound map[string]bool) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(e hostast.Expr, bound map[string]bool)
	walk = func(e hostast.Expr, bound map[string]bool) {
		switch x := e.(type) {
		case hostast.NumberLit, hostast.FloatLit, hostast.StringLit, hostast.BoolLit, hostast.NoneLit:
			// no identifiers
		case hostast.Name:
			if !bound[x.Ident] && !seen[x.Ident] {
				seen[x.Ident] = true
				order = append(order, x.Ident)
			}
		case hostast.Attr:
			walk(x.Value, bound)
		case hostast.Unary:
			walk(x.X, bound)
		case hostast.Binary:
			walk(x.X, bound)
			walk(x.Y, bound)
		case hostast.IfExp:
			walk(x.Cond, bound)
			walk(x.Then, bound)
			walk(x.Else, bound)
		case hostast.Call:
			walk(x.Fn, bound)
			for _, a := range x.Args {
				walk(a, bound)
			}
		case hostast.ListLit:
			for _, el := range x.Elems {
				walk(el, bound)
			}
		case hostast.DictLit:
			for _, entry := range x.Entries {
				walk(entry.Key, bound)
				walk(entry.Value, bound)
			}
		case hostast.ListComp:
			walk(x.Iter, bound)
			inner := withBound(bound, x.Var)
			for _, g := range x.Ifs {
				walk(g, inner)
			}
			walk(x.Elt, inner)
		case hostast.DictComp:
			walk(x.Iter, bound)
			inner := withBound(bound, x.Var)
			for _, g := range x.Ifs {
				walk(g, inner)
			}
			walk(x.Key, inner)
			walk(x.Value, inner)
		case hostast.Lambda:
			inner := bound
			for _, p := range x.Params {
				inner = withBound(inner, p)
			}
			walk(x.Body, inner)
		}
	}
	walk(e, bound)
	return order
}

func withBound(bound map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k := range bound {
		out[k] = true
	}
	out[name] = true
	return out
}
