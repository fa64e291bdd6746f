// Package testkit provides invariant checkers shared by the front-end and
// translator test suites, adapted from the teacher's CheckSpanInvariants
// (which validated AST span containment) into checkers over QIR trees.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/liautaud/boldr/internal/qir"
)

// CheckWellFormed validates §3.2's well-formedness invariant: every
// Identifier occurrence in expr is either bound by an enclosing Lambda or
// present in sources (the injected collection-source names recognized by
// the Binding Resolver, §4.4).
func CheckWellFormed(expr *qir.Expr, sources map[string]struct{}) error {
	return checkWellFormed(expr, nil, sources)
}

func checkWellFormed(expr *qir.Expr, bound []string, sources map[string]struct{}) error {
	if expr == nil {
		return nil
	}
	switch d := expr.Data.(type) {
	case qir.IdentifierData:
		for _, b := range bound {
			if b == d.Name {
				return nil
			}
		}
		if _, ok := sources[d.Name]; ok {
			return nil
		}
		return &qir.WellFormedError{Name: d.Name}
	case qir.LambdaData:
		return checkWellFormed(d.Body, append(append([]string{}, bound...), d.Param), sources)
	default:
		for _, child := range qir.Children(expr) {
			if err := checkWellFormed(child, bound, sources); err != nil {
				return err
			}
		}
		return nil
	}
}

// CheckNumberRange validates §8's "no Number literal holds a magnitude
// greater than 2^31-1" invariant across the whole tree.
func CheckNumberRange(expr *qir.Expr) error {
	var firstErr error
	qir.Visit(expr, func(e *qir.Expr) {
		if firstErr != nil {
			return
		}
		vd, ok := e.Data.(qir.ValueData)
		if !ok || vd.Scalar.Kind != qir.ScalarNumber {
			return
		}
		mag, err := safecast.Conv[int64](vd.Scalar.Number)
		if err != nil {
			firstErr = fmt.Errorf("testkit: number conversion overflow: %w", err)
			return
		}
		if mag > qir.MaxNumber || mag < -qir.MaxNumber-1 {
			firstErr = &qir.NumberRangeError{Value: vd.Scalar.Number}
		}
	})
	return firstErr
}
