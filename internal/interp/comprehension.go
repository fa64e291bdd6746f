package interp

import (
	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/qir"
)

// evalComprehensionBody recognizes the full "BUILD_LIST 0; LOAD_FAST .0;
// GET_ITER; FOR_ITER end; STORE_FAST var; [guard; JUMP_IF_FALSE]*;
// projection; LIST_APPEND/MAP_ADD; JUMP; end:" shape that
// internal/bytecode's compiler emits for a comprehension, starting at gIdx
// (the GET_ITER instruction). It consumes the whole shape in one step and
// returns the SELECT/PROJECT operator tree plus the instruction index to
// resume at (the "end" label).
//
// Grounded on spec.md §4.3's design note that comprehension recognition
// happens "via a special GET_ITER case" rather than a dedicated bytecode
// pattern for the whole loop.
func (ip *Interp) evalComprehensionBody(prog *bytecode.Program, gIdx, end int, locals, freeVars map[string]*qir.Expr, pop popFunc) (*qir.Expr, int, error) {
	iterSrcV, err := pop(gIdx)
	if err != nil {
		return nil, 0, err
	}
	iterSrc, ok := iterSrcV.(*qir.Expr)
	if !ok {
		return nil, 0, errAt(diag.InterpUnsupportedControlFlow, gIdx, "comprehension source is not a value expression")
	}
	// Discard the BUILD_LIST/BUILD_MAP placeholder the compiler pushed
	// before the source; the symbolic interpreter never materializes it,
	// building a lazy SELECT/PROJECT tree instead.
	if _, err := pop(gIdx); err != nil {
		return nil, 0, err
	}

	forIdx := gIdx + 1
	storeIdx := gIdx + 2
	if forIdx >= end || prog.Instrs[forIdx].Op != bytecode.FOR_ITER {
		return nil, 0, errAt(diag.InterpUnsupportedControlFlow, gIdx, "GET_ITER not followed by FOR_ITER")
	}
	if storeIdx >= end || prog.Instrs[storeIdx].Op != bytecode.STORE_FAST {
		return nil, 0, errAt(diag.InterpUnsupportedControlFlow, gIdx, "FOR_ITER not followed by STORE_FAST")
	}
	loopEnd, ok := prog.Instrs[forIdx].Arg.(int)
	if !ok {
		return nil, 0, errAt(diag.InterpUnbalancedJump, forIdx, "malformed FOR_ITER target")
	}
	varName := prog.Locals[prog.Instrs[storeIdx].Arg.(int)]

	var guardRanges [][2]int
	cursor := storeIdx + 1
	var projEnd int
	var isDict bool
	for {
		j := cursor
		boundary := -1
		for j < loopEnd {
			ins := prog.Instrs[j]
			if ins.Op == bytecode.JUMP_IF_FALSE {
				if jt, ok := ins.Arg.(bytecode.JumpTarget); ok && jt.Pop && jt.Target == forIdx {
					boundary = j
					break
				}
			}
			if ins.Op == bytecode.LIST_APPEND || ins.Op == bytecode.MAP_ADD {
				isDict = ins.Op == bytecode.MAP_ADD
				boundary = j
				break
			}
			j++
		}
		if boundary == -1 {
			return nil, 0, errAt(diag.InterpUnsupportedControlFlow, gIdx, "comprehension body has no LIST_APPEND/MAP_ADD terminator")
		}
		if prog.Instrs[boundary].Op == bytecode.JUMP_IF_FALSE {
			guardRanges = append(guardRanges, [2]int{cursor, boundary})
			cursor = boundary + 1
			continue
		}
		projEnd = boundary
		break
	}

	jumpBackIdx := projEnd + 1
	if jumpBackIdx >= end || prog.Instrs[jumpBackIdx].Op != bytecode.JUMP {
		return nil, 0, errAt(diag.InterpUnsupportedControlFlow, gIdx, "comprehension body missing its back-edge JUMP")
	}

	innerLocals := copyExprMap(locals)
	innerLocals[varName] = qir.Identifier(varName)

	input := iterSrc
	for _, gr := range guardRanges {
		vals, err := ip.execRange(prog, gr[0], gr[1], copyExprMap(innerLocals), freeVars)
		if err != nil {
			return nil, 0, err
		}
		guardExpr, err := lastExpr(vals, gr[0])
		if err != nil {
			return nil, 0, err
		}
		input = qir.MustOperator(qir.OpSelect, input, qir.Lambda(varName, guardExpr))
	}

	var projLambda *qir.Expr
	if isDict {
		vals, err := ip.execRange(prog, cursor, projEnd, copyExprMap(innerLocals), freeVars)
		if err != nil {
			return nil, 0, err
		}
		if len(vals) < 2 {
			return nil, 0, errAt(diag.InterpStackUnderflow, cursor, "dict comprehension projection did not produce a key and a value")
		}
		keyExpr, ok1 := vals[len(vals)-2].(*qir.Expr)
		valExpr, ok2 := vals[len(vals)-1].(*qir.Expr)
		if !ok1 || !ok2 {
			return nil, 0, errAt(diag.InterpUnsupportedControlFlow, cursor, "dict comprehension projection is not a value pair")
		}
		projLambda = qir.Lambda(varName, qir.TupleCons(keyExpr, valExpr, qir.TupleNil()))
	} else {
		vals, err := ip.execRange(prog, cursor, projEnd, copyExprMap(innerLocals), freeVars)
		if err != nil {
			return nil, 0, err
		}
		eltExpr, err := lastExpr(vals, cursor)
		if err != nil {
			return nil, 0, err
		}
		projLambda = qir.Lambda(varName, eltExpr)
	}

	result := qir.MustOperator(qir.OpProject, input, projLambda)
	return result, loopEnd, nil
}
