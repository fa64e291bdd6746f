package bytecode

import "github.com/liautaud/boldr/internal/qir"

// Instr is one instruction in a Program. Offset is simplified relative to a
// real bytecode format: rather than a true byte offset into an encoded
// instruction stream, it is the instruction's own index within Instrs. That
// is enough to serve as the monotonically increasing jump-target key §4.2
// requires, and it is what every Arg that names a jump target also holds.
type Instr struct {
	Op     Opcode
	Arg    interface{}
	Offset int
}

// Program is one compiled function: a top-level lambda/def, or a
// comprehension body synthesized by the compiler to model MAKE_FUNCTION.
type Program struct {
	Instrs   []Instr
	Consts   []qir.Scalar
	Locals   []string
	Params   []string
	FreeVars []string
}

func (p *Program) addConst(s qir.Scalar) int {
	p.Consts = append(p.Consts, s)
	return len(p.Consts) - 1
}

func (p *Program) localSlot(name string) int {
	for i, n := range p.Locals {
		if n == name {
			return i
		}
	}
	p.Locals = append(p.Locals, name)
	return len(p.Locals) - 1
}

func (p *Program) emit(op Opcode, arg interface{}) int {
	idx := len(p.Instrs)
	p.Instrs = append(p.Instrs, Instr{Op: op, Arg: arg, Offset: idx})
	return idx
}

// patchTarget overwrites a previously emitted jump's target once the real
// destination index is known, mirroring the teacher's codegen backpatching
// of forward jumps.
func (p *Program) patchTarget(instrIdx, target int) {
	if jt, ok := p.Instrs[instrIdx].Arg.(JumpTarget); ok {
		jt.Target = target
		p.Instrs[instrIdx].Arg = jt
		return
	}
	p.Instrs[instrIdx].Arg = target
}
