// Package pretty renders a QIR tree and a compiled bytecode.Program as
// column-aligned text for the `qirc translate`/`qirc repl` human output,
// grounded on the teacher's internal/hir.Printer (an indented tree dump)
// but using github.com/mattn/go-runewidth for display-width-aware column
// padding, since a captured string literal (e.g. from hostlex's NFC string
// interning) can contain multi-width runes that a naive len()-based pad
// would misalign.
package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/liautaud/boldr/internal/bytecode"
	"github.com/liautaud/boldr/internal/qir"
)

// labelWidth is the column every node's inline detail is padded to align
// under, wide enough for the longest QIR kind name ("Conditional").
const labelWidth = 14

// Tree renders e as an indented, column-aligned node listing.
func Tree(e *qir.Expr) string {
	var b strings.Builder
	writeNode(&b, e, 0, false)
	return b.String()
}

func writeNode(b *strings.Builder, e *qir.Expr, depth int, last bool) {
	b.WriteString(guide(depth, last))
	label, detail := describe(e)
	b.WriteString(padRight(label, labelWidth))
	b.WriteString(detail)
	b.WriteString("\n")
	if e == nil {
		return
	}
	children := qir.Children(e)
	for i, c := range children {
		writeNode(b, c, depth+1, i == len(children)-1)
	}
}

func guide(depth int, last bool) string {
	if depth == 0 {
		return ""
	}
	prefix := strings.Repeat("│  ", depth-1)
	if last {
		return prefix + "└─ "
	}
	return prefix + "├─ "
}

func describe(e *qir.Expr) (label, detail string) {
	if e == nil {
		return "<nil>", ""
	}
	switch d := e.Data.(type) {
	case qir.ValueData:
		return "Value", d.Scalar.String()
	case qir.IdentifierData:
		return "Identifier", strconv.Quote(d.Name)
	case qir.LambdaData:
		return "Lambda", strconv.Quote(d.Param)
	case qir.ApplicationData:
		return "Application", ""
	case qir.ConditionalData:
		return "Conditional", ""
	case qir.ListConstrData:
		if d.IsNil {
			return "ListConstr", "nil"
		}
		return "ListConstr", ""
	case qir.ListDestrData:
		return "ListDestr", ""
	case qir.TupleConstrData:
		if d.IsNil {
			return "TupleConstr", "nil"
		}
		return "TupleConstr", ""
	case qir.TupleDestrData:
		return "TupleDestr", ""
	case qir.OperatorData:
		return "Operator", d.Op.String()
	case qir.BuiltinData:
		return "Builtin", fmt.Sprintf("%s.%s", d.Module, d.Symbol)
	case qir.ReferenceData:
		return "Reference", fmt.Sprintf("%s.%s", d.Source, d.Field)
	default:
		return "<unknown>", ""
	}
}

// padRight pads s with spaces up to the given display width, using
// runewidth.StringWidth rather than len() or utf8.RuneCountInString so that
// wide (e.g. CJK) or zero-width runes in a captured identifier or string
// literal still line up the following column.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-w+1)
}

// Disassembly renders a compiled Program as a three-column instruction
// listing (offset, opcode, argument) preceded by its constant pool, for
// `qirc translate --disassemble`.
func Disassembly(prog *bytecode.Program) string {
	var b strings.Builder
	if len(prog.Consts) > 0 {
		b.WriteString("consts:\n")
		for i, c := range prog.Consts {
			fmt.Fprintf(&b, "  [%d] %s\n", i, c.String())
		}
	}
	opWidth := 0
	for _, in := range prog.Instrs {
		if w := runewidth.StringWidth(in.Op.String()); w > opWidth {
			opWidth = w
		}
	}
	for _, in := range prog.Instrs {
		fmt.Fprintf(&b, "%4d  %s%s\n", in.Offset, padRight(in.Op.String(), opWidth), argString(in.Arg))
	}
	return b.String()
}

func argString(arg interface{}) string {
	switch a := arg.(type) {
	case nil:
		return ""
	case int:
		return "  " + strconv.Itoa(a)
	case bytecode.JumpTarget:
		return fmt.Sprintf("  target=%d pop=%t", a.Target, a.Pop)
	case string:
		return "  " + strconv.Quote(a)
	default:
		return fmt.Sprintf("  %v", a)
	}
}
