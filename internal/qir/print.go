package qir

import (
	"fmt"
	"io"
	"strings"
)

// Printer dumps a QIR tree as an indented S-expression, in the teacher's
// Dump/DumpWithOptions style (internal/hir.Printer in the donor repo).
type Printer struct {
	w      io.Writer
	indent int
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes e to w as an indented S-expression.
func Dump(w io.Writer, e *Expr) error {
	return NewPrinter(w).Print(e)
}

// Sprint renders e to a string; convenient for tests and error messages.
func Sprint(e *Expr) string {
	var sb strings.Builder
	_ = Dump(&sb, e)
	return sb.String()
}

func (p *Printer) Print(e *Expr) error {
	return p.print(e)
}

func (p *Printer) print(e *Expr) error {
	if e == nil {
		return p.printf("<nil>\n")
	}
	switch d := e.Data.(type) {
	case ValueData:
		return p.printf("Value(%s)\n", d.Scalar)
	case IdentifierData:
		return p.printf("Identifier(%q)\n", d.Name)
	case LambdaData:
		if err := p.printf("Lambda(%q,\n", d.Param); err != nil {
			return err
		}
		return p.child(d.Body)
	case ApplicationData:
		if err := p.printf("Application(\n"); err != nil {
			return err
		}
		if err := p.child(d.Fn); err != nil {
			return err
		}
		return p.child(d.Arg)
	case ConditionalData:
		if err := p.printf("Conditional(\n"); err != nil {
			return err
		}
		if err := p.child(d.Cond); err != nil {
			return err
		}
		if err := p.child(d.Then); err != nil {
			return err
		}
		return p.child(d.Else)
	case ListConstrData:
		if d.IsNil {
			return p.printf("ListConstr(nil)\n")
		}
		if err := p.printf("ListConstr(\n"); err != nil {
			return err
		}
		if err := p.child(d.Head); err != nil {
			return err
		}
		return p.child(d.Tail)
	case ListDestrData:
		if err := p.printf("ListDestr(\n"); err != nil {
			return err
		}
		if err := p.child(d.Scrutinee); err != nil {
			return err
		}
		if err := p.child(d.OnNil); err != nil {
			return err
		}
		return p.child(d.OnCons)
	case TupleConstrData:
		if d.IsNil {
			return p.printf("TupleConstr(nil)\n")
		}
		if err := p.printf("TupleConstr(\n"); err != nil {
			return err
		}
		if err := p.child(d.Key); err != nil {
			return err
		}
		if err := p.child(d.Value); err != nil {
			return err
		}
		return p.child(d.Tail)
	case TupleDestrData:
		if err := p.printf("TupleDestr(\n"); err != nil {
			return err
		}
		if err := p.child(d.Scrutinee); err != nil {
			return err
		}
		return p.child(d.Key)
	case OperatorData:
		if err := p.printf("Operator(%s,\n", d.Op); err != nil {
			return err
		}
		for i := 0; i < d.Op.Arity(); i++ {
			if err := p.child(d.Operands[i]); err != nil {
				return err
			}
		}
		return nil
	case BuiltinData:
		return p.printf("Builtin(%q, %q)\n", d.Module, d.Symbol)
	case ReferenceData:
		return p.printf("Reference(%q, %q)\n", d.Source, d.Field)
	default:
		return p.printf("<unknown kind %s>\n", e.Kind)
	}
}

func (p *Printer) child(e *Expr) error {
	p.indent++
	err := p.print(e)
	p.indent--
	return err
}

func (p *Printer) printf(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
	return err
}
