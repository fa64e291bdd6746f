// Package hostast defines the abstract syntax tree for the host source
// language accepted by this translator (OQ-1 in SPEC_FULL.md). Go exposes
// no runtime bytecode for compiled functions, so rather than the dynamic
// host language spec.md assumes, callers hand the translator source text in
// this small expression-oriented dialect; internal/hostlex and
// internal/hostparse turn it into the tree defined here, and
// internal/bytecode compiles that tree into the normalized instruction set
// of spec.md §4.2.
//
// The grammar borrows the host language's expression forms (comparisons,
// arithmetic, attribute access, comprehensions, ternary) but uses explicit
// brace-delimited blocks instead of significant indentation, the way the
// teacher's own surge language does — an indentation-sensitive lexer is not
// needed for a single-expression-bodied DSL.
package hostast

import "github.com/liautaud/boldr/internal/source"

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
	Span() source.Span
}

type base struct {
	Sp source.Span
}

func (base) exprNode() {}
func (b base) Span() source.Span { return b.Sp }

type NumberLit struct {
	base
	Value int64
}

type FloatLit struct {
	base
	Value float64
}

type StringLit struct {
	base
	Value string
}

type BoolLit struct {
	base
	Value bool
}

type NoneLit struct {
	base
}

type Name struct {
	base
	Ident string
}

type Attr struct {
	base
	Value Expr
	Field string
}

type Unary struct {
	base
	Op string // "-" or "not"
	X  Expr
}

// Binary covers arithmetic (+ - * / % **), comparisons (< <= == != >= >)
// and the short-circuit logical operators (and, or).
type Binary struct {
	base
	Op   string
	X, Y Expr
}

type IfExp struct {
	base
	Cond, Then, Else Expr
}

type Call struct {
	base
	Fn   Expr
	Args []Expr
}

type ListLit struct {
	base
	Elems []Expr
}

type DictEntry struct {
	Key   Expr
	Value Expr
}

type DictLit struct {
	base
	Entries []DictEntry
}

type ListComp struct {
	base
	Elt  Expr
	Var  string
	Iter Expr
	Ifs  []Expr
}

type DictComp struct {
	base
	Key, Value Expr
	Var        string
	Iter       Expr
	Ifs        []Expr
}

type Lambda struct {
	base
	Params []string
	Body   Expr
}

// Constructors. base is unexported so callers outside this package (the
// parser) cannot build these literals directly; every node goes through one
// of these instead.

func NewNumberLit(sp source.Span, v int64) NumberLit     { return NumberLit{base{sp}, v} }
func NewFloatLit(sp source.Span, v float64) FloatLit     { return FloatLit{base{sp}, v} }
func NewStringLit(sp source.Span, v string) StringLit    { return StringLit{base{sp}, v} }
func NewBoolLit(sp source.Span, v bool) BoolLit          { return BoolLit{base{sp}, v} }
func NewNoneLit(sp source.Span) NoneLit                  { return NoneLit{base{sp}} }
func NewName(sp source.Span, ident string) Name          { return Name{base{sp}, ident} }

func NewAttr(sp source.Span, value Expr, field string) Attr {
	return Attr{base{sp}, value, field}
}

func NewUnary(sp source.Span, op string, x Expr) Unary { return Unary{base{sp}, op, x} }

func NewBinary(sp source.Span, op string, x, y Expr) Binary {
	return Binary{base{sp}, op, x, y}
}

func NewIfExp(sp source.Span, cond, then, els Expr) IfExp {
	return IfExp{base{sp}, cond, then, els}
}

func NewCall(sp source.Span, fn Expr, args []Expr) Call { return Call{base{sp}, fn, args} }

func NewListLit(sp source.Span, elems []Expr) ListLit { return ListLit{base{sp}, elems} }

func NewDictLit(sp source.Span, entries []DictEntry) DictLit {
	return DictLit{base{sp}, entries}
}

func NewListComp(sp source.Span, elt Expr, v string, iter Expr, ifs []Expr) ListComp {
	return ListComp{base{sp}, elt, v, iter, ifs}
}

func NewDictComp(sp source.Span, key, value Expr, v string, iter Expr, ifs []Expr) DictComp {
	return DictComp{base{sp}, key, value, v, iter, ifs}
}

func NewLambda(sp source.Span, params []string, body Expr) Lambda {
	return Lambda{base{sp}, params, body}
}

// Stmt is implemented by every statement node in a FuncDef's body.
type Stmt interface {
	stmtNode()
	Span() source.Span
}

type ReturnStmt struct {
	base
	Value Expr
}

type ExprStmt struct {
	base
	Value Expr
}

// TryStmt models a try/except block. It carries no QIR mapping: the
// bytecode compiler emits a single UNSUPPORTED instruction for it (§8
// end-to-end scenario 6).
type TryStmt struct {
	base
	Body       []Stmt
	ExceptBody []Stmt
}

func (ReturnStmt) stmtNode() {}
func (ExprStmt) stmtNode()   {}
func (TryStmt) stmtNode()    {}

func (s ReturnStmt) Span() source.Span { return s.Sp }
func (s ExprStmt) Span() source.Span   { return s.Sp }
func (s TryStmt) Span() source.Span    { return s.Sp }

func NewReturnStmt(sp source.Span, value Expr) ReturnStmt { return ReturnStmt{base{sp}, value} }
func NewExprStmt(sp source.Span, value Expr) ExprStmt     { return ExprStmt{base{sp}, value} }

func NewTryStmt(sp source.Span, body, exceptBody []Stmt) TryStmt {
	return TryStmt{base{sp}, body, exceptBody}
}

// FuncDef is a named, possibly multi-statement function definition, e.g.
// `def f(s): return [e.name for e in employees if e.salary < s]`.
type FuncDef struct {
	Sp     source.Span
	Name   string
	Params []string
	Body   []Stmt
}
