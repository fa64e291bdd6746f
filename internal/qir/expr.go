// Package qir implements the Query Intermediate Representation: the
// lambda-calculus-with-relational-operators tree produced by the translator
// in internal/interp and consumed by the evaluator client in
// internal/evalclient. The type family follows the teacher's HIR encoding
// (internal/hir.Expr in the donor repo): a Kind tag plus a Data payload
// behind a closed interface, rather than one struct per variant or a
// visitor hierarchy.
package qir

import "fmt"

// Kind enumerates the twelve variants of a QIR expression (§3.1). The
// numeric values match the wire schema's field numbers (§6.1) exactly, so
// int(Kind) can be used directly as the msgpack union discriminant.
type Kind uint8

const (
	KindValue Kind = iota + 1
	KindIdentifier
	KindLambda
	KindApplication
	KindConditional
	KindListConstr
	KindListDestr
	KindTupleConstr
	KindTupleDestr
	KindOperator
	KindBuiltin
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "Value"
	case KindIdentifier:
		return "Identifier"
	case KindLambda:
		return "Lambda"
	case KindApplication:
		return "Application"
	case KindConditional:
		return "Conditional"
	case KindListConstr:
		return "ListConstr"
	case KindListDestr:
		return "ListDestr"
	case KindTupleConstr:
		return "TupleConstr"
	case KindTupleDestr:
		return "TupleDestr"
	case KindOperator:
		return "Operator"
	case KindBuiltin:
		return "Builtin"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Expr is an immutable QIR expression node. Trees are acyclic and built
// bottom-up by a single translation pass (§3.2); there is no mutation API.
type Expr struct {
	Kind Kind
	Data Data
}

// Data is the closed interface implemented by each Kind's payload struct.
type Data interface {
	qirData()
}

// --- Value ---

type ValueData struct {
	Scalar Scalar
}

func (ValueData) qirData() {}

// Value constructs a Value leaf.
func Value(s Scalar) *Expr { return &Expr{Kind: KindValue, Data: ValueData{Scalar: s}} }

// --- Identifier ---

type IdentifierData struct {
	Name string
}

func (IdentifierData) qirData() {}

func Identifier(name string) *Expr {
	return &Expr{Kind: KindIdentifier, Data: IdentifierData{Name: name}}
}

// --- Lambda ---

type LambdaData struct {
	Param string
	Body  *Expr
}

func (LambdaData) qirData() {}

func Lambda(param string, body *Expr) *Expr {
	return &Expr{Kind: KindLambda, Data: LambdaData{Param: param, Body: body}}
}

// --- Application ---

type ApplicationData struct {
	Fn  *Expr
	Arg *Expr
}

func (ApplicationData) qirData() {}

func Application(fn, arg *Expr) *Expr {
	return &Expr{Kind: KindApplication, Data: ApplicationData{Fn: fn, Arg: arg}}
}

// ApplyN left-associates CALL k into k nested single-argument Applications
// (§9 "Currying of multi-argument calls").
func ApplyN(callee *Expr, args ...*Expr) *Expr {
	out := callee
	for _, a := range args {
		out = Application(out, a)
	}
	return out
}

// --- Conditional ---

type ConditionalData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (ConditionalData) qirData() {}

func Conditional(cond, then, els *Expr) *Expr {
	return &Expr{Kind: KindConditional, Data: ConditionalData{Cond: cond, Then: then, Else: els}}
}

// --- ListConstr ---

type ListConstrData struct {
	IsNil bool
	Head  *Expr
	Tail  *Expr
}

func (ListConstrData) qirData() {}

func ListNil() *Expr {
	return &Expr{Kind: KindListConstr, Data: ListConstrData{IsNil: true}}
}

func ListCons(head, tail *Expr) *Expr {
	return &Expr{Kind: KindListConstr, Data: ListConstrData{Head: head, Tail: tail}}
}

// ListFromSlice folds elements right-to-left into a ListConstr chain
// terminated by ListNil, matching BUILD_LIST's semantics (§4.3).
func ListFromSlice(elems []*Expr) *Expr {
	out := ListNil()
	for i := len(elems) - 1; i >= 0; i-- {
		out = ListCons(elems[i], out)
	}
	return out
}

// --- ListDestr ---

type ListDestrData struct {
	Scrutinee *Expr
	OnNil     *Expr
	OnCons    *Expr // curried function of (head, tail)
}

func (ListDestrData) qirData() {}

func ListDestr(scrutinee, onNil, onCons *Expr) *Expr {
	return &Expr{Kind: KindListDestr, Data: ListDestrData{Scrutinee: scrutinee, OnNil: onNil, OnCons: onCons}}
}

// --- TupleConstr ---

type TupleConstrData struct {
	IsNil bool
	Key   *Expr
	Value *Expr
	Tail  *Expr
}

func (TupleConstrData) qirData() {}

func TupleNil() *Expr {
	return &Expr{Kind: KindTupleConstr, Data: TupleConstrData{IsNil: true}}
}

func TupleCons(key, value, tail *Expr) *Expr {
	return &Expr{Kind: KindTupleConstr, Data: TupleConstrData{Key: key, Value: value, Tail: tail}}
}

// Field is a (name, value) pair used by TupleFromFields to build an ordered
// record (§3.2 "records are not a primitive but a cons-list of key/value
// pairs ordered by insertion").
type Field struct {
	Name  string
	Value *Expr
}

// TupleFromFields folds fields right-to-left into a TupleConstr chain,
// preserving declaration order (matches BUILD_MAP's semantics, §4.3).
func TupleFromFields(fields []Field) *Expr {
	out := TupleNil()
	for i := len(fields) - 1; i >= 0; i-- {
		out = TupleCons(Value(StringScalar(fields[i].Name)), fields[i].Value, out)
	}
	return out
}

// --- TupleDestr ---

type TupleDestrData struct {
	Scrutinee *Expr
	Key       *Expr
}

func (TupleDestrData) qirData() {}

func TupleDestr(scrutinee, key *Expr) *Expr {
	return &Expr{Kind: KindTupleDestr, Data: TupleDestrData{Scrutinee: scrutinee, Key: key}}
}

// --- Operator ---

// OperatorType enumerates the relational-algebra operators (§3.1, §6.1). The
// numeric values are the wire schema's enum codes: SCAN=1 ... JOIN=7.
type OperatorType uint8

const (
	OpScan OperatorType = iota + 1
	OpSelect
	OpProject
	OpSort
	OpLimit
	OpGroup
	OpJoin
)

func (o OperatorType) String() string {
	switch o {
	case OpScan:
		return "SCAN"
	case OpSelect:
		return "SELECT"
	case OpProject:
		return "PROJECT"
	case OpSort:
		return "SORT"
	case OpLimit:
		return "LIMIT"
	case OpGroup:
		return "GROUP"
	case OpJoin:
		return "JOIN"
	default:
		return "UNKNOWN"
	}
}

// Arity returns the number of operand slots OperatorType expects (§3.2).
func (o OperatorType) Arity() int {
	switch o {
	case OpScan:
		return 1
	case OpSelect, OpProject, OpSort, OpLimit, OpGroup:
		return 2
	case OpJoin:
		return 3
	default:
		return 0
	}
}

type OperatorData struct {
	Op       OperatorType
	Operands [3]*Expr // only the first Op.Arity() slots are populated
}

func (OperatorData) qirData() {}

// NewOperator validates operand arity against §3.2 before constructing the
// node, satisfying §4.1's requirement that IR constructors guarantee the
// invariant rather than leaving it to callers.
func NewOperator(op OperatorType, operands ...*Expr) (*Expr, error) {
	want := op.Arity()
	if want == 0 {
		return nil, fmt.Errorf("qir: unknown operator type %d", op)
	}
	if len(operands) != want {
		return nil, fmt.Errorf("qir: %s expects %d operand(s), got %d", op, want, len(operands))
	}
	var data OperatorData
	data.Op = op
	copy(data.Operands[:], operands)
	return &Expr{Kind: KindOperator, Data: data}, nil
}

// MustOperator panics on an arity mismatch; reserved for call sites where
// the arity is already known to be correct (e.g. hardcoded SCAN/SELECT/
// PROJECT emission inside internal/interp).
func MustOperator(op OperatorType, operands ...*Expr) *Expr {
	e, err := NewOperator(op, operands...)
	if err != nil {
		panic(err)
	}
	return e
}

// --- Builtin ---

type BuiltinData struct {
	Module string
	Symbol string
}

func (BuiltinData) qirData() {}

func Builtin(module, symbol string) *Expr {
	return &Expr{Kind: KindBuiltin, Data: BuiltinData{Module: module, Symbol: symbol}}
}

// --- Reference ---

type ReferenceData struct {
	Source string
	Field  string
}

func (ReferenceData) qirData() {}

func Reference(source, field string) *Expr {
	return &Expr{Kind: KindReference, Data: ReferenceData{Source: source, Field: field}}
}
