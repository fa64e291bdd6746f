// Package wire is the QIR wire contract (§6.1): it serializes a qir.Expr
// tree to the cross-language typed schema and parses it back. Field
// numbering is stable by construction — qir.Kind, qir.ScalarKind and
// qir.OperatorType already carry the wire schema's own numeric codes
// (1..12, 1..5, 1..7 respectively), so the encoder just writes that byte
// first in every msgpack array and the decoder dispatches on it, the same
// way the teacher's internal/driver.DiskCache streams a fixed schema
// through msgpack.NewEncoder/NewDecoder rather than hand-rolling a binary
// format.
package wire

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/liautaud/boldr/internal/qir"
)

// Marshal encodes e as a standalone msgpack document.
func Marshal(e *qir.Expr) ([]byte, error) {
	return msgpack.Marshal(wrap(e))
}

// Unmarshal parses a document produced by Marshal or Encode.
func Unmarshal(data []byte) (*qir.Expr, error) {
	var w exprWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w.e, nil
}

// Encode streams e to w, for the evalclient connection and the CLI's
// `qirc wire` subcommand.
func Encode(w io.Writer, e *qir.Expr) error {
	return msgpack.NewEncoder(w).Encode(wrap(e))
}

// Decode reads one Expr document from r.
func Decode(r io.Reader) (*qir.Expr, error) {
	var w exprWire
	if err := msgpack.NewDecoder(r).Decode(&w); err != nil {
		return nil, err
	}
	return w.e, nil
}

// EncodeWith and DecodeWith write/read one Expr document through an
// encoder/decoder the caller already owns, rather than wrapping the
// underlying stream fresh. internal/evalclient needs this: a msgpack.Decoder
// keeps its own read-ahead buffer, so constructing a new one mid-connection
// would silently drop whatever it had already buffered past the previous
// frame.
func EncodeWith(enc *msgpack.Encoder, e *qir.Expr) error {
	return enc.Encode(wrap(e))
}

func DecodeWith(dec *msgpack.Decoder) (*qir.Expr, error) {
	var w exprWire
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	return w.e, nil
}

// EncodeScalar/DecodeScalar expose the Value union on its own, mirroring
// original_source/qir/utils.py's encode/decode helpers. Only this package's
// tests call them; the translator itself never does.
func EncodeScalar(s qir.Scalar) ([]byte, error) {
	return msgpack.Marshal(wrapScalar(s))
}

func DecodeScalar(data []byte) (qir.Scalar, error) {
	var w scalarWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return qir.Scalar{}, err
	}
	return w.s, nil
}

// exprWire adapts *qir.Expr to msgpack.CustomEncoder/CustomDecoder. A nil
// Expr (an absent operator slot, or an absent list/tuple head/tail) encodes
// as msgpack nil rather than an empty array.
type exprWire struct{ e *qir.Expr }

func wrap(e *qir.Expr) *exprWire { return &exprWire{e} }

var (
	_ msgpack.CustomEncoder = (*exprWire)(nil)
	_ msgpack.CustomDecoder = (*exprWire)(nil)
)

func (w *exprWire) EncodeMsgpack(enc *msgpack.Encoder) error {
	if w == nil || w.e == nil {
		return enc.EncodeNil()
	}
	switch d := w.e.Data.(type) {
	case qir.ValueData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), wrapScalar(d.Scalar)})
	case qir.IdentifierData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), d.Name})
	case qir.LambdaData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), d.Param, wrap(d.Body)})
	case qir.ApplicationData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), wrap(d.Fn), wrap(d.Arg)})
	case qir.ConditionalData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), wrap(d.Cond), wrap(d.Then), wrap(d.Else)})
	case qir.ListConstrData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), d.IsNil, wrap(d.Head), wrap(d.Tail)})
	case qir.ListDestrData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), wrap(d.Scrutinee), wrap(d.OnNil), wrap(d.OnCons)})
	case qir.TupleConstrData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), d.IsNil, wrap(d.Key), wrap(d.Value), wrap(d.Tail)})
	case qir.TupleDestrData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), wrap(d.Scrutinee), wrap(d.Key)})
	case qir.OperatorData:
		n := d.Op.Arity()
		fields := make([]interface{}, 0, 2+n)
		fields = append(fields, uint8(w.e.Kind), uint8(d.Op))
		for i := 0; i < n; i++ {
			fields = append(fields, wrap(d.Operands[i]))
		}
		return enc.Encode(fields)
	case qir.BuiltinData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), d.Module, d.Symbol})
	case qir.ReferenceData:
		return enc.Encode([]interface{}{uint8(w.e.Kind), d.Source, d.Field})
	default:
		return fmt.Errorf("wire: unknown expression data %T", w.e.Data)
	}
}

func (w *exprWire) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n == -1 {
		w.e = nil
		return nil
	}
	kindRaw, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	switch qir.Kind(kindRaw) {
	case qir.KindValue:
		var sw scalarWire
		if err := dec.Decode(&sw); err != nil {
			return err
		}
		w.e = qir.Value(sw.s)
	case qir.KindIdentifier:
		name, err := dec.DecodeString()
		if err != nil {
			return err
		}
		w.e = qir.Identifier(name)
	case qir.KindLambda:
		param, err := dec.DecodeString()
		if err != nil {
			return err
		}
		var body exprWire
		if err := dec.Decode(&body); err != nil {
			return err
		}
		w.e = qir.Lambda(param, body.e)
	case qir.KindApplication:
		var fn, arg exprWire
		if err := dec.Decode(&fn); err != nil {
			return err
		}
		if err := dec.Decode(&arg); err != nil {
			return err
		}
		w.e = qir.Application(fn.e, arg.e)
	case qir.KindConditional:
		var cond, then, els exprWire
		if err := dec.Decode(&cond); err != nil {
			return err
		}
		if err := dec.Decode(&then); err != nil {
			return err
		}
		if err := dec.Decode(&els); err != nil {
			return err
		}
		w.e = qir.Conditional(cond.e, then.e, els.e)
	case qir.KindListConstr:
		isNil, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		var head, tail exprWire
		if err := dec.Decode(&head); err != nil {
			return err
		}
		if err := dec.Decode(&tail); err != nil {
			return err
		}
		if isNil {
			w.e = qir.ListNil()
		} else {
			w.e = qir.ListCons(head.e, tail.e)
		}
	case qir.KindListDestr:
		var scrut, onNil, onCons exprWire
		if err := dec.Decode(&scrut); err != nil {
			return err
		}
		if err := dec.Decode(&onNil); err != nil {
			return err
		}
		if err := dec.Decode(&onCons); err != nil {
			return err
		}
		w.e = qir.ListDestr(scrut.e, onNil.e, onCons.e)
	case qir.KindTupleConstr:
		isNil, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		var key, value, tail exprWire
		if err := dec.Decode(&key); err != nil {
			return err
		}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := dec.Decode(&tail); err != nil {
			return err
		}
		if isNil {
			w.e = qir.TupleNil()
		} else {
			w.e = qir.TupleCons(key.e, value.e, tail.e)
		}
	case qir.KindTupleDestr:
		var scrut, key exprWire
		if err := dec.Decode(&scrut); err != nil {
			return err
		}
		if err := dec.Decode(&key); err != nil {
			return err
		}
		w.e = qir.TupleDestr(scrut.e, key.e)
	case qir.KindOperator:
		opRaw, err := dec.DecodeUint8()
		if err != nil {
			return err
		}
		op := qir.OperatorType(opRaw)
		arity := n - 2
		operands := make([]*qir.Expr, arity)
		for i := 0; i < arity; i++ {
			var oe exprWire
			if err := dec.Decode(&oe); err != nil {
				return err
			}
			operands[i] = oe.e
		}
		expr, err := qir.NewOperator(op, operands...)
		if err != nil {
			return err
		}
		w.e = expr
	case qir.KindBuiltin:
		mod, err := dec.DecodeString()
		if err != nil {
			return err
		}
		sym, err := dec.DecodeString()
		if err != nil {
			return err
		}
		w.e = qir.Builtin(mod, sym)
	case qir.KindReference:
		src, err := dec.DecodeString()
		if err != nil {
			return err
		}
		field, err := dec.DecodeString()
		if err != nil {
			return err
		}
		w.e = qir.Reference(src, field)
	default:
		return fmt.Errorf("wire: unknown expression kind %d", kindRaw)
	}
	return nil
}

// scalarWire is exprWire's counterpart for the Value union (§6.1: "Value is
// a union over 5 cases numbered 1..5").
type scalarWire struct{ s qir.Scalar }

func wrapScalar(s qir.Scalar) *scalarWire { return &scalarWire{s} }

var (
	_ msgpack.CustomEncoder = (*scalarWire)(nil)
	_ msgpack.CustomDecoder = (*scalarWire)(nil)
)

func (w *scalarWire) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch w.s.Kind {
	case qir.ScalarNull:
		return enc.Encode([]interface{}{uint8(w.s.Kind)})
	case qir.ScalarNumber:
		return enc.Encode([]interface{}{uint8(w.s.Kind), w.s.Number})
	case qir.ScalarDouble:
		return enc.Encode([]interface{}{uint8(w.s.Kind), w.s.Double})
	case qir.ScalarString:
		return enc.Encode([]interface{}{uint8(w.s.Kind), w.s.Str})
	case qir.ScalarBool:
		return enc.Encode([]interface{}{uint8(w.s.Kind), w.s.Bool})
	default:
		return fmt.Errorf("wire: unknown scalar kind %d", w.s.Kind)
	}
}

func (w *scalarWire) DecodeMsgpack(dec *msgpack.Decoder) error {
	if _, err := dec.DecodeArrayLen(); err != nil {
		return err
	}
	kindRaw, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	switch qir.ScalarKind(kindRaw) {
	case qir.ScalarNull:
		w.s = qir.Null()
	case qir.ScalarNumber:
		v, err := dec.DecodeInt32()
		if err != nil {
			return err
		}
		w.s = qir.NumberScalar(int64(v))
	case qir.ScalarDouble:
		v, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		w.s = qir.DoubleScalar(v)
	case qir.ScalarString:
		v, err := dec.DecodeString()
		if err != nil {
			return err
		}
		w.s = qir.StringScalar(v)
	case qir.ScalarBool:
		v, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		w.s = qir.BoolScalar(v)
	default:
		return fmt.Errorf("wire: unknown scalar kind %d", kindRaw)
	}
	return nil
}
