// Package obrt is a concrete, reference implementation of the obvalue
// contract: tagged primitive values (int, float, bool, string, null), plus
// a list collection, closures, and exceptions, all implementing
// obvalue.Value. It is grounded on the teacher's quad-typed
// tunascript/syntax.Value (internal/tunascript/value.go and
// tunascript/syntax/value.go), generalized from TunaScript's three
// user-facing types (numbers, strings, bools) to the five primitives
// spec.md §2 item 1 requires (int, float, bool, string, null) plus
// collections and closures, and re-expressed against the obvalue.Value
// interface contract rather than as a single bespoke struct consumed
// directly by a hand-written AST.
package obrt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/obelix-lang/obelix/internal/obvalue"
	"github.com/obelix-lang/obelix/internal/obxerr"
)

// Kind is the dynamic type tag of a Primitive value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Primitive is a tagged scalar value: exactly one of its fields is
// meaningful, selected by kind, following the teacher's single-struct
// tagged-union shape rather than an interface-per-type hierarchy.
type Primitive struct {
	kind Kind
	i    int
	f    float64
	b    bool
	s    string
}

var Null = Primitive{kind: KindNull}

func Int(v int) Primitive       { return Primitive{kind: KindInt, i: v} }
func Float(v float64) Primitive { return Primitive{kind: KindFloat, f: v} }
func Bool(v bool) Primitive     { return Primitive{kind: KindBool, b: v} }
func String(v string) Primitive { return Primitive{kind: KindString, s: v} }

// FromToken converts literal token text to a Primitive according to its
// token code, per spec.md §4.1: "Literal token text is convertible to a
// value per its token code." codeName is the obtoken.Code's symbolic name
// (Integer, HexNumber, Float, SQuoted, DQuoted, BackQuoted, Identifier) so
// this package needn't import obtoken for a handful of string comparisons.
func FromToken(codeName, text string) (Primitive, error) {
	switch codeName {
	case "Integer":
		n, err := strconv.Atoi(text)
		if err != nil {
			return Null, obxerr.New(obxerr.TypeError, "malformed integer literal %q", text)
		}
		return Int(n), nil
	case "HexNumber":
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X"), 16, 64)
		if err != nil {
			return Null, obxerr.New(obxerr.TypeError, "malformed hex literal %q", text)
		}
		return Int(int(n)), nil
	case "Float":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Null, obxerr.New(obxerr.TypeError, "malformed float literal %q", text)
		}
		return Float(f), nil
	case "SQuoted", "DQuoted", "BackQuoted":
		return String(text), nil
	default:
		return String(text), nil
	}
}

func (p Primitive) Kind() Kind { return p.kind }

func (p Primitive) Type() string { return p.kind.String() }

func (p Primitive) Equal(other obvalue.Value) bool {
	o, ok := other.(Primitive)
	if !ok {
		return false
	}
	return p.kind == o.kind && p.i == o.i && p.f == o.f && p.b == o.b && p.s == o.s
}

func (p Primitive) Bool() (bool, error) {
	switch p.kind {
	case KindNull:
		return false, nil
	case KindBool:
		return p.b, nil
	case KindInt:
		return p.i != 0, nil
	case KindFloat:
		return p.f != 0, nil
	case KindString:
		return len(p.s) > 0, nil
	default:
		return false, obxerr.New(obxerr.TypeError, "value of kind %s has no boolean interpretation", p.kind)
	}
}

func (p Primitive) Int() int {
	switch p.kind {
	case KindInt:
		return p.i
	case KindFloat:
		return int(math.Round(p.f))
	case KindBool:
		if p.b {
			return 1
		}
		return 0
	case KindString:
		n, err := strconv.Atoi(p.s)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (p Primitive) Float() float64 {
	switch p.kind {
	case KindFloat:
		return p.f
	case KindInt:
		return float64(p.i)
	case KindBool:
		if p.b {
			return 1.0
		}
		return 0.0
	case KindString:
		f, err := strconv.ParseFloat(p.s, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

func (p Primitive) String() string {
	switch p.kind {
	case KindNull:
		return "null"
	case KindInt:
		return fmt.Sprintf("%d", p.i)
	case KindFloat:
		s := fmt.Sprintf("%.9f", p.f)
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
		return s
	case KindBool:
		return fmt.Sprintf("%t", p.b)
	case KindString:
		return p.s
	default:
		return ""
	}
}

func (p Primitive) Iter() (obvalue.Iterator, error) {
	if p.kind == KindString {
		return newStringIterator(p.s), nil
	}
	return nil, obxerr.New(obxerr.TypeError, "value of kind %s is not iterable", p.kind)
}

func (p Primitive) Call(method string, args []obvalue.Value) (obvalue.Value, error) {
	return nil, obxerr.New(obxerr.NotCallable, "value of kind %s is not callable", p.kind)
}

// Execute implements the infix/prefix operator and cast vocabulary the
// evaluator's Infix and Prefix nodes dispatch through (spec.md §4.3's
// "Infix... invokes left_value.execute(op_text, [right_value])"),
// generalized from the teacher's dedicated Add/Subtract/.../EqualTo methods
// on tunascript/syntax.Value into a single name-dispatched entry point.
func (p Primitive) Execute(opName string, args []obvalue.Value) (obvalue.Value, error) {
	switch opName {
	case "!", "not":
		b, err := p.Bool()
		if err != nil {
			return nil, err
		}
		return Bool(!b), nil
	case "-u": // unary minus
		if p.kind == KindFloat {
			return Float(-p.f), nil
		}
		return Int(-p.Int()), nil
	}

	if len(args) != 1 {
		return nil, obxerr.New(obxerr.TypeError, "operator %q expects exactly one operand, got %d", opName, len(args))
	}
	o, ok := args[0].(Primitive)
	if !ok {
		return nil, obxerr.New(obxerr.TypeError, "operator %q is not defined between %s and %s", opName, p.Type(), args[0].Type())
	}

	switch opName {
	case "+":
		if p.kind == KindString {
			return String(p.String() + o.String()), nil
		}
		if p.kind == KindFloat || o.kind == KindFloat {
			return Float(p.Float() + o.Float()), nil
		}
		return Int(p.Int() + o.Int()), nil
	case "-":
		if p.kind == KindFloat || o.kind == KindFloat {
			return Float(p.Float() - o.Float()), nil
		}
		return Int(p.Int() - o.Int()), nil
	case "*":
		if p.kind == KindString {
			var sb strings.Builder
			for i := 0; i < o.Int(); i++ {
				sb.WriteString(p.s)
			}
			return String(sb.String()), nil
		}
		if p.kind == KindFloat || o.kind == KindFloat {
			return Float(p.Float() * o.Float()), nil
		}
		return Int(p.Int() * o.Int()), nil
	case "/":
		if p.kind == KindFloat || o.kind == KindFloat {
			if o.Float() == 0 {
				return nil, obxerr.New(obxerr.Runtime, "division by zero")
			}
			return Float(p.Float() / o.Float()), nil
		}
		if o.Int() == 0 {
			return nil, obxerr.New(obxerr.Runtime, "division by zero")
		}
		if p.Int()%o.Int() != 0 {
			return Float(p.Float() / o.Float()), nil
		}
		return Int(p.Int() / o.Int()), nil
	case "%":
		if o.Int() == 0 {
			return nil, obxerr.New(obxerr.Runtime, "division by zero")
		}
		return Int(p.Int() % o.Int()), nil
	case "==":
		return Bool(p.equalTo(o)), nil
	case "!=":
		return Bool(!p.equalTo(o)), nil
	case "<":
		return Bool(p.lessThan(o)), nil
	case "<=":
		return Bool(p.lessThan(o) || p.equalTo(o)), nil
	case ">":
		return Bool(!p.lessThan(o) && !p.equalTo(o)), nil
	case ">=":
		return Bool(!p.lessThan(o)), nil
	case "&&", "and":
		lb, _ := p.Bool()
		rb, _ := o.Bool()
		return Bool(lb && rb), nil
	case "||", "or":
		lb, _ := p.Bool()
		rb, _ := o.Bool()
		return Bool(lb || rb), nil
	default:
		return nil, obxerr.New(obxerr.TypeError, "unknown operator %q", opName)
	}
}

func (p Primitive) equalTo(o Primitive) bool {
	switch p.kind {
	case KindString:
		return p.String() == o.String()
	case KindBool:
		pb, _ := p.Bool()
		ob, _ := o.Bool()
		return pb == ob
	case KindFloat:
		return p.Float() == o.Float()
	default:
		return p.Int() == o.Int()
	}
}

func (p Primitive) lessThan(o Primitive) bool {
	if p.kind == KindFloat || o.kind == KindFloat {
		return p.Float() < o.Float()
	}
	return p.Int() < o.Int()
}
