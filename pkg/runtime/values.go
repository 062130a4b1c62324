package runtime

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"avo/interpreter-go/pkg/types"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindBoolean
	KindVoid
	KindLambda
	KindArray
	KindInstance
	KindNamespace
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindVoid:
		return "void"
	case KindLambda:
		return "lambda"
	case KindArray:
		return "array"
	case KindInstance:
		return "instance"
	case KindNamespace:
		return "namespace"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
	DataType() types.DataType
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind               { return KindInteger }
func (v IntegerValue) DataType() types.DataType { return types.Integer }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind               { return KindFloat }
func (v FloatValue) DataType() types.DataType { return types.Float }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind               { return KindString }
func (v StringValue) DataType() types.DataType { return types.String }

type BooleanValue struct {
	Val bool
}

func (v BooleanValue) Kind() Kind               { return KindBoolean }
func (v BooleanValue) DataType() types.DataType { return types.Boolean }

type VoidValue struct{}

func (VoidValue) Kind() Kind               { return KindVoid }
func (VoidValue) DataType() types.DataType { return types.Void }

//-----------------------------------------------------------------------------
// Functions, arrays, records, namespaces
//-----------------------------------------------------------------------------

// LambdaValue makes a function symbol callable and passable as data.
type LambdaValue struct {
	Function *Function
}

func (v LambdaValue) Kind() Kind { return KindLambda }
func (v LambdaValue) DataType() types.DataType {
	return v.Function.Type()
}

// ArrayValue is shared by reference; its operators mutate Items in place.
type ArrayValue struct {
	Type  types.Array
	Items []Value
}

func NewArray(element types.DataType, items []Value) *ArrayValue {
	return &ArrayValue{Type: types.ArrayOf(element), Items: items}
}

func (v *ArrayValue) Kind() Kind               { return KindArray }
func (v *ArrayValue) DataType() types.DataType { return v.Type }

// InstanceValue is a record instance with one entry per declared field.
type InstanceValue struct {
	Type   *RecordType
	Fields map[string]Value
}

func (v *InstanceValue) Kind() Kind { return KindInstance }
func (v *InstanceValue) DataType() types.DataType {
	return types.Record{Name: v.Type.Name}
}

// NamespaceValue exposes another module's root scope.
type NamespaceValue struct {
	Namespace *Namespace
}

func (v NamespaceValue) Kind() Kind               { return KindNamespace }
func (v NamespaceValue) DataType() types.DataType { return types.Namespace }

// DefaultValue returns the zero value used for declarations without an
// initializer. The boolean result is false for types that must be assigned.
func DefaultValue(dt types.DataType) (Value, bool) {
	switch t := dt.(type) {
	case types.Array:
		return &ArrayValue{Type: t}, true
	}
	switch dt.Tag() {
	case types.TagInteger:
		return IntegerValue{Val: 0}, true
	case types.TagFloat:
		return FloatValue{Val: 0}, true
	case types.TagString:
		return StringValue{Val: ""}, true
	case types.TagBoolean:
		return BooleanValue{Val: false}, true
	default:
		return nil, false
	}
}

// FormatFloat renders floats the way Avo prints them: integral values keep a
// trailing ".0".
func FormatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	format := byte('f')
	if abs := math.Abs(f); abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		format = 'g'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ToString returns the text form used by concatenation and printing.
func ToString(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		return FormatFloat(val.Val)
	case StringValue:
		return val.Val
	case BooleanValue:
		if val.Val {
			return "true"
		}
		return "false"
	case VoidValue:
		return "void"
	case LambdaValue:
		return fmt.Sprintf("<fun %s>", val.Function.DisplayName())
	case *ArrayValue:
		parts := make([]string, len(val.Items))
		for i, item := range val.Items {
			parts[i] = Inspect(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *InstanceValue:
		names := make([]string, 0, len(val.Fields))
		if val.Type != nil {
			for _, f := range val.Type.Fields {
				names = append(names, f.Name)
			}
		} else {
			for name := range val.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
		}
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s = %s", name, Inspect(val.Fields[name])))
		}
		typeName := "<record>"
		if val.Type != nil {
			typeName = val.Type.Name
		}
		return fmt.Sprintf("%s { %s }", typeName, strings.Join(parts, ", "))
	case NamespaceValue:
		return fmt.Sprintf("<namespace %s>", val.Namespace.Name)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

// Inspect is ToString with strings quoted, for nested and REPL display.
func Inspect(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(s.Val)
	}
	return ToString(v)
}
