package types

import "strings"

// Tag identifies the data type category.
type Tag int

const (
	TagInteger Tag = iota
	TagFloat
	TagString
	TagBoolean
	TagVoid
	TagInferred
	TagArray
	TagFunction
	TagRecord
	TagNamespace
)

func (t Tag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	case TagBoolean:
		return "boolean"
	case TagVoid:
		return "void"
	case TagInferred:
		return "inferred"
	case TagArray:
		return "array"
	case TagFunction:
		return "function"
	case TagRecord:
		return "record"
	case TagNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// DataType is a type descriptor. Equality is structural; use Equal.
type DataType interface {
	Tag() Tag
	String() string
	isDataType()
}

type primitive struct {
	tag  Tag
	name string
}

func (p primitive) Tag() Tag       { return p.tag }
func (p primitive) String() string { return p.name }
func (primitive) isDataType()      {}

var (
	Integer   DataType = primitive{TagInteger, "Integer"}
	Float     DataType = primitive{TagFloat, "Float"}
	String    DataType = primitive{TagString, "String"}
	Boolean   DataType = primitive{TagBoolean, "Boolean"}
	Void      DataType = primitive{TagVoid, "Void"}
	Inferred  DataType = primitive{TagInferred, "Inferred"}
	Namespace DataType = primitive{TagNamespace, "Namespace"}
)

// Array is the type of a homogeneous, growable array.
type Array struct {
	Element DataType
}

func (Array) Tag() Tag    { return TagArray }
func (Array) isDataType() {}
func (a Array) String() string {
	return "Array<" + a.Element.String() + ">"
}

// Function is the type of a lambda value.
type Function struct {
	Params  []DataType
	Returns DataType
}

func (Function) Tag() Tag    { return TagFunction }
func (Function) isDataType() {}
func (f Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "Lambda<(" + strings.Join(parts, ", ") + ") -> " + f.Returns.String() + ">"
}

// Record references a user-defined complex type by name.
type Record struct {
	Name string
}

func (Record) Tag() Tag         { return TagRecord }
func (Record) isDataType()      {}
func (r Record) String() string { return "Complex<" + r.Name + ">" }

// ArrayOf is shorthand for Array{Element: elem}.
func ArrayOf(elem DataType) Array {
	return Array{Element: elem}
}

// FunctionOf is shorthand for Function{Params: params, Returns: returns}.
func FunctionOf(returns DataType, params ...DataType) Function {
	return Function{Params: params, Returns: returns}
}

// Equal reports structural equality of two descriptors.
func Equal(a, b DataType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch at := a.(type) {
	case Array:
		return Equal(at.Element, b.(Array).Element)
	case Function:
		bt := b.(Function)
		if len(at.Params) != len(bt.Params) || !Equal(at.Returns, bt.Returns) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	case Record:
		return at.Name == b.(Record).Name
	default:
		return true
	}
}

// RecordNames collects every record name referenced by t, including through
// array elements and function signatures.
func RecordNames(t DataType) []string {
	var out []string
	var walk func(DataType)
	walk = func(t DataType) {
		switch tt := t.(type) {
		case Record:
			out = append(out, tt.Name)
		case Array:
			walk(tt.Element)
		case Function:
			for _, p := range tt.Params {
				walk(p)
			}
			walk(tt.Returns)
		}
	}
	walk(t)
	return out
}

// ContainsInferred reports whether the placeholder appears anywhere in t.
func ContainsInferred(t DataType) bool {
	switch tt := t.(type) {
	case Array:
		return ContainsInferred(tt.Element)
	case Function:
		for _, p := range tt.Params {
			if ContainsInferred(p) {
				return true
			}
		}
		return ContainsInferred(tt.Returns)
	case nil:
		return false
	default:
		return t.Tag() == TagInferred
	}
}
