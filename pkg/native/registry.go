package native

import (
	"fmt"
	"sort"
	"strings"

	"avo/interpreter-go/pkg/runtime"
)

// Type is a host type an Avo value can be mapped to.
type Type int

const (
	Int Type = iota
	Float
	String
	Bool
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("unknown_type_%d", int(t))
	}
}

// Impl receives arguments already mapped to int64, float64, string or bool.
// A nil result maps back to void.
type Impl func(args []any) (any, error)

// Func is a host function made available to internal calls.
type Func struct {
	Name   string
	Params []Type
	Impl   Impl
}

func (f Func) signature() string {
	return signature(f.Name, f.Params)
}

func signature(name string, params []Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// Error reports a registration conflict or a failure raised by a host function.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("internal function %q: %s", e.Name, e.Message)
}

// Registry resolves internal calls by name and argument types.
type Registry struct {
	funcs map[string][]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string][]Func)}
}

// Register adds fn. Registering the same name and parameter types twice fails.
func (r *Registry) Register(fn Func) error {
	if fn.Impl == nil {
		return &Error{Name: fn.Name, Message: "missing implementation"}
	}
	for _, existing := range r.funcs[fn.Name] {
		if sameTypes(existing.Params, fn.Params) {
			return &Error{Name: fn.Name, Message: fmt.Sprintf("%s is already registered", fn.signature())}
		}
	}
	r.funcs[fn.Name] = append(r.funcs[fn.Name], fn)
	return nil
}

// RegisterAll registers every function in order, stopping at the first conflict.
func (r *Registry) RegisterAll(fns []Func) error {
	for _, fn := range fns {
		if err := r.Register(fn); err != nil {
			return err
		}
	}
	return nil
}

// Names lists the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke maps args to host values, calls the matching function and maps the
// result back.
func (r *Registry) Invoke(name string, args []runtime.Value, line int) (runtime.Value, error) {
	hostArgs := make([]any, len(args))
	argTypes := make([]Type, len(args))
	for idx, arg := range args {
		t, v, ok := toHost(arg)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeMismatch, line, "Parameter %d in call to internal function %q is not host-mappable: %s", idx+1, name, describe(arg))
		}
		hostArgs[idx] = v
		argTypes[idx] = t
	}

	candidates, ok := r.funcs[name]
	if !ok {
		return nil, runtime.Errorf(runtime.UndefinedReference, line, "Could not find a definition for internal function %q", name)
	}
	var fn *Func
	for idx := range candidates {
		if sameTypes(candidates[idx].Params, argTypes) {
			fn = &candidates[idx]
			break
		}
	}
	if fn == nil {
		return nil, runtime.Errorf(runtime.UndefinedReference, line, "No definition of internal function %q accepts %s", name, signature(name, argTypes))
	}

	result, err := fn.Impl(hostArgs)
	if err != nil {
		cause := &Error{Name: name, Message: err.Error()}
		return nil, &runtime.Error{Kind: runtime.Native, Message: cause.Error(), Line: line, Cause: cause}
	}
	val, ok := fromHost(result)
	if !ok {
		return nil, runtime.Errorf(runtime.Internal, line, "Internal function %q returned an unsupported host value of type %T", name, result)
	}
	return val, nil
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func describe(v runtime.Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.DataType().String()
}

func toHost(v runtime.Value) (Type, any, bool) {
	switch val := v.(type) {
	case runtime.IntegerValue:
		return Int, val.Val, true
	case runtime.FloatValue:
		return Float, val.Val, true
	case runtime.StringValue:
		return String, val.Val, true
	case runtime.BooleanValue:
		return Bool, val.Val, true
	default:
		return 0, nil, false
	}
}

func fromHost(v any) (runtime.Value, bool) {
	switch val := v.(type) {
	case nil:
		return runtime.VoidValue{}, true
	case int64:
		return runtime.IntegerValue{Val: val}, true
	case int:
		return runtime.IntegerValue{Val: int64(val)}, true
	case float64:
		return runtime.FloatValue{Val: val}, true
	case string:
		return runtime.StringValue{Val: val}, true
	case bool:
		return runtime.BooleanValue{Val: val}, true
	default:
		return nil, false
	}
}
