package native

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"avo/interpreter-go/pkg/runtime"
)

func TestRegisterRejectsDuplicateSignature(t *testing.T) {
	r := NewRegistry()
	fn := Func{Name: "f", Params: []Type{Int}, Impl: func([]any) (any, error) { return nil, nil }}
	if err := r.Register(fn); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	err := r.Register(fn)
	var nativeErr *Error
	if !errors.As(err, &nativeErr) {
		t.Fatalf("expected native error, got %v", err)
	}
	overload := Func{Name: "f", Params: []Type{Float}, Impl: fn.Impl}
	if err := r.Register(overload); err != nil {
		t.Fatalf("overload on a different type should be allowed: %v", err)
	}
}

func TestInvokeSelectsOverloadByArgumentTypes(t *testing.T) {
	r := Default(&bytes.Buffer{}, strings.NewReader(""))
	val, err := r.Invoke("abs", []runtime.Value{runtime.IntegerValue{Val: -3}}, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if iv, ok := val.(runtime.IntegerValue); !ok || iv.Val != 3 {
		t.Fatalf("expected integer 3, got %#v", val)
	}
	val, err = r.Invoke("abs", []runtime.Value{runtime.FloatValue{Val: -1.5}}, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if fv, ok := val.(runtime.FloatValue); !ok || fv.Val != 1.5 {
		t.Fatalf("expected float 1.5, got %#v", val)
	}
}

func TestInvokeErrors(t *testing.T) {
	r := Default(&bytes.Buffer{}, strings.NewReader(""))
	cases := []struct {
		name string
		fn   string
		args []runtime.Value
		kind runtime.ErrorKind
	}{
		{"unknown function", "nope", nil, runtime.UndefinedReference},
		{"no matching overload", "sqrt", []runtime.Value{runtime.StringValue{Val: "x"}}, runtime.UndefinedReference},
		{"unmappable argument", "println", []runtime.Value{runtime.VoidValue{}}, runtime.TypeMismatch},
		{"host failure", "parse_int", []runtime.Value{runtime.StringValue{Val: "abc"}}, runtime.Native},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Invoke(tc.fn, tc.args, 3)
			if !runtime.IsKind(err, tc.kind) {
				t.Fatalf("expected %s error, got %v", tc.kind, err)
			}
		})
	}
}

func TestUnmappableArgumentMessage(t *testing.T) {
	r := Default(&bytes.Buffer{}, strings.NewReader(""))
	_, err := r.Invoke("println", []runtime.Value{runtime.StringValue{Val: "a"}, runtime.VoidValue{}}, 2)
	if err == nil || !strings.Contains(err.Error(), `Parameter 2 in call to internal function "println" is not host-mappable`) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestConsoleFunctions(t *testing.T) {
	var out bytes.Buffer
	r := Default(&out, strings.NewReader("first\r\nsecond"))
	if _, err := r.Invoke("print", []runtime.Value{runtime.StringValue{Val: "a"}}, 1); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	val, err := r.Invoke("println", []runtime.Value{runtime.StringValue{Val: "b"}}, 1)
	if err != nil {
		t.Fatalf("println failed: %v", err)
	}
	if _, ok := val.(runtime.VoidValue); !ok {
		t.Fatalf("expected void result, got %#v", val)
	}
	if out.String() != "ab\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	for _, want := range []string{"first", "second", ""} {
		val, err := r.Invoke("read_line", nil, 1)
		if err != nil {
			t.Fatalf("read_line failed: %v", err)
		}
		if s := val.(runtime.StringValue).Val; s != want {
			t.Fatalf("read_line = %q, want %q", s, want)
		}
	}
}

func TestStringFunctions(t *testing.T) {
	r := Default(&bytes.Buffer{}, strings.NewReader(""))
	cases := []struct {
		fn   string
		args []runtime.Value
		want string
	}{
		{"upper", []runtime.Value{runtime.StringValue{Val: "héllo"}}, "HÉLLO"},
		{"lower", []runtime.Value{runtime.StringValue{Val: "HeLLo"}}, "hello"},
		{"title", []runtime.Value{runtime.StringValue{Val: "hello world"}}, "Hello World"},
		{"trim", []runtime.Value{runtime.StringValue{Val: "  x  "}}, "x"},
		{"to_string", []runtime.Value{runtime.FloatValue{Val: 2}}, "2.0"},
		{"to_string", []runtime.Value{runtime.BooleanValue{Val: true}}, "true"},
		{"to_string", []runtime.Value{runtime.IntegerValue{Val: -4}}, "-4"},
		{"contains", []runtime.Value{runtime.StringValue{Val: "avocado"}, runtime.StringValue{Val: "cad"}}, "true"},
		{"parse_int", []runtime.Value{runtime.StringValue{Val: " 42 "}}, "42"},
		{"parse_float", []runtime.Value{runtime.StringValue{Val: "2.5"}}, "2.5"},
		{"to_int", []runtime.Value{runtime.FloatValue{Val: -2.7}}, "-2"},
		{"to_float", []runtime.Value{runtime.IntegerValue{Val: 3}}, "3.0"},
	}
	for _, tc := range cases {
		val, err := r.Invoke(tc.fn, tc.args, 1)
		if err != nil {
			t.Fatalf("%s failed: %v", tc.fn, err)
		}
		if got := runtime.ToString(val); got != tc.want {
			t.Fatalf("%s = %q, want %q", tc.fn, got, tc.want)
		}
	}
}

func TestNamesAreSortedAndUnique(t *testing.T) {
	r := Default(&bytes.Buffer{}, strings.NewReader(""))
	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted and unique: %v", names)
		}
	}
	if len(names) == 0 || names[0] != "abs" {
		t.Fatalf("unexpected names %v", names)
	}
}
