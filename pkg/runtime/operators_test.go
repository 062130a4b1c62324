package runtime

import (
	"math"
	"testing"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/types"
)

func mustBinary(t *testing.T, op ast.BinaryOperator, l, r Value) Value {
	t.Helper()
	v, err := Binary(op, l, r, 1)
	if err != nil {
		t.Fatalf("%s %s %s: unexpected error %v", Inspect(l), op, Inspect(r), err)
	}
	return v
}

func TestArithmeticByOperandKinds(t *testing.T) {
	cases := []struct {
		op    ast.BinaryOperator
		left  Value
		right Value
		want  string
	}{
		{ast.OpPlus, IntegerValue{Val: 2}, IntegerValue{Val: 3}, "5"},
		{ast.OpPlus, IntegerValue{Val: 2}, FloatValue{Val: 0.5}, "2.5"},
		{ast.OpPlus, IntegerValue{Val: 2}, StringValue{Val: "x"}, "2x"},
		{ast.OpPlus, FloatValue{Val: 1.5}, StringValue{Val: "x"}, "1.5x"},
		{ast.OpPlus, StringValue{Val: "a"}, BooleanValue{Val: true}, "atrue"},
		{ast.OpPlus, StringValue{Val: "a"}, FloatValue{Val: 2}, "a2.0"},
		{ast.OpMinus, IntegerValue{Val: 2}, IntegerValue{Val: 5}, "-3"},
		{ast.OpMultiply, FloatValue{Val: 1.5}, FloatValue{Val: 2}, "3.0"},
		{ast.OpMultiply, StringValue{Val: "ab"}, IntegerValue{Val: 3}, "ababab"},
		{ast.OpMultiply, IntegerValue{Val: 3}, StringValue{Val: "ab"}, "ababab"},
		{ast.OpDivide, IntegerValue{Val: -7}, IntegerValue{Val: 2}, "-3"},
		{ast.OpDivide, FloatValue{Val: 1}, IntegerValue{Val: 0}, "Infinity"},
		{ast.OpModulo, IntegerValue{Val: 7}, IntegerValue{Val: 3}, "1"},
		{ast.OpModulo, FloatValue{Val: 7.5}, IntegerValue{Val: 2}, "1.5"},
		{ast.OpPower, IntegerValue{Val: 2}, IntegerValue{Val: 10}, "1024"},
		{ast.OpPower, IntegerValue{Val: 2}, IntegerValue{Val: -1}, "0"},
		{ast.OpPower, IntegerValue{Val: -1}, IntegerValue{Val: -3}, "-1"},
		{ast.OpPower, IntegerValue{Val: 3}, IntegerValue{Val: 0}, "1"},
		{ast.OpPower, FloatValue{Val: 2}, IntegerValue{Val: 2}, "4.0"},
	}
	for _, tc := range cases {
		got := ToString(mustBinary(t, tc.op, tc.left, tc.right))
		if got != tc.want {
			t.Fatalf("%s %s %s = %s, want %s", Inspect(tc.left), tc.op, Inspect(tc.right), got, tc.want)
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	cases := []struct {
		op    ast.BinaryOperator
		left  Value
		right Value
		kind  ErrorKind
	}{
		{ast.OpDivide, IntegerValue{Val: 1}, IntegerValue{Val: 0}, InvalidOperator},
		{ast.OpModulo, IntegerValue{Val: 1}, IntegerValue{Val: 0}, InvalidOperator},
		{ast.OpPower, IntegerValue{Val: 0}, IntegerValue{Val: -1}, InvalidOperator},
		{ast.OpPower, IntegerValue{Val: 10}, IntegerValue{Val: 40}, InvalidOperator},
		{ast.OpMinus, StringValue{Val: "a"}, StringValue{Val: "a"}, InvalidOperator},
		{ast.OpMultiply, StringValue{Val: "a"}, IntegerValue{Val: -1}, InvalidOperator},
		{ast.OpPlus, BooleanValue{Val: true}, IntegerValue{Val: 1}, InvalidOperator},
		{ast.OpPlus, VoidValue{}, VoidValue{}, InvalidOperator},
		{ast.OpGreater, BooleanValue{Val: true}, BooleanValue{Val: false}, InvalidOperator},
	}
	for _, tc := range cases {
		_, err := Binary(tc.op, tc.left, tc.right, 4)
		if err == nil {
			t.Fatalf("%s %s %s: expected error", Inspect(tc.left), tc.op, Inspect(tc.right))
		}
		if !IsKind(err, tc.kind) {
			t.Fatalf("%s %s %s: expected %s, got %v", Inspect(tc.left), tc.op, Inspect(tc.right), tc.kind, err)
		}
	}
}

func TestInvalidOperandsMessageNamesTypes(t *testing.T) {
	_, err := Plus(BooleanValue{Val: true}, IntegerValue{Val: 1}, 3)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "line 3: Invalid operands for addition: Boolean and Integer" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestIntegerPowOverflowBoundary(t *testing.T) {
	v, err := Pow(IntegerValue{Val: 2}, IntegerValue{Val: 62}, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if v.(IntegerValue).Val != 1<<62 {
		t.Fatalf("unexpected result %d", v.(IntegerValue).Val)
	}
	if _, err := Pow(IntegerValue{Val: 2}, IntegerValue{Val: 63}, 1); err == nil {
		t.Fatalf("expected overflow error")
	}
	v, err = Pow(IntegerValue{Val: -2}, IntegerValue{Val: 63}, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if v.(IntegerValue).Val != math.MinInt64 {
		t.Fatalf("unexpected result %d", v.(IntegerValue).Val)
	}
}

func TestRepeatResultTooLarge(t *testing.T) {
	_, err := Times(StringValue{Val: "ab"}, IntegerValue{Val: math.MaxInt64 / 2}, 3)
	if !IsKind(err, InvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
	if e, ok := err.(*Error); !ok || e.Message != "Repeat result too large" {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := Times(IntegerValue{Val: math.MaxInt64}, StringValue{Val: "x"}, 3); !IsKind(err, InvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}

	arr := NewArray(types.Integer, []Value{IntegerValue{Val: 1}, IntegerValue{Val: 2}})
	if _, err := Times(arr, IntegerValue{Val: math.MaxInt64}, 3); !IsKind(err, InvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
	if len(arr.Items) != 2 {
		t.Fatalf("array changed after failed repeat: %s", ToString(arr))
	}

	empty := NewArray(types.Integer, nil)
	if _, err := Times(empty, IntegerValue{Val: math.MaxInt64}, 3); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	v, err := Times(StringValue{Val: ""}, IntegerValue{Val: math.MaxInt64}, 3)
	if err != nil || v.(StringValue).Val != "" {
		t.Fatalf("unexpected result %v, %v", v, err)
	}
	v, err = Times(StringValue{Val: "ab"}, IntegerValue{Val: 3}, 3)
	if err != nil || v.(StringValue).Val != "ababab" {
		t.Fatalf("unexpected result %v, %v", v, err)
	}
}

func TestComparisons(t *testing.T) {
	cases := []struct {
		op    ast.BinaryOperator
		left  Value
		right Value
		want  bool
	}{
		{ast.OpGreater, IntegerValue{Val: 3}, FloatValue{Val: 2.5}, true},
		{ast.OpLess, IntegerValue{Val: 3}, StringValue{Val: "abcd"}, true},
		{ast.OpGreaterEqual, StringValue{Val: "abc"}, StringValue{Val: "xyz"}, true},
		{ast.OpLessEqual, FloatValue{Val: 2}, IntegerValue{Val: 1}, false},
		{ast.OpGreater, FloatValue{Val: math.NaN()}, IntegerValue{Val: 1}, false},
		{ast.OpLess, FloatValue{Val: math.NaN()}, IntegerValue{Val: 1}, false},
		{ast.OpEqual, IntegerValue{Val: 2}, FloatValue{Val: 2.9}, true},
		{ast.OpEqual, FloatValue{Val: -2.9}, IntegerValue{Val: -2}, true},
		{ast.OpEqual, StringValue{Val: "héllo"}, IntegerValue{Val: 5}, true},
		{ast.OpEqual, StringValue{Val: "a"}, StringValue{Val: "a"}, true},
		{ast.OpNotEqual, StringValue{Val: "a"}, StringValue{Val: "b"}, true},
		{ast.OpEqual, BooleanValue{Val: true}, BooleanValue{Val: true}, true},
		{ast.OpNotEqual, BooleanValue{Val: true}, BooleanValue{Val: false}, true},
	}
	for _, tc := range cases {
		got := mustBinary(t, tc.op, tc.left, tc.right)
		if got.(BooleanValue).Val != tc.want {
			t.Fatalf("%s %s %s = %v, want %v", Inspect(tc.left), tc.op, Inspect(tc.right), got, tc.want)
		}
	}
}

func TestNotEqualRaisesWhenEqualRaises(t *testing.T) {
	if _, err := NotEqual(VoidValue{}, IntegerValue{Val: 1}, 1); !IsKind(err, InvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
}

func TestArrayAppendMutatesInPlace(t *testing.T) {
	arr := NewArray(types.Integer, []Value{IntegerValue{Val: 1}})
	out, err := Plus(arr, IntegerValue{Val: 2}, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if out != Value(arr) {
		t.Fatalf("append should return the same array")
	}
	if len(arr.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(arr.Items))
	}
	_, err = Plus(arr, StringValue{Val: "x"}, 2)
	if !IsKind(err, TypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if err.Error() != "line 2: Cannot append value of type String to an array of type Integer" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestArrayRemoveAndRepeat(t *testing.T) {
	arr := NewArray(types.Integer, []Value{IntegerValue{Val: 1}, IntegerValue{Val: 2}, IntegerValue{Val: 3}})
	if _, err := Minus(arr, IntegerValue{Val: 1}, 1); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if ToString(arr) != "[1, 3]" {
		t.Fatalf("unexpected array %s", ToString(arr))
	}
	_, err := Minus(arr, IntegerValue{Val: 2}, 1)
	if !IsKind(err, Bounds) {
		t.Fatalf("expected bounds error, got %v", err)
	}
	if _, err := Times(arr, IntegerValue{Val: 3}, 1); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if ToString(arr) != "[1, 3, 1, 3, 1, 3]" {
		t.Fatalf("unexpected array %s", ToString(arr))
	}
	if _, err := Times(arr, IntegerValue{Val: 0}, 1); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(arr.Items) != 0 {
		t.Fatalf("expected cleared array, got %s", ToString(arr))
	}
	if _, err := Times(arr, IntegerValue{Val: -1}, 1); !IsKind(err, InvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
}

func TestArrayEquality(t *testing.T) {
	a := NewArray(types.Integer, []Value{IntegerValue{Val: 1}, IntegerValue{Val: 2}})
	b := NewArray(types.Integer, []Value{IntegerValue{Val: 1}, IntegerValue{Val: 2}})
	c := NewArray(types.String, []Value{StringValue{Val: "a"}, StringValue{Val: "b"}})
	if !mustBinary(t, ast.OpEqual, a, b).(BooleanValue).Val {
		t.Fatalf("expected element-wise equality")
	}
	if mustBinary(t, ast.OpEqual, a, c).(BooleanValue).Val {
		t.Fatalf("arrays of different element types are not equal")
	}
	if !mustBinary(t, ast.OpEqual, a, IntegerValue{Val: 2}).(BooleanValue).Val {
		t.Fatalf("expected size equality")
	}
	if !mustBinary(t, ast.OpGreater, a, IntegerValue{Val: 1}).(BooleanValue).Val {
		t.Fatalf("expected size ordering")
	}
}

func TestNegate(t *testing.T) {
	v, err := Negate(IntegerValue{Val: 4}, 1)
	if err != nil || v.(IntegerValue).Val != -4 {
		t.Fatalf("unexpected negate result %v %v", v, err)
	}
	v, err = Negate(FloatValue{Val: 1.5}, 1)
	if err != nil || v.(FloatValue).Val != -1.5 {
		t.Fatalf("unexpected negate result %v %v", v, err)
	}
	if _, err := Negate(StringValue{Val: "a"}, 1); !IsKind(err, InvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
}
