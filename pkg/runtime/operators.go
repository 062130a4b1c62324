package runtime

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/types"
)

var operatorNames = map[ast.BinaryOperator]string{
	ast.OpPlus:         "addition",
	ast.OpMinus:        "subtraction",
	ast.OpMultiply:     "multiplication",
	ast.OpDivide:       "division",
	ast.OpModulo:       "modulo",
	ast.OpPower:        "exponentiation",
	ast.OpGreater:      "comparison >",
	ast.OpLess:         "comparison <",
	ast.OpGreaterEqual: "comparison >=",
	ast.OpLessEqual:    "comparison <=",
	ast.OpEqual:        "equality",
	ast.OpNotEqual:     "inequality",
}

// Binary applies an arithmetic or comparison operator. Logical operators are
// evaluated by the interpreter since they short-circuit.
func Binary(op ast.BinaryOperator, left, right Value, line int) (Value, error) {
	switch op {
	case ast.OpPlus:
		return Plus(left, right, line)
	case ast.OpMinus:
		return Minus(left, right, line)
	case ast.OpMultiply:
		return Times(left, right, line)
	case ast.OpDivide:
		return Divide(left, right, line)
	case ast.OpModulo:
		return Modulo(left, right, line)
	case ast.OpPower:
		return Pow(left, right, line)
	case ast.OpGreater:
		return GreaterThan(left, right, line)
	case ast.OpLess:
		return LessThan(left, right, line)
	case ast.OpGreaterEqual:
		return GreaterOrEqual(left, right, line)
	case ast.OpLessEqual:
		return LessOrEqual(left, right, line)
	case ast.OpEqual:
		return Equal(left, right, line)
	case ast.OpNotEqual:
		return NotEqual(left, right, line)
	default:
		return nil, Errorf(Internal, line, "unsupported binary operator %s", op)
	}
}

func invalidOperands(op ast.BinaryOperator, left, right Value, line int) *Error {
	return Errorf(InvalidOperator, line, "Invalid operands for %s: %s and %s", operatorNames[op], describe(left), describe(right))
}

func describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.DataType().String()
}

func divisionByZero(line int) *Error {
	return Errorf(InvalidOperator, line, "Division by zero")
}

func runeLen(s string) int64 {
	return int64(utf8.RuneCountInString(s))
}

//-----------------------------------------------------------------------------
// Arithmetic
//-----------------------------------------------------------------------------

// Plus implements `+` for numbers, string concatenation and array append.
func Plus(left, right Value, line int) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return IntegerValue{Val: l.Val + r.Val}, nil
		case FloatValue:
			return FloatValue{Val: float64(l.Val) + r.Val}, nil
		case StringValue:
			return StringValue{Val: strconv.FormatInt(l.Val, 10) + r.Val}, nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return FloatValue{Val: l.Val + float64(r.Val)}, nil
		case FloatValue:
			return FloatValue{Val: l.Val + r.Val}, nil
		case StringValue:
			return StringValue{Val: FormatFloat(l.Val) + r.Val}, nil
		}
	case StringValue:
		switch right.(type) {
		case IntegerValue, FloatValue, StringValue, BooleanValue:
			return StringValue{Val: l.Val + ToString(right)}, nil
		}
	case *ArrayValue:
		if right == nil {
			break
		}
		if !types.Equal(right.DataType(), l.Type.Element) {
			return nil, Errorf(TypeMismatch, line, "Cannot append value of type %s to an array of type %s", right.DataType(), l.Type.Element)
		}
		l.Items = append(l.Items, right)
		return l, nil
	}
	return nil, invalidOperands(ast.OpPlus, left, right, line)
}

// Minus implements `-` for numbers and removal of an array element by index.
func Minus(left, right Value, line int) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return IntegerValue{Val: l.Val - r.Val}, nil
		case FloatValue:
			return FloatValue{Val: float64(l.Val) - r.Val}, nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return FloatValue{Val: l.Val - float64(r.Val)}, nil
		case FloatValue:
			return FloatValue{Val: l.Val - r.Val}, nil
		}
	case *ArrayValue:
		if r, ok := right.(IntegerValue); ok {
			size := int64(len(l.Items))
			if r.Val < 0 || r.Val >= size {
				return nil, Errorf(Bounds, line, "Cannot remove index %d of array of size %d: Out of bounds", r.Val, size)
			}
			l.Items = append(l.Items[:r.Val], l.Items[r.Val+1:]...)
			return l, nil
		}
	}
	return nil, invalidOperands(ast.OpMinus, left, right, line)
}

// Times implements `*` for numbers and string or array repetition.
func Times(left, right Value, line int) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return IntegerValue{Val: l.Val * r.Val}, nil
		case FloatValue:
			return FloatValue{Val: float64(l.Val) * r.Val}, nil
		case StringValue:
			return repeatString(r.Val, l.Val, line)
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return FloatValue{Val: l.Val * float64(r.Val)}, nil
		case FloatValue:
			return FloatValue{Val: l.Val * r.Val}, nil
		}
	case StringValue:
		if r, ok := right.(IntegerValue); ok {
			return repeatString(l.Val, r.Val, line)
		}
	case *ArrayValue:
		if r, ok := right.(IntegerValue); ok {
			return repeatArray(l, r.Val, line)
		}
	}
	return nil, invalidOperands(ast.OpMultiply, left, right, line)
}

// maxRepeatLen caps the byte length of a repeated string and the element
// count of a repeated array.
const maxRepeatLen = 1 << 28

func repeatTooLarge(size, n int64) bool {
	return n > 0 && size > maxRepeatLen/n
}

func repeatString(s string, n int64, line int) (Value, error) {
	if n < 0 {
		return nil, Errorf(InvalidOperator, line, "Cannot repeat a string a negative number of times: %d", n)
	}
	if repeatTooLarge(int64(len(s)), n) {
		return nil, Errorf(InvalidOperator, line, "Repeat result too large")
	}
	if s == "" {
		return StringValue{}, nil
	}
	return StringValue{Val: strings.Repeat(s, int(n))}, nil
}

func repeatArray(arr *ArrayValue, n int64, line int) (Value, error) {
	if n < 0 {
		return nil, Errorf(InvalidOperator, line, "Cannot repeat an array a negative number of times: %d", n)
	}
	if n == 0 {
		arr.Items = arr.Items[:0]
		return arr, nil
	}
	if repeatTooLarge(int64(len(arr.Items)), n) {
		return nil, Errorf(InvalidOperator, line, "Repeat result too large")
	}
	if len(arr.Items) == 0 {
		return arr, nil
	}
	contents := append([]Value(nil), arr.Items...)
	for i := int64(1); i < n; i++ {
		arr.Items = append(arr.Items, contents...)
	}
	return arr, nil
}

// Divide implements `/`; integer division truncates toward zero.
func Divide(left, right Value, line int) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			if r.Val == 0 {
				return nil, divisionByZero(line)
			}
			return IntegerValue{Val: l.Val / r.Val}, nil
		case FloatValue:
			return FloatValue{Val: float64(l.Val) / r.Val}, nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return FloatValue{Val: l.Val / float64(r.Val)}, nil
		case FloatValue:
			return FloatValue{Val: l.Val / r.Val}, nil
		}
	}
	return nil, invalidOperands(ast.OpDivide, left, right, line)
}

// Modulo implements `%`.
func Modulo(left, right Value, line int) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			if r.Val == 0 {
				return nil, divisionByZero(line)
			}
			return IntegerValue{Val: l.Val % r.Val}, nil
		case FloatValue:
			return FloatValue{Val: math.Mod(float64(l.Val), r.Val)}, nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return FloatValue{Val: math.Mod(l.Val, float64(r.Val))}, nil
		case FloatValue:
			return FloatValue{Val: math.Mod(l.Val, r.Val)}, nil
		}
	}
	return nil, invalidOperands(ast.OpModulo, left, right, line)
}

// Pow implements `^`. Integer results that overflow raise InvalidOperator.
func Pow(left, right Value, line int) (Value, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return integerPow(l.Val, r.Val, line)
		case FloatValue:
			return FloatValue{Val: math.Pow(float64(l.Val), r.Val)}, nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return FloatValue{Val: math.Pow(l.Val, float64(r.Val))}, nil
		case FloatValue:
			return FloatValue{Val: math.Pow(l.Val, r.Val)}, nil
		}
	}
	return nil, invalidOperands(ast.OpPower, left, right, line)
}

func integerPow(base, exp int64, line int) (Value, error) {
	if exp < 0 {
		if base == 0 {
			return nil, divisionByZero(line)
		}
		return IntegerValue{Val: int64(math.Pow(float64(base), float64(exp)))}, nil
	}
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = multiplyChecked(result, base); !ok {
				return nil, powOverflow(line)
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = multiplyChecked(base, base); !ok {
				return nil, powOverflow(line)
			}
		}
	}
	return IntegerValue{Val: result}, nil
}

func powOverflow(line int) *Error {
	return Errorf(InvalidOperator, line, "Integer overflow in exponentiation")
}

func multiplyChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}

// Negate implements unary minus.
func Negate(operand Value, line int) (Value, error) {
	switch v := operand.(type) {
	case IntegerValue:
		return IntegerValue{Val: -v.Val}, nil
	case FloatValue:
		return FloatValue{Val: -v.Val}, nil
	}
	return nil, Errorf(InvalidOperator, line, "Invalid operand for negation: %s", describe(operand))
}

//-----------------------------------------------------------------------------
// Comparisons
//-----------------------------------------------------------------------------

// ordering is the result of comparing two operands; unordered covers NaN.
type ordering int

const (
	orderLess ordering = iota
	orderEqual
	orderGreater
	unordered
)

func compareInts(a, b int64) ordering {
	switch {
	case a < b:
		return orderLess
	case a > b:
		return orderGreater
	default:
		return orderEqual
	}
}

func compareFloats(a, b float64) ordering {
	switch {
	case a < b:
		return orderLess
	case a > b:
		return orderGreater
	case a == b:
		return orderEqual
	default:
		return unordered
	}
}

func order(op ast.BinaryOperator, left, right Value, line int) (ordering, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return compareInts(l.Val, r.Val), nil
		case FloatValue:
			return compareFloats(float64(l.Val), r.Val), nil
		case StringValue:
			return compareInts(l.Val, runeLen(r.Val)), nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return compareFloats(l.Val, float64(r.Val)), nil
		case FloatValue:
			return compareFloats(l.Val, r.Val), nil
		case StringValue:
			return compareFloats(l.Val, float64(runeLen(r.Val))), nil
		}
	case StringValue:
		switch r := right.(type) {
		case IntegerValue:
			return compareInts(runeLen(l.Val), r.Val), nil
		case FloatValue:
			return compareFloats(float64(runeLen(l.Val)), r.Val), nil
		case StringValue:
			return compareInts(runeLen(l.Val), runeLen(r.Val)), nil
		}
	case *ArrayValue:
		switch r := right.(type) {
		case IntegerValue:
			return compareInts(int64(len(l.Items)), r.Val), nil
		case *ArrayValue:
			return compareInts(int64(len(l.Items)), int64(len(r.Items))), nil
		}
	}
	return unordered, invalidOperands(op, left, right, line)
}

// GreaterThan implements `>`.
func GreaterThan(left, right Value, line int) (Value, error) {
	o, err := order(ast.OpGreater, left, right, line)
	if err != nil {
		return nil, err
	}
	return BooleanValue{Val: o == orderGreater}, nil
}

// LessThan implements `<`.
func LessThan(left, right Value, line int) (Value, error) {
	o, err := order(ast.OpLess, left, right, line)
	if err != nil {
		return nil, err
	}
	return BooleanValue{Val: o == orderLess}, nil
}

// GreaterOrEqual implements `>=`.
func GreaterOrEqual(left, right Value, line int) (Value, error) {
	o, err := order(ast.OpGreaterEqual, left, right, line)
	if err != nil {
		return nil, err
	}
	return BooleanValue{Val: o == orderGreater || o == orderEqual}, nil
}

// LessOrEqual implements `<=`.
func LessOrEqual(left, right Value, line int) (Value, error) {
	o, err := order(ast.OpLessEqual, left, right, line)
	if err != nil {
		return nil, err
	}
	return BooleanValue{Val: o == orderLess || o == orderEqual}, nil
}

// truncatedEquals compares a float, truncated toward zero, with an integer.
func truncatedEquals(f float64, i int64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return false
	}
	return int64(t) == i
}

// Equal implements `==`.
func Equal(left, right Value, line int) (Value, error) {
	eq, err := equals(left, right, line)
	if err != nil {
		return nil, err
	}
	return BooleanValue{Val: eq}, nil
}

// NotEqual implements `!=` as the negation of Equal.
func NotEqual(left, right Value, line int) (Value, error) {
	eq, err := equals(left, right, line)
	if err != nil {
		return nil, Errorf(InvalidOperator, line, "Invalid operands for %s: %s and %s", operatorNames[ast.OpNotEqual], describe(left), describe(right))
	}
	return BooleanValue{Val: !eq}, nil
}

func equals(left, right Value, line int) (bool, error) {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return l.Val == r.Val, nil
		case FloatValue:
			return truncatedEquals(r.Val, l.Val), nil
		case StringValue:
			return l.Val == runeLen(r.Val), nil
		}
	case FloatValue:
		switch r := right.(type) {
		case IntegerValue:
			return truncatedEquals(l.Val, r.Val), nil
		case FloatValue:
			return l.Val == r.Val, nil
		case StringValue:
			return truncatedEquals(l.Val, runeLen(r.Val)), nil
		}
	case StringValue:
		switch r := right.(type) {
		case IntegerValue:
			return runeLen(l.Val) == r.Val, nil
		case FloatValue:
			return truncatedEquals(r.Val, runeLen(l.Val)), nil
		case StringValue:
			return l.Val == r.Val, nil
		}
	case BooleanValue:
		if r, ok := right.(BooleanValue); ok {
			return l.Val == r.Val, nil
		}
	case *ArrayValue:
		switch r := right.(type) {
		case IntegerValue:
			return int64(len(l.Items)) == r.Val, nil
		case *ArrayValue:
			if !types.Equal(l.Type, r.Type) || len(l.Items) != len(r.Items) {
				return false, nil
			}
			for i := range l.Items {
				eq, err := equals(l.Items[i], r.Items[i], line)
				if err != nil {
					return false, err
				}
				if !eq {
					return false, nil
				}
			}
			return true, nil
		}
	}
	return false, invalidOperands(ast.OpEqual, left, right, line)
}
