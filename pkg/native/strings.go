package native

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"avo/interpreter-go/pkg/runtime"
)

func stringFunc(name string, fn func(string) string) Func {
	return Func{
		Name:   name,
		Params: []Type{String},
		Impl: func(args []any) (any, error) {
			return fn(args[0].(string)), nil
		},
	}
}

// Strings returns case mapping, trimming and conversion helpers.
func Strings() []Func {
	return []Func{
		stringFunc("upper", func(s string) string { return cases.Upper(language.Und).String(s) }),
		stringFunc("lower", func(s string) string { return cases.Lower(language.Und).String(s) }),
		stringFunc("title", func(s string) string { return cases.Title(language.Und).String(s) }),
		stringFunc("trim", strings.TrimSpace),
		{
			Name:   "contains",
			Params: []Type{String, String},
			Impl: func(args []any) (any, error) {
				return strings.Contains(args[0].(string), args[1].(string)), nil
			},
		},
		{
			Name:   "to_string",
			Params: []Type{Int},
			Impl: func(args []any) (any, error) {
				return strconv.FormatInt(args[0].(int64), 10), nil
			},
		},
		{
			Name:   "to_string",
			Params: []Type{Float},
			Impl: func(args []any) (any, error) {
				return runtime.FormatFloat(args[0].(float64)), nil
			},
		},
		{
			Name:   "to_string",
			Params: []Type{Bool},
			Impl: func(args []any) (any, error) {
				return strconv.FormatBool(args[0].(bool)), nil
			},
		},
		{
			Name:   "to_int",
			Params: []Type{Float},
			Impl: func(args []any) (any, error) {
				f := math.Trunc(args[0].(float64))
				if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
					return nil, fmt.Errorf("%s cannot be represented as an integer", runtime.FormatFloat(args[0].(float64)))
				}
				return int64(f), nil
			},
		},
		{
			Name:   "to_float",
			Params: []Type{Int},
			Impl: func(args []any) (any, error) {
				return float64(args[0].(int64)), nil
			},
		},
		{
			Name:   "parse_int",
			Params: []Type{String},
			Impl: func(args []any) (any, error) {
				n, err := strconv.ParseInt(strings.TrimSpace(args[0].(string)), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("cannot parse %q as an integer", args[0].(string))
				}
				return n, nil
			},
		},
		{
			Name:   "parse_float",
			Params: []Type{String},
			Impl: func(args []any) (any, error) {
				f, err := strconv.ParseFloat(strings.TrimSpace(args[0].(string)), 64)
				if err != nil {
					return nil, fmt.Errorf("cannot parse %q as a float", args[0].(string))
				}
				return f, nil
			},
		},
	}
}
