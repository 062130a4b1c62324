package native

import "math"

func floatFunc(name string, fn func(float64) float64) Func {
	return Func{
		Name:   name,
		Params: []Type{Float},
		Impl: func(args []any) (any, error) {
			return fn(args[0].(float64)), nil
		},
	}
}

// Math returns the float helpers plus an integer overload of abs.
func Math() []Func {
	return []Func{
		floatFunc("sqrt", math.Sqrt),
		floatFunc("sin", math.Sin),
		floatFunc("cos", math.Cos),
		floatFunc("tan", math.Tan),
		floatFunc("exp", math.Exp),
		floatFunc("floor", math.Floor),
		floatFunc("ceil", math.Ceil),
		floatFunc("abs", math.Abs),
		{
			Name:   "pow",
			Params: []Type{Float, Float},
			Impl: func(args []any) (any, error) {
				return math.Pow(args[0].(float64), args[1].(float64)), nil
			},
		},
		{
			Name:   "abs",
			Params: []Type{Int},
			Impl: func(args []any) (any, error) {
				n := args[0].(int64)
				if n < 0 {
					n = -n
				}
				return n, nil
			},
		},
	}
}
