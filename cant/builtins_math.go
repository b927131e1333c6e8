package cant

import "math"

func mathNamespace() Value {
	return NewObject(map[string]Value{
		"abs":   NewBuiltin("Math.abs", builtinMathAbs),
		"min":   NewBuiltin("Math.min", builtinMathMin),
		"max":   NewBuiltin("Math.max", builtinMathMax),
		"floor": NewBuiltin("Math.floor", builtinMathFloor),
		"ceil":  NewBuiltin("Math.ceil", builtinMathCeil),
		"round": NewBuiltin("Math.round", builtinMathRound),
		"sqrt":  NewBuiltin("Math.sqrt", builtinMathSqrt),
		"pow":   NewBuiltin("Math.pow", builtinMathPow),
	})
}

func requireNumeric(name string, arg Value) error {
	if !isNumeric(arg) {
		return typeErrorf("%s expects a number, got %s", name, arg.Kind())
	}
	return nil
}

func builtinMathAbs(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Math.abs", args, 1); err != nil {
		return NewNil(), err
	}
	if err := requireNumeric("Math.abs", args[0]); err != nil {
		return NewNil(), err
	}
	if args[0].Kind() == KindInt {
		n := args[0].Int()
		if n < 0 {
			n = -n
		}
		return NewInt(n), nil
	}
	return NewFloat(math.Abs(args[0].Float())), nil
}

func builtinMathMin(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	return numericFold("Math.min", args, func(best, next Value) bool {
		return next.Float() < best.Float()
	})
}

func builtinMathMax(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	return numericFold("Math.max", args, func(best, next Value) bool {
		return next.Float() > best.Float()
	})
}

func numericFold(name string, args []Value, better func(best, next Value) bool) (Value, error) {
	if len(args) < 2 {
		return NewNil(), typeErrorf("%s expects at least 2 arguments, got %d", name, len(args))
	}
	for _, arg := range args {
		if err := requireNumeric(name, arg); err != nil {
			return NewNil(), err
		}
	}
	best := args[0]
	for _, next := range args[1:] {
		if better(best, next) {
			best = next
		}
	}
	return best, nil
}

func builtinMathFloor(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	return roundingOp("Math.floor", args, math.Floor)
}

func builtinMathCeil(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	return roundingOp("Math.ceil", args, math.Ceil)
}

func builtinMathRound(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	return roundingOp("Math.round", args, math.Round)
}

func roundingOp(name string, args []Value, op func(float64) float64) (Value, error) {
	if err := requireArgCount(name, args, 1); err != nil {
		return NewNil(), err
	}
	if err := requireNumeric(name, args[0]); err != nil {
		return NewNil(), err
	}
	if args[0].Kind() == KindInt {
		return args[0], nil
	}
	return NewInt(int64(op(args[0].Float()))), nil
}

func builtinMathSqrt(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Math.sqrt", args, 1); err != nil {
		return NewNil(), err
	}
	if err := requireNumeric("Math.sqrt", args[0]); err != nil {
		return NewNil(), err
	}
	f := args[0].Float()
	if f < 0 {
		return NewNil(), rangeErrorf("Math.sqrt of negative number")
	}
	return NewFloat(math.Sqrt(f)), nil
}

func builtinMathPow(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Math.pow", args, 2); err != nil {
		return NewNil(), err
	}
	for _, arg := range args {
		if err := requireNumeric("Math.pow", arg); err != nil {
			return NewNil(), err
		}
	}
	return newCheckedFloat(math.Pow(args[0].Float(), args[1].Float()))
}
