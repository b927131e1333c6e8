package cant

import "math"

func (exec *Execution) evalUnaryExpr(e *UnaryExpr, env *environment) (Value, error) {
	operand, err := exec.evalExpression(e.Operand, env)
	if err != nil {
		return NewNil(), err
	}

	switch e.Operator {
	case "!":
		return NewBool(!operand.Truthy()), nil
	case "-":
		switch operand.Kind() {
		case KindInt:
			return NewInt(-operand.Int()), nil
		case KindFloat:
			return NewFloat(-operand.Float()), nil
		}
		return NewNil(), exec.wrapError(
			typeErrorf("cannot negate %s", operand.Kind()), e.Pos())
	}
	return NewNil(), exec.errorAt(e.Pos(), "unsupported operator %q", e.Operator)
}

func (exec *Execution) evalBinaryExpr(e *BinaryExpr, env *environment) (Value, error) {
	// && and || short-circuit: the right side only evaluates when the
	// left side does not decide the result.
	if e.Operator == "&&" || e.Operator == "||" {
		left, err := exec.evalExpression(e.Left, env)
		if err != nil {
			return NewNil(), err
		}
		if e.Operator == "&&" && !left.Truthy() {
			return left, nil
		}
		if e.Operator == "||" && left.Truthy() {
			return left, nil
		}
		return exec.evalExpression(e.Right, env)
	}

	left, err := exec.evalExpression(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	right, err := exec.evalExpression(e.Right, env)
	if err != nil {
		return NewNil(), err
	}

	result, err := applyBinary(e.Operator, left, right)
	if err != nil {
		return NewNil(), exec.wrapError(err, e.Pos())
	}
	return result, nil
}

func applyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return NewBool(left.Equal(right)), nil
	case "!=":
		return NewBool(!left.Equal(right)), nil
	}

	if left.Kind() == KindString && right.Kind() == KindString {
		return applyStringBinary(op, left.String(), right.String())
	}
	if left.Kind() == KindArray && right.Kind() == KindArray && op == "+" {
		items := make([]Value, 0, len(left.Array().Items)+len(right.Array().Items))
		items = append(items, left.Array().Items...)
		items = append(items, right.Array().Items...)
		return NewArray(items), nil
	}
	if isNumeric(left) && isNumeric(right) {
		return applyNumericBinary(op, left, right)
	}
	return NewNil(), typeErrorf("operator %q not defined for %s and %s", op, left.Kind(), right.Kind())
}

func isNumeric(v Value) bool {
	return v.Kind() == KindInt || v.Kind() == KindFloat
}

func applyStringBinary(op, left, right string) (Value, error) {
	switch op {
	case "+":
		return NewString(left + right), nil
	case "<":
		return NewBool(left < right), nil
	case ">":
		return NewBool(left > right), nil
	case "<=":
		return NewBool(left <= right), nil
	case ">=":
		return NewBool(left >= right), nil
	}
	return NewNil(), typeErrorf("operator %q not defined for strings", op)
}

// applyNumericBinary promotes to float when either side is a float;
// two ints stay in int arithmetic, including division.
func applyNumericBinary(op string, left, right Value) (Value, error) {
	if left.Kind() == KindInt && right.Kind() == KindInt {
		a, b := left.Int(), right.Int()
		switch op {
		case "+":
			return NewInt(a + b), nil
		case "-":
			return NewInt(a - b), nil
		case "*":
			return NewInt(a * b), nil
		case "/":
			if b == 0 {
				return NewNil(), rangeErrorf("division by zero")
			}
			return NewInt(a / b), nil
		case "%":
			if b == 0 {
				return NewNil(), rangeErrorf("division by zero")
			}
			return NewInt(a % b), nil
		case "<":
			return NewBool(a < b), nil
		case ">":
			return NewBool(a > b), nil
		case "<=":
			return NewBool(a <= b), nil
		case ">=":
			return NewBool(a >= b), nil
		}
		return NewNil(), typeErrorf("operator %q not defined for ints", op)
	}

	a, b := left.Float(), right.Float()
	switch op {
	case "+":
		return NewFloat(a + b), nil
	case "-":
		return NewFloat(a - b), nil
	case "*":
		return NewFloat(a * b), nil
	case "/":
		if b == 0 {
			return NewNil(), rangeErrorf("division by zero")
		}
		return newCheckedFloat(a / b)
	case "%":
		if b == 0 {
			return NewNil(), rangeErrorf("division by zero")
		}
		return newCheckedFloat(math.Mod(a, b))
	case "<":
		return NewBool(a < b), nil
	case ">":
		return NewBool(a > b), nil
	case "<=":
		return NewBool(a <= b), nil
	case ">=":
		return NewBool(a >= b), nil
	}
	return NewNil(), typeErrorf("operator %q not defined for floats", op)
}

// Float results never carry Inf or NaN into script values; producing
// one is a range error at the operation that produced it.
func newCheckedFloat(f float64) (Value, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return NewNil(), rangeErrorf("result is not a finite number")
	}
	return NewFloat(f), nil
}
