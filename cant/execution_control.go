package cant

import (
	"errors"
	"fmt"
)

func (exec *Execution) evalIfStatement(stmt *IfStmt, env *environment) (Value, error) {
	cond, err := exec.evalExpression(stmt.Condition, env)
	if err != nil {
		return NewNil(), err
	}
	if cond.Truthy() {
		return exec.evalStatements(stmt.Consequent, newEnv(env))
	}
	for _, clause := range stmt.ElseIf {
		cond, err := exec.evalExpression(clause.Condition, env)
		if err != nil {
			return NewNil(), err
		}
		if cond.Truthy() {
			return exec.evalStatements(clause.Consequent, newEnv(env))
		}
	}
	if len(stmt.Alternate) > 0 {
		return exec.evalStatements(stmt.Alternate, newEnv(env))
	}
	return NewNil(), nil
}

func (exec *Execution) evalWhileStatement(stmt *WhileStmt, env *environment) (Value, error) {
	exec.loopDepth++
	defer func() { exec.loopDepth-- }()

	last := NewNil()
	for {
		if err := exec.step(); err != nil {
			return NewNil(), err
		}
		cond, err := exec.evalExpression(stmt.Condition, env)
		if err != nil {
			return NewNil(), err
		}
		if !cond.Truthy() {
			return last, nil
		}
		val, err := exec.evalStatements(stmt.Body, newEnv(env))
		if err != nil {
			if errors.Is(err, errLoopBreak) {
				return last, nil
			}
			if errors.Is(err, errLoopNext) {
				continue
			}
			return NewNil(), err
		}
		if exec.returned {
			return val, nil
		}
		last = val
	}
}

func (exec *Execution) evalForStatement(stmt *ForStmt, env *environment) (Value, error) {
	iterable, err := exec.evalExpression(stmt.Iterable, env)
	if err != nil {
		return NewNil(), err
	}

	exec.loopDepth++
	defer func() { exec.loopDepth-- }()

	last := NewNil()
	runBody := func(item Value) (stop bool, err error) {
		if err := exec.step(); err != nil {
			return true, err
		}
		scope := newEnv(env)
		scope.Define(stmt.Iterator, item)
		val, err := exec.evalStatements(stmt.Body, scope)
		if err != nil {
			if errors.Is(err, errLoopBreak) {
				return true, nil
			}
			if errors.Is(err, errLoopNext) {
				return false, nil
			}
			return true, err
		}
		if exec.returned {
			last = val
			return true, nil
		}
		last = val
		return false, nil
	}

	switch iterable.Kind() {
	case KindArray:
		// Iterate a snapshot so the body can mutate the array safely.
		items := make([]Value, len(iterable.Array().Items))
		copy(items, iterable.Array().Items)
		for _, item := range items {
			stop, err := runBody(item)
			if err != nil {
				return NewNil(), err
			}
			if stop {
				return last, nil
			}
		}
	case KindRange:
		r := iterable.Range()
		if r.Start <= r.End {
			for i := r.Start; i <= r.End; i++ {
				stop, err := runBody(NewInt(i))
				if err != nil {
					return NewNil(), err
				}
				if stop {
					return last, nil
				}
			}
		} else {
			for i := r.Start; i >= r.End; i-- {
				stop, err := runBody(NewInt(i))
				if err != nil {
					return NewNil(), err
				}
				if stop {
					return last, nil
				}
			}
		}
	case KindHash:
		for _, key := range iterable.Hash().Keys() {
			stop, err := runBody(NewString(key))
			if err != nil {
				return NewNil(), err
			}
			if stop {
				return last, nil
			}
		}
	default:
		return NewNil(), exec.wrapError(
			typeErrorf("cannot iterate over %s", iterable.Kind()), stmt.Iterable.Pos())
	}
	return last, nil
}

func (exec *Execution) evalRaiseStatement(stmt *RaiseStmt, env *environment) (Value, error) {
	if stmt.Value != nil {
		val, err := exec.evalExpression(stmt.Value, env)
		if err != nil {
			return NewNil(), err
		}
		return NewNil(), exec.errorAt(stmt.Pos(), "%s", val.String())
	}

	// A bare raise re-raises the condition the enclosing rescue caught.
	if len(exec.rescued) == 0 {
		return NewNil(), exec.errorAt(stmt.Pos(), "raise used outside of rescue")
	}
	return NewNil(), exec.rescued[len(exec.rescued)-1]
}

func (exec *Execution) evalAssertStatement(stmt *AssertStmt, env *environment) (Value, error) {
	cond, err := exec.evalExpression(stmt.Condition, env)
	if err != nil {
		return NewNil(), err
	}
	if cond.Truthy() {
		return NewNil(), nil
	}
	message := "assertion failed"
	if stmt.Message != nil {
		msg, err := exec.evalExpression(stmt.Message, env)
		if err != nil {
			return NewNil(), err
		}
		message = msg.String()
	}
	return NewNil(), exec.runtimeError(ErrTypeAssert, message, stmt.Pos())
}

func (exec *Execution) evalTryStatement(stmt *TryStmt, env *environment) (Value, error) {
	val, err := exec.evalStatements(stmt.Body, newEnv(env))

	if err != nil && stmt.HasRescue && rescueMatches(stmt.RescueKind, err) {
		caught := err
		exec.rescued = append(exec.rescued, caught)
		scope := newEnv(env)
		if stmt.RescueVar != "" {
			scope.Define(stmt.RescueVar, conditionValue(caught))
		}
		val, err = exec.evalStatements(stmt.Rescue, scope)
		exec.rescued = exec.rescued[:len(exec.rescued)-1]
	}

	if len(stmt.Ensure) > 0 {
		// The ensure block runs whether the body returned or not, so
		// the return flag is parked while it executes.
		bodyReturned := exec.returned
		exec.returned = false
		ensureVal, ensureErr := exec.evalStatements(stmt.Ensure, newEnv(env))
		if ensureErr != nil {
			return NewNil(), ensureErr
		}
		if exec.returned {
			return ensureVal, nil
		}
		exec.returned = bodyReturned
	}

	if err != nil {
		return NewNil(), err
	}
	return val, nil
}

// rescueMatches reports whether a rescue clause handles err. Loop and
// host control signals are never rescuable; a bare rescue or one naming
// Error/RuntimeError handles every script-level condition.
func rescueMatches(kind string, err error) bool {
	if isLoopControlSignal(err) || isHostControlSignal(err) {
		return false
	}
	if kind == "" || kind == "Error" || kind == ErrTypeRuntime {
		return true
	}
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) {
		return kind == runtimeErr.Type
	}
	return false
}

// conditionValue renders a caught condition as the hash a rescue
// binding sees: kind and message only, never host detail.
func conditionValue(err error) Value {
	kind := ErrTypeRuntime
	message := err.Error()
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) {
		kind = runtimeErr.Type
		message = runtimeErr.Message
	}
	h := newHash()
	h.Set("kind", NewString(kind))
	h.Set("message", NewString(message))
	return newHashValue(h)
}

func valueToInt64(val Value) (int64, error) {
	switch val.Kind() {
	case KindInt:
		return val.Int(), nil
	case KindFloat:
		f := val.Float()
		if f != float64(int64(f)) {
			return 0, typeErrorf("expected an integer, got %g", f)
		}
		return int64(f), nil
	}
	return 0, typeErrorf("expected an integer, got %s", val.Kind())
}

func requireArgCount(name string, args []Value, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}
