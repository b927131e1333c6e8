package cant

func (exec *Execution) evalCallExpr(e *CallExpr, env *environment) (Value, error) {
	var callee Value
	receiver := NewNil()

	switch calleeExpr := e.Callee.(type) {
	case *Identifier:
		val, err := exec.evalIdentifier(calleeExpr, env, false)
		if err != nil {
			return NewNil(), err
		}
		callee = val
	case *MemberExpr:
		object, err := exec.evalExpression(calleeExpr.Object, env)
		if err != nil {
			return NewNil(), err
		}
		member, found, err := resolveMember(object, calleeExpr.Property)
		if err != nil {
			return NewNil(), exec.wrapError(err, calleeExpr.Pos())
		}
		if !found {
			return NewNil(), exec.wrapError(
				typeErrorf("%s has no member %q", object.Kind(), calleeExpr.Property), calleeExpr.Pos())
		}
		callee = member
		receiver = object
	default:
		val, err := exec.evalExpression(e.Callee, env)
		if err != nil {
			return NewNil(), err
		}
		callee = val
	}

	args := make([]Value, len(e.Args))
	for i, argExpr := range e.Args {
		arg, err := exec.evalExpression(argExpr, env)
		if err != nil {
			return NewNil(), err
		}
		args[i] = arg
	}

	var kwargs map[string]Value
	if len(e.KwArgs) > 0 {
		kwargs = make(map[string]Value, len(e.KwArgs))
		for _, kw := range e.KwArgs {
			val, err := exec.evalExpression(kw.Value, env)
			if err != nil {
				return NewNil(), err
			}
			kwargs[kw.Name] = val
		}
	}

	return exec.invokeCallable(callee, receiver, args, kwargs, e.Pos())
}

func (exec *Execution) invokeCallable(callee Value, receiver Value, args []Value, kwargs map[string]Value, pos Position) (Value, error) {
	switch callee.Kind() {
	case KindFunction:
		return exec.callFunction(callee.Function(), args, kwargs, pos)
	case KindBuiltin:
		builtin := callee.Builtin()
		result, err := builtin.Fn(exec, receiver, args, kwargs)
		if err != nil {
			return NewNil(), exec.wrapError(err, pos)
		}
		return result, nil
	}
	return NewNil(), exec.wrapError(
		typeErrorf("value of type %s is not callable", callee.Kind()), pos)
}

// callFunction binds arguments into a fresh scope chained to the
// function's defining environment, runs the body, and absorbs the
// return flag so a return inside the callee stops there.
func (exec *Execution) callFunction(fn *Function, args []Value, kwargs map[string]Value, pos Position) (Value, error) {
	if len(exec.callStack) >= exec.recursionLimit {
		return NewNil(), exec.wrapError(
			rangeErrorf("call depth exceeded (limit %d)", exec.recursionLimit), pos)
	}

	scope := newEnv(fn.Env)
	if len(args) > len(fn.Params) {
		return NewNil(), exec.wrapError(
			typeErrorf("%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args)), pos)
	}
	for i, param := range fn.Params {
		switch {
		case i < len(args):
			if _, dup := kwargs[param]; dup {
				return NewNil(), exec.wrapError(
					typeErrorf("%s got %q both positionally and by keyword", fn.Name, param), pos)
			}
			scope.Define(param, args[i])
		default:
			val, ok := kwargs[param]
			if !ok {
				return NewNil(), exec.wrapError(
					typeErrorf("%s missing argument %q", fn.Name, param), pos)
			}
			scope.Define(param, val)
			delete(kwargs, param)
		}
	}
	for name := range kwargs {
		if !paramNamed(fn.Params, name) {
			return NewNil(), exec.wrapError(
				typeErrorf("%s got unknown keyword argument %q", fn.Name, name), pos)
		}
	}

	exec.callStack = append(exec.callStack, callFrame{function: fn.Name, pos: pos})
	savedLoopDepth := exec.loopDepth
	exec.loopDepth = 0

	result, err := exec.evalStatements(fn.Body, scope)

	exec.loopDepth = savedLoopDepth
	exec.callStack = exec.callStack[:len(exec.callStack)-1]
	exec.returned = false

	if err != nil {
		if isLoopControlSignal(err) {
			return NewNil(), exec.errorAt(pos, "break or next cannot cross a call boundary")
		}
		return NewNil(), err
	}
	return result, nil
}

func paramNamed(params []string, name string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}
	return false
}

func (exec *Execution) assign(target Expression, val Value, env *environment) error {
	switch t := target.(type) {
	case *Identifier:
		env.Assign(t.Name, val)
		return nil
	case *IndexExpr:
		object, err := exec.evalExpression(t.Object, env)
		if err != nil {
			return err
		}
		index, err := exec.evalExpression(t.Index, env)
		if err != nil {
			return err
		}
		switch object.Kind() {
		case KindArray:
			idx, err := normalizeIndex(index, len(object.Array().Items))
			if err != nil {
				return exec.wrapError(err, t.Index.Pos())
			}
			object.Array().Items[idx] = val
			return nil
		case KindHash:
			if index.Kind() != KindString {
				return exec.wrapError(
					typeErrorf("hash keys are strings, got %s", index.Kind()), t.Index.Pos())
			}
			object.Hash().Set(index.String(), val)
			return nil
		}
		return exec.wrapError(typeErrorf("cannot assign into %s", object.Kind()), t.Pos())
	case *MemberExpr:
		object, err := exec.evalExpression(t.Object, env)
		if err != nil {
			return err
		}
		if object.Kind() != KindHash {
			return exec.wrapError(
				typeErrorf("cannot assign member %q on %s", t.Property, object.Kind()), t.Pos())
		}
		object.Hash().Set(t.Property, val)
		return nil
	}
	return exec.errorAt(target.Pos(), "invalid assignment target")
}
