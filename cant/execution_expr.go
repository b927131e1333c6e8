package cant

func (exec *Execution) evalExpression(expr Expression, env *environment) (Value, error) {
	if err := exec.step(); err != nil {
		return NewNil(), err
	}

	switch e := expr.(type) {
	case *IntLiteral:
		return NewInt(e.Value), nil
	case *FloatLiteral:
		return NewFloat(e.Value), nil
	case *StringLiteral:
		return NewString(e.Value), nil
	case *BoolLiteral:
		return NewBool(e.Value), nil
	case *NilLiteral:
		return NewNil(), nil
	case *Identifier:
		return exec.evalIdentifier(e, env, true)
	case *ArrayLiteral:
		return exec.evalArrayLiteral(e, env)
	case *HashLiteral:
		return exec.evalHashLiteral(e, env)
	case *RangeExpr:
		return exec.evalRangeExpr(e, env)
	case *UnaryExpr:
		return exec.evalUnaryExpr(e, env)
	case *BinaryExpr:
		return exec.evalBinaryExpr(e, env)
	case *CallExpr:
		return exec.evalCallExpr(e, env)
	case *MemberExpr:
		return exec.evalMemberExpr(e, env)
	case *IndexExpr:
		return exec.evalIndexExpr(e, env)
	case *AwaitExpr:
		return exec.evalAwaitExpr(e, env)
	}
	return NewNil(), exec.errorAt(expr.Pos(), "unsupported expression")
}

// evalIdentifier resolves a name in scope. Builtins flagged AutoInvoke
// run on bare reference when autoInvoke is set; call expressions
// resolve with it cleared so they can pass arguments themselves.
func (exec *Execution) evalIdentifier(e *Identifier, env *environment, autoInvoke bool) (Value, error) {
	val, ok := env.Get(e.Name)
	if !ok {
		return NewNil(), exec.wrapError(referenceErrorf("undefined name %q", e.Name), e.Pos())
	}
	if autoInvoke {
		if builtin := val.Builtin(); builtin != nil && builtin.AutoInvoke {
			return exec.invokeCallable(val, NewNil(), nil, nil, e.Pos())
		}
	}
	return val, nil
}

func (exec *Execution) evalArrayLiteral(e *ArrayLiteral, env *environment) (Value, error) {
	items := make([]Value, len(e.Items))
	for i, itemExpr := range e.Items {
		item, err := exec.evalExpression(itemExpr, env)
		if err != nil {
			return NewNil(), err
		}
		items[i] = item
	}
	return NewArray(items), nil
}

func (exec *Execution) evalHashLiteral(e *HashLiteral, env *environment) (Value, error) {
	h := newHash()
	for _, pair := range e.Pairs {
		val, err := exec.evalExpression(pair.Value, env)
		if err != nil {
			return NewNil(), err
		}
		h.Set(pair.Key, val)
	}
	return newHashValue(h), nil
}

func (exec *Execution) evalRangeExpr(e *RangeExpr, env *environment) (Value, error) {
	startVal, err := exec.evalExpression(e.Start, env)
	if err != nil {
		return NewNil(), err
	}
	endVal, err := exec.evalExpression(e.End, env)
	if err != nil {
		return NewNil(), err
	}
	start, err := valueToInt64(startVal)
	if err != nil {
		return NewNil(), exec.wrapError(err, e.Start.Pos())
	}
	end, err := valueToInt64(endVal)
	if err != nil {
		return NewNil(), exec.wrapError(err, e.End.Pos())
	}
	return NewRange(start, end), nil
}

func (exec *Execution) evalMemberExpr(e *MemberExpr, env *environment) (Value, error) {
	object, err := exec.evalExpression(e.Object, env)
	if err != nil {
		return NewNil(), err
	}
	member, found, err := resolveMember(object, e.Property)
	if err != nil {
		return NewNil(), exec.wrapError(err, e.Pos())
	}
	if !found {
		// Missing hash keys read as nil; anything else is a type error.
		if object.Kind() == KindHash {
			return NewNil(), nil
		}
		return NewNil(), exec.wrapError(
			typeErrorf("%s has no member %q", object.Kind(), e.Property), e.Pos())
	}
	if builtin := member.Builtin(); builtin != nil && builtin.AutoInvoke {
		return exec.invokeCallable(member, object, nil, nil, e.Pos())
	}
	return member, nil
}

func (exec *Execution) evalIndexExpr(e *IndexExpr, env *environment) (Value, error) {
	object, err := exec.evalExpression(e.Object, env)
	if err != nil {
		return NewNil(), err
	}
	index, err := exec.evalExpression(e.Index, env)
	if err != nil {
		return NewNil(), err
	}

	switch object.Kind() {
	case KindArray:
		idx, err := normalizeIndex(index, len(object.Array().Items))
		if err != nil {
			return NewNil(), exec.wrapError(err, e.Index.Pos())
		}
		return object.Array().Items[idx], nil
	case KindString:
		runes := []rune(object.String())
		idx, err := normalizeIndex(index, len(runes))
		if err != nil {
			return NewNil(), exec.wrapError(err, e.Index.Pos())
		}
		return NewString(string(runes[idx])), nil
	case KindHash:
		if index.Kind() != KindString {
			return NewNil(), exec.wrapError(
				typeErrorf("hash keys are strings, got %s", index.Kind()), e.Index.Pos())
		}
		if val, ok := object.Hash().Get(index.String()); ok {
			return val, nil
		}
		return NewNil(), nil
	}
	return NewNil(), exec.wrapError(
		typeErrorf("%s is not indexable", object.Kind()), e.Pos())
}

// normalizeIndex resolves an index against a container of the given
// length. Negative indexes count from the end.
func normalizeIndex(index Value, length int) (int, error) {
	raw, err := valueToInt64(index)
	if err != nil {
		return 0, err
	}
	idx := int(raw)
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, rangeErrorf("index %d out of bounds (length %d)", raw, length)
	}
	return idx, nil
}

func (exec *Execution) evalAwaitExpr(e *AwaitExpr, env *environment) (Value, error) {
	val, err := exec.evalExpression(e.Value, env)
	if err != nil {
		return NewNil(), err
	}
	if val.Kind() != KindTask {
		return val, nil
	}
	return exec.awaitTask(val.Task(), e.Pos())
}
