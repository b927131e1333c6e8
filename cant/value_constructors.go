package cant

import "sort"

// NewNil returns the nil value.
func NewNil() Value { return Value{kind: KindNil} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: KindBool, data: b} }

// NewInt returns an integer value.
func NewInt(n int64) Value { return Value{kind: KindInt, data: n} }

// NewFloat returns a float value.
func NewFloat(f float64) Value { return Value{kind: KindFloat, data: f} }

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, data: s} }

// NewArray wraps items in a fresh array value. The slice is owned by
// the array afterwards.
func NewArray(items []Value) Value {
	return Value{kind: KindArray, data: &Array{Items: items}}
}

func newArrayValue(arr *Array) Value {
	return Value{kind: KindArray, data: arr}
}

// NewHash returns an empty hash value.
func NewHash() Value {
	return Value{kind: KindHash, data: newHash()}
}

func newHashValue(h *Hash) Value {
	return Value{kind: KindHash, data: h}
}

// NewRange returns an inclusive integer range value.
func NewRange(start, end int64) Value {
	return Value{kind: KindRange, data: Range{Start: start, End: end}}
}

// NewBuiltin wraps a host function as a callable value.
func NewBuiltin(name string, fn BuiltinFunc) Value {
	return Value{kind: KindBuiltin, data: &Builtin{Name: name, Fn: fn}}
}

// NewAutoBuiltin wraps a host function that runs on bare reference,
// without call parentheses.
func NewAutoBuiltin(name string, fn BuiltinFunc) Value {
	return Value{kind: KindBuiltin, data: &Builtin{Name: name, Fn: fn, AutoInvoke: true}}
}

func newFunctionValue(fn *Function) Value {
	return Value{kind: KindFunction, data: fn}
}

func newTaskValue(t *Task) Value {
	return Value{kind: KindTask, data: t}
}

// NewObject builds a hash value from a member table. Builtin
// namespaces like JSON and Math are hashes of builtins; member names
// are sorted so the object renders deterministically.
func NewObject(members map[string]Value) Value {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	h := newHash()
	for _, name := range names {
		h.Set(name, members[name])
	}
	return newHashValue(h)
}
