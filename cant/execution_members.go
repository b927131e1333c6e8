package cant

import (
	"fmt"
	"strings"
)

// resolveMember looks up a property on a value. Hashes resolve their
// own entries before the member method table so data wins over
// methods; methods named by the allow-list below are all that exists
// beyond that.
func resolveMember(object Value, property string) (Value, bool, error) {
	switch object.Kind() {
	case KindHash:
		if val, ok := object.Hash().Get(property); ok {
			return val, true, nil
		}
		return hashMember(property)
	case KindString:
		return stringMember(property)
	case KindArray:
		return arrayMember(property)
	case KindTask:
		return taskMember(property)
	}
	return NewNil(), false, nil
}

func stringMember(property string) (Value, bool, error) {
	switch property {
	case "length":
		return memberAuto("string.length", func(recv Value, _ []Value) (Value, error) {
			return NewInt(int64(len([]rune(recv.String())))), nil
		}), true, nil
	case "trim":
		return memberAuto("string.trim", func(recv Value, _ []Value) (Value, error) {
			return NewString(strings.TrimSpace(recv.String())), nil
		}), true, nil
	case "upcase":
		return memberAuto("string.upcase", func(recv Value, _ []Value) (Value, error) {
			return NewString(strings.ToUpper(recv.String())), nil
		}), true, nil
	case "downcase":
		return memberAuto("string.downcase", func(recv Value, _ []Value) (Value, error) {
			return NewString(strings.ToLower(recv.String())), nil
		}), true, nil
	case "split":
		return memberFn("string.split", 1, func(recv Value, args []Value) (Value, error) {
			if args[0].Kind() != KindString {
				return NewNil(), typeErrorf("string.split expects a string separator")
			}
			parts := strings.Split(recv.String(), args[0].String())
			items := make([]Value, len(parts))
			for i, part := range parts {
				items[i] = NewString(part)
			}
			return NewArray(items), nil
		}), true, nil
	case "contains":
		return memberFn("string.contains", 1, func(recv Value, args []Value) (Value, error) {
			return NewBool(strings.Contains(recv.String(), args[0].String())), nil
		}), true, nil
	case "starts_with":
		return memberFn("string.starts_with", 1, func(recv Value, args []Value) (Value, error) {
			return NewBool(strings.HasPrefix(recv.String(), args[0].String())), nil
		}), true, nil
	case "ends_with":
		return memberFn("string.ends_with", 1, func(recv Value, args []Value) (Value, error) {
			return NewBool(strings.HasSuffix(recv.String(), args[0].String())), nil
		}), true, nil
	case "replace":
		return memberFn("string.replace", 2, func(recv Value, args []Value) (Value, error) {
			return NewString(strings.ReplaceAll(recv.String(), args[0].String(), args[1].String())), nil
		}), true, nil
	case "slice":
		return memberFn("string.slice", 2, func(recv Value, args []Value) (Value, error) {
			runes := []rune(recv.String())
			start, err := valueToInt64(args[0])
			if err != nil {
				return NewNil(), err
			}
			count, err := valueToInt64(args[1])
			if err != nil {
				return NewNil(), err
			}
			if start < 0 || start > int64(len(runes)) || count < 0 {
				return NewNil(), rangeErrorf("slice(%d, %d) out of bounds (length %d)", start, count, len(runes))
			}
			end := start + count
			if end > int64(len(runes)) {
				end = int64(len(runes))
			}
			return NewString(string(runes[start:end])), nil
		}), true, nil
	}
	return NewNil(), false, nil
}

func arrayMember(property string) (Value, bool, error) {
	switch property {
	case "length":
		return memberAuto("array.length", func(recv Value, _ []Value) (Value, error) {
			return NewInt(int64(len(recv.Array().Items))), nil
		}), true, nil
	case "push":
		return memberFn("array.push", 1, func(recv Value, args []Value) (Value, error) {
			arr := recv.Array()
			arr.Items = append(arr.Items, args[0])
			return recv, nil
		}), true, nil
	case "pop":
		return memberAuto("array.pop", func(recv Value, _ []Value) (Value, error) {
			arr := recv.Array()
			if len(arr.Items) == 0 {
				return NewNil(), nil
			}
			last := arr.Items[len(arr.Items)-1]
			arr.Items = arr.Items[:len(arr.Items)-1]
			return last, nil
		}), true, nil
	case "first":
		return memberAuto("array.first", func(recv Value, _ []Value) (Value, error) {
			if len(recv.Array().Items) == 0 {
				return NewNil(), nil
			}
			return recv.Array().Items[0], nil
		}), true, nil
	case "last":
		return memberAuto("array.last", func(recv Value, _ []Value) (Value, error) {
			items := recv.Array().Items
			if len(items) == 0 {
				return NewNil(), nil
			}
			return items[len(items)-1], nil
		}), true, nil
	case "join":
		return memberFn("array.join", 1, func(recv Value, args []Value) (Value, error) {
			if args[0].Kind() != KindString {
				return NewNil(), typeErrorf("array.join expects a string separator")
			}
			parts := make([]string, len(recv.Array().Items))
			for i, item := range recv.Array().Items {
				parts[i] = item.String()
			}
			return NewString(strings.Join(parts, args[0].String())), nil
		}), true, nil
	case "contains":
		return memberFn("array.contains", 1, func(recv Value, args []Value) (Value, error) {
			for _, item := range recv.Array().Items {
				if item.Equal(args[0]) {
					return NewBool(true), nil
				}
			}
			return NewBool(false), nil
		}), true, nil
	case "reverse":
		return memberAuto("array.reverse", func(recv Value, _ []Value) (Value, error) {
			items := recv.Array().Items
			reversed := make([]Value, len(items))
			for i, item := range items {
				reversed[len(items)-1-i] = item
			}
			return NewArray(reversed), nil
		}), true, nil
	case "flatten":
		return memberAuto("array.flatten", func(recv Value, _ []Value) (Value, error) {
			var out []Value
			var walk func(items []Value)
			walk = func(items []Value) {
				for _, item := range items {
					if item.Kind() == KindArray {
						walk(item.Array().Items)
						continue
					}
					out = append(out, item)
				}
			}
			walk(recv.Array().Items)
			return NewArray(out), nil
		}), true, nil
	}
	return NewNil(), false, nil
}

func hashMember(property string) (Value, bool, error) {
	switch property {
	case "keys":
		return memberAuto("hash.keys", func(recv Value, _ []Value) (Value, error) {
			keys := recv.Hash().Keys()
			items := make([]Value, len(keys))
			for i, key := range keys {
				items[i] = NewString(key)
			}
			return NewArray(items), nil
		}), true, nil
	case "values":
		return memberAuto("hash.values", func(recv Value, _ []Value) (Value, error) {
			h := recv.Hash()
			items := make([]Value, 0, h.Len())
			for _, key := range h.Keys() {
				val, _ := h.Get(key)
				items = append(items, val)
			}
			return NewArray(items), nil
		}), true, nil
	case "has_key":
		return memberFn("hash.has_key", 1, func(recv Value, args []Value) (Value, error) {
			if args[0].Kind() != KindString {
				return NewNil(), typeErrorf("hash.has_key expects a string key")
			}
			_, ok := recv.Hash().Get(args[0].String())
			return NewBool(ok), nil
		}), true, nil
	case "delete":
		return memberFn("hash.delete", 1, func(recv Value, args []Value) (Value, error) {
			if args[0].Kind() != KindString {
				return NewNil(), typeErrorf("hash.delete expects a string key")
			}
			return NewBool(recv.Hash().Delete(args[0].String())), nil
		}), true, nil
	case "merge":
		return memberFn("hash.merge", 1, func(recv Value, args []Value) (Value, error) {
			if args[0].Kind() != KindHash {
				return NewNil(), typeErrorf("hash.merge expects a hash")
			}
			merged := newHash()
			for _, key := range recv.Hash().Keys() {
				val, _ := recv.Hash().Get(key)
				merged.Set(key, val)
			}
			other := args[0].Hash()
			for _, key := range other.Keys() {
				val, _ := other.Get(key)
				merged.Set(key, val)
			}
			return newHashValue(merged), nil
		}), true, nil
	}
	return NewNil(), false, nil
}

func taskMember(property string) (Value, bool, error) {
	if property == "done" {
		return memberAuto("task.done", func(recv Value, _ []Value) (Value, error) {
			return NewBool(recv.Task().Done()), nil
		}), true, nil
	}
	return NewNil(), false, nil
}

type memberImpl func(receiver Value, args []Value) (Value, error)

func memberAuto(name string, fn memberImpl) Value {
	return NewAutoBuiltin(name, func(_ *Execution, receiver Value, args []Value, _ map[string]Value) (Value, error) {
		if len(args) > 0 {
			return NewNil(), fmt.Errorf("%s does not take arguments", name)
		}
		return fn(receiver, nil)
	})
}

func memberFn(name string, arity int, fn memberImpl) Value {
	return NewBuiltin(name, func(_ *Execution, receiver Value, args []Value, _ map[string]Value) (Value, error) {
		if err := requireArgCount(name, args, arity); err != nil {
			return NewNil(), err
		}
		return fn(receiver, args)
	})
}
