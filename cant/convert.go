package cant

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FromGo converts plain Go data into a script value. Supported inputs
// are the JSON-shaped types: nil, bool, string, integers, floats,
// json.Number, []any, and map[string]any. Map keys are sorted so the
// resulting hash iterates deterministically regardless of Go map
// order.
func FromGo(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return NewNil(), nil
	case bool:
		return NewBool(v), nil
	case string:
		return NewString(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return NewInt(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return NewNil(), fmt.Errorf("invalid number %q", v.String())
		}
		return NewFloat(f), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			converted, err := FromGo(item)
			if err != nil {
				return NewNil(), err
			}
			items[i] = converted
		}
		return NewArray(items), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		h := newHash()
		for _, key := range keys {
			converted, err := FromGo(v[key])
			if err != nil {
				return NewNil(), err
			}
			h.Set(key, converted)
		}
		return newHashValue(h), nil
	}
	return NewNil(), fmt.Errorf("unsupported value type %T", raw)
}

// ToGo converts a script value into plain Go data. Functions,
// builtins, and tasks are not data and never cross this boundary;
// ranges convert to two-element arrays. Cyclic containers are
// rejected.
func ToGo(val Value) (any, error) {
	return toGo(val, make(map[any]struct{}))
}

func toGo(val Value, seen map[any]struct{}) (any, error) {
	switch val.Kind() {
	case KindNil:
		return nil, nil
	case KindBool:
		return val.Bool(), nil
	case KindInt:
		return val.Int(), nil
	case KindFloat:
		return val.Float(), nil
	case KindString:
		return val.String(), nil
	case KindRange:
		r := val.Range()
		return []any{r.Start, r.End}, nil
	case KindArray:
		arr := val.Array()
		if _, cyclic := seen[arr]; cyclic {
			return nil, fmt.Errorf("cyclic array is not convertible")
		}
		seen[arr] = struct{}{}
		defer delete(seen, arr)

		out := make([]any, len(arr.Items))
		for i, item := range arr.Items {
			converted, err := toGo(item, seen)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case KindHash:
		h := val.Hash()
		if _, cyclic := seen[h]; cyclic {
			return nil, fmt.Errorf("cyclic hash is not convertible")
		}
		seen[h] = struct{}{}
		defer delete(seen, h)

		out := make(map[string]any, h.Len())
		for _, key := range h.Keys() {
			entry, _ := h.Get(key)
			converted, err := toGo(entry, seen)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s is not convertible to data", val.Kind())
}
