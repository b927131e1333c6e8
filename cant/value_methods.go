package cant

import (
	"fmt"
	"strings"
)

// String returns the lowercase kind name used in error messages and by
// the type_of builtin.
func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	case KindRange:
		return "range"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin"
	case KindTask:
		return "task"
	}
	return "unknown"
}

// Containers render at most this deep; anything further collapses to
// an ellipsis. Keeps self-referential containers from recursing
// forever.
const maxRenderDepth = 10

// String renders the value the way log and str show it. Nil renders
// empty, strings render bare.
func (v Value) String() string {
	return v.render(0)
}

func (v Value) render(depth int) string {
	switch v.kind {
	case KindNil:
		return ""
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.Int())
	case KindFloat:
		return fmt.Sprintf("%g", v.Float())
	case KindString:
		s, _ := v.data.(string)
		return s
	case KindArray:
		if depth >= maxRenderDepth {
			return "[...]"
		}
		items := v.Array().Items
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.render(depth + 1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindHash:
		if depth >= maxRenderDepth {
			return "{...}"
		}
		h := v.Hash()
		parts := make([]string, 0, h.Len())
		for _, key := range h.keys {
			entry := h.items[key]
			parts = append(parts, key+": "+entry.render(depth+1))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		r := v.Range()
		return fmt.Sprintf("%d..%d", r.Start, r.End)
	case KindFunction:
		return fmt.Sprintf("<function %s>", v.Function().Name)
	case KindBuiltin:
		return fmt.Sprintf("<builtin %s>", v.Builtin().Name)
	case KindTask:
		t := v.Task()
		return fmt.Sprintf("<task %d: %s>", t.id, t.name)
	}
	return ""
}

// Truthy reports the value's truth. Nil, false, zero numbers, empty
// strings, and empty containers are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int() != 0
	case KindFloat:
		return v.Float() != 0
	case KindString:
		s, _ := v.data.(string)
		return s != ""
	case KindArray:
		return len(v.Array().Items) > 0
	case KindHash:
		return v.Hash().Len() > 0
	}
	return true
}

// Equal reports equality. Scalars compare by value, containers and
// callables by identity. Values of different kinds are never equal, so
// 1 == 1.0 is false.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool() == other.Bool()
	case KindInt:
		return v.Int() == other.Int()
	case KindFloat:
		return v.Float() == other.Float()
	case KindString:
		return v.data.(string) == other.data.(string)
	case KindRange:
		return v.Range() == other.Range()
	}
	return v.data == other.data
}
