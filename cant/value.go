package cant

// ValueKind enumerates the runtime types a script value can take.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindHash
	KindRange
	KindFunction
	KindBuiltin
	KindTask
)

// Value is a script-visible runtime value. Scalars are stored inline;
// arrays, hashes, functions, and tasks hold a shared pointer, so two
// values referencing the same container observe each other's
// mutations.
type Value struct {
	kind ValueKind
	data any
}

// BuiltinFunc is the host implementation of a builtin callable.
// receiver is the bound object for member builtins and nil otherwise.
type BuiltinFunc func(exec *Execution, receiver Value, args []Value, kwargs map[string]Value) (Value, error)

// Builtin is a host-provided callable. AutoInvoke builtins run when
// referenced without call parentheses, which is how zero-argument
// members like length behave.
type Builtin struct {
	Name       string
	Fn         BuiltinFunc
	AutoInvoke bool
}

// Function is a script-defined function closed over its defining
// environment.
type Function struct {
	Name   string
	Params []string
	Body   []Statement
	Env    *environment
}

// Range is an inclusive integer range. 5..1 counts down.
type Range struct {
	Start int64
	End   int64
}

// Array is the mutable backing store for array values.
type Array struct {
	Items []Value
}

// Hash is the mutable backing store for hash values. Entries keep
// insertion order so iteration and rendering are deterministic.
type Hash struct {
	keys  []string
	items map[string]Value
}

func newHash() *Hash {
	return &Hash{items: make(map[string]Value)}
}

// Get returns the entry for key when present.
func (h *Hash) Get(key string) (Value, bool) {
	v, ok := h.items[key]
	return v, ok
}

// Set stores an entry. An existing key keeps its original position.
func (h *Hash) Set(key string, value Value) {
	if _, ok := h.items[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.items[key] = value
}

// Delete removes an entry and reports whether it existed.
func (h *Hash) Delete(key string) bool {
	if _, ok := h.items[key]; !ok {
		return false
	}
	delete(h.items, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (h *Hash) Keys() []string {
	keys := make([]string, len(h.keys))
	copy(keys, h.keys)
	return keys
}

// Len returns the number of entries.
func (h *Hash) Len() int {
	return len(h.keys)
}
