package cant

// Kind returns the value's runtime kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// Bool returns the boolean payload, or false for non-bools.
func (v Value) Bool() bool {
	b, _ := v.data.(bool)
	return b
}

// Int returns the integer payload. Floats are truncated; other kinds
// yield zero.
func (v Value) Int() int64 {
	switch d := v.data.(type) {
	case int64:
		return d
	case float64:
		return int64(d)
	}
	return 0
}

// Float returns the float payload. Integers are widened; other kinds
// yield zero.
func (v Value) Float() float64 {
	switch d := v.data.(type) {
	case float64:
		return d
	case int64:
		return float64(d)
	}
	return 0
}

// Array returns the array payload, or nil for non-arrays.
func (v Value) Array() *Array {
	arr, _ := v.data.(*Array)
	return arr
}

// Hash returns the hash payload, or nil for non-hashes.
func (v Value) Hash() *Hash {
	h, _ := v.data.(*Hash)
	return h
}

// Range returns the range payload, or the zero range for non-ranges.
func (v Value) Range() Range {
	r, _ := v.data.(Range)
	return r
}

// Function returns the function payload, or nil.
func (v Value) Function() *Function {
	fn, _ := v.data.(*Function)
	return fn
}

// Builtin returns the builtin payload, or nil.
func (v Value) Builtin() *Builtin {
	b, _ := v.data.(*Builtin)
	return b
}

// Task returns the task payload, or nil.
func (v Value) Task() *Task {
	t, _ := v.data.(*Task)
	return t
}
