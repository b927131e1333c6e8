package cant

import "time"

func timeNamespace() Value {
	return NewObject(map[string]Value{
		"now":      NewBuiltin("Time.now", builtinTimeNow),
		"unix_ms":  NewBuiltin("Time.unix_ms", builtinTimeUnixMS),
		"parse_ms": NewBuiltin("Time.parse_ms", builtinTimeParseMS),
	})
}

func builtinTimeNow(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Time.now", args, 0); err != nil {
		return NewNil(), err
	}
	return NewString(time.Now().UTC().Format(time.RFC3339)), nil
}

func builtinTimeUnixMS(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Time.unix_ms", args, 0); err != nil {
		return NewNil(), err
	}
	return NewInt(time.Now().UnixMilli()), nil
}

// builtinTimeParseMS parses an RFC 3339 timestamp into milliseconds
// since the Unix epoch.
func builtinTimeParseMS(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Time.parse_ms", args, 1); err != nil {
		return NewNil(), err
	}
	if args[0].Kind() != KindString {
		return NewNil(), typeErrorf("Time.parse_ms expects a string, got %s", args[0].Kind())
	}
	t, err := time.Parse(time.RFC3339, args[0].String())
	if err != nil {
		return NewNil(), typeErrorf("Time.parse_ms cannot parse %q", args[0].String())
	}
	return NewInt(t.UnixMilli()), nil
}
