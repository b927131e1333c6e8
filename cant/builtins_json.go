package cant

import (
	"bytes"
	"encoding/json"
)

const maxJSONPayloadBytes = 1 << 20

func jsonNamespace() Value {
	return NewObject(map[string]Value{
		"parse":     NewBuiltin("JSON.parse", builtinJSONParse),
		"stringify": NewBuiltin("JSON.stringify", builtinJSONStringify),
	})
}

func builtinJSONParse(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("JSON.parse", args, 1); err != nil {
		return NewNil(), err
	}
	if args[0].Kind() != KindString {
		return NewNil(), typeErrorf("JSON.parse expects a string, got %s", args[0].Kind())
	}
	payload := args[0].String()
	if len(payload) > maxJSONPayloadBytes {
		return NewNil(), rangeErrorf("JSON.parse payload exceeds %d bytes", maxJSONPayloadBytes)
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.UseNumber()
	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return NewNil(), typeErrorf("JSON.parse: %s", err.Error())
	}
	val, err := FromGo(raw)
	if err != nil {
		return NewNil(), typeErrorf("JSON.parse: %s", err.Error())
	}
	return val, nil
}

func builtinJSONStringify(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("JSON.stringify", args, 1); err != nil {
		return NewNil(), err
	}
	raw, err := ToGo(args[0])
	if err != nil {
		return NewNil(), typeErrorf("JSON.stringify: %s", err.Error())
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return NewNil(), typeErrorf("JSON.stringify: %s", err.Error())
	}
	if len(encoded) > maxJSONPayloadBytes {
		return NewNil(), rangeErrorf("JSON.stringify output exceeds %d bytes", maxJSONPayloadBytes)
	}
	return NewString(string(encoded)), nil
}
