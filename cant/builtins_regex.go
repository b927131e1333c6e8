package cant

import "regexp"

const (
	maxRegexPatternBytes = 16 << 10
	maxRegexInputBytes   = 1 << 20
)

func regexNamespace() Value {
	return NewObject(map[string]Value{
		"match":    NewBuiltin("Regex.match", builtinRegexMatch),
		"find":     NewBuiltin("Regex.find", builtinRegexFind),
		"find_all": NewBuiltin("Regex.find_all", builtinRegexFindAll),
		"replace":  NewBuiltin("Regex.replace", builtinRegexReplace),
	})
}

func compilePattern(name string, args []Value) (*regexp.Regexp, string, error) {
	for i, arg := range args {
		if arg.Kind() != KindString {
			return nil, "", typeErrorf("%s argument %d must be a string, got %s", name, i+1, arg.Kind())
		}
	}
	pattern := args[0].String()
	if len(pattern) > maxRegexPatternBytes {
		return nil, "", rangeErrorf("%s pattern exceeds %d bytes", name, maxRegexPatternBytes)
	}
	input := args[1].String()
	if len(input) > maxRegexInputBytes {
		return nil, "", rangeErrorf("%s input exceeds %d bytes", name, maxRegexInputBytes)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, "", typeErrorf("%s invalid pattern: %s", name, err.Error())
	}
	return re, input, nil
}

func builtinRegexMatch(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Regex.match", args, 2); err != nil {
		return NewNil(), err
	}
	re, input, err := compilePattern("Regex.match", args)
	if err != nil {
		return NewNil(), err
	}
	return NewBool(re.MatchString(input)), nil
}

func builtinRegexFind(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Regex.find", args, 2); err != nil {
		return NewNil(), err
	}
	re, input, err := compilePattern("Regex.find", args)
	if err != nil {
		return NewNil(), err
	}
	loc := re.FindStringIndex(input)
	if loc == nil {
		return NewNil(), nil
	}
	return NewString(input[loc[0]:loc[1]]), nil
}

func builtinRegexFindAll(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Regex.find_all", args, 2); err != nil {
		return NewNil(), err
	}
	re, input, err := compilePattern("Regex.find_all", args)
	if err != nil {
		return NewNil(), err
	}
	matches := re.FindAllString(input, -1)
	items := make([]Value, len(matches))
	for i, match := range matches {
		items[i] = NewString(match)
	}
	return NewArray(items), nil
}

func builtinRegexReplace(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("Regex.replace", args, 3); err != nil {
		return NewNil(), err
	}
	re, input, err := compilePattern("Regex.replace", args[:2])
	if err != nil {
		return NewNil(), err
	}
	if args[2].Kind() != KindString {
		return NewNil(), typeErrorf("Regex.replace replacement must be a string, got %s", args[2].Kind())
	}
	return NewString(re.ReplaceAllString(input, args[2].String())), nil
}
