package cant

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScriptLogPrefix marks lines written by the log builtin so embedders
// can tell script output apart from their own logs.
const ScriptLogPrefix = "[cant] "

// defineBuiltins installs the fixed utility surface into a run's root
// scope. This table is the entire ambient world a script can reach;
// anything not listed here is unreachable unless an adapter installs
// it by name.
func defineBuiltins(env *environment) {
	env.Define("log", NewBuiltin("log", builtinLog))
	env.Define("sleep", NewBuiltin("sleep", builtinSleep))
	env.Define("len", NewBuiltin("len", builtinLen))
	env.Define("str", NewBuiltin("str", builtinStr))
	env.Define("int", NewBuiltin("int", builtinInt))
	env.Define("float", NewBuiltin("float", builtinFloat))
	env.Define("type_of", NewBuiltin("type_of", builtinTypeOf))
	env.Define("range", NewBuiltin("range", builtinRange))

	env.Define("JSON", jsonNamespace())
	env.Define("Math", mathNamespace())
	env.Define("Time", timeNamespace())
	env.Define("Regex", regexNamespace())
}

func builtinLog(exec *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	fmt.Fprintf(exec.logw, "%s%s\n", ScriptLogPrefix, strings.Join(parts, " "))
	return NewNil(), nil
}

// builtinSleep is the cooperative delay primitive. It yields a task so
// the script decides when to block on it; the run's context cuts the
// wait short.
func builtinSleep(exec *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("sleep", args, 1); err != nil {
		return NewNil(), err
	}
	ms, err := valueToInt64(args[0])
	if err != nil {
		return NewNil(), err
	}
	if ms < 0 {
		return NewNil(), rangeErrorf("sleep duration must not be negative")
	}

	return exec.StartTask("sleep", func(ctx context.Context) (Value, error) {
		timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-timer.C:
			return NewNil(), nil
		case <-ctx.Done():
			return NewNil(), ctx.Err()
		}
	}), nil
}

func builtinLen(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("len", args, 1); err != nil {
		return NewNil(), err
	}
	switch arg := args[0]; arg.Kind() {
	case KindString:
		return NewInt(int64(len([]rune(arg.String())))), nil
	case KindArray:
		return NewInt(int64(len(arg.Array().Items))), nil
	case KindHash:
		return NewInt(int64(arg.Hash().Len())), nil
	case KindRange:
		r := arg.Range()
		if r.Start <= r.End {
			return NewInt(r.End - r.Start + 1), nil
		}
		return NewInt(r.Start - r.End + 1), nil
	}
	return NewNil(), typeErrorf("len not defined for %s", args[0].Kind())
}

func builtinStr(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("str", args, 1); err != nil {
		return NewNil(), err
	}
	return NewString(args[0].String()), nil
}

func builtinInt(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("int", args, 1); err != nil {
		return NewNil(), err
	}
	switch arg := args[0]; arg.Kind() {
	case KindInt:
		return arg, nil
	case KindFloat:
		return NewInt(int64(arg.Float())), nil
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(arg.String()), 10, 64)
		if err != nil {
			return NewNil(), typeErrorf("int cannot parse %q", arg.String())
		}
		return NewInt(n), nil
	case KindBool:
		if arg.Bool() {
			return NewInt(1), nil
		}
		return NewInt(0), nil
	}
	return NewNil(), typeErrorf("int not defined for %s", args[0].Kind())
}

func builtinFloat(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("float", args, 1); err != nil {
		return NewNil(), err
	}
	switch arg := args[0]; arg.Kind() {
	case KindFloat:
		return arg, nil
	case KindInt:
		return NewFloat(float64(arg.Int())), nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(arg.String()), 64)
		if err != nil {
			return NewNil(), typeErrorf("float cannot parse %q", arg.String())
		}
		return newCheckedFloat(f)
	}
	return NewNil(), typeErrorf("float not defined for %s", args[0].Kind())
}

func builtinTypeOf(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("type_of", args, 1); err != nil {
		return NewNil(), err
	}
	return NewString(args[0].Kind().String()), nil
}

func builtinRange(_ *Execution, _ Value, args []Value, _ map[string]Value) (Value, error) {
	if err := requireArgCount("range", args, 2); err != nil {
		return NewNil(), err
	}
	start, err := valueToInt64(args[0])
	if err != nil {
		return NewNil(), err
	}
	end, err := valueToInt64(args[1])
	if err != nil {
		return NewNil(), err
	}
	return NewRange(start, end), nil
}
