package cantrip

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mquist/cantrip/cant"
)

// bridge installs every registry capability into a script run as an
// asynchronous builtin bound to the capability's own name. It owns the
// session-scoped invocation counter; invocation identifiers are unique
// within the session, which is all tracing requires.
type bridge struct {
	registry *Registry
	logger   zerolog.Logger
	counter  atomic.Int64
}

func (b *bridge) nextInvocationID(name string) string {
	return fmt.Sprintf("%s-%d", name, b.counter.Add(1))
}

// Bind implements cant.CapabilityAdapter. The returned builtins
// dispatch eagerly on tasks: a script that issues two calls before
// awaiting either runs them concurrently.
func (b *bridge) Bind(_ cant.CapabilityBinding) (map[string]cant.Value, error) {
	bound := make(map[string]cant.Value, b.registry.Len())
	for _, cap := range b.registry.Capabilities() {
		cap := cap
		bound[cap.Name] = cant.NewBuiltin(cap.Name, func(exec *cant.Execution, _ cant.Value, args []cant.Value, kwargs map[string]cant.Value) (cant.Value, error) {
			if cap.Invoke == nil {
				return cant.NewNil(), cant.NewError(cant.ErrTypeCapabilityNotExecutable,
					"capability %q has no invocation function bound", cap.Name)
			}
			callArgs, err := capabilityArgs(cap.Name, args, kwargs)
			if err != nil {
				return cant.NewNil(), err
			}

			id := b.nextInvocationID(cap.Name)
			b.logger.Debug().Str("capability", cap.Name).Str("invocation_id", id).Msg("dispatching capability")

			return exec.StartTask(cap.Name, func(ctx context.Context) (cant.Value, error) {
				return b.invoke(ctx, cap, callArgs, id)
			}), nil
		})
	}
	return bound, nil
}

// invoke runs the capability's host function. Panics are contained
// here so a faulty capability surfaces as a rescuable condition with
// no host internals attached.
func (b *bridge) invoke(ctx context.Context, cap Capability, args map[string]any, id string) (result cant.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Str("capability", cap.Name).Str("invocation_id", id).Msg("capability panicked")
			result = cant.NewNil()
			err = cant.NewError(cant.ErrTypeCapability, "capability %q failed internally", cap.Name)
		}
	}()

	raw, err := cap.Invoke(ctx, args, CallInfo{InvocationID: id, Conversation: []Message{}})
	if err != nil {
		return cant.NewNil(), cant.NewError(cant.ErrTypeCapability, "capability %q failed: %v", cap.Name, err)
	}
	val, err := cant.FromGo(raw)
	if err != nil {
		return cant.NewNil(), cant.NewError(cant.ErrTypeCapability, "capability %q returned a non-data value: %v", cap.Name, err)
	}
	return val, nil
}

// capabilityArgs converts script-side arguments to the plain data map
// a capability receives: either a single positional hash or keyword
// arguments, not both. No validation against the capability's input
// schema happens here; that is the capability's own concern.
func capabilityArgs(name string, args []cant.Value, kwargs map[string]cant.Value) (map[string]any, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("%s takes a single argument hash or keyword arguments", name)
	}
	if len(args) == 1 && len(kwargs) > 0 {
		return nil, fmt.Errorf("%s takes either an argument hash or keyword arguments, not both", name)
	}

	out := make(map[string]any)
	if len(args) == 1 {
		if args[0].IsNil() {
			return out, nil
		}
		if args[0].Kind() != cant.KindHash {
			return nil, fmt.Errorf("%s expects an argument hash, got %s", name, args[0].Kind())
		}
		raw, err := cant.ToGo(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s arguments are not plain data: %v", name, err)
		}
		return raw.(map[string]any), nil
	}
	for key, val := range kwargs {
		raw, err := cant.ToGo(val)
		if err != nil {
			return nil, fmt.Errorf("%s argument %q is not plain data: %v", name, key, err)
		}
		out[key] = raw
	}
	return out, nil
}
