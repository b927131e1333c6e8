package cantrip

import (
	"context"
	"errors"
	"fmt"

	"github.com/mquist/cantrip/cant"
)

// Failure kinds produced by the runtime itself. Script-raised
// conditions keep whatever kind the language assigned them.
const (
	FaultTimeout   = "TimeoutError"
	FaultSyntax    = "SyntaxError"
	FaultExecution = "ExecutionError"
)

// Fault describes a failed run: a kind the agent can branch on and a
// human-readable message. It never carries host stack traces or file
// paths.
type Fault struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

// Outcome is the result of one run: either a value or a fault, never
// both.
type Outcome struct {
	Value any
	Fault *Fault
}

// Failed reports whether the run produced a fault.
func (o Outcome) Failed() bool {
	return o.Fault != nil
}

// AsMap renders the outcome in the external wire shape: {"value": ...}
// on success, {"error": ..., "message": ...} on failure. The two are
// distinguished by the presence of "error".
func (o Outcome) AsMap() map[string]any {
	if o.Fault != nil {
		return map[string]any{"error": o.Fault.Kind, "message": o.Fault.Message}
	}
	return map[string]any{"value": o.Value}
}

func valueOutcome(value any) Outcome {
	return Outcome{Value: value}
}

func failure(kind, format string, args ...any) Outcome {
	return Outcome{Fault: &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Run compiles and executes a script against the session's capability
// bindings, under the configured wall-clock timeout. Failures are
// always returned as structured outcomes; nothing escapes as a panic
// or raw error.
func (o *Orchestration) Run(ctx context.Context, scriptText string) Outcome {
	script, err := o.engine.Compile(scriptText)
	if err != nil {
		var syntaxErr *cant.SyntaxError
		if errors.As(err, &syntaxErr) {
			return failure(FaultSyntax, "%s", syntaxErr.Message)
		}
		return failure(FaultExecution, "compile failed: %v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type runResult struct {
		value cant.Value
		err   error
	}
	done := make(chan runResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- runResult{err: fmt.Errorf("internal execution failure")}
			}
		}()
		value, err := script.Run(runCtx, cant.RunOptions{
			Adapters: []cant.CapabilityAdapter{o.bridge},
		})
		done <- runResult{value: value, err: err}
	}()

	// The interpreter polls the context every step, so completion
	// follows the deadline closely; the select makes the deadline hard
	// even if a capability blocks without honoring its context.
	select {
	case res := <-done:
		return o.classify(res.value, res.err)
	case <-runCtx.Done():
		return o.deadlineOutcome(runCtx.Err())
	}
}

func (o *Orchestration) classify(value cant.Value, err error) Outcome {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return o.deadlineOutcome(err)
		}
		var runtimeErr *cant.RuntimeError
		if errors.As(err, &runtimeErr) {
			// Kind and message only; code frames stay host-side.
			return failure(runtimeErr.Type, "%s", runtimeErr.Message)
		}
		return failure(FaultExecution, "%v", err)
	}

	result, convErr := cant.ToGo(value)
	if convErr != nil {
		return failure(FaultExecution, "script result is not serializable: %v", convErr)
	}
	return valueOutcome(result)
}

func (o *Orchestration) deadlineOutcome(err error) Outcome {
	if errors.Is(err, context.Canceled) {
		return failure(FaultExecution, "execution canceled")
	}
	return failure(FaultTimeout, "script did not finish within %s", o.timeout)
}

// Check compiles a script without running it. A nil error means the
// script parses.
func (o *Orchestration) Check(scriptText string) error {
	_, err := o.engine.Compile(scriptText)
	return err
}
