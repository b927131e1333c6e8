package cant

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Execution is the state for one run of one script: context, scope
// chain, step and memory accounting, and the call stack used for error
// frames. An Execution is never reused across runs.
type Execution struct {
	ctx            context.Context
	source         string
	rootEnv        *environment
	recursionLimit int
	stepQuota      int
	memoryQuota    int
	logw           io.Writer

	steps     int
	returned  bool
	loopDepth int
	callStack []callFrame
	envStack  []*environment
	rescued   []error
	taskSeq   int
}

type callFrame struct {
	function string
	pos      Position
}

// Loop control travels as sentinel errors so break and next unwind
// through nested statements the same way raised conditions do.
var (
	errLoopBreak = errors.New("loop break")
	errLoopNext  = errors.New("loop next")
)

// Context returns the run's context. Adapters use it when dispatching
// work on behalf of the script.
func (exec *Execution) Context() context.Context {
	return exec.ctx
}

// step charges one evaluation step and checks the host limits. The
// returned errors are host control signals: the script cannot rescue
// them.
func (exec *Execution) step() error {
	exec.steps++
	if exec.stepQuota > 0 && exec.steps > exec.stepQuota {
		return fmt.Errorf("%w (%d)", ErrStepQuota, exec.stepQuota)
	}
	if exec.memoryQuota > 0 && exec.steps&63 == 0 {
		if err := exec.checkMemory(); err != nil {
			return err
		}
	}
	select {
	case <-exec.ctx.Done():
		return exec.ctx.Err()
	default:
	}
	return nil
}

func isLoopControlSignal(err error) bool {
	return errors.Is(err, errLoopBreak) || errors.Is(err, errLoopNext)
}

func isHostControlSignal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrStepQuota) ||
		errors.Is(err, ErrMemoryQuota)
}

func (exec *Execution) errorAt(pos Position, format string, args ...any) error {
	return exec.runtimeError(ErrTypeRuntime, fmt.Sprintf(format, args...), pos)
}

// wrapError attaches a position and call stack to a raw evaluation
// error. Control signals and already-built runtime errors pass through
// untouched.
func (exec *Execution) wrapError(err error, pos Position) error {
	if err == nil || isLoopControlSignal(err) || isHostControlSignal(err) {
		return err
	}
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) {
		return runtimeErr
	}
	return exec.runtimeError(classifyErrorType(err), err.Error(), pos)
}

func (exec *Execution) runtimeError(kind, message string, pos Position) *RuntimeError {
	frames := make([]string, 0, len(exec.callStack)+1)
	if len(exec.callStack) > 0 {
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, renderFrame(current.function, pos))
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			frames = append(frames, renderFrame(exec.callStack[i].function, exec.callStack[i].pos))
		}
	} else {
		frames = append(frames, renderFrame("<script>", pos))
	}
	return &RuntimeError{
		Type:      kind,
		Message:   message,
		CodeFrame: formatCodeFrame(exec.source, pos),
		Frames:    frames,
	}
}

func renderFrame(function string, pos Position) string {
	if pos.Line > 0 {
		return fmt.Sprintf("%s (%d:%d)", function, pos.Line, pos.Column)
	}
	return function
}

func (exec *Execution) evalStatements(stmts []Statement, env *environment) (Value, error) {
	exec.envStack = append(exec.envStack, env)
	defer func() {
		exec.envStack = exec.envStack[:len(exec.envStack)-1]
	}()

	result := NewNil()
	for _, stmt := range stmts {
		if err := exec.step(); err != nil {
			return NewNil(), err
		}
		val, err := exec.evalStatement(stmt, env)
		if err != nil {
			return NewNil(), err
		}
		if err := exec.checkMemoryWith(val); err != nil {
			return NewNil(), err
		}
		if exec.returned {
			return val, nil
		}
		result = val
	}
	return result, nil
}

func (exec *Execution) evalStatement(stmt Statement, env *environment) (Value, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		return exec.evalExpression(s.Value, env)
	case *AssignStmt:
		return exec.evalAssignStatement(s, env)
	case *FunctionStmt:
		fn := &Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
		env.Define(s.Name, newFunctionValue(fn))
		return NewNil(), nil
	case *ReturnStmt:
		val := NewNil()
		if s.Value != nil {
			var err error
			val, err = exec.evalExpression(s.Value, env)
			if err != nil {
				return NewNil(), err
			}
		}
		exec.returned = true
		return val, nil
	case *RaiseStmt:
		return exec.evalRaiseStatement(s, env)
	case *AssertStmt:
		return exec.evalAssertStatement(s, env)
	case *IfStmt:
		return exec.evalIfStatement(s, env)
	case *WhileStmt:
		return exec.evalWhileStatement(s, env)
	case *ForStmt:
		return exec.evalForStatement(s, env)
	case *TryStmt:
		return exec.evalTryStatement(s, env)
	case *BreakStmt:
		if exec.loopDepth == 0 {
			return NewNil(), exec.errorAt(s.Pos(), "break used outside of a loop")
		}
		return NewNil(), errLoopBreak
	case *NextStmt:
		if exec.loopDepth == 0 {
			return NewNil(), exec.errorAt(s.Pos(), "next used outside of a loop")
		}
		return NewNil(), errLoopNext
	}
	return NewNil(), exec.errorAt(stmt.Pos(), "unsupported statement")
}

func (exec *Execution) evalAssignStatement(stmt *AssignStmt, env *environment) (Value, error) {
	val, err := exec.evalExpression(stmt.Value, env)
	if err != nil {
		return NewNil(), err
	}
	if err := exec.checkMemoryWith(val); err != nil {
		return NewNil(), err
	}
	if err := exec.assign(stmt.Target, val, env); err != nil {
		return NewNil(), err
	}
	return val, nil
}
