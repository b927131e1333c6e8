package cant

import (
	"context"
	"fmt"
)

// Task is the handle for an in-flight asynchronous operation. The
// backing goroutine starts when the task is created; await settles on
// its result. A settled task can be awaited any number of times and
// yields the same result each time.
type Task struct {
	id     int
	name   string
	done   chan struct{}
	result Value
	err    error
}

// Done reports whether the task has settled.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// StartTask dispatches fn on its own goroutine and returns the task
// value the script awaits. Panics inside fn settle the task with an
// opaque error so host internals never reach the script.
func (exec *Execution) StartTask(name string, fn func(ctx context.Context) (Value, error)) Value {
	exec.taskSeq++
	t := &Task{id: exec.taskSeq, name: name, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.result = NewNil()
				t.err = fmt.Errorf("task %s failed internally", name)
			}
		}()
		t.result, t.err = fn(exec.ctx)
	}()

	return newTaskValue(t)
}

// awaitTask blocks until the task settles or the run's context fires.
// A context abort discards whatever the task eventually produces.
func (exec *Execution) awaitTask(t *Task, pos Position) (Value, error) {
	select {
	case <-t.done:
		if t.err != nil {
			return NewNil(), exec.wrapError(t.err, pos)
		}
		return t.result, nil
	case <-exec.ctx.Done():
		return NewNil(), exec.ctx.Err()
	}
}
