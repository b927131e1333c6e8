package cant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recorderAdapter installs test capabilities as builtins that dispatch
// on tasks, the way a host capability bridge does.
type recorderAdapter struct {
	mu    sync.Mutex
	calls []string
	delay map[string]time.Duration
}

func (a *recorderAdapter) record(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, name)
}

func (a *recorderAdapter) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	copy(out, a.calls)
	return out
}

func (a *recorderAdapter) Bind(_ CapabilityBinding) (map[string]Value, error) {
	bound := make(map[string]Value)
	for _, name := range []string{"fetch_a", "fetch_b", "fetch_c"} {
		name := name
		bound[name] = NewBuiltin(name, func(exec *Execution, _ Value, _ []Value, _ map[string]Value) (Value, error) {
			return exec.StartTask(name, func(ctx context.Context) (Value, error) {
				if d := a.delay[name]; d > 0 {
					select {
					case <-time.After(d):
					case <-ctx.Done():
						return NewNil(), ctx.Err()
					}
				}
				a.record(name)
				return NewString(name), nil
			}), nil
		})
	}
	bound["broken"] = NewBuiltin("broken", func(exec *Execution, _ Value, _ []Value, _ map[string]Value) (Value, error) {
		return exec.StartTask("broken", func(_ context.Context) (Value, error) {
			return NewNil(), NewError(ErrTypeCapability, "broken failed")
		}), nil
	})
	return bound, nil
}

func runWithAdapter(t *testing.T, adapter CapabilityAdapter, src string) (Value, error) {
	t.Helper()
	engine := NewEngine(Config{})
	script, err := engine.Compile(src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return script.Run(context.Background(), RunOptions{Adapters: []CapabilityAdapter{adapter}})
}

func TestSequentialAwaitsObserveIssueOrder(t *testing.T) {
	adapter := &recorderAdapter{}
	result, err := runWithAdapter(t, adapter, `first = await fetch_a()
second = await fetch_b()
third = await fetch_c()
first + second + third`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.String() != "fetch_afetch_bfetch_c" {
		t.Fatalf("unexpected result: %q", result.String())
	}
	calls := adapter.Calls()
	if len(calls) != 3 || calls[0] != "fetch_a" || calls[1] != "fetch_b" || calls[2] != "fetch_c" {
		t.Fatalf("side effects out of order: %v", calls)
	}
}

func TestTasksIssuedBeforeAwaitRunConcurrently(t *testing.T) {
	adapter := &recorderAdapter{delay: map[string]time.Duration{
		"fetch_a": 60 * time.Millisecond,
		"fetch_b": 60 * time.Millisecond,
	}}
	start := time.Now()
	result, err := runWithAdapter(t, adapter, `a = fetch_a()
b = fetch_b()
(await a) + (await b)`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.String() != "fetch_afetch_b" {
		t.Fatalf("unexpected result: %q", result.String())
	}
	// Both tasks were dispatched before either await, so the waits
	// overlap rather than stack.
	if elapsed := time.Since(start); elapsed > 110*time.Millisecond {
		t.Fatalf("tasks did not overlap: %v", elapsed)
	}
}

func TestAwaitNonTaskIsIdentity(t *testing.T) {
	result := mustRun(t, `await 42`)
	if result.Int() != 42 {
		t.Fatalf("expected 42, got %s", result.String())
	}
}

func TestAwaitSettledTaskTwice(t *testing.T) {
	adapter := &recorderAdapter{}
	result, err := runWithAdapter(t, adapter, `task = fetch_a()
first = await task
second = await task
first + second`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.String() != "fetch_afetch_a" {
		t.Fatalf("unexpected result: %q", result.String())
	}
	if calls := adapter.Calls(); len(calls) != 1 {
		t.Fatalf("task body ran %d times", len(calls))
	}
}

func TestTrailingTaskIsAwaitedImplicitly(t *testing.T) {
	adapter := &recorderAdapter{}
	result, err := runWithAdapter(t, adapter, `fetch_a()`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.String() != "fetch_a" {
		t.Fatalf("expected the task result, got %q", result.String())
	}
}

func TestTaskErrorIsRescuable(t *testing.T) {
	adapter := &recorderAdapter{}
	result, err := runWithAdapter(t, adapter, `try
  await broken()
rescue CapabilityError => e
  "handled: " + e.message
end`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.String() != "handled: broken failed" {
		t.Fatalf("unexpected result: %q", result.String())
	}
}

func TestSleepHonorsContext(t *testing.T) {
	engine := NewEngine(Config{})
	script, err := engine.Compile(`await sleep(10000)`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = script.Run(ctx, RunOptions{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("sleep ignored cancellation: %v", elapsed)
	}
}

func TestTaskDoneMember(t *testing.T) {
	adapter := &recorderAdapter{}
	result, err := runWithAdapter(t, adapter, `task = fetch_a()
await task
task.done`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Bool() {
		t.Fatal("awaited task should report done")
	}
}

func TestTaskStringShowsIdentity(t *testing.T) {
	adapter := &recorderAdapter{}
	result, err := runWithAdapter(t, adapter, `a = fetch_a()
b = fetch_b()
str(a) + " " + str(b)`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.String() != "<task 1: fetch_a> <task 2: fetch_b>" {
		t.Fatalf("unexpected rendering: %s", result.String())
	}
}
