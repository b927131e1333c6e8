package cantrip

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestration(t *testing.T, opts Options) *Orchestration {
	t.Helper()
	if opts.ExecutionTimeout == 0 {
		opts.ExecutionTimeout = 5 * time.Second
	}
	o, err := New(opts)
	require.NoError(t, err)
	return o
}

// callLog records capability invocations in arrival order.
type callLog struct {
	mu    sync.Mutex
	calls []string
	infos []CallInfo
}

func (l *callLog) record(name string, info CallInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
	l.infos = append(l.infos, info)
}

func (l *callLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func TestRunReturnsValue(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	out := o.Run(context.Background(), "return 42")
	require.False(t, out.Failed())
	assert.Equal(t, int64(42), out.Value)
	assert.Equal(t, map[string]any{"value": int64(42)}, out.AsMap())
}

func TestRunLastExpressionIsValue(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	out := o.Run(context.Background(), `
x = {"a": 1, "b": 2}
x.keys
`)
	require.False(t, out.Failed())
	assert.Equal(t, []any{"a", "b"}, out.Value)
}

func TestRunSyntaxErrorFault(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	out := o.Run(context.Background(), "if true\n  1 +\nend")
	require.True(t, out.Failed())
	assert.Equal(t, FaultSyntax, out.Fault.Kind)

	m := out.AsMap()
	assert.Equal(t, FaultSyntax, m["error"])
	assert.NotEmpty(t, m["message"])
	_, hasValue := m["value"]
	assert.False(t, hasValue, "failure shape must not carry a value")
}

func TestRunUnboundNameFault(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	out := o.Run(context.Background(), "no_such_capability()")
	require.True(t, out.Failed())
	assert.Equal(t, "ReferenceError", out.Fault.Kind)
	assert.Contains(t, out.Fault.Message, "no_such_capability")
}

func TestRunFaultHidesHostInternals(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	out := o.Run(context.Background(), "raise \"boom\"")
	require.True(t, out.Failed())
	assert.NotContains(t, out.Fault.Message, ".go")
	assert.NotContains(t, out.Fault.Message, "goroutine")
}

func TestRunTimeoutFault(t *testing.T) {
	o := newTestOrchestration(t, Options{ExecutionTimeout: 200 * time.Millisecond})

	start := time.Now()
	out := o.Run(context.Background(), "while true\n  1\nend")
	elapsed := time.Since(start)

	require.True(t, out.Failed())
	assert.Equal(t, FaultTimeout, out.Fault.Kind)
	assert.Less(t, elapsed, 2*time.Second, "deadline must cut the run off promptly")
}

func TestRunTimeoutCoversBlockingCapability(t *testing.T) {
	// A capability that ignores its context cannot hold the run open.
	block := Capability{
		Name:        "stall",
		Description: "never returns",
		Invoke: func(_ context.Context, _ map[string]any, _ CallInfo) (any, error) {
			time.Sleep(5 * time.Second)
			return nil, nil
		},
	}
	o := newTestOrchestration(t, Options{
		Capabilities:     []Capability{block},
		ExecutionTimeout: 200 * time.Millisecond,
	})

	start := time.Now()
	out := o.Run(context.Background(), "await stall()")
	elapsed := time.Since(start)

	require.True(t, out.Failed())
	assert.Equal(t, FaultTimeout, out.Fault.Kind)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRunCanceledContext(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := o.Run(ctx, "return 1")
	require.True(t, out.Failed())
	assert.Equal(t, FaultExecution, out.Fault.Kind)
	assert.Contains(t, out.Fault.Message, "canceled")
}

func TestRunCapabilityRoundTrip(t *testing.T) {
	log := &callLog{}
	echo := Capability{
		Name:        "echo",
		Description: "echoes its input",
		Invoke: func(_ context.Context, args map[string]any, info CallInfo) (any, error) {
			log.record("echo", info)
			return map[string]any{"echoed": args["text"]}, nil
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{echo}})

	out := o.Run(context.Background(), `
result = await echo(text: "hello")
result["echoed"]
`)
	require.False(t, out.Failed(), "fault: %+v", out.Fault)
	assert.Equal(t, "hello", out.Value)
	assert.Equal(t, []string{"echo"}, log.names())
}

func TestRunSequentialAwaitOrder(t *testing.T) {
	log := &callLog{}
	step := Capability{
		Name:        "step",
		Description: "records its call",
		Invoke: func(_ context.Context, args map[string]any, info CallInfo) (any, error) {
			log.record(fmt.Sprint(args["n"]), info)
			return args["n"], nil
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{step}})

	out := o.Run(context.Background(), `
total = 0
for n in 1..3
  total = total + await step(n: n)
end
total
`)
	require.False(t, out.Failed(), "fault: %+v", out.Fault)
	assert.Equal(t, int64(6), out.Value)
	assert.Equal(t, []string{"1", "2", "3"}, log.names())
}

func TestRunConcurrentDispatch(t *testing.T) {
	// Two calls issued before either await; combined wall time must be
	// closer to one delay than two.
	delay := 150 * time.Millisecond
	slow := Capability{
		Name:        "slow",
		Description: "sleeps then answers",
		Invoke: func(ctx context.Context, args map[string]any, _ CallInfo) (any, error) {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return args["n"], nil
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{slow}})

	start := time.Now()
	out := o.Run(context.Background(), `
a = slow(n: 1)
b = slow(n: 2)
(await a) + (await b)
`)
	elapsed := time.Since(start)

	require.False(t, out.Failed(), "fault: %+v", out.Fault)
	assert.Equal(t, int64(3), out.Value)
	assert.Less(t, elapsed, 2*delay, "calls dispatched before await must overlap")
}

func TestRunInvocationIDsUnique(t *testing.T) {
	log := &callLog{}
	ping := Capability{
		Name:        "ping",
		Description: "records its invocation id",
		Invoke: func(_ context.Context, _ map[string]any, info CallInfo) (any, error) {
			log.record("ping", info)
			return nil, nil
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{ping}})

	out := o.Run(context.Background(), `
for n in 1..3
  await ping()
end
`)
	require.False(t, out.Failed(), "fault: %+v", out.Fault)

	seen := map[string]bool{}
	for _, info := range log.infos {
		assert.True(t, strings.HasPrefix(info.InvocationID, "ping-"))
		assert.False(t, seen[info.InvocationID], "invocation id %q repeated", info.InvocationID)
		seen[info.InvocationID] = true
		assert.Empty(t, info.Conversation)
	}
	assert.Len(t, seen, 3)
}

func TestRunCapabilityErrorRescuable(t *testing.T) {
	fail := Capability{
		Name:        "flaky",
		Description: "always fails",
		Invoke: func(_ context.Context, _ map[string]any, _ CallInfo) (any, error) {
			return nil, fmt.Errorf("upstream unavailable")
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{fail}})

	out := o.Run(context.Background(), `
try
  await flaky()
rescue CapabilityError => e
  return e["message"]
end
`)
	require.False(t, out.Failed(), "fault: %+v", out.Fault)
	assert.Contains(t, out.Value, "upstream unavailable")
}

func TestRunCapabilityPanicIsOpaque(t *testing.T) {
	boom := Capability{
		Name:        "boom",
		Description: "panics",
		Invoke: func(_ context.Context, _ map[string]any, _ CallInfo) (any, error) {
			panic("secret internal state")
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{boom}})

	out := o.Run(context.Background(), "await boom()")
	require.True(t, out.Failed())
	assert.Equal(t, "CapabilityError", out.Fault.Kind)
	assert.NotContains(t, out.Fault.Message, "secret internal state")
}

func TestRunNilInvokeNotExecutable(t *testing.T) {
	listed := Capability{Name: "listed_only", Description: "selectable but not runnable"}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{listed}})

	out := o.Run(context.Background(), "await listed_only()")
	require.True(t, out.Failed())
	assert.Equal(t, "CapabilityNotExecutable", out.Fault.Kind)
}

func TestRunArgumentHashAndKwargsExclusive(t *testing.T) {
	echo := Capability{
		Name:        "echo",
		Description: "echoes",
		Invoke: func(_ context.Context, args map[string]any, _ CallInfo) (any, error) {
			return args, nil
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{echo}})

	out := o.Run(context.Background(), `await echo({"a": 1})`)
	require.False(t, out.Failed(), "fault: %+v", out.Fault)
	assert.Equal(t, map[string]any{"a": int64(1)}, out.Value)

	out = o.Run(context.Background(), `await echo({"a": 1}, b: 2)`)
	require.True(t, out.Failed())
}

func TestRunSandboxBoundary(t *testing.T) {
	o := newTestOrchestration(t, Options{})

	// Nothing beyond the installed bindings is reachable: no module
	// loading, no filesystem, no process access.
	for _, script := range []string{
		`require("fs")`,
		`File.read("/etc/passwd")`,
		`exit(1)`,
		`os.exec("ls")`,
	} {
		out := o.Run(context.Background(), script)
		require.True(t, out.Failed(), "script %q must not succeed", script)
		assert.Equal(t, "ReferenceError", out.Fault.Kind, "script %q", script)
	}
}

func TestRunIdempotentWithoutSideEffects(t *testing.T) {
	o := newTestOrchestration(t, Options{})
	script := `
total = 0
for n in 1..10
  total = total + n * n
end
total
`
	first := o.Run(context.Background(), script)
	second := o.Run(context.Background(), script)
	require.False(t, first.Failed())
	require.False(t, second.Failed())
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, int64(385), first.Value)
}

func TestRunRepeatedIsIsolated(t *testing.T) {
	o := newTestOrchestration(t, Options{})

	first := o.Run(context.Background(), "x = 10\nx")
	require.False(t, first.Failed())
	assert.Equal(t, int64(10), first.Value)

	// State from the first run must not leak into the second.
	second := o.Run(context.Background(), "x")
	require.True(t, second.Failed())
	assert.Equal(t, "ReferenceError", second.Fault.Kind)
}

func TestCheckCompilesWithoutRunning(t *testing.T) {
	called := false
	probe := Capability{
		Name:        "probe",
		Description: "must never run",
		Invoke: func(_ context.Context, _ map[string]any, _ CallInfo) (any, error) {
			called = true
			return nil, nil
		},
	}
	o := newTestOrchestration(t, Options{Capabilities: []Capability{probe}})

	require.NoError(t, o.Check("await probe()"))
	assert.False(t, called)
	assert.Error(t, o.Check("if true"))
}
