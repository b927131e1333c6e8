package cant

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const defaultRecursionLimit = 64

// Config controls engine-wide resource limits. The zero value is
// usable: no step or memory cap, so the run context's deadline is the
// only thing that stops a runaway script.
type Config struct {
	// StepQuota caps evaluation steps per run. Zero disables the cap.
	StepQuota int

	// MemoryQuotaBytes caps the estimated bytes held by script values.
	// Zero disables the cap.
	MemoryQuotaBytes int

	// RecursionLimit caps script call depth. Defaults to 64.
	RecursionLimit int

	// LogWriter receives output from the log builtin. Defaults to
	// io.Discard.
	LogWriter io.Writer
}

func (c Config) withDefaults() Config {
	if c.RecursionLimit <= 0 {
		c.RecursionLimit = defaultRecursionLimit
	}
	if c.LogWriter == nil {
		c.LogWriter = io.Discard
	}
	return c
}

// Engine compiles scripts. It is safe for concurrent use; each Run
// gets fully isolated state.
type Engine struct {
	config Config
}

// NewEngine returns an engine with the given limits.
func NewEngine(cfg Config) *Engine {
	return &Engine{config: cfg.withDefaults()}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Compile parses source into a runnable script. The returned error is
// a *SyntaxError when the source does not parse.
func (e *Engine) Compile(source string) (*Script, error) {
	p := newParser(source)
	program, errs := p.ParseProgram()
	if len(errs) > 0 {
		return nil, syntaxErrorFrom(source, errs)
	}
	return &Script{engine: e, program: program, source: source}, nil
}

func syntaxErrorFrom(source string, errs []parseError) *SyntaxError {
	msgs := make([]string, len(errs))
	for i, pe := range errs {
		msgs[i] = fmt.Sprintf("line %d, column %d: %s", pe.pos.Line, pe.pos.Column, pe.msg)
	}
	return &SyntaxError{
		Message:   strings.Join(msgs, "\n"),
		CodeFrame: formatCodeFrame(source, errs[0].pos),
	}
}

// Script is a compiled program bound to the engine that compiled it.
// A script can run many times; runs share nothing.
type Script struct {
	engine  *Engine
	program *Program
	source  string
}

// CapabilityBinding carries what an adapter needs to build its
// bindings for one run.
type CapabilityBinding struct {
	Context context.Context
	Engine  *Engine
}

// CapabilityAdapter injects host callables and values into a run's
// root scope. Bind is called once per run; the returned values are
// defined by name before the script starts.
type CapabilityAdapter interface {
	Bind(binding CapabilityBinding) (map[string]Value, error)
}

// RunOptions configures a single script run.
type RunOptions struct {
	// Adapters contribute host callables and values to the root scope.
	Adapters []CapabilityAdapter

	// Globals are plain values defined in the root scope after the
	// adapters run.
	Globals map[string]Value
}

// Run executes the script in a fresh root scope. Every run gets its
// own builtin table and capability bindings; nothing persists between
// runs, so running the same script twice on the same inputs behaves
// the same way twice.
//
// The context bounds execution: when it fires, evaluation stops with
// the context's error. A script whose final value is a still-running
// task is awaited, so ending on a capability call yields that call's
// result.
func (s *Script) Run(ctx context.Context, opts RunOptions) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	root := newEnv(nil)
	defineBuiltins(root)

	binding := CapabilityBinding{Context: ctx, Engine: s.engine}
	for _, adapter := range opts.Adapters {
		bound, err := adapter.Bind(binding)
		if err != nil {
			return NewNil(), fmt.Errorf("bind capabilities: %w", err)
		}
		for name, value := range bound {
			root.Define(name, value)
		}
	}

	for name, value := range opts.Globals {
		root.Define(name, value)
	}

	exec := &Execution{
		ctx:            ctx,
		source:         s.source,
		rootEnv:        root,
		recursionLimit: s.engine.config.RecursionLimit,
		stepQuota:      s.engine.config.StepQuota,
		memoryQuota:    s.engine.config.MemoryQuotaBytes,
		logw:           s.engine.config.LogWriter,
	}

	result, err := exec.evalStatements(s.program.Statements, root)
	exec.returned = false
	if err != nil {
		return NewNil(), err
	}

	if result.Kind() == KindTask {
		return exec.awaitTask(result.Task(), Position{})
	}
	return result, nil
}
