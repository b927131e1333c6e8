// Package cantrip narrows a large capability catalog to the subset
// relevant to a task and executes agent-authored scripts against
// those capabilities in an isolated, timeout-bounded runtime.
//
// A host supplies its capabilities once at setup; the returned
// Orchestration exposes two operations. Select filters the catalog,
// lexically or semantically through a delegated language model when
// one is configured. Run executes a script in the embedded Cant
// language, where every capability is an asynchronous callable bound
// under its own name, so the agent composes loops, branches, and
// error recovery as one execution instead of a round trip per call.
package cantrip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mquist/cantrip/cant"
)

// DefaultExecutionTimeout bounds a run when the host does not choose
// its own limit.
const DefaultExecutionTimeout = 60 * time.Second

// Options configures an orchestration session.
type Options struct {
	// Capabilities is the host's catalog. It is snapshotted at setup
	// and immutable for the session.
	Capabilities []Capability

	// SelectionModel enables semantic selection. Nil means lexical.
	SelectionModel SelectionModel

	// ExecutionTimeout is the wall-clock limit per run. Defaults to
	// DefaultExecutionTimeout.
	ExecutionTimeout time.Duration

	// StepQuota, MemoryQuotaBytes, and RecursionLimit bound script
	// execution beyond the timeout. Zero leaves each at the engine's
	// default.
	StepQuota        int
	MemoryQuotaBytes int
	RecursionLimit   int

	// Logger receives orchestration events and script log output. Nil
	// disables logging.
	Logger *zerolog.Logger

	// ScriptLog, when set, receives the raw prefixed lines scripts
	// write with log(...) instead of routing them through Logger.
	ScriptLog io.Writer
}

// Orchestration is one session: an immutable registry plus the
// selector, bridge, and engine operating over it. Concurrent Select
// and Run calls are independent; each run gets its own execution
// context and binding set.
type Orchestration struct {
	registry *Registry
	selector *selector
	bridge   *bridge
	engine   *cant.Engine
	timeout  time.Duration
	logger   zerolog.Logger
}

// New builds an orchestration session over the host's capabilities.
func New(opts Options) (*Orchestration, error) {
	registry, err := NewRegistry(opts.Capabilities...)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	timeout := opts.ExecutionTimeout
	if timeout <= 0 {
		timeout = DefaultExecutionTimeout
	}

	scriptLog := opts.ScriptLog
	if scriptLog == nil {
		scriptLog = &scriptLogWriter{logger: logger}
	}

	o := &Orchestration{
		registry: registry,
		selector: &selector{registry: registry, model: opts.SelectionModel, logger: logger},
		bridge:   &bridge{registry: registry, logger: logger},
		engine: cant.NewEngine(cant.Config{
			StepQuota:        opts.StepQuota,
			MemoryQuotaBytes: opts.MemoryQuotaBytes,
			RecursionLimit:   opts.RecursionLimit,
			LogWriter:        scriptLog,
		}),
		timeout: timeout,
		logger:  logger,
	}
	return o, nil
}

// Registry returns the session's capability catalog.
func (o *Orchestration) Registry() *Registry {
	return o.registry
}

// Select returns the capabilities relevant to the query as
// serializable projections. It never fails: any internal selection
// error yields an empty result so the calling agent's loop stays
// alive.
func (o *Orchestration) Select(ctx context.Context, searchHint, originalRequest string) Selection {
	return o.selector.Select(ctx, searchHint, originalRequest)
}

// scriptLogWriter routes script log output into the session logger,
// marked as script output, one line per event. One instance is shared
// by every run in the session, so the buffer is locked.
type scriptLogWriter struct {
	logger zerolog.Logger
	mu     sync.Mutex
	buf    bytes.Buffer
}

func (w *scriptLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line: put it back and wait for the rest.
			w.buf.WriteString(line)
			break
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimPrefix(line, cant.ScriptLogPrefix)
		w.logger.Info().Str("source", "script").Msg(line)
	}
	return len(p), nil
}
