package cantrip

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	o, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultExecutionTimeout, o.timeout)
	assert.Equal(t, 0, o.Registry().Len())
}

func TestNewRejectsBadCatalog(t *testing.T) {
	_, err := New(Options{Capabilities: []Capability{{Name: ""}}})
	require.Error(t, err)
}

func TestMetaCapabilitiesShape(t *testing.T) {
	o, err := New(Options{})
	require.NoError(t, err)

	caps := o.Capabilities()
	require.Len(t, caps, 2)
	assert.Equal(t, "select", caps[0].Name)
	assert.Equal(t, "run", caps[1].Name)
	for _, cap := range caps {
		assert.NotEmpty(t, cap.Description)
		assert.NotNil(t, cap.InputSchema)
		assert.NotNil(t, cap.OutputSchema)
		assert.NotNil(t, cap.Invoke)
	}
}

func TestMetaSelectInvoke(t *testing.T) {
	o, err := New(Options{Capabilities: []Capability{
		{Name: "clock_now", Description: "Returns the current time"},
		{Name: "echo", Description: "Echoes its input"},
	}})
	require.NoError(t, err)

	selectCap := o.Capabilities()[0]
	result, err := selectCap.Invoke(context.Background(), map[string]any{
		"searchHint": "clock",
	}, CallInfo{})
	require.NoError(t, err)

	entries, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "clock_now", entry["name"])
	assert.Equal(t, "Returns the current time", entry["description"])
}

func TestMetaSelectValidatesInput(t *testing.T) {
	o, err := New(Options{})
	require.NoError(t, err)

	selectCap := o.Capabilities()[0]

	// Missing the required searchHint.
	_, err = selectCap.Invoke(context.Background(), map[string]any{}, CallInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")

	// Unknown fields are rejected.
	_, err = selectCap.Invoke(context.Background(), map[string]any{
		"searchHint": "x",
		"extra":      true,
	}, CallInfo{})
	require.Error(t, err)
}

func TestMetaRunInvoke(t *testing.T) {
	o, err := New(Options{ExecutionTimeout: 5 * time.Second})
	require.NoError(t, err)

	runCap := o.Capabilities()[1]
	result, err := runCap.Invoke(context.Background(), map[string]any{
		"scriptText": "return 6 * 7",
	}, CallInfo{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": int64(42)}, result)
}

func TestMetaRunReportsFaultsAsData(t *testing.T) {
	o, err := New(Options{ExecutionTimeout: 5 * time.Second})
	require.NoError(t, err)

	runCap := o.Capabilities()[1]

	// A failing script is still a successful invocation; the failure
	// travels in the result payload.
	result, err := runCap.Invoke(context.Background(), map[string]any{
		"scriptText": "nope()",
	}, CallInfo{})
	require.NoError(t, err)

	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ReferenceError", m["error"])
	assert.NotEmpty(t, m["message"])
}

func TestMetaRunValidatesInput(t *testing.T) {
	o, err := New(Options{})
	require.NoError(t, err)

	runCap := o.Capabilities()[1]
	_, err = runCap.Invoke(context.Background(), map[string]any{
		"scriptText": 42,
	}, CallInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func TestScriptLogRoutesToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	o, err := New(Options{Logger: &logger, ExecutionTimeout: 5 * time.Second})
	require.NoError(t, err)

	out := o.Run(context.Background(), `log("checkpoint reached")`)
	require.False(t, out.Failed(), "fault: %+v", out.Fault)

	assert.Contains(t, buf.String(), "checkpoint reached")
	assert.Contains(t, buf.String(), `"source":"script"`)
}

func TestScriptLogWriterHandlesSplitLines(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	w := &scriptLogWriter{logger: logger}

	_, err := w.Write([]byte("par"))
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "partial line must not log")

	_, err = w.Write([]byte("tial line\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "partial line")
}
