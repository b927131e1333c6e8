package cantrip

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		Capability{Name: "clock_now", Description: "Returns the current wall-clock time"},
		Capability{Name: "echo", Description: "Echoes its input back"},
		Capability{Name: "kv_get", Description: "Reads a value from the key-value store"},
		Capability{Name: "kv_put", Description: "Writes a value to the key-value store"},
	)
	require.NoError(t, err)
	return r
}

func newTestSelector(t *testing.T, model SelectionModel) *selector {
	t.Helper()
	return &selector{registry: testRegistry(t), model: model, logger: zerolog.Nop()}
}

// modelFunc adapts a function to SelectionModel for tests.
type modelFunc func(ctx context.Context, prompt string, opts CompleteOptions) (string, error)

func (f modelFunc) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	return f(ctx, prompt, opts)
}

func TestLexicalSelectMatchesName(t *testing.T) {
	s := newTestSelector(t, nil)
	sel := s.Select(context.Background(), "clock", "")
	require.Len(t, sel, 1)
	assert.Equal(t, "clock_now", sel[0].Name)
}

func TestLexicalSelectMatchesDescription(t *testing.T) {
	s := newTestSelector(t, nil)
	sel := s.Select(context.Background(), "key-value", "")
	require.Len(t, sel, 2)
	assert.Equal(t, "kv_get", sel[0].Name)
	assert.Equal(t, "kv_put", sel[1].Name)
}

func TestLexicalSelectCaseInsensitive(t *testing.T) {
	s := newTestSelector(t, nil)
	sel := s.Select(context.Background(), "ECHO", "")
	require.Len(t, sel, 1)
	assert.Equal(t, "echo", sel[0].Name)
}

func TestLexicalSelectEmptyHintMatchesAll(t *testing.T) {
	s := newTestSelector(t, nil)
	sel := s.Select(context.Background(), "", "")
	assert.Len(t, sel, 4)
}

func TestLexicalSelectNoMatches(t *testing.T) {
	s := newTestSelector(t, nil)
	sel := s.Select(context.Background(), "teleport", "")
	assert.Empty(t, sel)
}

func TestSemanticSelectFiltersAndOrders(t *testing.T) {
	// The model answers out of registry order and includes a name the
	// registry has never heard of.
	model := modelFunc(func(_ context.Context, prompt string, _ CompleteOptions) (string, error) {
		assert.Contains(t, prompt, "clock_now")
		assert.Contains(t, prompt, "look up stored data")
		return `{"tools": ["kv_get", "teleport", "clock_now"]}`, nil
	})
	s := newTestSelector(t, model)

	sel := s.Select(context.Background(), "storage", "look up stored data")
	require.Len(t, sel, 2)
	assert.Equal(t, "clock_now", sel[0].Name)
	assert.Equal(t, "kv_get", sel[1].Name)
}

func TestSemanticSelectRepairsMalformedOutput(t *testing.T) {
	model := modelFunc(func(_ context.Context, _ string, _ CompleteOptions) (string, error) {
		return "Here you go:\n```json\n{tools: [\"echo\",]}\n```", nil
	})
	s := newTestSelector(t, model)

	sel := s.Select(context.Background(), "echo", "")
	require.Len(t, sel, 1)
	assert.Equal(t, "echo", sel[0].Name)
}

func TestSemanticSelectModelErrorYieldsEmpty(t *testing.T) {
	model := modelFunc(func(_ context.Context, _ string, _ CompleteOptions) (string, error) {
		return "", errors.New("rate limited")
	})
	s := newTestSelector(t, model)

	assert.NotPanics(t, func() {
		sel := s.Select(context.Background(), "echo", "")
		assert.Empty(t, sel)
	})
}

func TestSemanticSelectUnrepairableOutputYieldsEmpty(t *testing.T) {
	model := modelFunc(func(_ context.Context, _ string, _ CompleteOptions) (string, error) {
		return "I recommend the echo tool and maybe kv_get.", nil
	})
	s := newTestSelector(t, model)

	assert.NotPanics(t, func() {
		sel := s.Select(context.Background(), "echo", "")
		assert.Empty(t, sel)
	})
}

func TestSemanticSelectBoundsModelSteps(t *testing.T) {
	var gotSteps int
	model := modelFunc(func(_ context.Context, _ string, opts CompleteOptions) (string, error) {
		gotSteps = opts.MaxSteps
		return `{"tools": []}`, nil
	})
	s := newTestSelector(t, model)

	s.Select(context.Background(), "", "")
	assert.Equal(t, maxModelSteps, gotSteps)
}
