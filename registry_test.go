package cantrip

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPreservesOrder(t *testing.T) {
	r, err := NewRegistry(
		Capability{Name: "clock_now", Description: "current time"},
		Capability{Name: "echo", Description: "echo input"},
		Capability{Name: "kv_get", Description: "read a key"},
	)
	require.NoError(t, err)

	caps := r.Capabilities()
	require.Len(t, caps, 3)
	assert.Equal(t, "clock_now", caps[0].Name)
	assert.Equal(t, "echo", caps[1].Name)
	assert.Equal(t, "kv_get", caps[2].Name)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(Capability{Name: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	_, err := NewRegistry(
		Capability{Name: "echo"},
		Capability{Name: "echo"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate capability "echo"`)
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(
		Capability{Name: "echo", Description: "echo input"},
	)
	require.NoError(t, err)

	cap, ok := r.Lookup("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo input", cap.Description)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	r, err := NewRegistry(Capability{Name: "echo"})
	require.NoError(t, err)

	caps := r.Capabilities()
	caps[0].Name = "mutated"

	again, ok := r.Lookup("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo", again.Name)
}

func TestProjectNeverCarriesInvoke(t *testing.T) {
	cap := Capability{
		Name:        "echo",
		Description: "echo input",
		InputSchema: map[string]any{"type": "object"},
		Invoke:      func(_ context.Context, _ map[string]any, _ CallInfo) (any, error) { return nil, nil },
	}
	entry := cap.Project()
	assert.Equal(t, "echo", entry.Name)
	assert.Equal(t, "echo input", entry.Description)
	assert.Equal(t, map[string]any{"type": "object"}, entry.InputSchema)
}
