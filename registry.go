package cantrip

import (
	"context"
	"fmt"
)

// InvokeFunc is the host-supplied implementation of a capability. It
// receives plain data arguments and per-call metadata, and returns
// plain data.
type InvokeFunc func(ctx context.Context, args map[string]any, call CallInfo) (any, error)

// CallInfo carries per-invocation metadata into a capability. The
// conversation context is always empty for bridged calls; the field
// exists so the wire shape is explicit.
type CallInfo struct {
	InvocationID string
	Conversation []Message
}

// Message is one turn of conversational context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Capability describes one host-supplied operation. A nil Invoke is a
// defined state: the capability is listed and selectable but invoking
// it fails with CapabilityNotExecutable.
type Capability struct {
	Name         string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any
	Invoke       InvokeFunc
}

// SelectionEntry is the serializable projection of a capability. It
// never carries the invocation function.
type SelectionEntry struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

// Selection is an ordered set of projected capabilities.
type Selection []SelectionEntry

// Registry is the ordered, immutable capability catalog for a session.
// It is safe for concurrent readers.
type Registry struct {
	ordered []Capability
	index   map[string]int
}

// NewRegistry builds a registry from the host's capabilities. Names
// must be non-empty and unique; iteration order is insertion order.
func NewRegistry(caps ...Capability) (*Registry, error) {
	r := &Registry{
		ordered: make([]Capability, 0, len(caps)),
		index:   make(map[string]int, len(caps)),
	}
	for _, cap := range caps {
		if cap.Name == "" {
			return nil, fmt.Errorf("capability with empty name")
		}
		if _, dup := r.index[cap.Name]; dup {
			return nil, fmt.Errorf("duplicate capability %q", cap.Name)
		}
		r.index[cap.Name] = len(r.ordered)
		r.ordered = append(r.ordered, cap)
	}
	return r, nil
}

// Len returns the number of capabilities.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Capabilities returns the capabilities in registry order. The slice
// is a copy; the entries share the host's schema maps.
func (r *Registry) Capabilities() []Capability {
	out := make([]Capability, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Lookup returns the capability with the given name.
func (r *Registry) Lookup(name string) (Capability, bool) {
	i, ok := r.index[name]
	if !ok {
		return Capability{}, false
	}
	return r.ordered[i], true
}

// Project renders a capability as a selection entry.
func (c Capability) Project() SelectionEntry {
	return SelectionEntry{
		Name:         c.Name,
		Description:  c.Description,
		InputSchema:  c.InputSchema,
		OutputSchema: c.OutputSchema,
	}
}
