package cantrip

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// SelectionModel is the delegated language model used for semantic
// capability selection. Complete returns text expected to contain a
// JSON object shaped {"tools": ["name", ...]}.
type SelectionModel interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// CompleteOptions bounds one delegated completion.
type CompleteOptions struct {
	// MaxSteps caps internal continuation rounds so a delegated call
	// cannot loop without bound.
	MaxSteps int
}

// maxModelSteps is the fixed continuation cap for selection calls.
const maxModelSteps = 3

// selector narrows the registry to the subset relevant to a query.
// With no model configured it filters lexically; with one it delegates
// and repairs the model's structured output. Select never fails the
// caller: every internal error collapses to an empty selection.
type selector struct {
	registry *Registry
	model    SelectionModel
	logger   zerolog.Logger
}

func (s *selector) Select(ctx context.Context, searchHint, originalRequest string) Selection {
	if s.model == nil {
		return s.selectLexical(searchHint)
	}
	return s.selectSemantic(ctx, searchHint, originalRequest)
}

// selectLexical includes a capability iff its name or description
// contains the hint as a case-insensitive substring. An empty hint
// matches everything; that is the intended fallback, not an accident.
func (s *selector) selectLexical(searchHint string) Selection {
	hint := strings.ToLower(searchHint)
	result := Selection{}
	for _, cap := range s.registry.Capabilities() {
		if strings.Contains(strings.ToLower(cap.Name), hint) ||
			strings.Contains(strings.ToLower(cap.Description), hint) {
			result = append(result, cap.Project())
		}
	}
	return result
}

func (s *selector) selectSemantic(ctx context.Context, searchHint, originalRequest string) Selection {
	prompt := buildSelectionPrompt(s.registry, searchHint, originalRequest)

	output, err := s.model.Complete(ctx, prompt, CompleteOptions{MaxSteps: maxModelSteps})
	if err != nil {
		s.logger.Warn().Err(err).Msg("semantic selection failed, returning empty selection")
		return Selection{}
	}

	names, err := decodeToolSelection(output)
	if err != nil {
		s.logger.Warn().Err(err).Msg("selection output unparseable after repair, returning empty selection")
		return Selection{}
	}

	// The model may hallucinate names; only registry entries survive,
	// in registry order.
	requested := make(map[string]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}
	result := Selection{}
	for _, cap := range s.registry.Capabilities() {
		if requested[cap.Name] {
			result = append(result, cap.Project())
		}
	}
	return result
}

func buildSelectionPrompt(registry *Registry, searchHint, originalRequest string) string {
	var sb strings.Builder
	sb.WriteString("You are selecting tools for an automated agent.\n\n")
	sb.WriteString("Available tools:\n")
	for _, cap := range registry.Capabilities() {
		fmt.Fprintf(&sb, "- %s: %s\n", cap.Name, cap.Description)
	}
	if originalRequest != "" {
		fmt.Fprintf(&sb, "\nThe user's original request:\n%s\n", originalRequest)
	}
	fmt.Fprintf(&sb, "\nSearch hint: %s\n", searchHint)
	sb.WriteString("\nRespond with a JSON object of the form {\"tools\": [\"name\", ...]} ")
	sb.WriteString("naming only the tools relevant to the request. ")
	sb.WriteString("Respond with the JSON object only, no other text.")
	return sb.String()
}
