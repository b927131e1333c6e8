package cantrip

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Capabilities exposes the session's two operations as invocable
// capabilities with declared schemas, so a host can register them in
// an agent's own tool catalog. Validation of arguments against the
// declared input schemas happens here, inside each capability's own
// Invoke, which is the one place this system validates anything.
func (o *Orchestration) Capabilities() []Capability {
	return []Capability{
		{
			Name:         "select",
			Description:  "Find the capabilities relevant to a task. Returns each match's name, description, and schemas.",
			InputSchema:  selectInputSchema,
			OutputSchema: selectOutputSchema,
			Invoke: func(ctx context.Context, args map[string]any, _ CallInfo) (any, error) {
				if err := validateArgs(selectInputSchema, args); err != nil {
					return nil, err
				}
				hint, _ := args["searchHint"].(string)
				original, _ := args["originalRequest"].(string)
				selection := o.Select(ctx, hint, original)

				entries := make([]any, len(selection))
				for i, entry := range selection {
					e := map[string]any{
						"name":        entry.Name,
						"description": entry.Description,
					}
					if entry.InputSchema != nil {
						e["inputSchema"] = entry.InputSchema
					}
					if entry.OutputSchema != nil {
						e["outputSchema"] = entry.OutputSchema
					}
					entries[i] = e
				}
				return entries, nil
			},
		},
		{
			Name:         "run",
			Description:  "Execute a Cant script that can call the selected capabilities by name, with loops, conditionals, and error handling in one execution.",
			InputSchema:  runInputSchema,
			OutputSchema: runOutputSchema,
			Invoke: func(ctx context.Context, args map[string]any, _ CallInfo) (any, error) {
				if err := validateArgs(runInputSchema, args); err != nil {
					return nil, err
				}
				scriptText, _ := args["scriptText"].(string)
				return o.Run(ctx, scriptText).AsMap(), nil
			},
		},
	}
}

func validateArgs(schema map[string]any, args map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("validate arguments: %w", err)
	}
	if !result.Valid() {
		messages := ""
		for _, desc := range result.Errors() {
			if messages != "" {
				messages += "; "
			}
			messages += desc.String()
		}
		return fmt.Errorf("invalid arguments: %s", messages)
	}
	return nil
}

var selectInputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"searchHint": map[string]any{
			"type":        "string",
			"description": "Substring or topic to match capabilities against. Empty matches everything.",
		},
		"originalRequest": map[string]any{
			"type":        "string",
			"description": "The user's original request, for semantic selection context.",
		},
	},
	"required":             []any{"searchHint"},
	"additionalProperties": false,
}

var selectOutputSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":         map[string]any{"type": "string"},
			"description":  map[string]any{"type": "string"},
			"inputSchema":  map[string]any{"type": "object"},
			"outputSchema": map[string]any{"type": "object"},
		},
		"required": []any{"name", "description"},
	},
}

var runInputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"scriptText": map[string]any{
			"type":        "string",
			"description": "The Cant script to execute.",
		},
	},
	"required":             []any{"scriptText"},
	"additionalProperties": false,
}

var runOutputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"value":   map[string]any{"description": "The script's final value, present on success."},
		"error":   map[string]any{"type": "string", "description": "Failure kind, present on failure."},
		"message": map[string]any{"type": "string", "description": "Human-readable failure detail."},
	},
}
