package main

import (
	"context"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/mquist/cantrip"
)

// mockDefinition is one entry of a mock catalog file. Each mock
// answers every invocation with its canned result, after validating
// the arguments against its declared input schema.
type mockDefinition struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	InputSchema  map[string]any `yaml:"inputSchema"`
	OutputSchema map[string]any `yaml:"outputSchema"`
	Result       any            `yaml:"result"`
	Error        string         `yaml:"error"`
}

// loadMockCapabilities reads a YAML catalog of mock capabilities.
// A mock with an error string fails every invocation with it, which
// is how script-side rescue paths get exercised without a live
// backend.
func loadMockCapabilities(path string) ([]cantrip.Capability, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock catalog: %w", err)
	}

	var defs []mockDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse mock catalog: %w", err)
	}

	caps := make([]cantrip.Capability, 0, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("mock catalog entry %d has no name", i)
		}
		caps = append(caps, mockCapability(def))
	}
	return caps, nil
}

func mockCapability(def mockDefinition) cantrip.Capability {
	return cantrip.Capability{
		Name:         def.Name,
		Description:  def.Description,
		InputSchema:  def.InputSchema,
		OutputSchema: def.OutputSchema,
		Invoke: func(_ context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
			if def.InputSchema != nil {
				if err := validateMockArgs(def.Name, def.InputSchema, args); err != nil {
					return nil, err
				}
			}
			if def.Error != "" {
				return nil, fmt.Errorf("%s", def.Error)
			}
			return def.Result, nil
		},
	}
}

func validateMockArgs(name string, schema map[string]any, args map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("%s: validate arguments: %w", name, err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("%s: invalid arguments: %s", name, first.String())
	}
	return nil
}
