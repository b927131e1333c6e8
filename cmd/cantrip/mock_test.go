package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mquist/cantrip"
)

const mockCatalogYAML = `
- name: weather_lookup
  description: Returns the weather for a city.
  inputSchema:
    type: object
    properties:
      city:
        type: string
    required: [city]
  result:
    city: Lisbon
    temperature: 21
- name: broken_backend
  description: Always fails.
  error: backend on fire
`

func writeMockCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mocks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mock catalog: %v", err)
	}
	return path
}

func TestLoadMockCapabilities(t *testing.T) {
	caps, err := loadMockCapabilities(writeMockCatalog(t, mockCatalogYAML))
	if err != nil {
		t.Fatalf("loadMockCapabilities failed: %v", err)
	}
	if len(caps) != 2 {
		t.Fatalf("expected 2 capabilities, got %d", len(caps))
	}
	if caps[0].Name != "weather_lookup" || caps[1].Name != "broken_backend" {
		t.Fatalf("unexpected names: %q, %q", caps[0].Name, caps[1].Name)
	}
}

func TestMockCapabilityReturnsCannedResult(t *testing.T) {
	caps, err := loadMockCapabilities(writeMockCatalog(t, mockCatalogYAML))
	if err != nil {
		t.Fatalf("loadMockCapabilities failed: %v", err)
	}

	result, err := caps[0].Invoke(context.Background(), map[string]any{"city": "Lisbon"}, cantrip.CallInfo{})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	if payload["city"] != "Lisbon" {
		t.Fatalf("unexpected result: %v", payload)
	}
}

func TestMockCapabilityValidatesInput(t *testing.T) {
	caps, err := loadMockCapabilities(writeMockCatalog(t, mockCatalogYAML))
	if err != nil {
		t.Fatalf("loadMockCapabilities failed: %v", err)
	}

	_, err = caps[0].Invoke(context.Background(), map[string]any{}, cantrip.CallInfo{})
	if err == nil {
		t.Fatalf("expected validation failure for missing city")
	}
	if !strings.Contains(err.Error(), "invalid arguments") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMockCapabilityErrorEntry(t *testing.T) {
	caps, err := loadMockCapabilities(writeMockCatalog(t, mockCatalogYAML))
	if err != nil {
		t.Fatalf("loadMockCapabilities failed: %v", err)
	}

	_, err = caps[1].Invoke(context.Background(), map[string]any{}, cantrip.CallInfo{})
	if err == nil || !strings.Contains(err.Error(), "backend on fire") {
		t.Fatalf("expected canned error, got %v", err)
	}
}

func TestLoadMockCapabilitiesRejectsMissingName(t *testing.T) {
	_, err := loadMockCapabilities(writeMockCatalog(t, "- description: nameless\n"))
	if err == nil || !strings.Contains(err.Error(), "has no name") {
		t.Fatalf("expected missing name error, got %v", err)
	}
}

func TestLoadMockCapabilitiesRejectsBadYAML(t *testing.T) {
	_, err := loadMockCapabilities(writeMockCatalog(t, "{not yaml: ["))
	if err == nil {
		t.Fatalf("expected parse error")
	}
}
