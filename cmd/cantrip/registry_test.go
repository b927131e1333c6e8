package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mquist/cantrip"
)

func demoCatalog(t *testing.T) map[string]cantrip.Capability {
	t.Helper()
	caps, cleanup, err := demoCapabilities(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("demoCapabilities failed: %v", err)
	}
	t.Cleanup(cleanup)

	byName := make(map[string]cantrip.Capability, len(caps))
	for _, cap := range caps {
		byName[cap.Name] = cap
	}
	return byName
}

func TestDemoCatalogContents(t *testing.T) {
	byName := demoCatalog(t)
	for _, name := range []string{"clock_now", "echo", "rand_int", "sleep_ms", "kv_get", "kv_put", "kv_delete", "kv_list"} {
		cap, ok := byName[name]
		if !ok {
			t.Fatalf("capability %q missing from demo catalog", name)
		}
		if cap.Invoke == nil {
			t.Fatalf("capability %q has no invoke function", name)
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	byName := demoCatalog(t)
	ctx := context.Background()

	if _, err := byName["kv_put"].Invoke(ctx, map[string]any{"key": "a", "value": "1"}, cantrip.CallInfo{}); err != nil {
		t.Fatalf("kv_put failed: %v", err)
	}
	if _, err := byName["kv_put"].Invoke(ctx, map[string]any{"key": "b", "value": "2"}, cantrip.CallInfo{}); err != nil {
		t.Fatalf("kv_put failed: %v", err)
	}

	got, err := byName["kv_get"].Invoke(ctx, map[string]any{"key": "a"}, cantrip.CallInfo{})
	if err != nil {
		t.Fatalf("kv_get failed: %v", err)
	}
	if got != "1" {
		t.Fatalf("unexpected value: %v", got)
	}

	keys, err := byName["kv_list"].Invoke(ctx, map[string]any{}, cantrip.CallInfo{})
	if err != nil {
		t.Fatalf("kv_list failed: %v", err)
	}
	list, ok := keys.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("unexpected key list: %v", keys)
	}
	if list[0] != "a" || list[1] != "b" {
		t.Fatalf("keys not in byte order: %v", list)
	}

	if _, err := byName["kv_delete"].Invoke(ctx, map[string]any{"key": "a"}, cantrip.CallInfo{}); err != nil {
		t.Fatalf("kv_delete failed: %v", err)
	}
	got, err = byName["kv_get"].Invoke(ctx, map[string]any{"key": "a"}, cantrip.CallInfo{})
	if err != nil {
		t.Fatalf("kv_get after delete failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for deleted key, got %v", got)
	}
}

func TestRandIntBounds(t *testing.T) {
	byName := demoCatalog(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		got, err := byName["rand_int"].Invoke(ctx, map[string]any{"max": int64(5)}, cantrip.CallInfo{})
		if err != nil {
			t.Fatalf("rand_int failed: %v", err)
		}
		n, ok := got.(int64)
		if !ok || n < 0 || n >= 5 {
			t.Fatalf("rand_int out of range: %v", got)
		}
	}

	if _, err := byName["rand_int"].Invoke(ctx, map[string]any{"max": int64(0)}, cantrip.CallInfo{}); err == nil {
		t.Fatalf("expected error for max = 0")
	}
}

func TestClockNowShape(t *testing.T) {
	byName := demoCatalog(t)

	got, err := byName["clock_now"].Invoke(context.Background(), map[string]any{}, cantrip.CallInfo{})
	if err != nil {
		t.Fatalf("clock_now failed: %v", err)
	}
	payload, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", got)
	}
	if payload["iso"] == "" || payload["ms"] == int64(0) {
		t.Fatalf("unexpected clock payload: %v", payload)
	}
}
