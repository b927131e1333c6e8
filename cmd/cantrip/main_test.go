package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"cantrip", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"cantrip", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommand(t *testing.T) {
	err := runCLI([]string{"cantrip"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
}

func TestCheckCommandAcceptsValidScript(t *testing.T) {
	scriptPath := writeScript(t, "x = 1\nreturn x + 1")

	out, err := captureStdout(t, func() error {
		return checkCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("checkCommand failed: %v", err)
	}
	if !strings.Contains(out, "ok") {
		t.Fatalf("unexpected check output: %q", out)
	}
}

func TestCheckCommandRejectsBrokenScript(t *testing.T) {
	scriptPath := writeScript(t, "if true")

	err := checkCommand([]string{scriptPath})
	if err == nil {
		t.Fatalf("expected syntax check failure")
	}
	if !strings.Contains(err.Error(), "syntax check failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckCommandRequiresScriptPath(t *testing.T) {
	err := checkCommand(nil)
	if err == nil {
		t.Fatalf("expected script path error")
	}
	if !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandPrintsValue(t *testing.T) {
	scriptPath := writeScript(t, "return 6 * 7")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-db", tempDBPath(t), scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, out)
	}
	if payload["value"] != float64(42) {
		t.Fatalf("unexpected value: %v", payload["value"])
	}
}

func TestRunCommandReportsFaultAndFails(t *testing.T) {
	scriptPath := writeScript(t, "missing()")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-db", tempDBPath(t), scriptPath})
	})
	if err == nil {
		t.Fatalf("expected execution failure")
	}

	var payload map[string]any
	if jsonErr := json.Unmarshal([]byte(out), &payload); jsonErr != nil {
		t.Fatalf("output is not JSON: %v (%q)", jsonErr, out)
	}
	if payload["error"] != "ReferenceError" {
		t.Fatalf("unexpected fault kind: %v", payload["error"])
	}
}

func TestRunCommandUsesBuiltinCatalog(t *testing.T) {
	scriptPath := writeScript(t, `
await kv_put(key: "greeting", value: "hello")
result = await kv_get(key: "greeting")
return result
`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-db", tempDBPath(t), scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected kv round trip in output, got %q", out)
	}
}

func TestToolsCommandFiltersCatalog(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return toolsCommand([]string{"-db", tempDBPath(t), "-hint", "key-value"})
	})
	if err != nil {
		t.Fatalf("toolsCommand failed: %v", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, out)
	}
	if len(entries) == 0 {
		t.Fatalf("expected kv_* capabilities in selection")
	}
	for _, entry := range entries {
		name, _ := entry["name"].(string)
		if !strings.HasPrefix(name, "kv_") {
			t.Fatalf("unexpected capability in selection: %q", name)
		}
	}
}

func TestBuildModelUnknownProvider(t *testing.T) {
	if _, err := buildModel("sorcery", ""); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestBuildModelNoneIsLexical(t *testing.T) {
	model, err := buildModel("", "")
	if err != nil {
		t.Fatalf("buildModel failed: %v", err)
	}
	if model != nil {
		t.Fatalf("expected nil model for lexical selection")
	}
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.cant")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "kv.db")
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
