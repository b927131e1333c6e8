package main

import (
	"strings"
	"testing"

	"github.com/mquist/cantrip"
)

func TestNeedsContinuation(t *testing.T) {
	tests := []struct {
		script string
		want   bool
	}{
		{"1 + 1", false},
		{"if x > 1", true},
		{"if x > 1\n  2\nend", false},
		{"def greet(name)", true},
		{"def greet(name)\n  name\nend", false},
		{"while true", true},
		{"for n in 1..3\n  n\nend", false},
		{"try", true},
		{"try\n  1\nrescue\n  2\nend", false},
		{"if a\n  while b\n    1\n  end\nend", false},
		{"if a\n  while b", true},
	}
	for _, tt := range tests {
		if got := needsContinuation(tt.script); got != tt.want {
			t.Fatalf("needsContinuation(%q) = %v, want %v", tt.script, got, tt.want)
		}
	}
}

func TestREPLEvaluateRendersOutcome(t *testing.T) {
	session, err := cantrip.New(cantrip.Options{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := newREPLModel(session)

	out, isErr := m.evaluate("return 1 + 1")
	if isErr {
		t.Fatalf("unexpected error output: %q", out)
	}
	if !strings.Contains(out, `"value": 2`) {
		t.Fatalf("unexpected output: %q", out)
	}

	out, isErr = m.evaluate("missing()")
	if !isErr {
		t.Fatalf("expected error outcome")
	}
	if !strings.Contains(out, "ReferenceError") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestREPLSubmissionsAreIsolated(t *testing.T) {
	session, err := cantrip.New(cantrip.Options{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := newREPLModel(session)

	if out, isErr := m.evaluate("x = 5\nx"); isErr {
		t.Fatalf("first submission failed: %q", out)
	}
	if _, isErr := m.evaluate("x"); !isErr {
		t.Fatalf("state must not carry across submissions")
	}
}
