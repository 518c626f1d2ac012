package services_test

import (
	"errors"
	"strings"
	"testing"

	"lookout/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrCall, "invoker", "chat", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrCall) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"invoker", "chat", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToCall(t *testing.T) {
	err := services.Wrap(nil, "snapshot", "fetch", "no detail", nil)
	if !errors.Is(err, services.ErrCall) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestFallbackReasonMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{"configuration", services.Wrap(services.ErrConfiguration, "pool", "select", "no providers", nil), "configuration"},
		{"decode", services.Wrap(services.ErrDecode, "imaging", "decode", "bad bytes", nil), "decode"},
		{"timeout", services.Wrap(services.ErrTimeout, "invoker", "chat", "deadline", nil), "timeout"},
		{"schema", services.Wrap(services.ErrSchema, "validator", "check", "missing title", nil), "schema"},
		{"provider", services.Wrap(services.ErrCall, "invoker", "chat", "http 500", errors.New("io")), "provider"},
		{"unknown", errors.New("mystery"), "error"},
	}
	for _, tc := range cases {
		if got := services.FallbackReason(tc.err); got != tc.reason {
			t.Fatalf("%s: expected reason %q, got %q", tc.name, tc.reason, got)
		}
	}
}
