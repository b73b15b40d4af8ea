package services_test

import (
	"errors"
	"strings"
	"testing"

	"chessgif/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "engine", "convert", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"engine", "convert", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := map[string]error{
		"validation":    services.Wrap(services.ErrValidation, "colors", "validate", "bad", nil),
		"configuration": services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil),
		"timeout":       services.Wrap(services.ErrTimeout, "engine", "convert", "slow", nil),
		"external_tool": services.Wrap(services.ErrExternalTool, "engine", "convert", "exit 1", nil),
		"internal":      services.Wrap(services.ErrInternal, "worker", "respond", "no result", nil),
		"transient":     errors.New("io"),
		"":              nil,
	}
	for want, err := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
