package services_test

import (
	"errors"
	"strings"
	"testing"

	"vaultcapture/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrIO, "ingest", "copy", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ingest", "copy", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindAndExitCode(t *testing.T) {
	tests := []struct {
		err      error
		kind     string
		exitCode int
	}{
		{nil, "", 0},
		{services.Wrap(services.ErrValidation, "ingest", "validate", "bad", nil), "validation", 2},
		{services.Wrap(services.ErrNotFound, "jobs", "find", "", nil), "not_found", 2},
		{services.Wrap(services.ErrPersistence, "store", "insert", "", errors.New("disk")), "persistence", 1},
		{errors.New("plain"), "internal", 1},
	}
	for _, tt := range tests {
		if got := services.Kind(tt.err); got != tt.kind {
			t.Fatalf("Kind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
		if got := services.ExitCode(tt.err); got != tt.exitCode {
			t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.exitCode)
		}
	}
}
