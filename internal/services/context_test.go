package services_test

import (
	"context"
	"testing"

	"vaultcapture/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, "job-1-1")
	ctx = services.WithComponent(ctx, "ingest")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-1-1" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "ingest" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestEnsureRequestIDKeepsExisting(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "req-1")
	if rid, _ := services.RequestIDFromContext(services.EnsureRequestID(ctx)); rid != "req-1" {
		t.Fatalf("expected existing id preserved, got %q", rid)
	}
	fresh := services.EnsureRequestID(context.Background())
	if rid, ok := services.RequestIDFromContext(fresh); !ok || rid == "" {
		t.Fatal("expected minted request id")
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithComponent(ctx, "")
	ctx = services.WithJobID(ctx, "")
	if _, ok := services.ComponentFromContext(ctx); ok {
		t.Fatal("expected no component value")
	}
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job value")
	}
}
