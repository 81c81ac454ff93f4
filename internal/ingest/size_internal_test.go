package ingest

import (
	"errors"
	"testing"

	"vaultcapture/internal/config"
)

func TestCheckSizeBoundary(t *testing.T) {
	limit := config.MaxAssetBytes
	if limit != 2*1024*1024*1024 {
		t.Fatalf("unexpected default limit %d", limit)
	}
	if err := checkSize(limit, limit); err != nil {
		t.Fatalf("expected exactly 2 GiB to be accepted, got %v", err)
	}
	if err := checkSize(limit+1, limit); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected 2 GiB + 1 to be rejected, got %v", err)
	}
	if err := checkSize(0, limit); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected empty file rejection, got %v", err)
	}
}
