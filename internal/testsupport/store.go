package testsupport

import (
	"context"
	"testing"

	"vaultcapture/internal/config"
	"vaultcapture/internal/store"
)

// MustOpenPool opens a migrated, seeded store.Pool for tests and registers cleanup.
func MustOpenPool(t testing.TB, cfg *config.Config) *store.Pool {
	t.Helper()

	pool, err := store.Bootstrap(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("store.Bootstrap: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
	})
	return pool
}
