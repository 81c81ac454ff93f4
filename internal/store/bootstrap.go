package store

import (
	"context"
	"fmt"
	"log/slog"

	"vaultcapture/internal/config"
)

// Bootstrap opens the configured database and brings its schema up to date.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pool, error) {
	pool, err := OpenFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	migrations, err := EmbeddedMigrations()
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	runner := NewMigrationRunner(pool, migrations,
		WithSettingsSeed(SeedFromConfig(cfg)),
		WithLogger(logger),
	)
	if err := runner.Run(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return pool, nil
}
