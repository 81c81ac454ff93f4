// Package settings stores the single process-wide settings row.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vaultcapture/internal/services"
	"vaultcapture/internal/store"
)

const component = "settings"

// WriteMode selects how notes are published.
type WriteMode string

const (
	// WriteFilesystemOnly writes notes directly into the vault folder.
	WriteFilesystemOnly WriteMode = "filesystem_only"
	// WriteCLIOnly publishes through the external CLI and fails if it fails.
	WriteCLIOnly WriteMode = "cli_only"
	// WriteCLIFallback tries the CLI first and writes directly on any failure.
	WriteCLIFallback WriteMode = "cli_fallback"
)

// WriteModes lists every supported mode.
func WriteModes() []WriteMode {
	return []WriteMode{WriteFilesystemOnly, WriteCLIOnly, WriteCLIFallback}
}

// ParseWriteMode validates user input.
func ParseWriteMode(value string) (WriteMode, error) {
	mode := WriteMode(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range WriteModes() {
		if mode == candidate {
			return mode, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, component, "parse write mode",
		fmt.Sprintf("%q must be one of filesystem_only, cli_only, cli_fallback", value), nil)
}

// Settings is the singleton configuration record.
type Settings struct {
	VaultPath        string    `json:"vault_path"`
	PublisherCLIPath string    `json:"publisher_cli_path"`
	Model            string    `json:"model"`
	WriteMode        WriteMode `json:"write_mode"`
}

// Validate checks the fields that have constraints.
func (s Settings) Validate() error {
	if _, err := ParseWriteMode(string(s.WriteMode)); err != nil {
		return err
	}
	if strings.TrimSpace(s.Model) == "" {
		return services.Wrap(services.ErrValidation, component, "validate", "model must not be empty", nil)
	}
	return nil
}

// Repository reads and writes the settings row.
type Repository struct {
	pool *store.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *store.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads the settings row. The row is seeded during migration, so a
// missing row is reported as ErrNotFound.
func (r *Repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRowContext(ctx,
		`SELECT vault_path, publisher_cli_path, model, write_mode FROM settings WHERE id = 1`,
	).Scan(&s.VaultPath, &s.PublisherCLIPath, &s.Model, &s.WriteMode)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, services.Wrap(services.ErrNotFound, component, "get", "settings row missing; run migrations", nil)
	}
	if err != nil {
		return Settings{}, services.Wrap(services.ErrPersistence, component, "get", "", err)
	}
	return s, nil
}

// Save replaces the settings row and returns the stored values.
func (r *Repository) Save(ctx context.Context, s Settings) (Settings, error) {
	s.VaultPath = strings.TrimSpace(s.VaultPath)
	s.PublisherCLIPath = strings.TrimSpace(s.PublisherCLIPath)
	s.Model = strings.TrimSpace(s.Model)
	s.WriteMode = WriteMode(strings.ToLower(strings.TrimSpace(string(s.WriteMode))))
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	uow, err := r.pool.Begin(ctx)
	if err != nil {
		return Settings{}, services.Wrap(services.ErrPersistence, component, "save", "", err)
	}
	defer uow.Close()

	if _, err := uow.ExecContext(ctx,
		`INSERT INTO settings (id, vault_path, publisher_cli_path, model, write_mode)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   vault_path = excluded.vault_path,
		   publisher_cli_path = excluded.publisher_cli_path,
		   model = excluded.model,
		   write_mode = excluded.write_mode`,
		s.VaultPath, s.PublisherCLIPath, s.Model, s.WriteMode,
	); err != nil {
		return Settings{}, services.Wrap(services.ErrPersistence, component, "save", "", err)
	}
	var saved Settings
	if err := uow.QueryRowContext(ctx,
		`SELECT vault_path, publisher_cli_path, model, write_mode FROM settings WHERE id = 1`,
	).Scan(&saved.VaultPath, &saved.PublisherCLIPath, &saved.Model, &saved.WriteMode); err != nil {
		return Settings{}, services.Wrap(services.ErrPersistence, component, "reload", "", err)
	}
	if err := uow.Commit(); err != nil {
		return Settings{}, services.Wrap(services.ErrPersistence, component, "save", "", err)
	}
	return saved, nil
}
