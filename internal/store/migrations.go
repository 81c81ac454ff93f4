package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"vaultcapture/internal/config"
	"vaultcapture/internal/logging"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const lockRetryDelay = 50 * time.Millisecond

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// SettingsSeed holds the values inserted into the settings row when it is absent.
type SettingsSeed struct {
	VaultPath    string
	PublisherCLI string
	Model        string
	WriteMode    string
}

// AppliedMigration is one ledger row.
type AppliedMigration struct {
	Version   int    `json:"version"`
	Name      string `json:"name"`
	AppliedAt int64  `json:"applied_at"`
}

// EmbeddedMigrations returns the migrations compiled into the binary, ordered by version.
func EmbeddedMigrations() ([]Migration, error) {
	return LoadMigrations(migrationFS, "migrations")
}

// LoadMigrations reads NNNN_name.sql files from dir.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, name, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("migration version %d declared by %s and %s", version, prev, entry.Name())
		}
		seen[version] = entry.Name()
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(data)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func parseMigrationName(file string) (int, string, error) {
	base := strings.TrimSuffix(file, ".sql")
	prefix, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("migration %s: expected NNNN_name.sql", file)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("migration %s: invalid version %q", file, prefix)
	}
	return version, name, nil
}

// MigrationRunner applies pending migrations and seeds the settings row.
type MigrationRunner struct {
	pool       *Pool
	migrations []Migration
	seed       *SettingsSeed
	logger     *slog.Logger
	now        func() time.Time
}

// RunnerOption customizes a MigrationRunner.
type RunnerOption func(*MigrationRunner)

// WithSettingsSeed seeds the settings row after migrations succeed.
func WithSettingsSeed(seed SettingsSeed) RunnerOption {
	return func(r *MigrationRunner) {
		r.seed = &seed
	}
}

// WithLogger routes migration progress to logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *MigrationRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the ledger timestamp source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *MigrationRunner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewMigrationRunner builds a runner for the supplied migrations.
func NewMigrationRunner(pool *Pool, migrations []Migration, opts ...RunnerOption) *MigrationRunner {
	r := &MigrationRunner{
		pool:       pool,
		migrations: append([]Migration(nil), migrations...),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "migrations")
	sort.SliceStable(r.migrations, func(i, j int) bool { return r.migrations[i].Version < r.migrations[j].Version })
	return r
}

// Run applies every migration whose version is not in the ledger, each in its
// own transaction, then seeds settings. It stops at the first failure; later
// migrations are not attempted.
func (r *MigrationRunner) Run(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("run migrations: pool is nil")
	}
	lock := flock.New(r.pool.Path() + ".migrate.lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	if !locked {
		return errors.New("acquire migration lock: not acquired")
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if _, err := r.pool.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return err
	}
	for _, m := range r.migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return err
		}
		r.logger.Info("migration applied",
			logging.Int("version", m.Version),
			logging.String("name", m.Name),
		)
	}

	if r.seed != nil {
		if err := r.seedSettings(ctx, *r.seed); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) apply(ctx context.Context, m Migration) error {
	uow, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("apply migration %d_%s: %w", m.Version, m.Name, err)
	}
	defer uow.Close()

	if _, err := uow.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration %d_%s: %w", m.Version, m.Name, err)
	}
	if _, err := uow.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Name, r.now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record migration %d_%s: %w", m.Version, m.Name, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit migration %d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

func (r *MigrationRunner) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	rows, err := r.pool.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration ledger: %w", err)
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

func (r *MigrationRunner) seedSettings(ctx context.Context, seed SettingsSeed) error {
	res, err := r.pool.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (id, vault_path, publisher_cli_path, model, write_mode)
		 VALUES (1, ?, ?, ?, ?)`,
		seed.VaultPath, seed.PublisherCLI, seed.Model, seed.WriteMode,
	)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.logger.Info("settings seeded",
			logging.String("model", seed.Model),
			logging.String("write_mode", seed.WriteMode),
		)
	}
	return nil
}

// AppliedMigrations lists the ledger in version order.
func (p *Pool) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	return listApplied(ctx, p)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listApplied(ctx context.Context, q queryer) ([]AppliedMigration, error) {
	rows, err := q.QueryContext(ctx, `SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var out []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SeedFromConfig converts configured defaults into a settings seed.
func SeedFromConfig(cfg *config.Config) SettingsSeed {
	return SettingsSeed{
		VaultPath:    cfg.Defaults.VaultPath,
		PublisherCLI: cfg.Defaults.PublisherCLI,
		Model:        cfg.Defaults.Model,
		WriteMode:    cfg.Defaults.WriteMode,
	}
}
