package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vaultcapture/internal/store"
	"vaultcapture/internal/testsupport"
)

func openPool(t *testing.T) *store.Pool {
	t.Helper()
	pool, err := store.Open(store.Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func schemaSnapshot(t *testing.T, pool *store.Pool) []string {
	t.Helper()
	rows, err := pool.QueryContext(context.Background(),
		`SELECT type || ':' || name || ':' || COALESCE(sql, '') FROM sqlite_master ORDER BY type, name`)
	if err != nil {
		t.Fatalf("snapshot schema: %v", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			t.Fatalf("scan schema: %v", err)
		}
		out = append(out, entry)
	}
	return out
}

func TestEmbeddedMigrationsOrdered(t *testing.T) {
	migrations, err := store.EmbeddedMigrations()
	if err != nil {
		t.Fatalf("EmbeddedMigrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "init_schema" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Fatalf("migrations out of order: %d after %d", migrations[i].Version, migrations[i-1].Version)
		}
	}
}

func TestMigrationRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := openPool(t)
	migrations, err := store.EmbeddedMigrations()
	if err != nil {
		t.Fatalf("EmbeddedMigrations: %v", err)
	}
	seed := store.SettingsSeed{PublisherCLI: "obsidian", Model: "m", WriteMode: "cli_fallback"}

	if err := store.NewMigrationRunner(pool, migrations, store.WithSettingsSeed(seed)).Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	firstSchema := schemaSnapshot(t, pool)
	firstLedger, err := pool.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if err := store.NewMigrationRunner(pool, migrations, store.WithSettingsSeed(seed)).Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	secondSchema := schemaSnapshot(t, pool)
	secondLedger, err := pool.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(firstSchema) != len(secondSchema) {
		t.Fatalf("schema changed between runs: %d vs %d objects", len(firstSchema), len(secondSchema))
	}
	for i := range firstSchema {
		if firstSchema[i] != secondSchema[i] {
			t.Fatalf("schema entry %d changed: %q vs %q", i, firstSchema[i], secondSchema[i])
		}
	}
	if len(firstLedger) != len(migrations) || len(secondLedger) != len(migrations) {
		t.Fatalf("expected %d ledger rows, got %d then %d", len(migrations), len(firstLedger), len(secondLedger))
	}
	for i := range firstLedger {
		if firstLedger[i] != secondLedger[i] {
			t.Fatalf("ledger row %d changed: %+v vs %+v", i, firstLedger[i], secondLedger[i])
		}
	}

	var settingsRows int
	if err := pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&settingsRows); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if settingsRows != 1 {
		t.Fatalf("expected exactly one settings row, got %d", settingsRows)
	}
}

func TestSeedNeverOverwritesSettings(t *testing.T) {
	ctx := context.Background()
	pool := openPool(t)
	migrations, _ := store.EmbeddedMigrations()

	first := store.SettingsSeed{PublisherCLI: "obsidian", Model: "first-model", WriteMode: "cli_fallback"}
	if err := store.NewMigrationRunner(pool, migrations, store.WithSettingsSeed(first)).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	second := store.SettingsSeed{PublisherCLI: "other", Model: "second-model", WriteMode: "cli_only"}
	if err := store.NewMigrationRunner(pool, migrations, store.WithSettingsSeed(second)).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var model, mode string
	if err := pool.QueryRowContext(ctx, `SELECT model, write_mode FROM settings WHERE id = 1`).Scan(&model, &mode); err != nil {
		t.Fatalf("read settings: %v", err)
	}
	if model != "first-model" || mode != "cli_fallback" {
		t.Fatalf("expected original seed preserved, got model=%q mode=%q", model, mode)
	}
}

func TestMigrationFailureStopsWithoutPartialSchema(t *testing.T) {
	ctx := context.Background()
	pool := openPool(t)
	migrations := []store.Migration{
		{Version: 1, Name: "first", SQL: `CREATE TABLE alpha (id INTEGER PRIMARY KEY);`},
		{Version: 2, Name: "broken", SQL: `CREATE TABLE beta (id INTEGER PRIMARY KEY); CREATE TABLE broken (;`},
		{Version: 3, Name: "third", SQL: `CREATE TABLE gamma (id INTEGER PRIMARY KEY);`},
	}

	if err := store.NewMigrationRunner(pool, migrations).Run(ctx); err == nil {
		t.Fatal("expected migration failure")
	}

	ledger, err := pool.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(ledger) != 1 || ledger[0].Version != 1 {
		t.Fatalf("expected only version 1 recorded, got %+v", ledger)
	}
	for table, want := range map[string]int{"alpha": 1, "beta": 0, "gamma": 0} {
		var n int
		if err := pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n); err != nil {
			t.Fatalf("query %s: %v", table, err)
		}
		if n != want {
			t.Fatalf("table %s: expected %d, got %d", table, want, n)
		}
	}

	migrations[1].SQL = `CREATE TABLE beta (id INTEGER PRIMARY KEY);`
	if err := store.NewMigrationRunner(pool, migrations).Run(ctx); err != nil {
		t.Fatalf("Run after fix: %v", err)
	}
	ledger, _ = pool.AppliedMigrations(ctx)
	if len(ledger) != 3 {
		t.Fatalf("expected 3 ledger rows after fix, got %d", len(ledger))
	}
}

func TestUnitOfWorkRollsBackUnlessCommitted(t *testing.T) {
	ctx := context.Background()
	pool := openPool(t)
	if _, err := pool.ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	func() {
		uow, err := pool.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		defer uow.Close()
		if _, err := uow.ExecContext(ctx, `INSERT INTO kv (k) VALUES ('discarded')`); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}()

	uow, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := uow.ExecContext(ctx, `INSERT INTO kv (k) VALUES ('kept')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	uow.Close()
	if err := uow.Commit(); !errors.Is(err, store.ErrUnitClosed) {
		t.Fatalf("expected ErrUnitClosed on second commit, got %v", err)
	}

	var keys []string
	rows, err := pool.QueryContext(ctx, `SELECT k FROM kv ORDER BY k`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			t.Fatalf("scan: %v", err)
		}
		keys = append(keys, k)
	}
	if len(keys) != 1 || keys[0] != "kept" {
		t.Fatalf("expected only committed row, got %v", keys)
	}
}

func TestForeignKeysEnforcedOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	pool := testsupport.MustOpenPool(t, cfg)

	// Open cursors pin connections so each insert lands on a fresh one.
	for i := 0; i < 3; i++ {
		rows, err := pool.QueryContext(ctx, `SELECT id FROM settings`)
		if err != nil {
			t.Fatalf("pin connection: %v", err)
		}
		defer rows.Close()

		_, err = pool.ExecContext(ctx,
			`INSERT INTO media_asset (job_id, original_path, storage_path, media_type, mime_type, size_bytes, sha256, created_at)
			 VALUES ('missing', 'a', 'b', 'audio', 'audio/mpeg', 1, ?, 0)`,
			strings.Repeat("0", 64))
		if err == nil {
			t.Fatalf("expected foreign key violation on connection %d", i+2)
		}
	}
}

func TestCheckHealthReportsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	pool := testsupport.MustOpenPool(t, cfg)

	health, err := pool.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("expected readable database: %+v", health)
	}
	if health.JournalMode != "wal" {
		t.Fatalf("expected wal journal, got %q", health.JournalMode)
	}
	if !health.ForeignKeys {
		t.Fatal("expected foreign keys enabled")
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("unexpected missing tables: %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if len(health.AppliedMigrations) == 0 {
		t.Fatal("expected applied migrations")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := store.Open(store.Options{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
