package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

var requiredTables = []string{"schema_migrations", "ingestion_job", "media_asset", "settings", "extraction_fts"}

// DatabaseHealth describes the state of the metadata database.
type DatabaseHealth struct {
	DBPath            string             `json:"db_path"`
	DatabaseExists    bool               `json:"database_exists"`
	DatabaseReadable  bool               `json:"database_readable"`
	JournalMode       string             `json:"journal_mode"`
	ForeignKeys       bool               `json:"foreign_keys"`
	AppliedMigrations []AppliedMigration `json:"applied_migrations"`
	MissingTables     []string           `json:"missing_tables,omitempty"`
	IntegrityCheck    bool               `json:"integrity_ok"`
	Error             string             `json:"error,omitempty"`
}

// CheckHealth returns diagnostic information about the database.
func (p *Pool) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: p.path}
	if p.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", p.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping database: %w", err)
	}
	health.DatabaseReadable = true

	// journal_mode and foreign_keys are per-connection, so read them on one.
	conn, err := p.db.Conn(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if err := conn.QueryRowContext(connCtx, "PRAGMA journal_mode").Scan(&health.JournalMode); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("journal mode: %w", err)
	}
	var fk int
	if err := conn.QueryRowContext(connCtx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("foreign keys: %w", err)
	}
	health.ForeignKeys = fk == 1

	for _, table := range requiredTables {
		var name string
		row := conn.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE name = ?", table)
		if err := row.Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				health.MissingTables = append(health.MissingTables, table)
				continue
			}
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	}

	if !slices.Contains(health.MissingTables, "schema_migrations") {
		applied, err := listApplied(connCtx, conn)
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.AppliedMigrations = applied
	}

	var integrityResult string
	if err := conn.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")
	return health, nil
}
