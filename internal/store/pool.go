package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"vaultcapture/internal/config"
)

const (
	driverName            = "sqlite"
	defaultMaxConnections = 8
	defaultBusyTimeoutMS  = 5000
)

// Options controls how the database is opened.
type Options struct {
	Path           string
	MaxConnections int
	BusyTimeoutMS  int
}

// Pool hands out bounded, reusable connections to the metadata database.
type Pool struct {
	db   *sql.DB
	path string
}

// OpenFromConfig creates the data directories and opens the configured database.
func OpenFromConfig(cfg *config.Config) (*Pool, error) {
	if cfg == nil {
		return nil, errors.New("open store: config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return Open(Options{
		Path:           cfg.DatabasePath(),
		MaxConnections: cfg.Store.MaxConnections,
		BusyTimeoutMS:  cfg.Store.BusyTimeoutMS,
	})
}

// Open initializes or connects to the database at opts.Path.
func Open(opts Options) (*Pool, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, errors.New("open store: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = defaultMaxConnections
	}
	if opts.BusyTimeoutMS <= 0 {
		opts.BusyTimeoutMS = defaultBusyTimeoutMS
	}

	db, err := sql.Open(driverName, dataSourceName(path, opts.BusyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxConnections)
	db.SetMaxIdleConns(opts.MaxConnections)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Pool{db: db, path: path}, nil
}

// Pragmas are carried in the DSN so that every pooled connection gets them,
// not only the first one.
func dataSourceName(path string, busyTimeoutMS int) string {
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "busy_timeout("+strconv.Itoa(busyTimeoutMS)+")")
	query.Set("_txlock", "immediate")
	return path + "?" + query.Encode()
}

// Path returns the database file location.
func (p *Pool) Path() string {
	if p == nil {
		return ""
	}
	return p.path
}

// QueryContext runs a read outside any unit of work.
func (p *Pool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row read outside any unit of work.
func (p *Pool) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

// ExecContext runs a single statement in its own implicit transaction.
func (p *Pool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.db.ExecContext(ctx, query, args...)
}

// Close closes every pooled connection.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
