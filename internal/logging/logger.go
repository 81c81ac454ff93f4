package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"

	"vaultcapture/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format selects the terminal handler ("console" or "json").
	Format string
	// Console receives terminal output; defaults to stderr.
	Console io.Writer
	// FilePath, when set, receives a JSON copy of every record.
	FilePath    string
	Development bool
}

// CloseFunc flushes and releases the log file behind a logger. It is safe to
// call more than once.
type CloseFunc func() error

func noClose() error { return nil }

// New constructs a slog logger using the provided options. The returned
// CloseFunc must be called once logging is finished.
func New(opts Options) (*slog.Logger, CloseFunc, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var terminal slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		terminal = newPrettyHandler(console, levelVar, addSource)
	case "json":
		terminal = newJSONHandler(console, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	path := strings.TrimSpace(opts.FilePath)
	if path == "" {
		return slog.New(terminal), noClose, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	var once sync.Once
	var closeErr error
	closeFile := func() error {
		once.Do(func() {
			closeErr = errors.Join(file.Sync(), file.Close())
		})
		return closeErr
	}
	return slog.New(slogmulti.Fanout(terminal, newJSONHandler(file, levelVar, addSource))), closeFile, nil
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config) (*slog.Logger, CloseFunc, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	return New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.LogFilePath(),
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
