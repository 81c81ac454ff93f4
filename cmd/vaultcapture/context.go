package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vaultcapture/internal/config"
	"vaultcapture/internal/ingest"
	"vaultcapture/internal/jobs"
	"vaultcapture/internal/lifecycle"
	"vaultcapture/internal/logging"
	"vaultcapture/internal/notes"
	"vaultcapture/internal/publisher"
	"vaultcapture/internal/secrets"
	"vaultcapture/internal/settings"
	"vaultcapture/internal/store"
	"vaultcapture/internal/summarizer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	closeLog   logging.CloseFunc

	poolOnce sync.Once
	pool     *store.Pool
	poolErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, closeLog, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger, c.closeLog = logger, closeLog
	})
	return c.logger
}

func (c *commandContext) ensurePool(cmd *cobra.Command) (*store.Pool, error) {
	c.poolOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.poolErr = err
			return
		}
		c.pool, c.poolErr = store.Bootstrap(cmd.Context(), cfg, c.ensureLogger())
	})
	return c.pool, c.poolErr
}

// close releases the pool and then the log file, so migration and query
// logs are flushed before the handle goes away.
func (c *commandContext) close() {
	if c.pool != nil {
		_ = c.pool.Close()
		c.pool = nil
	}
	if c.closeLog != nil {
		_ = c.closeLog()
		c.closeLog = nil
	}
}

// withPool runs fn against the migrated pool and closes it afterwards.
func (c *commandContext) withPool(cmd *cobra.Command, fn func(*store.Pool) error) error {
	defer c.close()
	pool, err := c.ensurePool(cmd)
	if err != nil {
		return err
	}
	return fn(pool)
}

func (c *commandContext) withLifecycle(cmd *cobra.Command, fn func(*lifecycle.Service) error) error {
	return c.withPool(cmd, func(pool *store.Pool) error {
		return fn(c.lifecycleService(pool))
	})
}

func (c *commandContext) withSettings(cmd *cobra.Command, fn func(*settings.Repository) error) error {
	return c.withPool(cmd, func(pool *store.Pool) error {
		return fn(settings.NewRepository(pool))
	})
}

func (c *commandContext) withNotes(cmd *cobra.Command, fn func(*notes.Service) error) error {
	return c.withPool(cmd, func(pool *store.Pool) error {
		logger := c.ensureLogger()
		return fn(notes.NewService(
			c.lifecycleService(pool),
			settings.NewRepository(pool),
			publisher.NewFromConfig(c.config, logger),
			summarizer.NewFromConfig(c.config, logger),
			secrets.NewStore(),
			logger,
		))
	})
}

func (c *commandContext) lifecycleService(pool *store.Pool) *lifecycle.Service {
	logger := c.ensureLogger()
	return lifecycle.NewService(
		ingest.NewFromConfig(c.config, logger),
		jobs.NewRepository(pool, jobs.WithLogger(logger)),
		jobs.NewSequenceIDGenerator(),
		lifecycle.WithLogger(logger),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
