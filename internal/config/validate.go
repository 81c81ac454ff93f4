package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var validWriteModes = map[string]struct{}{
	"filesystem_only": {},
	"cli_only":        {},
	"cli_fallback":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateCollaborators(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.ContentDir == "" {
		return errors.New("paths.content_dir must be set")
	}
	if filepath.Clean(c.Paths.ContentDir) == filepath.Clean(c.Paths.DataDir) {
		return errors.New("paths.content_dir must differ from paths.data_dir")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.MaxConnections < 1 || c.Store.MaxConnections > maxConnectionsCeiling {
		return fmt.Errorf("store.max_connections must be between 1 and %d", maxConnectionsCeiling)
	}
	if c.Store.BusyTimeoutMS <= 0 {
		return errors.New("store.busy_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.MaxAssetBytes <= 0 {
		return errors.New("ingest.max_asset_bytes must be positive")
	}
	if c.Ingest.MaxAssetBytes > MaxAssetBytes {
		return fmt.Errorf("ingest.max_asset_bytes must not exceed %d", MaxAssetBytes)
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if _, ok := validWriteModes[c.Defaults.WriteMode]; !ok {
		return fmt.Errorf("defaults.write_mode %q must be one of filesystem_only, cli_only, cli_fallback", c.Defaults.WriteMode)
	}
	return nil
}

func (c *Config) validateCollaborators() error {
	if !strings.HasPrefix(c.Summarizer.BaseURL, "http://") && !strings.HasPrefix(c.Summarizer.BaseURL, "https://") {
		return fmt.Errorf("summarizer.base_url %q must be an http(s) URL", c.Summarizer.BaseURL)
	}
	if c.Summarizer.TimeoutSeconds <= 0 {
		return errors.New("summarizer.timeout_seconds must be positive")
	}
	if c.Summarizer.Temperature < 0 || c.Summarizer.Temperature > 2 {
		return errors.New("summarizer.temperature must be between 0 and 2")
	}
	if c.Publisher.CLITimeoutSeconds <= 0 {
		return errors.New("publisher.cli_timeout_seconds must be positive")
	}
	if strings.ContainsAny(c.Publisher.CapturesFolder, `/\`) || c.Publisher.CapturesFolder == ".." {
		return fmt.Errorf("publisher.captures_folder %q must be a single folder name", c.Publisher.CapturesFolder)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
