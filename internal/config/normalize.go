package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeDefaults()
	c.normalizeSummarizer()
	c.normalizePublisher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ContentDir) == "" {
		c.Paths.ContentDir = defaultContentDir
	}
	if c.Paths.ContentDir, err = expandPath(c.Paths.ContentDir); err != nil {
		return fmt.Errorf("paths.content_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	if c.Store.MaxConnections == 0 {
		c.Store.MaxConnections = defaultMaxConnections
	}
	if c.Store.BusyTimeoutMS == 0 {
		c.Store.BusyTimeoutMS = defaultBusyTimeoutMillis
	}
	if c.Ingest.MaxAssetBytes == 0 {
		c.Ingest.MaxAssetBytes = MaxAssetBytes
	}
}

func (c *Config) normalizeDefaults() {
	c.Defaults.VaultPath = strings.TrimSpace(c.Defaults.VaultPath)
	c.Defaults.PublisherCLI = strings.TrimSpace(c.Defaults.PublisherCLI)
	if c.Defaults.PublisherCLI == "" {
		c.Defaults.PublisherCLI = defaultPublisherCLI
	}
	c.Defaults.Model = strings.TrimSpace(c.Defaults.Model)
	if c.Defaults.Model == "" {
		c.Defaults.Model = defaultModel
	}
	c.Defaults.WriteMode = strings.ToLower(strings.TrimSpace(c.Defaults.WriteMode))
	if c.Defaults.WriteMode == "" {
		c.Defaults.WriteMode = defaultWriteMode
	}
}

func (c *Config) normalizeSummarizer() {
	c.Summarizer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Summarizer.BaseURL), "/")
	if c.Summarizer.BaseURL == "" {
		c.Summarizer.BaseURL = defaultSummarizerBaseURL
	}
	if c.Summarizer.TimeoutSeconds == 0 {
		c.Summarizer.TimeoutSeconds = defaultSummarizerTimeout
	}
}

func (c *Config) normalizePublisher() {
	c.Publisher.CapturesFolder = strings.TrimSpace(c.Publisher.CapturesFolder)
	if c.Publisher.CapturesFolder == "" {
		c.Publisher.CapturesFolder = defaultCapturesFolder
	}
	if c.Publisher.CLITimeoutSeconds == 0 {
		c.Publisher.CLITimeoutSeconds = defaultCLITimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
