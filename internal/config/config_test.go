package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vaultcapture/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "vaultcapture")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "vaultcapture.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Paths.ContentDir != filepath.Join(wantData, "content") {
		t.Fatalf("unexpected content dir: %q", cfg.Paths.ContentDir)
	}
	if cfg.Store.MaxConnections != 8 {
		t.Fatalf("expected 8 connections, got %d", cfg.Store.MaxConnections)
	}
	if cfg.Ingest.MaxAssetBytes != config.MaxAssetBytes {
		t.Fatalf("unexpected max asset bytes: %d", cfg.Ingest.MaxAssetBytes)
	}
	if cfg.Defaults.WriteMode != "cli_fallback" {
		t.Fatalf("unexpected write mode: %q", cfg.Defaults.WriteMode)
	}
	if cfg.Defaults.Model != config.Default().Defaults.Model {
		t.Fatalf("unexpected model: %q", cfg.Defaults.Model)
	}
	if cfg.Summarizer.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", cfg.Summarizer.Temperature)
	}
}

func TestLoadCustomConfigOverridesValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := struct {
		Paths struct {
			DataDir    string `toml:"data_dir"`
			ContentDir string `toml:"content_dir"`
		} `toml:"paths"`
		Defaults struct {
			VaultPath string `toml:"vault_path"`
			WriteMode string `toml:"write_mode"`
		} `toml:"defaults"`
		Summarizer struct {
			BaseURL string `toml:"base_url"`
		} `toml:"summarizer"`
	}{}
	payload.Paths.DataDir = "~/data"
	payload.Paths.ContentDir = "~/content"
	payload.Defaults.VaultPath = "  /vaults/main  "
	payload.Defaults.WriteMode = "FILESYSTEM_ONLY"
	payload.Summarizer.BaseURL = "http://localhost:9999/v1beta/"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Defaults.VaultPath != "/vaults/main" {
		t.Fatalf("expected trimmed vault path, got %q", cfg.Defaults.VaultPath)
	}
	if cfg.Defaults.WriteMode != "filesystem_only" {
		t.Fatalf("expected lowercased write mode, got %q", cfg.Defaults.WriteMode)
	}
	if cfg.Summarizer.BaseURL != "http://localhost:9999/v1beta" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Summarizer.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"write mode", func(c *config.Config) { c.Defaults.WriteMode = "sometimes" }, "defaults.write_mode"},
		{"connections", func(c *config.Config) { c.Store.MaxConnections = 0 }, "store.max_connections"},
		{"asset cap", func(c *config.Config) { c.Ingest.MaxAssetBytes = config.MaxAssetBytes + 1 }, "ingest.max_asset_bytes"},
		{"base url", func(c *config.Config) { c.Summarizer.BaseURL = "ftp://example" }, "summarizer.base_url"},
		{"captures folder", func(c *config.Config) { c.Publisher.CapturesFolder = "a/b" }, "publisher.captures_folder"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"same dirs", func(c *config.Config) { c.Paths.ContentDir = c.Paths.DataDir }, "paths.content_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = "/tmp/vc-data"
			cfg.Paths.ContentDir = "/tmp/vc-content"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ContentDir = filepath.Join(base, "content")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.ContentDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Publisher.CapturesFolder != "AI Captures" {
		t.Fatalf("unexpected captures folder: %q", cfg.Publisher.CapturesFolder)
	}
}
