package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaultcapture/internal/secrets"
	"vaultcapture/internal/settings"
	"vaultcapture/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckPublisherCLI(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("", "obsidian"))

	if _, ok := CheckPublisherCLI(settings.Settings{WriteMode: settings.WriteFilesystemOnly}); ok {
		t.Fatal("filesystem_only should skip the CLI check")
	}
	result, ok := CheckPublisherCLI(settings.Settings{WriteMode: settings.WriteCLIOnly})
	if !ok || !result.Passed || result.Optional {
		t.Fatalf("expected required passing check, got %+v", result)
	}
	result, _ = CheckPublisherCLI(settings.Settings{
		WriteMode:        settings.WriteCLIFallback,
		PublisherCLIPath: "definitely-not-installed-cli",
	})
	if result.Passed || !result.Optional || !strings.Contains(result.Detail, "written directly") {
		t.Fatalf("expected optional failure, got %+v", result)
	}
}

func TestCheckKeySource(t *testing.T) {
	if r := CheckKeySource(secrets.SourceEnvironment); !r.Passed {
		t.Fatalf("environment key should pass: %+v", r)
	}
	if r := CheckKeySource(secrets.SourceMissing); r.Passed || !r.Optional {
		t.Fatalf("missing key should be an optional failure: %+v", r)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	vault := t.TempDir()

	results := RunAll(Inputs{
		Config:       cfg,
		Settings:     settings.Settings{WriteMode: settings.WriteFilesystemOnly},
		KeySource:    secrets.SourceMissing,
		ResolveVault: func(settings.Settings) (string, error) { return vault, nil },
	})
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed && !r.Optional {
			t.Fatalf("unexpected required failure %+v", r)
		}
	}
	want := "Data directory,Content store,Obsidian vault,Gemini API key"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("unexpected checks %s, want %s", got, want)
	}
}

func TestRunAllReportsVaultResolutionError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(Inputs{
		Config:       cfg,
		Settings:     settings.Settings{WriteMode: settings.WriteFilesystemOnly},
		ResolveVault: func(settings.Settings) (string, error) { return "", errors.New("no vaults registered") },
	})
	for _, r := range results {
		if r.Name == "Obsidian vault" {
			if r.Passed || r.Detail != "no vaults registered" {
				t.Fatalf("unexpected vault result %+v", r)
			}
			return
		}
	}
	t.Fatal("vault check missing")
}
