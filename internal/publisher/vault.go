package publisher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vaultcapture/internal/services"
)

type obsidianVault struct {
	Path string `json:"path"`
	TS   int64  `json:"ts"`
	Open bool   `json:"open"`
}

type obsidianConfig struct {
	Vaults map[string]obsidianVault `json:"vaults"`
}

// ObsidianConfigPath returns the location of the Obsidian app's vault registry.
func ObsidianConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "obsidian", "obsidian.json"), nil
}

// DetectVault reads the Obsidian vault registry and picks a vault: the one
// marked open, else the most recently used, ties broken by registry id.
func DetectVault() (string, error) {
	path, err := ObsidianConfigPath()
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "detect vault", "user config dir unavailable", err)
	}
	return detectVaultFrom(path)
}

func detectVaultFrom(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "detect vault",
			"could not read Obsidian config; set a vault path in settings", err)
	}
	var cfg obsidianConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "detect vault",
			fmt.Sprintf("parse %s", path), err)
	}

	ids := make([]string, 0, len(cfg.Vaults))
	for id, vault := range cfg.Vaults {
		if strings.TrimSpace(vault.Path) != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", services.Wrap(services.ErrConfiguration, component, "detect vault",
			"no vaults registered in Obsidian config", nil)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := cfg.Vaults[ids[i]], cfg.Vaults[ids[j]]
		if a.Open != b.Open {
			return a.Open
		}
		if a.TS != b.TS {
			return a.TS > b.TS
		}
		return ids[i] < ids[j]
	})
	return strings.TrimSpace(cfg.Vaults[ids[0]].Path), nil
}
