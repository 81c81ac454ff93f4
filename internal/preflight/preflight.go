package preflight

import (
	"vaultcapture/internal/config"
	"vaultcapture/internal/secrets"
	"vaultcapture/internal/settings"
)

// Result reports the outcome of a single preflight check. Optional checks
// that fail degrade a feature instead of blocking ingestion.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// Inputs carries the state the checks inspect.
type Inputs struct {
	Config    *config.Config
	Settings  settings.Settings
	KeySource secrets.Source
	// ResolveVault returns the vault the publisher would write to.
	ResolveVault func(settings.Settings) (string, error)
}

// RunAll executes every applicable check.
func RunAll(in Inputs) []Result {
	if in.Config == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Data directory", in.Config.Paths.DataDir),
		CheckDirectoryAccess("Content store", in.Config.Paths.ContentDir),
	}
	if in.Config.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", in.Config.Paths.LogDir))
	}
	results = append(results, checkVault(in))
	if cli, ok := CheckPublisherCLI(in.Settings); ok {
		results = append(results, cli)
	}
	results = append(results, CheckKeySource(in.KeySource))
	return results
}

func checkVault(in Inputs) Result {
	const name = "Obsidian vault"
	if in.ResolveVault == nil {
		return Result{Name: name, Detail: "no resolver configured"}
	}
	vault, err := in.ResolveVault(in.Settings)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return CheckDirectoryAccess(name, vault)
}
