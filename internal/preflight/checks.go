package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"vaultcapture/internal/secrets"
	"vaultcapture/internal/settings"
)

const defaultPublisherCLI = "obsidian"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPublisherCLI looks up the Obsidian CLI on PATH. The second return is
// false when the write mode never uses the CLI. In cli_fallback mode a
// missing CLI is optional since notes are then written directly.
func CheckPublisherCLI(s settings.Settings) (Result, bool) {
	const name = "Obsidian CLI"
	if s.WriteMode == settings.WriteFilesystemOnly {
		return Result{}, false
	}
	cli := strings.TrimSpace(s.PublisherCLIPath)
	if cli == "" {
		cli = defaultPublisherCLI
	}
	result := Result{Name: name, Optional: s.WriteMode == settings.WriteCLIFallback}
	resolved, err := exec.LookPath(cli)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", cli)
		if result.Optional {
			result.Detail += "; notes will be written directly"
		}
		return result, true
	}
	result.Passed = true
	result.Detail = resolved
	return result, true
}

// CheckKeySource reports whether summaries can run.
func CheckKeySource(source secrets.Source) Result {
	const name = "Gemini API key"
	switch source {
	case secrets.SourceKeychain:
		return Result{Name: name, Passed: true, Optional: true, Detail: "found in OS keychain"}
	case secrets.SourceEnvironment:
		return Result{Name: name, Passed: true, Optional: true, Detail: "found in " + secrets.GeminiKeyEnv}
	default:
		return Result{Name: name, Optional: true, Detail: "not set; summaries unavailable"}
	}
}
