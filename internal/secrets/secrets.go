// Package secrets resolves the Gemini API key from the OS keychain, falling
// back to the GEMINI_API_KEY environment variable. The key is never written
// to the database.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"vaultcapture/internal/services"
)

const (
	component = "secrets"

	// ServiceName is the keychain service the key is stored under.
	ServiceName = "vaultcapture"
	// GeminiKeyEntry is the keychain account name for the Gemini key.
	GeminiKeyEntry = "gemini_api_key"
	// GeminiKeyEnv is the environment fallback.
	GeminiKeyEnv = "GEMINI_API_KEY"
)

// Source reports where a credential was found.
type Source string

const (
	SourceKeychain    Source = "os_keychain"
	SourceEnvironment Source = "environment"
	SourceMissing     Source = "missing"
)

// Store reads and writes the Gemini key.
type Store struct {
	service string
	entry   string
	env     string
}

// NewStore returns a Store using the default keychain names.
func NewStore() *Store {
	return &Store{service: ServiceName, entry: GeminiKeyEntry, env: GeminiKeyEnv}
}

// Resolve returns the key and where it came from. A missing key is reported
// as SourceMissing with an empty key and a nil error. A keychain failure is
// only returned when the environment has no key either, so headless hosts
// without a secret service still work.
func (s *Store) Resolve() (string, Source, error) {
	key, keychainErr := s.readKeychain()
	if keychainErr == nil && key != "" {
		return key, SourceKeychain, nil
	}
	if key := strings.TrimSpace(os.Getenv(s.env)); key != "" {
		return key, SourceEnvironment, nil
	}
	if keychainErr != nil {
		return "", SourceMissing, keychainErr
	}
	return "", SourceMissing, nil
}

// Source reports where Resolve would find the key.
func (s *Store) Source() (Source, error) {
	_, source, err := s.Resolve()
	return source, err
}

// Save stores value in the keychain.
func (s *Store) Save(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return services.Wrap(services.ErrValidation, component, "save", "Gemini API key cannot be empty", nil)
	}
	if err := keyring.Set(s.service, s.entry, value); err != nil {
		return services.Wrap(services.ErrExternalTool, component, "save", "write keychain", err)
	}
	return nil
}

// Clear removes the key from the keychain. Clearing an absent key succeeds.
func (s *Store) Clear() error {
	err := keyring.Delete(s.service, s.entry)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return services.Wrap(services.ErrExternalTool, component, "clear", "delete keychain entry", err)
}

func (s *Store) readKeychain() (string, error) {
	secret, err := keyring.Get(s.service, s.entry)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", nil
	case err != nil:
		return "", services.Wrap(services.ErrExternalTool, component, "resolve", "read keychain", err)
	}
	return strings.TrimSpace(secret), nil
}
