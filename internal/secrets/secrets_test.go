package secrets_test

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"vaultcapture/internal/secrets"
	"vaultcapture/internal/services"
)

func TestResolvePrefersKeychain(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.GeminiKeyEnv, "from-env")
	store := secrets.NewStore()

	if err := store.Save("  from-keychain  "); err != nil {
		t.Fatalf("Save: %v", err)
	}
	key, source, err := store.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key != "from-keychain" || source != secrets.SourceKeychain {
		t.Fatalf("unexpected resolution %q from %s", key, source)
	}
}

func TestResolveFallsBackToEnvironment(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.GeminiKeyEnv, " from-env ")
	store := secrets.NewStore()

	key, source, err := store.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key != "from-env" || source != secrets.SourceEnvironment {
		t.Fatalf("unexpected resolution %q from %s", key, source)
	}
}

func TestResolveMissing(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.GeminiKeyEnv, "")
	store := secrets.NewStore()

	source, err := store.Source()
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if source != secrets.SourceMissing {
		t.Fatalf("expected missing, got %s", source)
	}
}

func TestSaveRejectsBlank(t *testing.T) {
	keyring.MockInit()
	if err := secrets.NewStore().Save("   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.GeminiKeyEnv, "")
	store := secrets.NewStore()

	if err := store.Save("value"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("first Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if source, _ := store.Source(); source != secrets.SourceMissing {
		t.Fatalf("expected missing after clear, got %s", source)
	}
}

func TestKeychainErrorsFallBackToEnvironment(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	t.Setenv(secrets.GeminiKeyEnv, "from-env")

	key, source, err := secrets.NewStore().Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key != "from-env" || source != secrets.SourceEnvironment {
		t.Fatalf("unexpected resolution %q from %s", key, source)
	}
}

func TestKeychainErrorsSurfaceWithoutEnvironment(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	t.Setenv(secrets.GeminiKeyEnv, "")

	_, _, err := secrets.NewStore().Resolve()
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected keychain error, got %v", err)
	}
}
