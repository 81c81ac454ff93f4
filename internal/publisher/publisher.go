package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"vaultcapture/internal/config"
	"vaultcapture/internal/fileutil"
	"vaultcapture/internal/logging"
	"vaultcapture/internal/services"
	"vaultcapture/internal/settings"
)

const (
	component             = "publisher"
	defaultCLI            = "obsidian"
	defaultCapturesFolder = "AI Captures"
	defaultCLITimeout     = 30 * time.Second
)

// Method records how a note reached the vault.
type Method string

const (
	MethodCLI                Method = "cli"
	MethodFilesystem         Method = "filesystem"
	MethodFilesystemFallback Method = "filesystem_fallback"
)

// Result describes a published note.
type Result struct {
	NotePath string `json:"note_path"`
	Method   Method `json:"method"`
}

type handler func(ctx context.Context, s settings.Settings, vault, title, markdown string) (Result, error)

// Publisher writes notes according to the configured write mode.
type Publisher struct {
	capturesFolder string
	cliTimeout     time.Duration
	detectVault    func() (string, error)
	logger         *slog.Logger
	handlers       map[settings.WriteMode]handler
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithCapturesFolder sets the vault subfolder notes are written into.
func WithCapturesFolder(folder string) Option {
	return func(p *Publisher) {
		if strings.TrimSpace(folder) != "" {
			p.capturesFolder = strings.TrimSpace(folder)
		}
	}
}

// WithCLITimeout bounds each CLI invocation.
func WithCLITimeout(timeout time.Duration) Option {
	return func(p *Publisher) {
		if timeout > 0 {
			p.cliTimeout = timeout
		}
	}
}

// WithVaultDetector replaces Obsidian config auto-detection.
func WithVaultDetector(detect func() (string, error)) Option {
	return func(p *Publisher) {
		if detect != nil {
			p.detectVault = detect
		}
	}
}

// WithLogger routes publisher logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New constructs a Publisher.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		capturesFolder: defaultCapturesFolder,
		cliTimeout:     defaultCLITimeout,
		detectVault:    DetectVault,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, component)
	p.handlers = map[settings.WriteMode]handler{
		settings.WriteFilesystemOnly: p.publishFilesystem,
		settings.WriteCLIOnly:        p.publishCLI,
		settings.WriteCLIFallback:    p.publishCLIWithFallback,
	}
	return p
}

// NewFromConfig applies the [publisher] config section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Publisher {
	return New(
		WithCapturesFolder(cfg.Publisher.CapturesFolder),
		WithCLITimeout(time.Duration(cfg.Publisher.CLITimeoutSeconds)*time.Second),
		WithLogger(logger),
	)
}

// Publish writes markdown as a note titled title.
func (p *Publisher) Publish(ctx context.Context, s settings.Settings, title, markdown string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, services.Wrap(services.ErrValidation, component, "publish", "note title is empty", nil)
	}
	h, ok := p.handlers[s.WriteMode]
	if !ok {
		return Result{}, services.Wrap(services.ErrValidation, component, "publish",
			fmt.Sprintf("unknown write mode %q", s.WriteMode), nil)
	}
	vault, err := p.ResolveVault(s)
	if err != nil {
		return Result{}, err
	}
	result, err := h(ctx, s, vault, title, markdown)
	if err != nil {
		return Result{}, err
	}
	logging.WithContext(ctx, p.logger).Info("note published",
		logging.String("note_path", result.NotePath),
		logging.String("method", string(result.Method)),
	)
	return result, nil
}

// ResolveVault returns the vault from settings, or auto-detects it.
func (p *Publisher) ResolveVault(s settings.Settings) (string, error) {
	if vault := strings.TrimSpace(s.VaultPath); vault != "" {
		return config.ExpandPath(vault)
	}
	return p.detectVault()
}

// NotePath is where a note titled title lands inside vault.
func (p *Publisher) NotePath(vault, title string) string {
	return filepath.Join(vault, p.capturesFolder, SanitizeTitle(title)+".md")
}

func (p *Publisher) publishFilesystem(_ context.Context, _ settings.Settings, vault, title, markdown string) (Result, error) {
	path, err := p.writeDirect(vault, title, markdown)
	if err != nil {
		return Result{}, err
	}
	return Result{NotePath: path, Method: MethodFilesystem}, nil
}

func (p *Publisher) publishCLI(ctx context.Context, s settings.Settings, vault, title, markdown string) (Result, error) {
	if err := p.runCLI(ctx, s, vault, title, markdown); err != nil {
		return Result{}, err
	}
	return Result{NotePath: p.NotePath(vault, title), Method: MethodCLI}, nil
}

func (p *Publisher) publishCLIWithFallback(ctx context.Context, s settings.Settings, vault, title, markdown string) (Result, error) {
	cliErr := p.runCLI(ctx, s, vault, title, markdown)
	if cliErr == nil {
		return Result{NotePath: p.NotePath(vault, title), Method: MethodCLI}, nil
	}
	logging.WarnWithContext(logging.WithContext(ctx, p.logger), "obsidian cli failed; writing note directly", "publish_cli_fallback",
		logging.Error(cliErr),
		logging.String(logging.FieldImpact, "note written to the vault folder without the CLI"),
		logging.String(logging.FieldErrorHint, "check settings publisher_cli_path"),
	)
	path, err := p.writeDirect(vault, title, markdown)
	if err != nil {
		return Result{}, errors.Join(err, cliErr)
	}
	return Result{NotePath: path, Method: MethodFilesystemFallback}, nil
}

func (p *Publisher) runCLI(ctx context.Context, s settings.Settings, vault, title, markdown string) error {
	cli := strings.TrimSpace(s.PublisherCLIPath)
	if cli == "" {
		cli = defaultCLI
	}
	ctx, cancel := context.WithTimeout(ctx, p.cliTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cli, "note", "create", "--vault", vault, "--name", title, "--content", markdown)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed"
		}
		if ctx.Err() != nil {
			msg = fmt.Sprintf("timed out after %s", p.cliTimeout)
		}
		return services.Wrap(services.ErrExternalTool, component, "run cli", fmt.Sprintf("%s: %s", cli, msg), err)
	}
	return nil
}

func (p *Publisher) writeDirect(vault, title, markdown string) (string, error) {
	info, err := os.Stat(vault)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "write note",
			fmt.Sprintf("vault %s unavailable", vault), err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrConfiguration, component, "write note",
			fmt.Sprintf("vault %s is not a directory", vault), nil)
	}
	path := p.NotePath(vault, title)
	escaped := services.Wrap(services.ErrValidation, component, "write note",
		fmt.Sprintf("note path %s escapes vault %s", path, vault), nil)
	// Lexical check first so nothing is created outside the vault.
	if rel, err := filepath.Rel(vault, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", escaped
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, component, "write note", "create captures folder", err)
	}
	inside, err := fileutil.IsWithin(vault, path)
	if err != nil {
		return "", services.Wrap(services.ErrIO, component, "write note", "resolve note path", err)
	}
	if !inside {
		return "", escaped
	}
	if err := fileutil.WriteFileAtomic(path, []byte(markdown), 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, component, "write note", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path, nil
}
