package notes

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"vaultcapture/internal/jobs"
	"vaultcapture/internal/logging"
	"vaultcapture/internal/publisher"
	"vaultcapture/internal/secrets"
	"vaultcapture/internal/services"
	"vaultcapture/internal/settings"
)

const component = "notes"

// JobFinder loads a job with its assets, returning nil when it is unknown.
type JobFinder interface {
	FindJob(ctx context.Context, id string) (*jobs.JobWithAssets, error)
}

// SettingsReader loads the settings row.
type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// Publisher writes a note into the vault.
type Publisher interface {
	Publish(ctx context.Context, s settings.Settings, title, markdown string) (publisher.Result, error)
}

// Summarizer produces summary text for a list of source file names.
type Summarizer interface {
	GenerateSummary(ctx context.Context, apiKey, model string, sourceFiles []string) (string, error)
}

// KeyResolver finds the summarizer credential.
type KeyResolver interface {
	Resolve() (string, secrets.Source, error)
}

// Service renders, summarizes and publishes job notes.
type Service struct {
	jobs       JobFinder
	settings   SettingsReader
	publisher  Publisher
	summarizer Summarizer
	keys       KeyResolver
	logger     *slog.Logger
}

// NewService wires the collaborators together.
func NewService(finder JobFinder, settingsReader SettingsReader, pub Publisher, sum Summarizer, keys KeyResolver, logger *slog.Logger) *Service {
	return &Service{
		jobs:       finder,
		settings:   settingsReader,
		publisher:  pub,
		summarizer: sum,
		keys:       keys,
		logger:     logging.NewComponentLogger(logger, component),
	}
}

// Preview renders the note for a job without publishing it.
func (s *Service) Preview(ctx context.Context, id string, withSummary bool) (string, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	summary, err := s.maybeSummarize(ctx, job, withSummary)
	if err != nil {
		return "", err
	}
	return Render(job, summary), nil
}

// Summarize asks the summarizer about a job's source files.
func (s *Service) Summarize(ctx context.Context, id string) (string, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return s.summarize(ctx, job)
}

// Publish renders the note for a job and writes it to the vault using the
// saved write mode.
func (s *Service) Publish(ctx context.Context, id string, withSummary bool) (publisher.Result, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return publisher.Result{}, err
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return publisher.Result{}, err
	}
	summary, err := s.maybeSummarize(ctx, job, withSummary)
	if err != nil {
		return publisher.Result{}, err
	}
	return s.publisher.Publish(ctx, current, job.Title, Render(job, summary))
}

// SourceFileNames lists the base names of a job's original files.
func SourceFileNames(job *jobs.JobWithAssets) []string {
	names := make([]string, 0, len(job.Assets))
	for _, asset := range job.Assets {
		names = append(names, filepath.Base(asset.OriginalPath))
	}
	return names
}

func (s *Service) load(ctx context.Context, id string) (*jobs.JobWithAssets, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, component, "load job", "job id is required", nil)
	}
	job, err := s.jobs.FindJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, component, "load job", fmt.Sprintf("job %s not found", id), nil)
	}
	return job, nil
}

func (s *Service) maybeSummarize(ctx context.Context, job *jobs.JobWithAssets, enabled bool) (string, error) {
	if !enabled {
		return "", nil
	}
	return s.summarize(ctx, job)
}

func (s *Service) summarize(ctx context.Context, job *jobs.JobWithAssets) (string, error) {
	ctx = services.WithJobID(ctx, job.ID)
	key, source, err := s.keys.Resolve()
	if err != nil {
		return "", err
	}
	if source == secrets.SourceMissing {
		return "", services.Wrap(services.ErrConfiguration, component, "summarize",
			"no Gemini API key; run `vaultcapture secret set` or export "+secrets.GeminiKeyEnv, nil)
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	summary, err := s.summarizer.GenerateSummary(ctx, key, current.Model, SourceFileNames(job))
	if err != nil {
		return "", err
	}
	logging.WithContext(ctx, s.logger).Info("summary generated",
		logging.String("model", current.Model),
		logging.String("key_source", string(source)),
	)
	return summary, nil
}
