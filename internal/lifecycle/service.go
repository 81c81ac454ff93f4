package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vaultcapture/internal/ingest"
	"vaultcapture/internal/jobs"
	"vaultcapture/internal/logging"
	"vaultcapture/internal/services"
)

const component = "lifecycle"

// Preparer turns input paths into stored assets.
type Preparer interface {
	Prepare(ctx context.Context, paths []string) (*ingest.Batch, error)
}

// JobStore is the persistence surface the service needs.
type JobStore interface {
	InsertJobWithAssets(ctx context.Context, job jobs.NewJob, assets []jobs.NewAsset, now time.Time) error
	UpdateStatus(ctx context.Context, id string, next jobs.Status) (bool, error)
	ListJobs(ctx context.Context, statuses ...jobs.Status) ([]jobs.Job, error)
	FindJobWithAssets(ctx context.Context, id string) (*jobs.JobWithAssets, error)
	Stats(ctx context.Context) (map[jobs.Status]int, error)
}

// Service orchestrates ingestion and job state changes.
type Service struct {
	ingestor Preparer
	repo     JobStore
	ids      jobs.IDGenerator
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger routes lifecycle logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the job creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the ingestor, repository and id generator together.
func NewService(ingestor Preparer, repo JobStore, ids jobs.IDGenerator, opts ...Option) *Service {
	if ids == nil {
		ids = jobs.NewSequenceIDGenerator()
	}
	s := &Service{
		ingestor: ingestor,
		repo:     repo,
		ids:      ids,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, component)
	return s
}

// DefaultTitle returns the trimmed title, or a title derived from the file count.
func DefaultTitle(title string, fileCount int) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("Capture batch (%d files)", fileCount)
}

// Enqueue stores the files and creates a queued job for them. Nothing is
// persisted when any file is rejected, and the stored copies are removed when
// the database insert fails.
func (s *Service) Enqueue(ctx context.Context, paths []string, title string) (string, error) {
	ctx = services.EnsureRequestID(ctx)
	logger := logging.WithContext(ctx, s.logger)
	if len(paths) == 0 {
		return "", ingest.ErrEmptyBatch
	}

	batch, err := s.ingestor.Prepare(ctx, paths)
	if err != nil {
		return "", err
	}

	id := s.ids.Next()
	ctx = services.WithJobID(ctx, id)
	logger = logging.WithContext(ctx, s.logger)
	job := jobs.NewJob{ID: id, Title: DefaultTitle(title, len(paths)), Status: jobs.StatusQueued}
	if err := s.repo.InsertJobWithAssets(ctx, job, batch.NewAssets(), s.now()); err != nil {
		if discardErr := batch.Discard(); discardErr != nil {
			logging.WarnWithContext(logger, "stored files not removed after failed insert", "enqueue_cleanup_failed",
				logging.Error(discardErr),
				logging.String(logging.FieldImpact, "orphaned files may remain in the content store"),
			)
		}
		return "", err
	}

	logger.Info("job enqueued",
		logging.String("title", job.Title),
		logging.Int("files", len(batch.Assets)),
	)
	return id, nil
}

// ListJobs returns jobs ordered by most recent update, optionally filtered by status.
func (s *Service) ListJobs(ctx context.Context, statuses ...jobs.Status) ([]jobs.Job, error) {
	return s.repo.ListJobs(ctx, statuses...)
}

// FindJob returns the job with its assets, or nil when the id is unknown.
func (s *Service) FindJob(ctx context.Context, id string) (*jobs.JobWithAssets, error) {
	return s.repo.FindJobWithAssets(ctx, normalizeID(id))
}

// Stats returns job counts keyed by status.
func (s *Service) Stats(ctx context.Context) (map[jobs.Status]int, error) {
	return s.repo.Stats(ctx)
}

// UpdateStatus moves one job to next. It reports false with a nil error when
// the job does not exist.
func (s *Service) UpdateStatus(ctx context.Context, id string, next jobs.Status) (bool, error) {
	id = normalizeID(id)
	ctx = services.WithJobID(services.EnsureRequestID(ctx), id)
	ok, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		var terr *jobs.TransitionError
		if errors.As(err, &terr) {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "status change rejected", "invalid_transition",
				logging.String("from", string(terr.From)),
				logging.String("to", string(terr.To)),
				logging.String(logging.FieldImpact, "job left unchanged"),
				logging.String(logging.FieldErrorHint, "see `vaultcapture jobs show` for the current status"),
			)
		}
		return false, err
	}
	return ok, nil
}

// normalizeID strips the whitespace that shell quoting or copy/paste leaves
// around job ids.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
