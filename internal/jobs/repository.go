package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vaultcapture/internal/logging"
	"vaultcapture/internal/services"
	"vaultcapture/internal/store"
)

const component = "jobs"

// Repository persists jobs and assets through a store.Pool.
type Repository struct {
	pool   *store.Pool
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Repository.
type Option func(*Repository)

// WithLogger routes repository logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the timestamp source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository constructs a Repository.
func NewRepository(pool *store.Pool, opts ...Option) *Repository {
	r := &Repository{pool: pool, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, component)
	return r
}

// InsertJobWithAssets writes one job row and one row per asset in a single
// transaction. If any insert fails nothing is written.
func (r *Repository) InsertJobWithAssets(ctx context.Context, job NewJob, assets []NewAsset, now time.Time) error {
	if strings.TrimSpace(job.ID) == "" {
		return services.Wrap(services.ErrValidation, component, "insert job", "job id required", nil)
	}
	if strings.TrimSpace(job.Title) == "" {
		return services.Wrap(services.ErrValidation, component, "insert job", "title required", nil)
	}
	if !job.Status.Valid() {
		return services.Wrap(services.ErrValidation, component, "insert job", fmt.Sprintf("unknown status %q", job.Status), nil)
	}
	if len(assets) == 0 {
		return services.Wrap(services.ErrValidation, component, "insert job", "at least one asset required", nil)
	}

	nowMS := now.UnixMilli()
	uow, err := r.pool.Begin(ctx)
	if err != nil {
		return services.Wrap(services.ErrPersistence, component, "insert job", job.ID, err)
	}
	defer uow.Close()

	if _, err := uow.ExecContext(ctx,
		`INSERT INTO ingestion_job (id, title, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Status, nowMS, nowMS,
	); err != nil {
		return services.Wrap(services.ErrPersistence, component, "insert job", job.ID, err)
	}
	for idx, asset := range assets {
		if _, err := uow.ExecContext(ctx,
			`INSERT INTO media_asset (job_id, original_path, storage_path, media_type, mime_type, size_bytes, sha256, duration_ms, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.ID,
			asset.OriginalPath,
			asset.StoragePath,
			asset.MediaType,
			asset.MIMEType,
			asset.SizeBytes,
			asset.SHA256,
			nullableInt64(asset.DurationMS),
			nowMS,
		); err != nil {
			return services.Wrap(services.ErrPersistence, component, "insert asset",
				fmt.Sprintf("%s asset %d (%s)", job.ID, idx, asset.OriginalPath), err)
		}
	}
	if err := uow.Commit(); err != nil {
		return services.Wrap(services.ErrPersistence, component, "insert job", job.ID, err)
	}

	logging.WithContext(services.WithJobID(ctx, job.ID), r.logger).Info("job inserted",
		logging.String("status", string(job.Status)),
		logging.Int("assets", len(assets)),
	)
	return nil
}

// UpdateStatus moves a job to next. It returns (false, nil) when the job does
// not exist and a *TransitionError when the change is not allowed; in both
// cases nothing is modified.
func (r *Repository) UpdateStatus(ctx context.Context, id string, next Status) (bool, error) {
	if !next.Valid() {
		return false, services.Wrap(services.ErrValidation, component, "update status", fmt.Sprintf("unknown status %q", next), nil)
	}

	uow, err := r.pool.Begin(ctx)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, component, "update status", id, err)
	}
	defer uow.Close()

	var current Status
	err = uow.QueryRowContext(ctx, `SELECT status FROM ingestion_job WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, component, "load status", id, err)
	}
	if err := CheckTransition(current, next); err != nil {
		return false, err
	}

	res, err := uow.ExecContext(ctx,
		`UPDATE ingestion_job SET status = ?, updated_at = MAX(?, created_at) WHERE id = ? AND status = ?`,
		next, r.now().UnixMilli(), id, current,
	)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, component, "update status", id, err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return false, services.Wrap(services.ErrPersistence, component, "update status",
			fmt.Sprintf("%s: expected 1 row, got %d", id, n), err)
	}
	if err := uow.Commit(); err != nil {
		return false, services.Wrap(services.ErrPersistence, component, "update status", id, err)
	}

	logging.WithContext(services.WithJobID(ctx, id), r.logger).Info("job status changed",
		logging.String("from", string(current)),
		logging.String("to", string(next)),
	)
	return true, nil
}

// ListJobs returns jobs ordered by most recently updated first, each with its
// live asset count. When statuses are supplied only matching jobs are returned.
func (r *Repository) ListJobs(ctx context.Context, statuses ...Status) ([]Job, error) {
	query := `SELECT j.id, j.title, j.status, j.created_at, j.updated_at, COUNT(a.id)
		FROM ingestion_job j
		LEFT JOIN media_asset a ON a.job_id = j.id`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE j.status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` GROUP BY j.id ORDER BY j.updated_at DESC, j.rowid DESC`

	rows, err := r.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, component, "list jobs", "", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Title, &job.Status, &job.CreatedAt, &job.UpdatedAt, &job.AssetCount); err != nil {
			return nil, services.Wrap(services.ErrPersistence, component, "scan job", "", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, component, "list jobs", "", err)
	}
	return out, nil
}

// FindJobWithAssets returns the job and its assets, or nil when the id is unknown.
func (r *Repository) FindJobWithAssets(ctx context.Context, id string) (*JobWithAssets, error) {
	var job Job
	err := r.pool.QueryRowContext(ctx,
		`SELECT id, title, status, created_at, updated_at FROM ingestion_job WHERE id = ?`, id,
	).Scan(&job.ID, &job.Title, &job.Status, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, component, "find job", id, err)
	}

	rows, err := r.pool.QueryContext(ctx,
		`SELECT id, job_id, original_path, storage_path, media_type, mime_type, size_bytes, sha256, duration_ms, created_at
		 FROM media_asset WHERE job_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, component, "list assets", id, err)
	}
	defer rows.Close()

	result := &JobWithAssets{Job: job}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, component, "scan asset", id, err)
		}
		result.Assets = append(result.Assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, component, "list assets", id, err)
	}
	result.AssetCount = len(result.Assets)
	return result, nil
}

// Stats returns a count of jobs grouped by status. Statuses with no jobs are
// reported as zero.
func (r *Repository) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := r.pool.QueryContext(ctx, `SELECT status, COUNT(1) FROM ingestion_job GROUP BY status`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, component, "stats", "", err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		stats[status] = 0
	}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, services.Wrap(services.ErrPersistence, component, "stats", "", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanAsset(scanner interface{ Scan(dest ...any) error }) (Asset, error) {
	var (
		asset    Asset
		duration sql.NullInt64
	)
	if err := scanner.Scan(
		&asset.ID,
		&asset.JobID,
		&asset.OriginalPath,
		&asset.StoragePath,
		&asset.MediaType,
		&asset.MIMEType,
		&asset.SizeBytes,
		&asset.SHA256,
		&duration,
		&asset.CreatedAt,
	); err != nil {
		return Asset{}, err
	}
	if duration.Valid {
		v := duration.Int64
		asset.DurationMS = &v
	}
	return asset, nil
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
