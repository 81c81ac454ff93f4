package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"vaultcapture/internal/config"
	"vaultcapture/internal/fileutil"
	"vaultcapture/internal/jobs"
	"vaultcapture/internal/logging"
	"vaultcapture/internal/services"
)

const (
	component       = "ingest"
	maxNameAttempts = 3
)

// PreparedAsset is one verified file already stored in the content store.
type PreparedAsset struct {
	OriginalPath string
	StoragePath  string
	MediaType    jobs.MediaType
	MIMEType     string
	SizeBytes    int64
	SHA256       string
}

// NewAsset converts the prepared file into a repository row.
func (a PreparedAsset) NewAsset() jobs.NewAsset {
	return jobs.NewAsset{
		OriginalPath: a.OriginalPath,
		StoragePath:  a.StoragePath,
		MediaType:    a.MediaType,
		MIMEType:     a.MIMEType,
		SizeBytes:    a.SizeBytes,
		SHA256:       a.SHA256,
	}
}

// Batch is the result of one Prepare call.
type Batch struct {
	Timestamp time.Time
	Assets    []PreparedAsset
}

// NewAssets converts every prepared asset into a repository row.
func (b *Batch) NewAssets() []jobs.NewAsset {
	out := make([]jobs.NewAsset, 0, len(b.Assets))
	for _, asset := range b.Assets {
		out = append(out, asset.NewAsset())
	}
	return out
}

// Discard removes every stored copy belonging to the batch. It keeps going
// after a failed removal and returns the joined errors.
func (b *Batch) Discard() error {
	if b == nil {
		return nil
	}
	var errs []error
	for _, asset := range b.Assets {
		if err := os.Remove(asset.StoragePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	b.Assets = nil
	return errors.Join(errs...)
}

// Ingestor prepares batches of files for a job.
type Ingestor struct {
	root     string
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
	token    func() string
}

// Option customizes an Ingestor.
type Option func(*Ingestor)

// WithMaxAssetBytes overrides the per-file size cap.
func WithMaxAssetBytes(limit int64) Option {
	return func(i *Ingestor) {
		if limit > 0 {
			i.maxBytes = limit
		}
	}
}

// WithLogger routes ingest logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock overrides the batch timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) {
		if now != nil {
			i.now = now
		}
	}
}

// WithNameToken overrides the token inserted into a storage name when the
// plain name is already taken.
func WithNameToken(token func() string) Option {
	return func(i *Ingestor) {
		if token != nil {
			i.token = token
		}
	}
}

// New constructs an Ingestor storing files under contentRoot.
func New(contentRoot string, opts ...Option) *Ingestor {
	i := &Ingestor{
		root:     contentRoot,
		maxBytes: config.MaxAssetBytes,
		logger:   logging.NewNop(),
		now:      time.Now,
		token:    shortToken,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.NewComponentLogger(i.logger, component)
	return i
}

// NewFromConfig constructs an Ingestor from application config.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Ingestor {
	return New(cfg.Paths.ContentDir,
		WithMaxAssetBytes(cfg.Ingest.MaxAssetBytes),
		WithLogger(logger),
	)
}

type candidate struct {
	original  string
	resolved  string
	size      int64
	category  jobs.MediaType
	sniffed   string
	storeName string
}

// Prepare validates every path and then copies each file into the content
// store. It returns one PreparedAsset per input in input order, or an error
// naming the first offending path. On error no copies from this call remain.
func (i *Ingestor) Prepare(ctx context.Context, paths []string) (*Batch, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyBatch
	}
	logger := logging.WithContext(ctx, i.logger)

	candidates := make([]candidate, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := i.inspect(path)
		if err != nil {
			logging.WarnWithContext(logger, "asset rejected", "ingest_rejected",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "batch aborted; nothing stored"),
				logging.String(logging.FieldErrorHint, "remove or fix the file and enqueue again"),
			)
			return nil, err
		}
		candidates = append(candidates, c)
	}

	batch := &Batch{Timestamp: i.now()}
	dir, err := i.partitionDir(batch.Timestamp)
	if err != nil {
		return nil, err
	}
	prefix := strconv.FormatInt(batch.Timestamp.UnixMilli(), 10)
	for idx, c := range candidates {
		if err := ctx.Err(); err != nil {
			_ = batch.Discard()
			return nil, err
		}
		asset, err := i.storeUnique(c, dir, prefix+"-"+strconv.Itoa(idx))
		if err != nil {
			if discardErr := batch.Discard(); discardErr != nil {
				logging.WarnWithContext(logger, "batch cleanup incomplete", "ingest_cleanup_failed",
					logging.Error(discardErr),
					logging.String(logging.FieldImpact, "orphaned files may remain in the content store"),
				)
			}
			return nil, err
		}
		batch.Assets = append(batch.Assets, asset)
		logger.Debug("asset stored",
			logging.String("path", c.original),
			logging.String("storage_path", asset.StoragePath),
			logging.Int64("size_bytes", asset.SizeBytes),
		)
	}

	logger.Info("batch prepared", logging.Int("files", len(batch.Assets)))
	return batch, nil
}

// inspect runs every check that does not write to the content store.
func (i *Ingestor) inspect(path string) (candidate, error) {
	c := candidate{original: path}
	fail := func(err error) (candidate, error) {
		return candidate{}, &AssetError{Path: path, Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fail(services.Wrap(services.ErrIO, component, "resolve path", "", err))
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fail(services.Wrap(services.ErrIO, component, "resolve path", "", err))
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return fail(services.Wrap(services.ErrIO, component, "stat", "", err))
	}
	if !info.Mode().IsRegular() {
		return fail(ErrNotRegularFile)
	}
	if err := checkSize(info.Size(), i.maxBytes); err != nil {
		return fail(err)
	}

	c.resolved = resolved
	c.size = info.Size()
	c.category = CategoryFromExtension(resolved)
	if c.category == jobs.MediaUnknown {
		return fail(fmt.Errorf("%w: extension %q", ErrUnsupportedMedia, filepath.Ext(resolved)))
	}
	sniffed, err := SniffMIME(resolved)
	if err != nil {
		return fail(services.Wrap(services.ErrIO, component, "sniff content", "", err))
	}
	if err := CheckMIME(c.category, sniffed); err != nil {
		return fail(err)
	}
	c.sniffed = sniffed
	return c, nil
}

func checkSize(size, limit int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > limit {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, limit)
	}
	return nil
}

func (i *Ingestor) partitionDir(ts time.Time) (string, error) {
	dir := filepath.Join(i.root, ts.Format("2006"), ts.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, component, "create directory", dir, err)
	}
	return dir, nil
}

// storeUnique copies c to <dir>/<prefix>-<name>, named after the canonical
// source. Concurrent batches stamped in the same millisecond can claim the
// same name; those retries insert a random token.
func (i *Ingestor) storeUnique(c candidate, dir, prefix string) (PreparedAsset, error) {
	name := SanitizeFileName(filepath.Base(c.resolved))
	dest := filepath.Join(dir, prefix+"-"+name)
	asset, err := i.store(c, dest)
	for attempt := 1; attempt < maxNameAttempts && errors.Is(err, fileutil.ErrDestinationExists); attempt++ {
		dest = filepath.Join(dir, prefix+"-"+i.token()+"-"+name)
		asset, err = i.store(c, dest)
	}
	return asset, err
}

func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (i *Ingestor) store(c candidate, dest string) (PreparedAsset, error) {
	within, err := fileutil.IsWithin(i.root, dest)
	if err != nil {
		return PreparedAsset{}, &AssetError{Path: c.original, Err: services.Wrap(services.ErrIO, component, "check destination", dest, err)}
	}
	if !within {
		return PreparedAsset{}, &AssetError{Path: c.original, Err: services.Wrap(services.ErrValidation, component, "check destination", dest+" escapes content root", nil)}
	}

	digest, err := fileutil.CopyFileVerified(c.resolved, dest)
	if err != nil {
		return PreparedAsset{}, &AssetError{Path: c.original, Err: services.Wrap(services.ErrIO, component, "copy", dest, err)}
	}
	// The source may have changed between inspection and copy.
	if err := checkSize(digest.Size, i.maxBytes); err != nil {
		_ = os.Remove(dest)
		return PreparedAsset{}, &AssetError{Path: c.original, Err: err}
	}

	return PreparedAsset{
		OriginalPath: c.original,
		StoragePath:  dest,
		MediaType:    c.category,
		MIMEType:     recordedMIME(c.resolved, c.sniffed),
		SizeBytes:    digest.Size,
		SHA256:       digest.SHA256,
	}, nil
}
