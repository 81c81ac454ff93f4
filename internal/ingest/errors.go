package ingest

import (
	"errors"
	"fmt"

	"vaultcapture/internal/services"
)

// Validation failures. Each one also matches services.ErrValidation.
var (
	ErrEmptyBatch       = fmt.Errorf("%w: no files supplied", services.ErrValidation)
	ErrNotRegularFile   = fmt.Errorf("%w: not a regular file", services.ErrValidation)
	ErrTooLarge         = fmt.Errorf("%w: file exceeds size limit", services.ErrValidation)
	ErrEmptyFile        = fmt.Errorf("%w: file is empty", services.ErrValidation)
	ErrUnsupportedMedia = fmt.Errorf("%w: unsupported media type", services.ErrValidation)
	ErrMIMEMismatch     = fmt.Errorf("%w: content does not match extension", services.ErrValidation)
)

// AssetError names the input that stopped a batch.
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// FailedPath returns the offending input path carried by err, if any.
func FailedPath(err error) (string, bool) {
	var assetErr *AssetError
	if errors.As(err, &assetErr) {
		return assetErr.Path, true
	}
	return "", false
}
