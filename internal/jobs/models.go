package jobs

import (
	"fmt"
	"strings"
	"time"

	"vaultcapture/internal/services"
)

// Status represents the lifecycle of an ingestion job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// AllStatuses returns every defined status in display order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	for _, candidate := range allStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", services.ErrValidation, value)
	}
	return status, nil
}

// MediaType is the category of an asset derived from its file extension.
type MediaType string

const (
	MediaAudio   MediaType = "audio"
	MediaVideo   MediaType = "video"
	MediaImage   MediaType = "image"
	MediaUnknown MediaType = "unknown"
)

// Job is one ingestion batch.
type Job struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     Status `json:"status"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
	AssetCount int    `json:"asset_count"`
}

// Created returns the creation time.
func (j Job) Created() time.Time { return time.UnixMilli(j.CreatedAt) }

// Updated returns the last update time.
func (j Job) Updated() time.Time { return time.UnixMilli(j.UpdatedAt) }

// Asset is one stored file belonging to a job.
type Asset struct {
	ID           int64     `json:"id"`
	JobID        string    `json:"job_id"`
	OriginalPath string    `json:"original_path"`
	StoragePath  string    `json:"storage_path"`
	MediaType    MediaType `json:"media_type"`
	MIMEType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	SHA256       string    `json:"sha256"`
	DurationMS   *int64    `json:"duration_ms,omitempty"`
	CreatedAt    int64     `json:"created_at"`
}

// JobWithAssets is a job together with its assets in insertion order.
type JobWithAssets struct {
	Job
	Assets []Asset `json:"assets"`
}

// NewJob describes a job about to be inserted.
type NewJob struct {
	ID     string
	Title  string
	Status Status
}

// NewAsset describes an asset row about to be inserted. The file it refers to
// must already be in the content store.
type NewAsset struct {
	OriginalPath string
	StoragePath  string
	MediaType    MediaType
	MIMEType     string
	SizeBytes    int64
	SHA256       string
	DurationMS   *int64
}
