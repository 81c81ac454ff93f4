package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"vaultcapture/internal/jobs"
)

var extensionCategories = map[string]jobs.MediaType{
	".mp3":  jobs.MediaAudio,
	".wav":  jobs.MediaAudio,
	".m4a":  jobs.MediaAudio,
	".mp4":  jobs.MediaVideo,
	".jpg":  jobs.MediaImage,
	".jpeg": jobs.MediaImage,
	".png":  jobs.MediaImage,
	".heif": jobs.MediaImage,
}

// extensionMIME is recorded when sniffing yields only a generic type.
var extensionMIME = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/x-m4a",
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heif": "image/heif",
}

// Signatures that carry no family information.
var genericMIME = map[string]struct{}{
	"application/octet-stream": {},
	"text/plain":               {},
}

// ISO base media files share one container; the brand decides whether the
// sniffer reports audio or video, so each family accepts the other's mp4 types.
var crossFamilyMIME = map[jobs.MediaType]map[string]struct{}{
	jobs.MediaAudio: {"video/mp4": {}},
	jobs.MediaVideo: {"audio/mp4": {}, "audio/x-m4a": {}},
}

// CategoryFromExtension classifies a path by its extension, case-insensitively.
func CategoryFromExtension(path string) jobs.MediaType {
	if category, ok := extensionCategories[strings.ToLower(filepath.Ext(path))]; ok {
		return category
	}
	return jobs.MediaUnknown
}

// SniffMIME detects the MIME type from the file's leading bytes. Parameters
// such as charset are stripped.
func SniffMIME(path string) (string, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return baseMIME(detected.String()), nil
}

func baseMIME(value string) string {
	base, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// IsGenericMIME reports whether a sniffed type says nothing about the family.
func IsGenericMIME(mimeType string) bool {
	_, ok := genericMIME[baseMIME(mimeType)]
	return ok
}

// CheckMIME cross-checks a sniffed type against the extension category.
// Generic types pass; a detected type from another family is rejected.
func CheckMIME(category jobs.MediaType, mimeType string) error {
	mimeType = baseMIME(mimeType)
	if IsGenericMIME(mimeType) {
		return nil
	}
	family, _, _ := strings.Cut(mimeType, "/")
	if family == string(category) {
		return nil
	}
	if _, ok := crossFamilyMIME[category][mimeType]; ok {
		return nil
	}
	return fmt.Errorf("%w: extension says %s, content is %s", ErrMIMEMismatch, category, mimeType)
}

// recordedMIME picks the MIME type stored for an asset.
func recordedMIME(path, sniffed string) string {
	if !IsGenericMIME(sniffed) {
		return sniffed
	}
	if mimeType, ok := extensionMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return mimeType
	}
	return sniffed
}

// SanitizeFileName keeps ASCII letters, digits, '-', '_' and '.', replacing
// every other rune with '_'.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || strings.Trim(out, ".") == "" {
		return "asset"
	}
	return out
}
