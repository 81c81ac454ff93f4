package ingest_test

import (
	"errors"
	"path/filepath"
	"testing"

	"vaultcapture/internal/ingest"
	"vaultcapture/internal/jobs"
	"vaultcapture/internal/testsupport"
)

func TestCategoryFromExtension(t *testing.T) {
	tests := map[string]jobs.MediaType{
		"a.mp3":           jobs.MediaAudio,
		"a.WAV":           jobs.MediaAudio,
		"a.m4a":           jobs.MediaAudio,
		"clip.mp4":        jobs.MediaVideo,
		"photo.JPG":       jobs.MediaImage,
		"photo.jpeg":      jobs.MediaImage,
		"shot.png":        jobs.MediaImage,
		"shot.heif":       jobs.MediaImage,
		"doc.pdf":         jobs.MediaUnknown,
		"noextension":     jobs.MediaUnknown,
		"archive.mp3.zip": jobs.MediaUnknown,
	}
	for name, want := range tests {
		if got := ingest.CategoryFromExtension(name); got != want {
			t.Fatalf("CategoryFromExtension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCheckMIME(t *testing.T) {
	tests := []struct {
		category jobs.MediaType
		mime     string
		ok       bool
	}{
		{jobs.MediaImage, "image/png", true},
		{jobs.MediaImage, "application/octet-stream", true},
		{jobs.MediaImage, "text/plain; charset=utf-8", true},
		{jobs.MediaImage, "audio/mpeg", false},
		{jobs.MediaImage, "application/zip", false},
		{jobs.MediaAudio, "audio/mpeg", true},
		{jobs.MediaAudio, "video/mp4", true},
		{jobs.MediaAudio, "image/jpeg", false},
		{jobs.MediaVideo, "video/mp4", true},
		{jobs.MediaVideo, "audio/x-m4a", true},
		{jobs.MediaVideo, "audio/mpeg", false},
	}
	for _, tt := range tests {
		err := ingest.CheckMIME(tt.category, tt.mime)
		if tt.ok && err != nil {
			t.Fatalf("CheckMIME(%s, %s) unexpected error: %v", tt.category, tt.mime, err)
		}
		if !tt.ok && !errors.Is(err, ingest.ErrMIMEMismatch) {
			t.Fatalf("CheckMIME(%s, %s) expected mismatch, got %v", tt.category, tt.mime, err)
		}
	}
}

func TestSniffMIMEReadsContentNotExtension(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{"tagged.jpg", testsupport.ID3Signature, "audio/mpeg"},
		{"picture.bin", testsupport.PNGSignature, "image/png"},
		{"picture.mp3", testsupport.JPEGSignature, "image/jpeg"},
		{"opaque.png", testsupport.OpaqueBytes, "application/octet-stream"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		testsupport.WriteBytes(t, path, tt.header, 512)
		got, err := ingest.SniffMIME(path)
		if err != nil {
			t.Fatalf("SniffMIME(%s): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("SniffMIME(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"Voice Memo #3.m4a": "Voice_Memo__3.m4a",
		"résumé.png":        "r_sum_.png",
		"clean-name_1.mp3":  "clean-name_1.mp3",
		"a/b\\c.jpg":        "a_b_c.jpg",
		"..":                "asset",
		"":                  "asset",
	}
	for in, want := range tests {
		if got := ingest.SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
