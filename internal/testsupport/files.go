package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Leading bytes that content sniffing recognizes.
var (
	ID3Signature  = []byte("ID3\x03\x00\x00\x00\x00\x00\x0a")
	PNGSignature  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	JPEGSignature = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	MP4Signature  = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
	M4ASignature  = []byte("\x00\x00\x00\x1cftypM4A \x00\x00\x00\x00M4A mp42isom")
	// OpaqueBytes match no known signature.
	OpaqueBytes = bytes.Repeat([]byte{0x13, 0x37, 0xc0, 0xde, 0x01, 0x99, 0x42, 0x7a}, 64)
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := bytes.Repeat([]byte{0x42}, chunkSize)
	for remaining := size; remaining > 0; {
		n := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= n
	}
}

// WriteBytes writes header followed by padding bytes so the file totals at
// least size bytes.
func WriteBytes(t testing.TB, path string, header []byte, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := append([]byte(nil), header...)
	if pad := size - len(data); pad > 0 {
		data = append(data, make([]byte, pad)...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSparse creates a file of the given logical size without allocating its blocks.
func WriteSparse(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}
