// Package fileutil provides the durable file primitives used by the content
// store and the note publisher.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ChunkSize is the read buffer used when hashing and copying.
const ChunkSize = 64 * 1024

// PartialSuffix marks a copy that has not been linked into place yet.
const PartialSuffix = ".partial"

// ErrDestinationExists reports that a copy target, or its partial file, is
// already taken. Callers may retry under another name.
var ErrDestinationExists = errors.New("destination already exists")

// Digest describes the bytes of one file.
type Digest struct {
	Size   int64
	SHA256 string
}

// HashReader streams r through SHA-256 in fixed-size chunks.
func HashReader(r io.Reader) (Digest, error) {
	hasher := sha256.New()
	buf := make([]byte, ChunkSize)
	n, err := io.CopyBuffer(hasher, r, buf)
	if err != nil {
		return Digest{}, err
	}
	return Digest{Size: n, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// HashFile returns the digest of the file at path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	return HashReader(f)
}

// CopyFileVerified streams src to dst with SHA256 + size integrity
// verification. The bytes land in dst+".partial" first, are flushed to disk,
// re-read and compared against the source digest, and only then hard-linked
// to dst. The partial file is removed on any failure. An existing dst is
// never replaced; that case returns ErrDestinationExists.
func CopyFileVerified(src, dst string) (Digest, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return Digest{}, fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return Digest{}, err
	}
	defer in.Close()

	partial := dst + PartialSuffix
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Digest{}, fmt.Errorf("%w: %s", ErrDestinationExists, partial)
		}
		return Digest{}, err
	}
	success := false
	defer func() {
		_ = out.Close()
		if !success {
			_ = os.Remove(partial)
		}
	}()

	srcDigest, err := HashReader(io.TeeReader(in, out))
	if err != nil {
		return Digest{}, err
	}
	if err := out.Sync(); err != nil {
		return Digest{}, fmt.Errorf("sync copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return Digest{}, err
	}

	if srcDigest.Size != srcInfo.Size() {
		return Digest{}, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), srcDigest.Size)
	}
	dstDigest, err := HashFile(partial)
	if err != nil {
		return Digest{}, fmt.Errorf("verify copy: %w", err)
	}
	if dstDigest != srcDigest {
		return Digest{}, errors.New("copy hash mismatch: file corrupted during copy")
	}

	// Link never replaces an existing entry, unlike rename.
	if err := os.Link(partial, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Digest{}, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return Digest{}, fmt.Errorf("finalize copy: %w", err)
	}
	success = true
	_ = os.Remove(partial)
	syncDir(filepath.Dir(dst))
	return srcDigest, nil
}

// WriteFileAtomic writes data to a temp file beside path, flushes it, and
// renames it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	success = true
	syncDir(dir)
	return nil
}

// IsWithin reports whether target lies inside root once both are made
// absolute and symlinks are resolved. target itself need not exist yet, but
// its parent directory must.
func IsWithin(root, target string) (bool, error) {
	canonicalRoot, err := canonical(root)
	if err != nil {
		return false, err
	}
	parent, err := canonical(filepath.Dir(target))
	if err != nil {
		return false, err
	}
	canonicalTarget := filepath.Join(parent, filepath.Base(target))
	rel, err := filepath.Rel(canonicalRoot, canonicalTarget)
	if err != nil {
		return false, nil
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false, nil
	}
	return true, nil
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// syncDir flushes directory entries so a rename survives a crash. Some
// platforms cannot fsync directories; that is ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
