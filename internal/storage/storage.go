// Package storage persists uploaded evidence files and ticket
// attachments.  The core only needs "store a byte stream, get back a
// stable path" — the local-disk implementation below can be swapped for
// an object store without touching the workflow code.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize caps a single uploaded file at 10MB.
const MaxFileSize = 10 << 20

// MaxFilesPerUpload caps the number of files in one multipart request.
const MaxFilesPerUpload = 5

// allowedMimeTypes lists the image types accepted for photos and
// attachments.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// AllowedMimeType reports whether an uploaded file's content type is
// accepted.
func AllowedMimeType(mime string) bool {
	return allowedMimeTypes[strings.ToLower(strings.TrimSpace(mime))]
}

// SavedFile describes a stored upload.  SHA256 is the hex digest of the
// exact bytes written, computed in the same pass as the copy so the
// hash is stable across re-reads of identical content.
type SavedFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// Store accepts byte streams and returns stable path references.
type Store interface {
	Save(originalFilename string, r io.Reader) (SavedFile, error)
}

// LocalStore writes files under a base directory using random uuid
// names with the original extension preserved.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore ensures the base directory exists and returns a store
// rooted there.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{BaseDir: baseDir}, nil
}

// Save streams r to disk, hashing the bytes as they pass through.  The
// size limit is enforced here as a backstop; oversized files abort the
// write and the partial file is removed.
func (s *LocalStore) Save(originalFilename string, r io.Reader) (SavedFile, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	name := uuid.NewString() + ext
	path := filepath.Join(s.BaseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return SavedFile{}, err
	}
	h := sha256.New()
	n, err := io.Copy(f, io.TeeReader(io.LimitReader(r, MaxFileSize+1), h))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = fmt.Errorf("file %s exceeds the %d byte limit", originalFilename, int64(MaxFileSize))
	}
	if err != nil {
		_ = os.Remove(path)
		return SavedFile{}, err
	}
	return SavedFile{
		Path:   path,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
