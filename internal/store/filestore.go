// Package store persists the original uploaded bytes on disk, one file per
// document identity.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/marukodo/bunsho/internal/models"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename reduces a client-supplied filename to its base name with
// unsafe characters replaced, so it can be embedded in an on-disk path.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "upload"
	}
	return base
}

// FileStore stores original files under a root directory. Keys are derived
// from document identity plus sanitized filename, so a byte-identical
// re-upload overwrites the same path.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create file store root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string { return s.root }

// PathFor returns the storage path for a document identity and filename
// without writing anything.
func (s *FileStore) PathFor(documentID, filename string) string {
	return filepath.Join(s.root, documentID+"_"+SanitizeFilename(filename))
}

// Save writes content to the path for (documentID, filename) and returns the
// path. The write goes to a temp file first and is renamed into place, so
// concurrent same-identity uploads degrade to last-writer-wins rather than
// interleaved bytes.
func (s *FileStore) Save(documentID, filename string, content []byte) (string, error) {
	path := s.PathFor(documentID, filename)
	tmp := path + ".tmp-" + uuid.New().String()[:8]
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", models.ErrStorage, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: rename %s: %v", models.ErrStorage, path, err)
	}
	return path, nil
}

// Exists reports whether path refers to a regular file.
func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the stored bytes at path.
func (s *FileStore) Read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read stored file: %w", err)
	}
	return content, nil
}

// Delete removes the stored file at path. A missing file reports not-found.
func (s *FileStore) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", models.ErrNotFound, path)
		}
		return fmt.Errorf("%w: delete %s: %v", models.ErrStorage, path, err)
	}
	return nil
}

// UsageBytes returns the total size of all stored files.
func (s *FileStore) UsageBytes() (int64, error) {
	var total int64
	err := filepath.Walk(s.root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info != nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
