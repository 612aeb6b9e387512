// Package upload stores validated image uploads on disk, one folder per
// purpose. Storage keys are prefixed with a UUID so two uploads with the
// same original filename never collide.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"event-ticketing/internal/apperr"
)

// Purpose routes an upload to its destination folder. Files are served back
// under /uploads/<purpose>/<key>.
type Purpose string

const (
	PurposeProfileImage      Purpose = "profile_pictures"
	PurposeAdminProfileImage Purpose = "admin_profile_pictures"
	PurposeEventImage        Purpose = "event_images"
)

// DefaultMaxFileSize is the upload size ceiling: 5 MiB.
const DefaultMaxFileSize = 5 * 1024 * 1024

type Store struct {
	baseDir     string
	maxFileSize int64
}

func NewStore(baseDir string, maxFileSize int64) *Store {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Store{baseDir: baseDir, maxFileSize: maxFileSize}
}

// Save validates and stores a single uploaded image, returning the storage
// key to persist on the owning record. Non-image MIME types and files over
// the size ceiling are rejected as validation errors.
func (s *Store) Save(fh *multipart.FileHeader, purpose Purpose) (string, error) {
	if fh.Size > s.maxFileSize {
		return "", apperr.E(apperr.ErrValidation, fmt.Sprintf("File exceeds the %d MB size limit", s.maxFileSize/(1024*1024)))
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", apperr.E(apperr.ErrValidation, "Only image files are allowed")
	}

	dir := filepath.Join(s.baseDir, string(purpose))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	key := uuid.New().String() + "_" + sanitizeName(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, key))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return key, nil
}

// Remove deletes a stored file. A missing file is not an error: callers use
// Remove when replacing or cascading deletes and the reference may already
// be dangling.
func (s *Store) Remove(purpose Purpose, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, string(purpose), key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the on-disk location of a stored file.
func (s *Store) Path(purpose Purpose, key string) string {
	return filepath.Join(s.baseDir, string(purpose), key)
}

// URL qualifies a storage key into the absolute URL clients fetch it from.
func URL(baseURL string, purpose Purpose, key string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", strings.TrimSuffix(baseURL, "/"), purpose, key)
}

// sanitizeName strips any path components from an uploaded filename.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.ReplaceAll(name, " ", "_")
}
