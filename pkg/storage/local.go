package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedImageExtensions are the upload types accepted for listing photos
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// AllowedImage reports whether the filename carries an accepted image
// extension. Handlers use it to reject uploads before anything is stored.
func AllowedImage(filename string) bool {
	return allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// LocalStore saves uploaded files under a base directory on disk
type LocalStore struct {
	baseDir  string
	maxBytes int64
}

// NewLocalStore creates the base directory if needed and returns a store
func NewLocalStore(baseDir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStore{
		baseDir:  baseDir,
		maxBytes: maxBytes,
	}, nil
}

// SaveImage validates and persists an uploaded image, returning the path
// relative to the base directory. Filenames are random so uploads cannot
// collide or traverse directories.
func (s *LocalStore) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", fmt.Errorf("image exceeds the maximum size of %d bytes", s.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return name, nil
}

// Remove deletes a previously saved file. Missing files are not an error.
func (s *LocalStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.baseDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Path returns the absolute path of a stored file
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}
