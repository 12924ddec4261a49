package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage keeps each record in a file next to the configured path,
// written atomically via temp-file rename.
type FileStorage struct {
	dir  string
	base string
}

// NewFileStorage creates storage rooted at path. The path's directory is
// created if missing; the file name becomes the prefix for record files.
func NewFileStorage(path string) (*FileStorage, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &FileStorage{dir: dir, base: filepath.Base(path)}, nil
}

func (s *FileStorage) pathFor(key string) string {
	if key == "" {
		return filepath.Join(s.dir, s.base)
	}
	return filepath.Join(s.dir, key+"-"+s.base)
}

// Get reads a record; a missing file is a missing record, not an error.
func (s *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	return data, nil
}

// Set writes a record atomically.
func (s *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	target := s.pathFor(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit storage file: %w", err)
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
