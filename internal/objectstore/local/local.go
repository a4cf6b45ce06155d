package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"roofscope/internal/objectstore"
)

// Store keeps objects on the local filesystem under basePath, one
// subdirectory per bucket.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	path, err := s.safeJoin(bucket, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, objectstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

func (s *Store) Put(ctx context.Context, bucket, key, contentType string, data []byte) error {
	path, err := s.safeJoin(bucket, key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// safeJoin resolves bucket/key relative to basePath and rejects directory traversal.
func (s *Store) safeJoin(bucket, key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, bucket, key))
	if err != nil {
		return "", fmt.Errorf("invalid object path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
