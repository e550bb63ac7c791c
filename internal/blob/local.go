package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps each slot as a file under a base directory. Writes go to a
// temp file first and are renamed into place, so a crash mid-write never
// leaves a half-written slot behind.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create data dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key)+".json")
}

func (s *LocalStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: read slot %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalStore) Save(_ context.Context, key string, data []byte) error {
	dest := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("blob: mkdir for slot %s: %w", key, err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("blob: write temp for slot %s: %w", key, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("blob: replace slot %s: %w", key, err)
	}
	return nil
}
