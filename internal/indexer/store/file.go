package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

// FileStore keeps the snapshot in a single local file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Name() string {
	return "file:" + s.path
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", s.path, apperrors.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("reading snapshot file %s: %w", s.path, err)
	}
	return data, nil
}

// Save writes to a .tmp file next to the target and renames it into place, so
// a crash never leaves a half-written snapshot behind.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	tmpPath := s.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	return nil
}
