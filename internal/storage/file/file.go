package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bookshop/internal/storage"
)

// Backend keeps the document in a single JSON file on local disk
type Backend struct {
	path string
}

// NewBackend creates a file backend for the given path. Nothing is touched on disk until the first Save.
func NewBackend(path string) *Backend {
	return &Backend{path: path}
}

func (b *Backend) Name() string { return "file:" + b.path }

// Load reads the whole file
func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	return data, nil
}

// Save overwrites the file, creating its directory when missing
func (b *Backend) Save(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.path, err)
	}
	return nil
}

// Close does nothing for the file backend
func (b *Backend) Close() error {
	return nil
}
