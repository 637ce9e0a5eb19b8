package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no document has been stored yet
var ErrNotFound = errors.New("document not found")

// Backend defines where the shop document is kept. A backend stores opaque bytes;
// encoding belongs to the document store.
type Backend interface {
	// Load returns the last saved document or ErrNotFound
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document in one operation
	Save(ctx context.Context, data []byte) error

	// Name identifies the backend in logs
	Name() string

	// Lifecycle
	Close() error
}
