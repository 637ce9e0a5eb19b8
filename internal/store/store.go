package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bookshop/internal/storage"

	"go.uber.org/zap"
)

// ErrNoChanges may be returned by an Update callback that decided not to modify
// anything. Update then returns nil without persisting.
var ErrNoChanges = errors.New("no changes")

// Store owns the in-memory dataset and writes the whole document to its backend
// after every mutation. All mutations are serialized on one lock.
type Store struct {
	backend storage.Backend
	logger  *zap.Logger

	mu      sync.RWMutex
	doc     *Document
	saveErr error
}

// New creates a store over the backend. Call Load before use.
func New(backend storage.Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		doc:     newDocument(),
	}
}

// Load reads the persisted document. A missing document starts a fresh dataset,
// and so does one that cannot be decoded: the broken document is logged and
// overwritten right away. Read failures of the backend itself are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info("No document found, creating a new one", zap.String("backend", s.backend.Name()))
		s.doc = newDocument()
		_ = s.persistLocked(ctx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load document from %s: %w", s.backend.Name(), err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Error("Error loading data, creating new document",
			zap.String("backend", s.backend.Name()),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		s.doc = newDocument()
		_ = s.persistLocked(ctx)
		return nil
	}

	if doc.normalize() {
		s.logger.Warn("Identifier counters rebuilt from existing rows",
			zap.Int64("next_book_id", doc.NextID.Books),
			zap.Int64("next_customer_id", doc.NextID.Customers),
			zap.Int64("next_rental_id", doc.NextID.Rentals),
		)
	}
	s.doc = doc

	s.logger.Info("Document loaded",
		zap.String("backend", s.backend.Name()),
		zap.Int("books", len(doc.Books)),
		zap.Int("customers", len(doc.Customers)),
		zap.Int("rentals", len(doc.Rentals)),
	)
	return nil
}

// View runs fn with shared access to the dataset. fn must not modify it or keep references.
func (s *Store) View(fn func(doc *Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// Update runs fn with exclusive access and persists once when fn succeeds.
// fn must check its preconditions before touching the dataset: an error from fn
// is returned as is and nothing is saved. A failed save is logged and recorded
// in LastSaveError but does not fail the update.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.doc); err != nil {
		if errors.Is(err, ErrNoChanges) {
			return nil
		}
		return err
	}

	_ = s.persistLocked(ctx)
	return nil
}

// Flush writes the current dataset and returns the save error, if any
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// LastSaveError returns the error of the most recent save, nil once a save succeeds
func (s *Store) LastSaveError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveErr
}

// Close flushes the dataset and closes the backend
func (s *Store) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	return errors.Join(flushErr, s.backend.Close())
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := encodeDocument(s.doc)
	if err == nil {
		// The in-memory change is already applied; a cancelled request must not abort its save.
		err = s.backend.Save(context.WithoutCancel(ctx), data)
	}
	if err != nil {
		s.saveErr = err
		s.logger.Error("Error saving data",
			zap.String("backend", s.backend.Name()),
			zap.Error(err),
		)
		return err
	}
	s.saveErr = nil
	return nil
}
