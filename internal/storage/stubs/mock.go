package stubs

import (
	"context"
	"sync"

	"bookshop/internal/storage"
)

// MockBackend is an in-memory implementation of the storage.Backend interface for testing
type MockBackend struct {
	mu      sync.RWMutex
	data    []byte
	saves   int
	saveErr error
	loadErr error
}

// NewMockBackend creates an empty mock backend
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// NewMockBackendWith creates a mock backend that already holds a document
func NewMockBackendWith(data []byte) *MockBackend {
	m := &MockBackend{}
	m.data = append([]byte(nil), data...)
	return m
}

func (m *MockBackend) Name() string { return "memory" }

// Load returns a copy of the stored bytes
func (m *MockBackend) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

// Save stores a copy of data unless a failure was injected with FailSaves
func (m *MockBackend) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

// FailSaves makes every following Save return err; nil restores normal behaviour
func (m *MockBackend) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// FailLoads makes every following Load return err
func (m *MockBackend) FailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// Saves returns how many times Save was called, failed calls included
func (m *MockBackend) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Data returns the currently stored bytes
func (m *MockBackend) Data() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...)
}

// Close does nothing for mock backend
func (m *MockBackend) Close() error {
	return nil
}
