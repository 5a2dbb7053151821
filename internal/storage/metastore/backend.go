// Package metastore persists decoded-runtime metadata blobs between runs so
// a chain's metadata is only downloaded again after a runtime upgrade.
package metastore

import (
	"bytes"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotFound is returned when a key is not present in the backend.
	ErrNotFound = errors.New("metadata not found")

	// ErrClosed is returned when operating on a closed backend.
	ErrClosed = errors.New("metadata store is closed")
)

// Backend is the key-value storage a Store writes to.
type Backend interface {
	// Name returns the name of this backend.
	Name() string

	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(prefix []byte) error

	Close() error
}

// MemoryBackend implements an in-memory Backend for tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed atomic.Bool
}

// NewMemoryBackend creates a new in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(key []byte) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *MemoryBackend) Set(key, value []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *MemoryBackend) DeletePrefix(prefix []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Keys returns the stored keys in order.
func (m *MemoryBackend) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryBackend) Close() error {
	m.closed.Store(true)
	return nil
}
