package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage is a mutex-guarded in-memory backend, adapted from the
// content-addressed MemoryCAS pattern but keyed by caller hint paths
// instead of content hashes.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Save stores a copy of content under hintPath.
func (m *MemoryStorage) Save(ctx context.Context, hintPath string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if hintPath == "" {
		return "", ErrEmptyPath
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(content))
	copy(cp, content)
	m.data[hintPath] = cp
	return hintPath, nil
}

// Load returns a copy of the content stored under path.
func (m *MemoryStorage) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.data[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp, nil
}

// Args reports the backend name; MemoryStorage cannot be reconstructed
// from a manifest and is used for transient/test indexes only.
func (m *MemoryStorage) Args() Args {
	return Args{Backend: "MemoryStorage"}
}

// Close clears the backing map.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

// Len returns the number of keys currently stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
