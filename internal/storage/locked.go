package storage

import (
	"context"
	"sync"
)

// Locked wraps any Storage in a mutex and a reference count, adapted
// from the shared-database manager pattern: every Save/Load serializes
// through the lock, and the underlying backend is only closed once the
// last reference releases it.
type Locked struct {
	mu      sync.Mutex
	backend Storage
	refs    int
}

// NewLocked wraps backend with a single outstanding reference.
func NewLocked(backend Storage) *Locked {
	return &Locked{backend: backend, refs: 1}
}

// Acquire increments the reference count and returns the same wrapper,
// for callers sharing one backend across several index operations.
func (l *Locked) Acquire() *Locked {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refs++
	return l
}

func (l *Locked) Save(ctx context.Context, hintPath string, content []byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backend.Save(ctx, hintPath, content)
}

func (l *Locked) Load(ctx context.Context, path string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backend.Load(ctx, path)
}

func (l *Locked) Args() Args {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backend.Args()
}

// Close decrements the reference count and closes the underlying
// backend once no references remain.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refs--
	if l.refs > 0 {
		return nil
	}
	return l.backend.Close()
}
