package storage

import (
	"context"
	"sync"

	"lukechampine.com/blake3"
)

// DedupStorage wraps another Storage backend and skips re-writing a
// blob whose BLAKE3 content hash it has already seen under a
// different hint path, returning the earlier key instead. Sequence
// Bloom Tree construction routinely produces byte-identical Nodegraph
// unions for near-duplicate genomes, and this keeps them from being
// written to the backing store twice.
type DedupStorage struct {
	backing Storage
	mu      sync.Mutex
	seen    map[[32]byte]string
}

// NewDedupStorage wraps backing with content-hash deduplication.
func NewDedupStorage(backing Storage) *DedupStorage {
	return &DedupStorage{backing: backing, seen: make(map[[32]byte]string)}
}

// Save stores content under backing, unless identical content was
// already saved, in which case the earlier key is returned unchanged.
func (d *DedupStorage) Save(ctx context.Context, hintPath string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum := blake3.Sum256(content)

	d.mu.Lock()
	if key, ok := d.seen[sum]; ok {
		d.mu.Unlock()
		return key, nil
	}
	d.mu.Unlock()

	key, err := d.backing.Save(ctx, hintPath, content)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	d.seen[sum] = key
	d.mu.Unlock()
	return key, nil
}

// Load delegates to the backing store.
func (d *DedupStorage) Load(ctx context.Context, path string) ([]byte, error) {
	return d.backing.Load(ctx, path)
}

// Args delegates to the backing store; DedupStorage is a transparent
// wrapper and has no reconstruction arguments of its own.
func (d *DedupStorage) Args() Args { return d.backing.Args() }

// Close delegates to the backing store.
func (d *DedupStorage) Close() error { return d.backing.Close() }
