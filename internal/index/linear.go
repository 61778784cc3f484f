package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/javanhut/sketchdb/internal/signature"
	"github.com/javanhut/sketchdb/internal/storage"
)

// LinearIndex holds every inserted signature and scores a query against
// all of them on Search, with no pruning. It exists for small
// collections and as the correctness baseline an SBT's pruned search is
// checked against.
type LinearIndex struct {
	mu      sync.RWMutex
	sigs    []*signature.Signature
	backing storage.Storage
}

// NewLinearIndex creates an empty linear index backed by backing, used
// only by Save/Load for persistence.
func NewLinearIndex(backing storage.Storage) *LinearIndex {
	return &LinearIndex{backing: backing}
}

// Insert appends sig to the index.
func (li *LinearIndex) Insert(ctx context.Context, sig *signature.Signature) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	li.mu.Lock()
	defer li.mu.Unlock()
	li.sigs = append(li.sigs, sig)
	return nil
}

// Search scores query against every held signature via Jaccard
// similarity and returns those at or above threshold, in insertion
// order.
func (li *LinearIndex) Search(ctx context.Context, query *signature.Signature, threshold float64) ([]*signature.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	li.mu.RLock()
	defer li.mu.RUnlock()

	queryMH, err := query.PrimarySketch()
	if err != nil {
		return nil, err
	}

	var results []*signature.Signature
	for _, candidate := range li.sigs {
		candidateMH, err := candidate.PrimarySketch()
		if err != nil {
			return nil, err
		}
		score, err := queryMH.Similarity(candidateMH, true, false)
		if err != nil {
			return nil, err
		}
		if score >= threshold {
			results = append(results, candidate)
		}
	}
	return results, nil
}

// Len reports how many signatures the index holds.
func (li *LinearIndex) Len() int {
	li.mu.RLock()
	defer li.mu.RUnlock()
	return len(li.sigs)
}

// Save serializes every held signature as a single JSON array under
// key in the index's backing storage.
func (li *LinearIndex) Save(ctx context.Context, key string) error {
	li.mu.RLock()
	defer li.mu.RUnlock()
	if li.backing == nil {
		return fmt.Errorf("index: linear index has no backing storage to save to")
	}
	data, err := signature.ToJSON(li.sigs)
	if err != nil {
		return err
	}
	_, err = li.backing.Save(ctx, key, data)
	return err
}

// LoadLinearIndex reads a signature array previously written by Save
// from backing.
func LoadLinearIndex(ctx context.Context, backing storage.Storage, key string) (*LinearIndex, error) {
	raw, err := backing.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var sigs []*signature.Signature
	if err := json.Unmarshal(raw, &sigs); err != nil {
		return nil, fmt.Errorf("index: decode linear index: %w", err)
	}
	return &LinearIndex{sigs: sigs, backing: backing}, nil
}
