package sbt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/nodegraph"
	"github.com/javanhut/sketchdb/internal/signature"
	"github.com/javanhut/sketchdb/internal/storage"
)

// Kind distinguishes an internal (Nodegraph) node from a leaf
// (Signature) node.
type Kind int

const (
	Internal Kind = iota
	Leaf
)

// entry is a single position in the tree's flat position->entry map. It
// hydrates its payload from storage at most once, via a sync.Once
// latch rather than a mutex on the hot (already-loaded) path — the
// same single-assignment-latch idiom the on-disk history layer uses
// for lazily materialized state.
type entry struct {
	pos     uint64
	kind    Kind
	dataKey string

	once    sync.Once
	ng      *nodegraph.Nodegraph
	sig     *signature.Signature
	loadErr error
}

// Tree is a d-ary Sequence Bloom Tree. Position p's parent is
// (p-1)/d; its children are d*p+1 .. d*p+d.
type Tree struct {
	D            int
	Ksize        uint32
	Scaled       uint64
	HashFunction encodings.HashFunction
	Seed         uint64
	NStart       uint64
	NTables      int

	nodes   map[uint64]*entry
	backing storage.Storage
}

// New creates an empty tree with the given internal-Nodegraph
// parameters, propagated to every internal node created during Insert.
func New(d int, ksize uint32, scaled uint64, hf encodings.HashFunction, seed uint64, nStart uint64, nTables int, backing storage.Storage) *Tree {
	if d < 1 {
		d = 2
	}
	return &Tree{
		D:            d,
		Ksize:        ksize,
		Scaled:       scaled,
		HashFunction: hf,
		Seed:         seed,
		NStart:       nStart,
		NTables:      nTables,
		nodes:        make(map[uint64]*entry),
		backing:      backing,
	}
}

func (t *Tree) parent(pos uint64) uint64 {
	return (pos - 1) / uint64(t.D)
}

func (t *Tree) children(pos uint64) []uint64 {
	out := make([]uint64, t.D)
	for i := 0; i < t.D; i++ {
		out[i] = uint64(t.D)*pos + uint64(i) + 1
	}
	return out
}

// nextEmptyPosition finds the smallest level-order position with no
// entry. Position 0 is reserved for the root — leaves start at
// position 1 — so a one-leaf tree already has an Internal root
// summarizing it.
func (t *Tree) nextEmptyPosition() uint64 {
	p := uint64(1)
	for {
		if _, ok := t.nodes[p]; !ok {
			return p
		}
		p++
	}
}

// ancestors returns pos's ancestor chain from its immediate parent up
// to (and including) the root.
func (t *Tree) ancestors(pos uint64) []uint64 {
	var chain []uint64
	for pos != 0 {
		pos = t.parent(pos)
		chain = append(chain, pos)
	}
	return chain
}

// demoteToInternal turns a position currently holding a leaf into an
// internal node: the leaf moves down to the smallest empty child
// position, and pos gets a fresh Nodegraph seeded with the demoted
// leaf's hashes. This happens when a new leaf needs to attach below a
// position that an earlier, smaller insertion had claimed directly.
func (t *Tree) demoteToInternal(ctx context.Context, pos uint64) error {
	leafEntry := t.nodes[pos]
	if err := t.ensureLoaded(ctx, leafEntry); err != nil {
		return err
	}

	childPos := uint64(0)
	found := false
	for _, c := range t.children(pos) {
		if _, ok := t.nodes[c]; !ok {
			childPos = c
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("sbt: no free child slot to demote leaf at position %d", pos)
	}

	leafEntry.pos = childPos
	t.nodes[childPos] = leafEntry

	leafMH, err := leafEntry.sig.PrimarySketch()
	if err != nil {
		return err
	}
	internalEntry := &entry{
		pos:  pos,
		kind: Internal,
		ng:   nodegraph.WithTables(t.NStart, t.NTables, int(t.Ksize)),
	}
	for _, h := range leafMH.Mins {
		internalEntry.ng.Count(h)
	}
	t.nodes[pos] = internalEntry
	return nil
}

func (t *Tree) ensureLoaded(ctx context.Context, e *entry) error {
	e.once.Do(func() {
		if e.dataKey == "" || t.backing == nil {
			return
		}
		raw, err := t.backing.Load(ctx, e.dataKey)
		if err != nil {
			slog.Warn("failed to hydrate node", "position", e.pos, "key", e.dataKey, "error", err)
			e.loadErr = fmt.Errorf("sbt: load position %d: %w", e.pos, err)
			return
		}
		switch e.kind {
		case Internal:
			ng, err := nodegraph.Load(bytes.NewReader(raw))
			if err != nil {
				e.loadErr = fmt.Errorf("sbt: decode nodegraph at position %d: %w", e.pos, err)
				return
			}
			e.ng = ng
		case Leaf:
			sigs, err := signature.FromJSON(raw)
			if err != nil {
				e.loadErr = fmt.Errorf("sbt: decode signature at position %d: %w", e.pos, err)
				return
			}
			if len(sigs) == 0 {
				e.loadErr = fmt.Errorf("sbt: empty signature payload at position %d", e.pos)
				return
			}
			e.sig = sigs[0]
		}
	})
	return e.loadErr
}

// Insert attaches sig's primary sketch to the tree: it finds the
// smallest-index empty position in level order, creates a leaf there,
// then walks ancestors up to the root, creating any missing internal
// node and inserting every hash of sig's primary sketch into its
// Nodegraph.
func (t *Tree) Insert(ctx context.Context, sig *signature.Signature) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mh, err := sig.PrimarySketch()
	if err != nil {
		return err
	}

	// A candidate position can be invalidated by the very demotion that
	// makes room for it (a displaced leaf can land on the slot we were
	// about to claim), so retry until a position survives a full pass
	// with no pending demotions.
	var pos uint64
	for {
		pos = t.nextEmptyPosition()
		demotedAny := false
		for _, ancestorPos := range t.ancestors(pos) {
			e, ok := t.nodes[ancestorPos]
			if !ok {
				continue
			}
			if err := t.ensureLoaded(ctx, e); err != nil {
				return err
			}
			if e.kind == Leaf {
				if err := t.demoteToInternal(ctx, ancestorPos); err != nil {
					return err
				}
				demotedAny = true
			}
		}
		if demotedAny {
			continue
		}
		if _, occupied := t.nodes[pos]; occupied {
			continue
		}
		break
	}
	t.nodes[pos] = &entry{pos: pos, kind: Leaf, sig: sig}

	for p := pos; p != 0; {
		parentPos := t.parent(p)
		parentEntry, ok := t.nodes[parentPos]
		if !ok {
			parentEntry = &entry{
				pos:  parentPos,
				kind: Internal,
				ng:   nodegraph.WithTables(t.NStart, t.NTables, int(t.Ksize)),
			}
			t.nodes[parentPos] = parentEntry
		} else if err := t.ensureLoaded(ctx, parentEntry); err != nil {
			return err
		}
		for _, h := range mh.Mins {
			parentEntry.ng.Count(h)
		}
		p = parentPos
	}
	return nil
}

// Find runs a pruned depth-first search from the root, using each
// internal node's Nodegraph to compute an upper bound on the possible
// score of any descendant leaf (the Nodegraph can only over-count
// matches via false positives, never under-count, so the bound is
// always conservative) and pruning subtrees whose bound falls below
// threshold. Exact scores are computed at leaves via the full MinHash
// comparison.
func (t *Tree) Find(ctx context.Context, query *signature.Signature, threshold float64, doContainment bool) ([]*signature.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queryMH, err := query.PrimarySketch()
	if err != nil {
		return nil, err
	}

	var results []*signature.Signature
	var visit func(pos uint64) error
	visit = func(pos uint64) error {
		e, ok := t.nodes[pos]
		if !ok {
			return nil
		}
		if err := t.ensureLoaded(ctx, e); err != nil {
			return err
		}

		switch e.kind {
		case Leaf:
			leafMH, err := e.sig.PrimarySketch()
			if err != nil {
				return err
			}
			var score float64
			if doContainment {
				score, err = queryMH.Containment(leafMH, false)
			} else {
				score, err = queryMH.Similarity(leafMH, true, false)
			}
			if err != nil {
				return err
			}
			if score >= threshold {
				results = append(results, e.sig)
			}
			return nil

		case Internal:
			if len(queryMH.Mins) == 0 {
				return nil
			}
			matches := e.ng.Matches(queryMH)
			upperBound := float64(matches) / float64(len(queryMH.Mins))
			if upperBound < threshold {
				return nil
			}
			for _, child := range t.children(pos) {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := visit(0); err != nil {
		return nil, err
	}
	return results, nil
}

// Search is Find with doContainment=false (similarity search), the
// common case exposed to the CLI.
func (t *Tree) Search(ctx context.Context, query *signature.Signature, threshold float64) ([]*signature.Signature, error) {
	return t.Find(ctx, query, threshold, false)
}
