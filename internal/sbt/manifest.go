package sbt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/signature"
	"github.com/javanhut/sketchdb/internal/storage"
)

const manifestVersion = 6

// nodeRecord is a single entry in the on-disk manifest's "nodes" or
// "leaves" map.
type nodeRecord struct {
	Name     string                 `json:"name"`
	Filename string                 `json:"filename"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// manifest is the *.sbt.json shape.
type manifest struct {
	Version      int                   `json:"version"`
	D            int                   `json:"d"`
	Ksize        uint32                `json:"ksize"`
	Scaled       *uint64               `json:"scaled"`
	HashFunction string                `json:"hash_function"`
	Seed         uint64                `json:"seed"`
	NStart       uint64                `json:"n_start"`
	NTables      int                   `json:"n_tables"`
	Storage      storage.Args          `json:"storage"`
	Nodes        map[string]nodeRecord `json:"nodes"`
	Leaves       map[string]nodeRecord `json:"leaves"`
}

// Save serializes every node/leaf in the tree to backing storage (if a
// node has no storage key yet, one is assigned from its position) and
// writes the resulting manifest to backing under manifestKey.
func (t *Tree) Save(ctx context.Context, manifestKey string) error {
	if t.backing == nil {
		return fmt.Errorf("sbt: tree has no backing storage to save to")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := manifest{
		Version:      manifestVersion,
		D:            t.D,
		Ksize:        t.Ksize,
		HashFunction: "0." + t.HashFunction.String(),
		Seed:         t.Seed,
		NStart:       t.NStart,
		NTables:      t.NTables,
		Storage:      t.backing.Args(),
		Nodes:        make(map[string]nodeRecord),
		Leaves:       make(map[string]nodeRecord),
	}
	if t.Scaled > 0 {
		m.Scaled = &t.Scaled
	}

	for pos, e := range t.nodes {
		if err := t.ensureLoaded(ctx, e); err != nil {
			return err
		}
		key := e.dataKey
		switch e.kind {
		case Internal:
			if key == "" {
				key = fmt.Sprintf("nodes/%d.ng", pos)
			}
			var buf bytes.Buffer
			if err := e.ng.Save(&buf); err != nil {
				return fmt.Errorf("sbt: serialize nodegraph at %d: %w", pos, err)
			}
			savedKey, err := t.backing.Save(ctx, key, buf.Bytes())
			if err != nil {
				return fmt.Errorf("sbt: save nodegraph at %d: %w", pos, err)
			}
			e.dataKey = savedKey
			m.Nodes[strconv.FormatUint(pos, 10)] = nodeRecord{Name: fmt.Sprintf("internal-%d", pos), Filename: savedKey}

		case Leaf:
			if key == "" {
				key = fmt.Sprintf("leaves/%d.sig", pos)
			}
			data, err := signature.ToJSON([]*signature.Signature{e.sig})
			if err != nil {
				return fmt.Errorf("sbt: serialize signature at %d: %w", pos, err)
			}
			savedKey, err := t.backing.Save(ctx, key, data)
			if err != nil {
				return fmt.Errorf("sbt: save signature at %d: %w", pos, err)
			}
			e.dataKey = savedKey
			m.Leaves[strconv.FormatUint(pos, 10)] = nodeRecord{Name: e.sig.Name, Filename: savedKey}
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("sbt: marshal manifest: %w", err)
	}
	if _, err := t.backing.Save(ctx, manifestKey, data); err != nil {
		return fmt.Errorf("sbt: save manifest: %w", err)
	}
	return nil
}

// Load reads a manifest previously written by Save from backing and
// returns a Tree whose nodes are lazily hydrated on first access.
func Load(ctx context.Context, backing storage.Storage, manifestKey string) (*Tree, error) {
	raw, err := backing.Load(ctx, manifestKey)
	if err != nil {
		return nil, fmt.Errorf("sbt: load manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("sbt: decode manifest: %w", err)
	}
	if len(m.Nodes) == 0 && len(m.Leaves) == 0 {
		return nil, ErrEmptyManifest
	}

	hf, err := encodings.ParseHashFunction(stripMoleculePrefix(m.HashFunction))
	if err != nil {
		return nil, err
	}

	var scaled uint64
	if m.Scaled != nil {
		scaled = *m.Scaled
	}

	t := New(m.D, m.Ksize, scaled, hf, m.Seed, m.NStart, m.NTables, backing)
	for posStr, rec := range m.Nodes {
		pos, err := strconv.ParseUint(posStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sbt: bad node position %q: %w", posStr, err)
		}
		t.nodes[pos] = &entry{pos: pos, kind: Internal, dataKey: rec.Filename}
	}
	for posStr, rec := range m.Leaves {
		pos, err := strconv.ParseUint(posStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sbt: bad leaf position %q: %w", posStr, err)
		}
		t.nodes[pos] = &entry{pos: pos, kind: Leaf, dataKey: rec.Filename}
	}
	return t, nil
}

func stripMoleculePrefix(name string) string {
	if len(name) > 2 && name[0] == '0' && name[1] == '.' {
		return name[2:]
	}
	return name
}

// Scaffold rebuilds a balanced tree from leaves only, grouping similar
// leaves by a greedy pass (pick an unassigned leaf, pair it with the
// unassigned leaf of maximum Jaccard similarity, repeat) so that
// similar signatures tend to land as tree siblings before handing the
// resulting order to Insert, which builds internal Nodegraphs bottom-up
// as each leaf is attached.
func Scaffold(ctx context.Context, leaves []*signature.Signature, d int, ksize uint32, scaled uint64, hf encodings.HashFunction, seed uint64, nStart uint64, nTables int, backing storage.Storage) (*Tree, error) {
	ordered, err := greedyPairOrder(leaves)
	if err != nil {
		return nil, err
	}

	t := New(d, ksize, scaled, hf, seed, nStart, nTables, backing)
	for _, sig := range ordered {
		if err := t.Insert(ctx, sig); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func greedyPairOrder(leaves []*signature.Signature) ([]*signature.Signature, error) {
	n := len(leaves)
	mins := make([][]uint64, n)
	for i, sig := range leaves {
		mh, err := sig.PrimarySketch()
		if err != nil {
			return nil, err
		}
		mins[i] = mh.Mins
	}

	used := make([]bool, n)
	ordered := make([]*signature.Signature, 0, n)
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		used[i] = true
		ordered = append(ordered, leaves[i])

		best, bestScore := -1, -1.0
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			score := jaccardOfSortedMins(mins[i], mins[j])
			if score > bestScore {
				best, bestScore = j, score
			}
		}
		if best >= 0 {
			used[best] = true
			ordered = append(ordered, leaves[best])
		}
	}
	return ordered, nil
}

func jaccardOfSortedMins(a, b []uint64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	i, j, common := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			common++
			i++
			j++
		}
	}
	union := len(a) + len(b) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}
