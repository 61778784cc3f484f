// Package signature implements the named-container JSON format that
// bundles one or more MinHash sketches computed from the same source
// dataset.
package signature

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/minhash"
)

// Sketch is the on-disk representation of a single MinHash.
type Sketch struct {
	Num        uint32   `json:"num"`
	Ksize      uint32   `json:"ksize"`
	Seed       uint64   `json:"seed"`
	MaxHash    uint64   `json:"max_hash"`
	Md5sum     string   `json:"md5sum"`
	Mins       []uint64 `json:"mins"`
	Abundances []uint64 `json:"abundances,omitempty"`
	Molecule   string   `json:"molecule"`
}

// Signature is a named envelope around one or more sketches of the same
// dataset.
type Signature struct {
	Class        string   `json:"class"`
	Email        string   `json:"email"`
	HashFunction string   `json:"hash_function"`
	Filename     string   `json:"filename"`
	Name         string   `json:"name"`
	License      string   `json:"license"`
	Signatures   []Sketch `json:"signatures"`
}

// New wraps one or more sketches into a Signature envelope.
func New(name, email, filename, license string, sketches ...*minhash.MinHash) (*Signature, error) {
	sig := &Signature{
		Class:    "sourmash_signature",
		Email:    email,
		Filename: filename,
		Name:     name,
		License:  license,
	}
	for _, mh := range sketches {
		sk, err := ToSketch(mh)
		if err != nil {
			return nil, err
		}
		sig.Signatures = append(sig.Signatures, sk)
	}
	if len(sketches) > 0 {
		sig.HashFunction = "0." + sketches[0].HashFunction.String()
	}
	return sig, nil
}

// ToSketch converts a live MinHash to its wire representation.
func ToSketch(mh *minhash.MinHash) (Sketch, error) {
	moltype, err := moleculeName(mh.HashFunction)
	if err != nil {
		return Sketch{}, err
	}
	sk := Sketch{
		Num:      mh.Num,
		Ksize:    mh.Ksize,
		Seed:     mh.Seed,
		MaxHash:  mh.MaxHash,
		Md5sum:   mh.Md5sum(),
		Mins:     append([]uint64(nil), mh.Mins...),
		Molecule: moltype,
	}
	if mh.TrackAbundance {
		sk.Abundances = append([]uint64(nil), mh.Abunds...)
	}
	return sk, nil
}

// ToMinHash reconstructs a live MinHash from its wire representation,
// inferring num vs scaled mode from max_hash (max_hash > 0 => scaled,
// scaled = 2^64/max_hash; else num).
func ToMinHash(sk Sketch) (*minhash.MinHash, error) {
	hf, err := encodings.ParseHashFunction(sk.Molecule)
	if err != nil {
		return nil, err
	}

	var scaled uint64
	var num uint32
	if sk.MaxHash > 0 {
		scaled = inferScaled(sk.MaxHash)
	} else {
		num = sk.Num
	}

	trackAbundance := len(sk.Abundances) > 0
	mh, err := minhash.New(scaled, sk.Ksize, hf, sk.Seed, trackAbundance, num)
	if err != nil {
		return nil, err
	}
	mh.MaxHash = sk.MaxHash
	mh.Mins = append([]uint64(nil), sk.Mins...)
	if trackAbundance {
		if len(sk.Abundances) != len(sk.Mins) {
			return nil, fmt.Errorf("signature: abundances length %d does not match mins length %d", len(sk.Abundances), len(sk.Mins))
		}
		mh.Abunds = append([]uint64(nil), sk.Abundances...)
	}

	if got := mh.Md5sum(); sk.Md5sum != "" && got != sk.Md5sum {
		return nil, fmt.Errorf("signature: md5sum mismatch on load: stored %s, recomputed %s", sk.Md5sum, got)
	}
	return mh, nil
}

// inferScaled approximates the scaled value implied by max_hash, the
// inverse of minhash.MaxHashForScaled, for bookkeeping only — mins
// filtering only ever depends on MaxHash itself.
func inferScaled(maxHash uint64) uint64 {
	if maxHash == 0 {
		return 0
	}
	return uint64((float64(math.MaxUint64) / float64(maxHash)) + 0.5)
}

func moleculeName(hf encodings.HashFunction) (string, error) {
	switch hf {
	case encodings.DNA:
		return "DNA", nil
	case encodings.Protein:
		return "protein", nil
	case encodings.Dayhoff:
		return "dayhoff", nil
	case encodings.HP:
		return "hp", nil
	default:
		return "", fmt.Errorf("%w: %v", encodings.ErrInvalidHashFunction, hf)
	}
}

// PrimarySketch returns the first sketch reconstructed as a MinHash, the
// sketch used for index insertion and scoring when a Signature carries
// several.
func (s *Signature) PrimarySketch() (*minhash.MinHash, error) {
	if len(s.Signatures) == 0 {
		return nil, fmt.Errorf("signature %q: has no sketches", s.Name)
	}
	return ToMinHash(s.Signatures[0])
}

// Sketches reconstructs every sketch in s as a MinHash, in order.
func (s *Signature) Sketches() ([]*minhash.MinHash, error) {
	out := make([]*minhash.MinHash, 0, len(s.Signatures))
	for _, sk := range s.Signatures {
		mh, err := ToMinHash(sk)
		if err != nil {
			return nil, err
		}
		out = append(out, mh)
	}
	return out, nil
}

// ToJSON serializes a collection of signatures as a JSON array.
func ToJSON(sigs []*Signature) ([]byte, error) {
	return json.MarshalIndent(sigs, "", "  ")
}

// FromJSON parses a JSON array of signatures.
func FromJSON(data []byte) ([]*Signature, error) {
	var sigs []*Signature
	if err := json.Unmarshal(data, &sigs); err != nil {
		return nil, fmt.Errorf("signature: decode: %w", err)
	}
	return sigs, nil
}

// SortedMins is a convenience accessor for callers that want to
// assert ordering independent of Sketch.Mins' declared mutability.
func SortedMins(sk Sketch) []uint64 {
	out := append([]uint64(nil), sk.Mins...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
