package minhash

import (
	"math"
	"sort"

	"github.com/javanhut/sketchdb/internal/encodings"
)

// MinHash is an ordered, bounded-size set of hashes representing a
// dataset, in one of two mutually exclusive modes: num mode keeps the
// Num numerically smallest hashes; scaled mode keeps every hash not
// exceeding MaxHash.
type MinHash struct {
	Ksize          uint32
	HashFunction   encodings.HashFunction
	Seed           uint64
	Num            uint32
	Scaled         uint64
	MaxHash        uint64
	TrackAbundance bool

	Mins   []uint64
	Abunds []uint64
}

// New constructs an empty MinHash. Exactly one of num or scaled must be
// positive; the other must be zero.
func New(scaled uint64, ksize uint32, hashFunction encodings.HashFunction, seed uint64, trackAbundance bool, num uint32) (*MinHash, error) {
	if (num > 0) == (scaled > 0) {
		return nil, ErrInvalidParameters
	}

	mh := &MinHash{
		Ksize:          ksize,
		HashFunction:   hashFunction,
		Seed:           seed,
		Num:            num,
		Scaled:         scaled,
		TrackAbundance: trackAbundance,
	}
	if scaled > 0 {
		mh.MaxHash = MaxHashForScaled(scaled)
	}
	return mh, nil
}

// MaxHashForScaled computes floor(2^64/scaled) the way the reference
// engine does: via a float64 division of math.MaxUint64, not an
// integer division of 2^64. The two differ by up to a handful of units
// at this magnitude because float64 cannot represent 2^64-1 exactly;
// matching the float-division result keeps md5sum-level wire
// compatibility with tools reading the same on-disk sketches.
func MaxHashForScaled(scaled uint64) uint64 {
	if scaled == 0 {
		return 0
	}
	return uint64(float64(math.MaxUint64) / float64(scaled))
}

// IsScaled reports whether mh operates in scaled mode.
func (mh *MinHash) IsScaled() bool {
	return mh.MaxHash > 0
}

// IsNum reports whether mh operates in num mode.
func (mh *MinHash) IsNum() bool {
	return mh.Num > 0
}

// Len returns the number of hashes currently in the sketch.
func (mh *MinHash) Len() int {
	return len(mh.Mins)
}

// AddHash inserts h with an implicit abundance of 1 (or bumps its
// count by 1 if already present and abundance tracking is on).
func (mh *MinHash) AddHash(h uint64) {
	mh.addHash(h, 1)
}

// AddHashWithAbundance inserts h with an explicit abundance count a.
func (mh *MinHash) AddHashWithAbundance(h uint64, a uint64) {
	mh.addHash(h, a)
}

// AddMany adds a batch of hashes.
func (mh *MinHash) AddMany(hashes []uint64) {
	for _, h := range hashes {
		mh.AddHash(h)
	}
}

func (mh *MinHash) addHash(h uint64, abundance uint64) {
	if mh.IsScaled() {
		if h > mh.MaxHash {
			return
		}
		mh.insert(h, abundance)
		return
	}

	// Num mode: a hash that would not improve a full sketch is simply
	// ignored, and a duplicate already present never grows the sketch
	// (see SPEC_FULL.md §4.2 on the add_hash duplicate-handling
	// decision).
	n := len(mh.Mins)
	if uint32(n) >= mh.Num && n > 0 && h > mh.Mins[n-1] {
		return
	}
	mh.insert(h, abundance)
	if uint32(len(mh.Mins)) > mh.Num {
		mh.Mins = mh.Mins[:mh.Num]
		if mh.TrackAbundance {
			mh.Abunds = mh.Abunds[:mh.Num]
		}
	}
}

// insert places h into Mins in sorted position, bumping its abundance
// if already present.
func (mh *MinHash) insert(h uint64, abundance uint64) {
	idx := sort.Search(len(mh.Mins), func(i int) bool { return mh.Mins[i] >= h })
	if idx < len(mh.Mins) && mh.Mins[idx] == h {
		if mh.TrackAbundance {
			mh.Abunds[idx] += abundance
		}
		return
	}

	mh.Mins = append(mh.Mins, 0)
	copy(mh.Mins[idx+1:], mh.Mins[idx:])
	mh.Mins[idx] = h

	if mh.TrackAbundance {
		mh.Abunds = append(mh.Abunds, 0)
		copy(mh.Abunds[idx+1:], mh.Abunds[idx:])
		mh.Abunds[idx] = abundance
	}
}

// RemoveHash removes h from the sketch if present, preserving sort
// order of the remaining hashes (and parallel abundances).
func (mh *MinHash) RemoveHash(h uint64) {
	idx := sort.Search(len(mh.Mins), func(i int) bool { return mh.Mins[i] >= h })
	if idx >= len(mh.Mins) || mh.Mins[idx] != h {
		return
	}
	mh.Mins = append(mh.Mins[:idx], mh.Mins[idx+1:]...)
	if mh.TrackAbundance {
		mh.Abunds = append(mh.Abunds[:idx], mh.Abunds[idx+1:]...)
	}
}

// RemoveMany removes a batch of hashes.
func (mh *MinHash) RemoveMany(hashes []uint64) {
	for _, h := range hashes {
		mh.RemoveHash(h)
	}
}

// Clone returns a deep copy of mh.
func (mh *MinHash) Clone() *MinHash {
	out := *mh
	out.Mins = append([]uint64(nil), mh.Mins...)
	if mh.Abunds != nil {
		out.Abunds = append([]uint64(nil), mh.Abunds...)
	}
	return &out
}
