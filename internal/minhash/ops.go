package minhash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
)

// CheckCompatible verifies that mh and other share ksize, hash
// function, seed, and sampling mode (same num, or same max_hash unless
// downsample is requested for scaled sketches).
func (mh *MinHash) CheckCompatible(other *MinHash, downsample bool) error {
	if mh.Ksize != other.Ksize {
		return ErrMismatchKSizes
	}
	if mh.HashFunction != other.HashFunction {
		return ErrMismatchDNAProt
	}
	if mh.Seed != other.Seed {
		return ErrMismatchSeed
	}

	aNum, bNum := mh.IsNum(), other.IsNum()
	if aNum != bNum {
		return ErrMismatchScaled
	}
	if aNum {
		if mh.Num != other.Num {
			return ErrMismatchNum
		}
		return nil
	}
	if mh.MaxHash != other.MaxHash && !downsample {
		return ErrMismatchScaled
	}
	return nil
}

// Merge unions other's hashes into mh. Requires exact compatibility
// (no downsampling). Abundances sum on collision; in num mode the
// result is truncated back to the smallest Num hashes after the union.
func (mh *MinHash) Merge(other *MinHash) error {
	if err := mh.CheckCompatible(other, false); err != nil {
		return err
	}

	mergedMins := make([]uint64, 0, len(mh.Mins)+len(other.Mins))
	var mergedAbunds []uint64
	if mh.TrackAbundance || other.TrackAbundance {
		mergedAbunds = make([]uint64, 0, len(mh.Mins)+len(other.Mins))
	}

	i, j := 0, 0
	for i < len(mh.Mins) && j < len(other.Mins) {
		switch {
		case mh.Mins[i] < other.Mins[j]:
			mergedMins = append(mergedMins, mh.Mins[i])
			if mergedAbunds != nil {
				mergedAbunds = append(mergedAbunds, abundAt(mh, i))
			}
			i++
		case mh.Mins[i] > other.Mins[j]:
			mergedMins = append(mergedMins, other.Mins[j])
			if mergedAbunds != nil {
				mergedAbunds = append(mergedAbunds, abundAt(other, j))
			}
			j++
		default:
			mergedMins = append(mergedMins, mh.Mins[i])
			if mergedAbunds != nil {
				mergedAbunds = append(mergedAbunds, abundAt(mh, i)+abundAt(other, j))
			}
			i++
			j++
		}
	}
	for ; i < len(mh.Mins); i++ {
		mergedMins = append(mergedMins, mh.Mins[i])
		if mergedAbunds != nil {
			mergedAbunds = append(mergedAbunds, abundAt(mh, i))
		}
	}
	for ; j < len(other.Mins); j++ {
		mergedMins = append(mergedMins, other.Mins[j])
		if mergedAbunds != nil {
			mergedAbunds = append(mergedAbunds, abundAt(other, j))
		}
	}

	if mh.IsNum() && uint32(len(mergedMins)) > mh.Num {
		mergedMins = mergedMins[:mh.Num]
		if mergedAbunds != nil {
			mergedAbunds = mergedAbunds[:mh.Num]
		}
	}

	mh.Mins = mergedMins
	if mergedAbunds != nil {
		mh.TrackAbundance = true
		mh.Abunds = mergedAbunds
	}
	return nil
}

func abundAt(mh *MinHash, i int) uint64 {
	if mh.Abunds == nil {
		return 1
	}
	return mh.Abunds[i]
}

// Merged returns a new sketch equal to mh.Clone().Merge(other).
func (mh *MinHash) Merged(other *MinHash) (*MinHash, error) {
	out := mh.Clone()
	if err := out.Merge(other); err != nil {
		return nil, err
	}
	return out, nil
}

// IntersectionHashes returns the sorted set of hashes common to both
// sketches.
func (mh *MinHash) IntersectionHashes(other *MinHash) ([]uint64, error) {
	if err := mh.CheckCompatible(other, false); err != nil {
		return nil, err
	}
	return sortedIntersect(mh.Mins, other.Mins), nil
}

// Intersection returns a new sketch containing the hashes common to
// both, with abundances dropped.
func (mh *MinHash) Intersection(other *MinHash) (*MinHash, error) {
	common, err := mh.IntersectionHashes(other)
	if err != nil {
		return nil, err
	}
	out := &MinHash{
		Ksize:        mh.Ksize,
		HashFunction: mh.HashFunction,
		Seed:         mh.Seed,
		Num:          mh.Num,
		Scaled:       mh.Scaled,
		MaxHash:      mh.MaxHash,
		Mins:         common,
	}
	return out, nil
}

func sortedIntersect(a, b []uint64) []uint64 {
	out := make([]uint64, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CountCommon returns the size of the intersection of mh and other's
// hashes, optionally downsampling scaled sketches to a common
// resolution first.
func (mh *MinHash) CountCommon(other *MinHash, downsample bool) (int, error) {
	a, b, err := mh.downsampledPair(other, downsample)
	if err != nil {
		return 0, err
	}
	return len(sortedIntersect(a.Mins, b.Mins)), nil
}

// downsampledPair validates compatibility and, for scaled sketches
// with differing MaxHash under downsample=true, returns copies
// downsampled to the coarser (smaller MaxHash) of the two.
func (mh *MinHash) downsampledPair(other *MinHash, downsample bool) (*MinHash, *MinHash, error) {
	if err := mh.CheckCompatible(other, downsample); err != nil {
		return nil, nil, err
	}
	a, b := mh, other
	if downsample && mh.IsScaled() && other.IsScaled() && mh.MaxHash != other.MaxHash {
		target := mh.MaxHash
		if other.MaxHash < target {
			target = other.MaxHash
		}
		var err error
		a, err = mh.DownsampleMaxHash(target)
		if err != nil {
			return nil, nil, err
		}
		b, err = other.DownsampleMaxHash(target)
		if err != nil {
			return nil, nil, err
		}
	}
	return a, b, nil
}

// Containment returns |A∩B|/|A|.
func (mh *MinHash) Containment(other *MinHash, downsample bool) (float64, error) {
	a, b, err := mh.downsampledPair(other, downsample)
	if err != nil {
		return 0, err
	}
	if len(a.Mins) == 0 {
		return 0, nil
	}
	common := sortedIntersect(a.Mins, b.Mins)
	return float64(len(common)) / float64(len(a.Mins)), nil
}

// Similarity returns the angular similarity 1 - 2*acos(cos)/pi of the
// abundance-weighted cosine (when either sketch tracks abundance and
// ignoreAbundance is false) or the Jaccard index over mins otherwise.
func (mh *MinHash) Similarity(other *MinHash, ignoreAbundance, downsample bool) (float64, error) {
	a, b, err := mh.downsampledPair(other, downsample)
	if err != nil {
		return 0, err
	}

	if !ignoreAbundance && (a.TrackAbundance || b.TrackAbundance) {
		cos := weightedCosine(a, b)
		if cos > 1 {
			cos = 1
		}
		return 1 - 2*math.Acos(cos)/math.Pi, nil
	}
	return jaccard(a.Mins, b.Mins), nil
}

func jaccard(a, b []uint64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	common := sortedIntersect(a, b)
	union := len(a) + len(b) - len(common)
	if union == 0 {
		return 0
	}
	return float64(len(common)) / float64(union)
}

func weightedCosine(a, b *MinHash) float64 {
	dot, normA, normB := 0.0, 0.0, 0.0
	i, j := 0, 0
	for i < len(a.Mins) && j < len(b.Mins) {
		switch {
		case a.Mins[i] < b.Mins[j]:
			av := float64(abundAt(a, i))
			normA += av * av
			i++
		case a.Mins[i] > b.Mins[j]:
			bv := float64(abundAt(b, j))
			normB += bv * bv
			j++
		default:
			av, bv := float64(abundAt(a, i)), float64(abundAt(b, j))
			dot += av * bv
			normA += av * av
			normB += bv * bv
			i++
			j++
		}
	}
	for ; i < len(a.Mins); i++ {
		av := float64(abundAt(a, i))
		normA += av * av
	}
	for ; j < len(b.Mins); j++ {
		bv := float64(abundAt(b, j))
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// DownsampleScaled returns a new sketch retaining only hashes at or
// below the threshold implied by newScaled. Fails if newScaled would
// increase precision (i.e. raise MaxHash) relative to mh.
func (mh *MinHash) DownsampleScaled(newScaled uint64) (*MinHash, error) {
	if !mh.IsScaled() {
		return nil, fmt.Errorf("%w: sketch is not in scaled mode", ErrCannotIncreasePrecision)
	}
	return mh.DownsampleMaxHash(MaxHashForScaled(newScaled))
}

// DownsampleMaxHash returns a new sketch retaining only hashes <=
// newMax. Fails if newMax > mh.MaxHash.
func (mh *MinHash) DownsampleMaxHash(newMax uint64) (*MinHash, error) {
	if newMax > mh.MaxHash {
		return nil, ErrCannotIncreasePrecision
	}
	out := mh.Clone()
	out.MaxHash = newMax
	if newMax > 0 {
		// Recover the scaled value implied by the new threshold for
		// bookkeeping purposes; approximate inverse of
		// MaxHashForScaled.
		out.Scaled = uint64(math.Round(float64(math.MaxUint64) / float64(newMax)))
	} else {
		out.Scaled = 0
	}

	idx := len(out.Mins)
	for i, h := range out.Mins {
		if h > newMax {
			idx = i
			break
		}
	}
	out.Mins = out.Mins[:idx]
	if out.Abunds != nil {
		out.Abunds = out.Abunds[:idx]
	}
	return out, nil
}

// CountUnique estimates the total number of unique k-mers in the
// original dataset from a scaled sketch: on average 1/scaled of all
// distinct k-mers are retained, so len(Mins)*scaled approximates the
// full count. Returns ErrHLLPrecisionBounds for a num-mode sketch,
// which carries no scaling factor to extrapolate from.
func (mh *MinHash) CountUnique() (uint64, error) {
	if !mh.IsScaled() {
		return 0, ErrHLLPrecisionBounds
	}
	return uint64(len(mh.Mins)) * mh.Scaled, nil
}

// Md5sum returns the MD5 digest (hex-encoded) of the canonical decimal
// string of ksize followed by each hash in sorted order.
func (mh *MinHash) Md5sum() string {
	h := md5.New()
	fmt.Fprintf(h, "%d", mh.Ksize)
	for _, m := range mh.Mins {
		fmt.Fprintf(h, "%d", m)
	}
	return hex.EncodeToString(h.Sum(nil))
}
