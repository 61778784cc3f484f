package minhash

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/javanhut/sketchdb/internal/encodings"
)

func mustNew(t *testing.T, scaled uint64, ksize uint32, hf encodings.HashFunction, trackAbundance bool, num uint32) *MinHash {
	t.Helper()
	mh, err := New(scaled, ksize, hf, encodings.DefaultSeed, trackAbundance, num)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return mh
}

func TestAddHashSortedUnique(t *testing.T) {
	mh := mustNew(t, 0, 10, encodings.DNA, false, 20)
	for _, h := range []uint64{5, 1, 5, 3, 1, 9} {
		mh.AddHash(h)
	}
	want := []uint64{1, 3, 5, 9}
	if len(mh.Mins) != len(want) {
		t.Fatalf("got %v, want %v", mh.Mins, want)
	}
	for i, h := range want {
		if mh.Mins[i] != h {
			t.Fatalf("got %v, want %v", mh.Mins, want)
		}
	}
}

func TestNumModeBound(t *testing.T) {
	mh := mustNew(t, 0, 10, encodings.DNA, false, 3)
	for h := uint64(0); h < 100; h++ {
		mh.AddHash(h)
	}
	if len(mh.Mins) != 3 {
		t.Fatalf("num mode grew past bound: len=%d", len(mh.Mins))
	}
	for _, h := range mh.Mins {
		if h > 2 {
			t.Fatalf("num mode kept a non-minimal hash: %v", mh.Mins)
		}
	}
}

func TestScaledModeBound(t *testing.T) {
	mh := mustNew(t, 100, 10, encodings.DNA, false, 0)
	for h := uint64(0); h < 1000; h++ {
		mh.AddHash(h * 1_000_000_000_000_000)
	}
	for _, h := range mh.Mins {
		if h > mh.MaxHash {
			t.Fatalf("scaled mode kept hash above MaxHash: %d > %d", h, mh.MaxHash)
		}
	}
}

func TestMergeCommutative(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	b := mustNew(t, 0, 10, encodings.DNA, false, 20)
	a.AddMany([]uint64{1, 2, 3})
	b.AddMany([]uint64{3, 4, 5})

	ab, err := a.Merged(b)
	if err != nil {
		t.Fatalf("merge a,b: %v", err)
	}
	ba, err := b.Merged(a)
	if err != nil {
		t.Fatalf("merge b,a: %v", err)
	}
	if len(ab.Mins) != len(ba.Mins) {
		t.Fatalf("merge not commutative: %v vs %v", ab.Mins, ba.Mins)
	}
	for i := range ab.Mins {
		if ab.Mins[i] != ba.Mins[i] {
			t.Fatalf("merge not commutative: %v vs %v", ab.Mins, ba.Mins)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, true, 20)
	a.AddHash(1)
	a.AddHash(2)

	aa, err := a.Merged(a)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(aa.Mins) != len(a.Mins) {
		t.Fatalf("idempotence broke mins: %v vs %v", aa.Mins, a.Mins)
	}
	for i, h := range a.Mins {
		if aa.Mins[i] != h {
			t.Fatalf("idempotence broke mins: %v vs %v", aa.Mins, a.Mins)
		}
		if aa.Abunds[i] != 2*a.Abunds[i] {
			t.Fatalf("idempotence should double abundance: got %d, want %d", aa.Abunds[i], 2*a.Abunds[i])
		}
	}
}

func TestIntersectionSubsetOfMerge(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	b := mustNew(t, 0, 10, encodings.DNA, false, 20)
	a.AddMany([]uint64{1, 2, 3, 4})
	b.AddMany([]uint64{3, 4, 5, 6})

	common, err := a.IntersectionHashes(b)
	if err != nil {
		t.Fatalf("intersection: %v", err)
	}
	merged, err := a.Merged(b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	union := make(map[uint64]bool)
	for _, h := range merged.Mins {
		union[h] = true
	}
	for _, h := range common {
		if !union[h] {
			t.Fatalf("intersection hash %d not in union", h)
		}
	}
}

func TestSelfSimilarity(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	a.AddMany([]uint64{1, 2, 3})
	sim, err := a.Similarity(a, true, false)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if sim != 1.0 {
		t.Fatalf("self similarity = %v, want 1.0", sim)
	}
}

func TestSimilarityBounds(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	b := mustNew(t, 0, 10, encodings.DNA, false, 20)
	a.AddMany([]uint64{1, 2, 3})
	b.AddMany([]uint64{2, 3, 4})
	sim, err := a.Similarity(b, true, false)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if sim < 0 || sim > 1 {
		t.Fatalf("similarity out of bounds: %v", sim)
	}
}

// TestS1Merge reproduces the reference merge scenario: num=20, k=10, DNA,
// seed=42, two sequences added to each of A and B with a one-base tail
// difference, expecting an exact 8-hash merged vector.
func TestS1Merge(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	b := mustNew(t, 0, 10, encodings.DNA, false, 20)

	if err := a.AddSequence([]byte("TGCCGCCCAGCA"), false); err != nil {
		t.Fatalf("a.AddSequence: %v", err)
	}
	if err := b.AddSequence([]byte("TGCCGCCCAGCA"), false); err != nil {
		t.Fatalf("b.AddSequence: %v", err)
	}
	if err := a.AddSequence([]byte("GTCCGCCCAGTGA"), false); err != nil {
		t.Fatalf("a.AddSequence: %v", err)
	}
	if err := b.AddSequence([]byte("GTCCGCCCAGTGG"), false); err != nil {
		t.Fatalf("b.AddSequence: %v", err)
	}

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge: %v", err)
	}

	want := []uint64{
		2996412506971915891,
		4448613756639084635,
		8373222269469409550,
		9390240264282449587,
		11085758717695534616,
		11668188995231815419,
		11760449009842383350,
		14682565545778736889,
	}
	if len(a.Mins) != len(want) {
		t.Fatalf("merged mins = %v, want %v", a.Mins, want)
	}
	for i, h := range want {
		if a.Mins[i] != h {
			t.Fatalf("merged mins = %v, want %v", a.Mins, want)
		}
	}
}

// TestS2SimilarityWithAbundanceHP reproduces the HP abundance scenario:
// num=5, k=20, hp, seed=42, track_abundance. A has hash 1 once, B has hash
// 1 once and hash 2 once; weighted-cosine similarity(A,B) should be 0.5.
func TestS2SimilarityWithAbundanceHP(t *testing.T) {
	a := mustNew(t, 0, 20, encodings.HP, true, 5)
	b := mustNew(t, 0, 20, encodings.HP, true, 5)
	a.AddHash(1)
	b.AddHash(1)
	b.AddHash(2)

	selfSim, err := a.Similarity(a, false, false)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if selfSim != 1.0 {
		t.Fatalf("A.similarity(A) = %v, want 1.0", selfSim)
	}

	sim, err := a.Similarity(b, false, false)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if diff := sim - 0.5; diff < -1e-2 || diff > 1e-2 {
		t.Fatalf("A.similarity(B) = %v, want ~0.5", sim)
	}
}

// TestS3DayhoffVsProteinSize reproduces the six-frame translation
// scenario: num=10, k=6 (three DNA bases per amino acid, so the
// aa ksize = 6/3 = 2), one Dayhoff one protein sketch, add_sequence
// "ACTGAC". Both must end up with exactly two distinct hashes: the
// forward frame ("ACT","GAC" -> T,D) and the reverse-complement frame
// ("GTC","AGT" -> V,S) yield two different amino-acid 2-mers.
func TestS3DayhoffVsProteinSize(t *testing.T) {
	a := mustNew(t, 0, 6, encodings.Dayhoff, false, 10)
	b := mustNew(t, 0, 6, encodings.Protein, false, 10)

	if err := a.AddSequence([]byte("ACTGAC"), false); err != nil {
		t.Fatalf("dayhoff AddSequence: %v", err)
	}
	if err := b.AddSequence([]byte("ACTGAC"), false); err != nil {
		t.Fatalf("protein AddSequence: %v", err)
	}

	if a.Len() != 2 {
		t.Fatalf("dayhoff sketch size = %d, want 2", a.Len())
	}
	if b.Len() != 2 {
		t.Fatalf("protein sketch size = %d, want 2", b.Len())
	}
}

func TestS3HPVsProteinSize(t *testing.T) {
	a := mustNew(t, 0, 6, encodings.HP, false, 10)
	b := mustNew(t, 0, 6, encodings.Protein, false, 10)

	if err := a.AddSequence([]byte("ACTGAC"), false); err != nil {
		t.Fatalf("hp AddSequence: %v", err)
	}
	if err := b.AddSequence([]byte("ACTGAC"), false); err != nil {
		t.Fatalf("protein AddSequence: %v", err)
	}

	if a.Len() != 2 {
		t.Fatalf("hp sketch size = %d, want 2", a.Len())
	}
	if b.Len() != 2 {
		t.Fatalf("protein sketch size = %d, want 2", b.Len())
	}
}

// TestS4MaxHashForScaled pins the float-division formula against the
// reference value.
func TestS4MaxHashForScaled(t *testing.T) {
	if got := MaxHashForScaled(100); got != 184467440737095520 {
		t.Fatalf("MaxHashForScaled(100) = %d, want 184467440737095520", got)
	}
}

// TestS7InvalidDNA reproduces the force-mode invalid-DNA scenario:
// strict mode fails on "ATGR"; force mode succeeds, possibly with fewer
// (or zero) hashes than a fully valid sequence of the same length would
// produce.
func TestS7InvalidDNA(t *testing.T) {
	strict := mustNew(t, 0, 4, encodings.DNA, false, 20)
	if err := strict.AddSequence([]byte("ATGR"), false); !errors.Is(err, encodings.ErrInvalidDNA) {
		t.Fatalf("strict AddSequence error = %v, want ErrInvalidDNA", err)
	}

	forced := mustNew(t, 0, 4, encodings.DNA, false, 20)
	if err := forced.AddSequence([]byte("ATGR"), true); err != nil {
		t.Fatalf("force AddSequence: %v", err)
	}

	a := mustNew(t, 0, 3, encodings.DNA, false, 20)
	if err := a.AddSequence([]byte("AAANNCCCTN"), true); err != nil {
		t.Fatalf("force AddSequence: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("force-mode sketch size = %d, want 3", a.Len())
	}

	b := mustNew(t, 0, 3, encodings.DNA, false, 20)
	if err := b.AddSequence([]byte("NAAA"), true); err != nil {
		t.Fatalf("force AddSequence: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("force-mode sketch size = %d, want 1", b.Len())
	}
}

func TestDownsampleScaled(t *testing.T) {
	mh := mustNew(t, 2, 10, encodings.DNA, false, 0)
	for h := uint64(1); h < 10; h++ {
		mh.AddHash(h * (mh.MaxHash / 10))
	}
	down, err := mh.DownsampleScaled(4)
	if err != nil {
		t.Fatalf("DownsampleScaled: %v", err)
	}
	for _, h := range down.Mins {
		if h > down.MaxHash {
			t.Fatalf("downsampled hash %d exceeds new MaxHash %d", h, down.MaxHash)
		}
	}
	if _, err := down.DownsampleScaled(2); !errors.Is(err, ErrCannotIncreasePrecision) {
		t.Fatalf("expected ErrCannotIncreasePrecision, got %v", err)
	}
}

func TestMd5sumRoundTrip(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	a.AddMany([]uint64{1, 2, 3})
	clone := a.Clone()
	if a.Md5sum() != clone.Md5sum() {
		t.Fatalf("clone md5sum mismatch")
	}

	type wire struct {
		Ksize uint32   `json:"ksize"`
		Mins  []uint64 `json:"mins"`
	}
	buf, err := json.Marshal(wire{Ksize: a.Ksize, Mins: a.Mins})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var w wire
	if err := json.Unmarshal(buf, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	roundTripped := mustNew(t, 0, w.Ksize, encodings.DNA, false, 20)
	roundTripped.AddMany(w.Mins)
	if roundTripped.Md5sum() != a.Md5sum() {
		t.Fatalf("round-trip md5sum mismatch")
	}
}

func TestCheckCompatibleMismatches(t *testing.T) {
	a := mustNew(t, 0, 10, encodings.DNA, false, 20)
	b := mustNew(t, 0, 11, encodings.DNA, false, 20)
	if err := a.CheckCompatible(b, false); !errors.Is(err, ErrMismatchKSizes) {
		t.Fatalf("expected ErrMismatchKSizes, got %v", err)
	}

	c := mustNew(t, 0, 10, encodings.Protein, false, 20)
	if err := a.CheckCompatible(c, false); !errors.Is(err, ErrMismatchDNAProt) {
		t.Fatalf("expected ErrMismatchDNAProt, got %v", err)
	}

	d, err := New(0, 10, encodings.DNA, 7, false, 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.CheckCompatible(d, false); !errors.Is(err, ErrMismatchSeed) {
		t.Fatalf("expected ErrMismatchSeed, got %v", err)
	}

	e := mustNew(t, 0, 10, encodings.DNA, false, 21)
	if err := a.CheckCompatible(e, false); !errors.Is(err, ErrMismatchNum) {
		t.Fatalf("expected ErrMismatchNum, got %v", err)
	}
}

func TestNewRejectsBothOrNeitherModes(t *testing.T) {
	if _, err := New(0, 10, encodings.DNA, encodings.DefaultSeed, false, 0); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
	if _, err := New(100, 10, encodings.DNA, encodings.DefaultSeed, false, 20); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}
