package signature

import (
	"testing"

	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/minhash"
)

// TestRoundTrip is property 9: from_json(to_json(sig)) == sig, with
// md5sum preserved.
func TestRoundTrip(t *testing.T) {
	mh, err := minhash.New(0, 21, encodings.DNA, encodings.DefaultSeed, true, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mh.AddHashWithAbundance(10, 3)
	mh.AddHashWithAbundance(20, 1)

	sig, err := New("genome1", "dev@example.com", "genome1.fa", "CC0", mh)
	if err != nil {
		t.Fatalf("New signature: %v", err)
	}

	data, err := ToJSON([]*Signature{sig})
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	loaded, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d signatures, want 1", len(loaded))
	}

	roundTripped, err := loaded[0].PrimarySketch()
	if err != nil {
		t.Fatalf("PrimarySketch: %v", err)
	}
	if roundTripped.Md5sum() != mh.Md5sum() {
		t.Fatalf("md5sum not preserved: %s != %s", roundTripped.Md5sum(), mh.Md5sum())
	}
	if roundTripped.Ksize != mh.Ksize || roundTripped.Num != mh.Num {
		t.Fatalf("sketch parameters not preserved")
	}
	for i, h := range mh.Mins {
		if roundTripped.Mins[i] != h {
			t.Fatalf("mins not preserved at %d: %d != %d", i, roundTripped.Mins[i], h)
		}
		if roundTripped.Abunds[i] != mh.Abunds[i] {
			t.Fatalf("abundances not preserved at %d", i)
		}
	}
}

func TestScaledModeInference(t *testing.T) {
	mh, err := minhash.New(100, 21, encodings.DNA, encodings.DefaultSeed, false, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mh.AddMany([]uint64{1, 2, 3})

	sk, err := ToSketch(mh)
	if err != nil {
		t.Fatalf("ToSketch: %v", err)
	}
	if sk.MaxHash != mh.MaxHash {
		t.Fatalf("sketch max_hash = %d, want %d", sk.MaxHash, mh.MaxHash)
	}

	reconstructed, err := ToMinHash(sk)
	if err != nil {
		t.Fatalf("ToMinHash: %v", err)
	}
	if !reconstructed.IsScaled() {
		t.Fatalf("reconstructed sketch should infer scaled mode from max_hash")
	}
	if reconstructed.MaxHash != mh.MaxHash {
		t.Fatalf("reconstructed max_hash = %d, want %d", reconstructed.MaxHash, mh.MaxHash)
	}
}

func TestMd5sumMismatchRejected(t *testing.T) {
	sk := Sketch{
		Ksize:    21,
		Num:      10,
		Molecule: "DNA",
		Mins:     []uint64{1, 2, 3},
		Md5sum:   "0000000000000000000000000000000",
	}
	if _, err := ToMinHash(sk); err == nil {
		t.Fatalf("expected md5sum mismatch error")
	}
}
