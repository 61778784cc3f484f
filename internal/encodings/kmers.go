package encodings

import "fmt"

// KmerHashes computes the canonical-DNA k-mer hash for every window of
// length ksize in seq that consists only of A, C, G and T; windows
// containing N or any other byte are not emitted. In strict mode any
// non-ACGTN byte fails the whole call with ErrInvalidDNA; in force
// mode such bytes are skipped the same way N is.
func KmerHashes(seq []byte, ksize int, seed uint64, force bool) ([]uint64, error) {
	if !force {
		for i, b := range seq {
			if !isACGTN(b) {
				return nil, fmt.Errorf("%w: byte %q at position %d", ErrInvalidDNA, b, i)
			}
		}
	}

	var hashes []uint64
	n := len(seq)
	for i := 0; i+ksize <= n; i++ {
		window := seq[i : i+ksize]
		if !windowValid(window) {
			continue
		}
		hashes = append(hashes, HashKmerDNA(window, seed))
	}
	return hashes, nil
}

func isACGTN(b byte) bool {
	return b == 'A' || b == 'C' || b == 'G' || b == 'T' || b == 'N'
}

func windowValid(window []byte) bool {
	for _, b := range window {
		if !IsValidDNA(b) {
			return false
		}
	}
	return true
}

// TranslatedKmerHashes hashes amino-acid k-mers of length aaKsize found
// by translating a DNA sequence in all six reading frames (three
// forward, three on the reverse complement), optionally compressing
// the translated residues to Dayhoff or HP classes. Over a protein
// input (isProtein == true) the sequence is hashed directly without
// translation, applying the same Dayhoff/HP compression in place.
//
// aaKsize is in amino-acid residues. Callers translating DNA pass a
// sketch ksize counted in bases, so they divide by three before
// calling; callers already holding protein input pass their ksize
// unchanged.
func TranslatedKmerHashes(seq []byte, aaKsize int, seed uint64, dayhoff, hp, isProtein bool) ([]uint64, error) {
	if isProtein {
		translated := applyProteinCompression(seq, dayhoff, hp)
		return aaKmerHashes(translated, aaKsize, seed), nil
	}

	var hashes []uint64
	rc := Revcomp(seq)
	frames := [][]byte{seq, seq[minInt(1, len(seq)):], seq[minInt(2, len(seq)):], rc, rc[minInt(1, len(rc)):], rc[minInt(2, len(rc)):]}

	for _, frame := range frames {
		aa, err := ToAA(frame, dayhoff, hp)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, aaKmerHashes(aa, aaKsize, seed)...)
	}
	return hashes, nil
}

func applyProteinCompression(seq []byte, dayhoff, hp bool) []byte {
	if !dayhoff && !hp {
		return seq
	}
	out := make([]byte, len(seq))
	for i, aa := range seq {
		switch {
		case dayhoff:
			out[i] = AAToDayhoff(aa)
		case hp:
			out[i] = AAToHP(aa)
		}
	}
	return out
}

func aaKmerHashes(aa []byte, ksize int, seed uint64) []uint64 {
	var hashes []uint64
	for i := 0; i+ksize <= len(aa); i++ {
		hashes = append(hashes, HashKmerProtein(aa[i:i+ksize], seed))
	}
	return hashes
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
