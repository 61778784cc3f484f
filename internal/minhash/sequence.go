package minhash

import (
	"fmt"

	"github.com/javanhut/sketchdb/internal/encodings"
)

// AddSequence hashes every valid k-mer window of a DNA sequence and
// adds the resulting hashes. In strict mode (force == false) any
// non-ACGTN byte fails the call; in force mode invalid stretches are
// silently skipped, which can legitimately leave the sketch unchanged.
// Windows containing N are not hashed in either mode.
//
// If mh.HashFunction is not DNA, the sequence is translated through
// all six reading frames first (protein/Dayhoff/HP k-mer hashing).
func (mh *MinHash) AddSequence(seq []byte, force bool) error {
	switch mh.HashFunction {
	case encodings.DNA:
		if !force {
			for i, b := range seq {
				if !encodings.IsValidDNA(b) && b != 'N' {
					return fmt.Errorf("%w: byte %q at position %d", encodings.ErrInvalidDNA, b, i)
				}
			}
		}
		hashes, err := encodings.KmerHashes(seq, int(mh.Ksize), mh.Seed, force)
		if err != nil {
			if force {
				return nil
			}
			return err
		}
		mh.AddMany(hashes)
		return nil
	case encodings.Protein, encodings.Dayhoff, encodings.HP:
		// mh.Ksize counts DNA bases; translation shrinks it by a factor
		// of three to the amino-acid k-mer length.
		aaKsize := int(mh.Ksize) / 3
		hashes, err := encodings.TranslatedKmerHashes(seq, aaKsize, mh.Seed, mh.HashFunction == encodings.Dayhoff, mh.HashFunction == encodings.HP, false)
		if err != nil {
			return err
		}
		mh.AddMany(hashes)
		return nil
	default:
		return fmt.Errorf("%w: %v", encodings.ErrInvalidHashFunction, mh.HashFunction)
	}
}

// AddProtein hashes k-mers directly from a protein (or already
// Dayhoff/HP-compressed) sequence, applying the compression implied by
// mh.HashFunction.
func (mh *MinHash) AddProtein(seq []byte) error {
	switch mh.HashFunction {
	case encodings.Protein, encodings.Dayhoff, encodings.HP:
		hashes, err := encodings.TranslatedKmerHashes(seq, int(mh.Ksize), mh.Seed, mh.HashFunction == encodings.Dayhoff, mh.HashFunction == encodings.HP, true)
		if err != nil {
			return err
		}
		mh.AddMany(hashes)
		return nil
	default:
		return fmt.Errorf("%w: AddProtein requires a protein-family hash function, got %v", encodings.ErrInvalidHashFunction, mh.HashFunction)
	}
}
