package encodings

import "errors"

var (
	// ErrInvalidDNA is returned in strict mode when a non-ACGTN byte
	// appears in DNA input.
	ErrInvalidDNA = errors.New("invalid DNA character in input k-mer")

	// ErrInvalidProt is returned when an input intended as protein
	// contains a byte outside the recognized amino-acid alphabet.
	ErrInvalidProt = errors.New("invalid protein character in input")

	// ErrInvalidCodonLength is returned by TranslateCodon for lengths
	// outside 1..3.
	ErrInvalidCodonLength = errors.New("codon is invalid length")

	// ErrInvalidHashFunction is returned by ParseHashFunction for an
	// unrecognized molecule type.
	ErrInvalidHashFunction = errors.New("invalid hash function")
)
