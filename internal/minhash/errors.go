// Package minhash implements the bottom-s / scaled MinHash sketch with
// optional abundance tracking and its algebraic operations.
package minhash

import "errors"

var (
	ErrMismatchNum           = errors.New("must have same num")
	ErrMismatchKSizes        = errors.New("different ksizes cannot be compared")
	ErrMismatchDNAProt       = errors.New("DNA/protein minhashes cannot be compared")
	ErrMismatchScaled        = errors.New("mismatch in scaled; comparison fail")
	ErrMismatchSeed          = errors.New("mismatch in seed; comparison fail")
	ErrMismatchSignatureType = errors.New("different signatures cannot be compared")
	ErrNonEmptyMinHash       = errors.New("can only set this field if the MinHash is empty")
	ErrInvalidParameters     = errors.New("exactly one of num or scaled must be set")
	ErrCannotIncreasePrecision = errors.New("cannot increase precision of a downsampled MinHash")

	// ErrHLLPrecisionBounds is returned by CountUnique for a num-mode
	// sketch: bottom-s sampling without a scaling factor has no basis
	// for extrapolating to a total unique-k-mer count.
	ErrHLLPrecisionBounds = errors.New("minhash: cannot estimate unique k-mer count without a scaled sketch")
)
