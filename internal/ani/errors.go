// Package ani estimates Average Nucleotide Identity from a MinHash
// containment value, plus a confidence interval on that estimate via
// the mutation-rate model.
package ani

import "errors"

// ErrEstimation is returned when the confidence-interval calculation's
// intermediate variance would be negative, signalling the inputs
// (ksize, scaled, n_unique_kmers) are inconsistent with the observed
// containment.
var ErrEstimation = errors.New("ani: variance estimate is negative")
