package encodings

import "github.com/spaolacci/murmur3"

// DefaultSeed is the default 64-bit seed used to hash k-mers when the
// caller does not request a different one.
const DefaultSeed uint64 = 42

// HashMurmur returns the low 64 bits of the MurmurHash3 x64_128 digest
// of data, seeded with seed. Both halves of the digest are produced by
// the underlying algorithm; only h1 is kept, matching the reference
// engine's wire format.
func HashMurmur(data []byte, seed uint64) uint64 {
	h1, _ := murmur3.Sum128WithSeed(data, uint32(seed))
	return h1
}

// HashKmerDNA canonicalizes a DNA k-mer and hashes it.
func HashKmerDNA(kmer []byte, seed uint64) uint64 {
	return HashMurmur(CanonicalKmer(kmer), seed)
}

// HashKmerProtein hashes an amino-acid (or Dayhoff/HP compressed)
// k-mer directly, with no canonicalization step.
func HashKmerProtein(kmer []byte, seed uint64) uint64 {
	return HashMurmur(kmer, seed)
}
