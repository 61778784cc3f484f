// Package nodegraph implements a multi-table counting Bloom filter used
// to summarize the hash content of a subtree of signatures for pruned
// search, plus its little-endian binary serialization.
package nodegraph

import "errors"

var (
	ErrBadMagic       = errors.New("nodegraph: bad magic number")
	ErrUnsupportedVersion = errors.New("nodegraph: unsupported version")
	ErrUnsupportedType    = errors.New("nodegraph: unsupported bloom filter type")
	ErrTruncated          = errors.New("nodegraph: truncated stream")
)
