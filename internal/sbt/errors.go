// Package sbt implements the Sequence Bloom Tree: a d-ary positional
// index whose internal nodes hold Nodegraphs summarizing descendant
// leaves and whose leaves hold Signatures, supporting pruned top-down
// search.
package sbt

import "errors"

var (
	ErrEmptyManifest  = errors.New("sbt: manifest has no nodes")
	ErrNodeNotFound   = errors.New("sbt: position has no node")
	ErrUnknownBackend = errors.New("sbt: unknown storage backend")
)
