// Package index defines the shared search-engine interface implemented
// by both the Sequence Bloom Tree and the plain linear scan, and the
// linear implementation itself.
package index

import (
	"context"

	"github.com/javanhut/sketchdb/internal/signature"
)

// Index is satisfied by both sbt.Tree and LinearIndex. The engine
// dispatches through this interface instead of a tagged {SBT, Linear}
// enum.
type Index interface {
	Insert(ctx context.Context, sig *signature.Signature) error
	Search(ctx context.Context, query *signature.Signature, threshold float64) ([]*signature.Signature, error)
	Save(ctx context.Context, key string) error
}
