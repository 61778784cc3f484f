// Package selection filters collections of signatures by sketch
// parameters (ksize, moltype, scaled, abundance tracking) and by an
// external picklist, and holds the manifest formats collections of
// signatures are indexed by: a flat CSV and, for large collections, a
// bbolt-backed lookup database.
package selection

import (
	"fmt"

	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/signature"
)

// PickStyle controls whether a Picklist's matches are kept or dropped.
type PickStyle int

const (
	PickInclude PickStyle = iota + 1
	PickExclude
)

// Picklist names an external column of identifiers (loaded by the
// caller from a CSV or text file) used to filter a signature
// collection to, or excluding, a named subset.
type Picklist struct {
	ColType    string
	Pickfile   string
	ColumnName string
	PickStyle  PickStyle
	Values     map[string]struct{}
}

// Matches reports whether name is present in the picklist's value set.
func (p Picklist) Matches(name string) bool {
	_, ok := p.Values[name]
	return ok
}

// Keep applies the picklist's style to a raw membership test.
func (p Picklist) Keep(name string) bool {
	matched := p.Matches(name)
	if p.PickStyle == PickExclude {
		return !matched
	}
	return matched
}

// Selection is a set of optional filters over sketch parameters.
// Unset fields (nil pointers) impose no constraint.
type Selection struct {
	Ksize       *uint32
	Abund       *bool
	Num         *uint32
	Scaled      *uint64
	Containment *bool
	Moltype     *encodings.HashFunction
	Picklist    *Picklist
}

// Select is implemented by anything that can filter itself against a
// Selection, returning a new value with non-matching members removed.
type Select interface {
	SelectWith(sel Selection) (Select, error)
}

// matchesSketch reports whether a single sketch satisfies every
// constraint sel sets (ksize, moltype, num/scaled mode, abundance).
func matchesSketch(sk signature.Sketch, sel Selection) (bool, error) {
	if sel.Ksize != nil && sk.Ksize != *sel.Ksize {
		return false, nil
	}
	if sel.Abund != nil {
		hasAbund := len(sk.Abundances) > 0
		if hasAbund != *sel.Abund {
			return false, nil
		}
	}
	if sel.Num != nil && sk.Num != *sel.Num {
		return false, nil
	}
	if sel.Moltype != nil {
		hf, err := encodings.ParseHashFunction(sk.Molecule)
		if err != nil {
			return false, err
		}
		if hf != *sel.Moltype {
			return false, nil
		}
	}
	if sel.Scaled != nil {
		mh, err := signature.ToMinHash(sk)
		if err != nil {
			return false, err
		}
		if mh.Scaled != *sel.Scaled {
			return false, nil
		}
	}
	return true, nil
}

// FilterSignatures returns the subset of sigs whose primary sketch
// matches every constraint in sel and, if sel.Picklist is set, whose
// name passes the picklist.
func FilterSignatures(sigs []*signature.Signature, sel Selection) ([]*signature.Signature, error) {
	var out []*signature.Signature
	for _, sig := range sigs {
		if sel.Picklist != nil && !sel.Picklist.Keep(sig.Name) {
			continue
		}
		if len(sig.Signatures) == 0 {
			continue
		}
		ok, err := matchesSketch(sig.Signatures[0], sel)
		if err != nil {
			return nil, fmt.Errorf("selection: signature %q: %w", sig.Name, err)
		}
		if ok {
			out = append(out, sig)
		}
	}
	return out, nil
}

// FromSketch derives a Selection pinning ksize, moltype, and
// abundance-tracking to match an existing sketch, the way a query
// signature constrains which collection members it can be compared
// against.
func FromSketch(sk signature.Sketch) (Selection, error) {
	hf, err := encodings.ParseHashFunction(sk.Molecule)
	if err != nil {
		return Selection{}, err
	}
	abund := len(sk.Abundances) > 0
	ksize := sk.Ksize
	return Selection{
		Ksize:   &ksize,
		Abund:   &abund,
		Moltype: &hf,
	}, nil
}
