package selection

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/minhash"
	"github.com/javanhut/sketchdb/internal/signature"
)

func makeSig(t *testing.T, name string, ksize uint32) *signature.Signature {
	t.Helper()
	mh, err := minhash.New(0, ksize, encodings.DNA, encodings.DefaultSeed, false, 10)
	if err != nil {
		t.Fatalf("New minhash: %v", err)
	}
	mh.AddMany([]uint64{1, 2, 3})
	sig, err := signature.New(name, "dev@example.com", name+".fa", "CC0", mh)
	if err != nil {
		t.Fatalf("New signature: %v", err)
	}
	return sig
}

func TestFilterSignaturesByKsize(t *testing.T) {
	sigs := []*signature.Signature{
		makeSig(t, "k21", 21),
		makeSig(t, "k31", 31),
	}
	ksize := uint32(21)
	sel := Selection{Ksize: &ksize}

	out, err := FilterSignatures(sigs, sel)
	if err != nil {
		t.Fatalf("FilterSignatures: %v", err)
	}
	if len(out) != 1 || out[0].Name != "k21" {
		t.Fatalf("expected only k21 signature, got %v", out)
	}
}

func TestPicklistIncludeExclude(t *testing.T) {
	sigs := []*signature.Signature{
		makeSig(t, "a", 21),
		makeSig(t, "b", 21),
	}

	include := Selection{Picklist: &Picklist{PickStyle: PickInclude, Values: map[string]struct{}{"a": {}}}}
	out, err := FilterSignatures(sigs, include)
	if err != nil {
		t.Fatalf("FilterSignatures: %v", err)
	}
	if len(out) != 1 || out[0].Name != "a" {
		t.Fatalf("include picklist should keep only %q, got %v", "a", out)
	}

	exclude := Selection{Picklist: &Picklist{PickStyle: PickExclude, Values: map[string]struct{}{"a": {}}}}
	out, err = FilterSignatures(sigs, exclude)
	if err != nil {
		t.Fatalf("FilterSignatures: %v", err)
	}
	if len(out) != 1 || out[0].Name != "b" {
		t.Fatalf("exclude picklist should drop %q, got %v", "a", out)
	}
}

func TestCSVManifestRoundTrip(t *testing.T) {
	m := &CSVManifest{Records: []Record{
		{InternalLocation: "sigs/a.sig", Ksize: "21", Moltype: "DNA", Name: "a"},
		{InternalLocation: "sigs/b.sig", Ksize: "31", Moltype: "DNA", Name: "b"},
	}}

	var buf strings.Builder
	if err := m.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := ReadCSVManifest(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadCSVManifest: %v", err)
	}
	if len(loaded.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded.Records))
	}
	if loaded.Records[0].Name != "a" || loaded.Records[1].Name != "b" {
		t.Fatalf("unexpected records: %+v", loaded.Records)
	}
}

func TestManifestDBQueryByParams(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "manifest.db")
	db, err := OpenManifestDB(dbPath)
	if err != nil {
		t.Fatalf("OpenManifestDB: %v", err)
	}
	defer db.Close()

	recs := []Record{
		{InternalLocation: "a.sig", Ksize: "21", Moltype: "DNA", Scaled: "1000", WithAbundance: "false", Name: "a"},
		{InternalLocation: "b.sig", Ksize: "21", Moltype: "DNA", Scaled: "1000", WithAbundance: "false", Name: "b"},
		{InternalLocation: "c.sig", Ksize: "31", Moltype: "DNA", Scaled: "1000", WithAbundance: "false", Name: "c"},
	}
	for _, rec := range recs {
		if err := db.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	matches, err := db.QueryByParams("21", "DNA", "1000", "false")
	if err != nil {
		t.Fatalf("QueryByParams: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for ksize=21, got %d", len(matches))
	}

	got, err := db.Get("c.sig")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "c" {
		t.Fatalf("Get returned %+v, want name=c", got)
	}

	if _, err := db.Get("missing.sig"); err != ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
