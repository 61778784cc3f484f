package selection

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
)

// manifestBucket holds every record, keyed by its internal_location.
// indexBucket holds the secondary index keyed by
// "ksize|moltype|scaled|abund" -> JSON-encoded list of locations, so
// a filtered query touches one bucket lookup instead of scanning every
// record — the payoff CSV scanning doesn't offer once a collection
// holds many thousands of signatures.
var (
	manifestBucket    = []byte("records")
	indexBucket       = []byte("by_params")
	ErrRecordNotFound = errors.New("selection: record not found")
)

// ManifestDB is a bbolt-backed index over manifest records, grounded
// in the same CreateBucketIfNotExists/bucket-per-concern idiom as a
// key-value content-addressing store, repurposed here to index
// signature metadata by sketch parameters instead of by hash.
type ManifestDB struct {
	db *bbolt.DB
}

// OpenManifestDB opens (creating if necessary) a bbolt database at
// path with its buckets initialized.
func OpenManifestDB(path string) (*ManifestDB, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(manifestBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(indexBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &ManifestDB{db: db}, nil
}

func (m *ManifestDB) Close() error { return m.db.Close() }

func paramKey(rec Record) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%s", rec.Ksize, rec.Moltype, rec.Scaled, rec.WithAbundance))
}

// Put stores rec under its internal_location and appends it to the
// secondary index bucket for its (ksize, moltype, scaled, abund) key.
func (m *ManifestDB) Put(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return m.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(manifestBucket).Put([]byte(rec.InternalLocation), data); err != nil {
			return err
		}
		idx := tx.Bucket(indexBucket)
		key := paramKey(rec)
		existing := idx.Get(key)
		var locs []string
		if existing != nil {
			if err := json.Unmarshal(existing, &locs); err != nil {
				return err
			}
		}
		locs = append(locs, rec.InternalLocation)
		merged, err := json.Marshal(locs)
		if err != nil {
			return err
		}
		return idx.Put(key, merged)
	})
}

// Get looks up a single record by internal_location.
func (m *ManifestDB) Get(internalLocation string) (Record, error) {
	var rec Record
	err := m.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(manifestBucket).Get([]byte(internalLocation))
		if data == nil {
			return ErrRecordNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// QueryByParams returns every record previously Put with the given
// ksize, moltype, scaled, and with_abundance column values.
func (m *ManifestDB) QueryByParams(ksize, moltype, scaled, withAbundance string) ([]Record, error) {
	key := []byte(fmt.Sprintf("%s|%s|%s|%s", ksize, moltype, scaled, withAbundance))
	var locs []string
	err := m.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(indexBucket).Get(key)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &locs)
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(locs))
	for _, loc := range locs {
		rec, err := m.Get(loc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadCSVManifest bulk-loads every record from a CSVManifest into the
// database.
func (m *ManifestDB) LoadCSVManifest(csvManifest *CSVManifest) error {
	for _, rec := range csvManifest.Records {
		if err := m.Put(rec); err != nil {
			return err
		}
	}
	return nil
}
