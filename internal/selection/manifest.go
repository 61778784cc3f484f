package selection

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Record is one row of a flat manifest: the minimum bookkeeping needed
// to find and filter a signature without loading it.
type Record struct {
	InternalLocation string
	Md5              string
	Ksize            string
	Moltype          string
	Num              string
	Scaled           string
	NHashes          string
	WithAbundance    string
	Name             string
	Filename         string
}

var csvColumns = []string{
	"internal_location", "md5", "ksize", "moltype", "num", "scaled",
	"n_hashes", "with_abundance", "name", "filename",
}

// CSVManifest is a flat, in-memory manifest read from or written to a
// CSV file — rows are plain strings with no schema beyond the column
// list, so the standard library's encoding/csv is sufficient; there is
// no parsing or typing work a third-party CSV engine would save here.
type CSVManifest struct {
	Records []Record
}

// ReadCSVManifest parses a manifest CSV, skipping comment lines
// (leading '#', matching the reference format).
func ReadCSVManifest(r io.Reader) (*CSVManifest, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("selection: read manifest csv: %w", err)
	}
	if len(rows) == 0 {
		return &CSVManifest{}, nil
	}

	header := rows[0]
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	m := &CSVManifest{Records: make([]Record, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		m.Records = append(m.Records, Record{
			InternalLocation: field(row, "internal_location"),
			Md5:              field(row, "md5"),
			Ksize:            field(row, "ksize"),
			Moltype:          field(row, "moltype"),
			Num:              field(row, "num"),
			Scaled:           field(row, "scaled"),
			NHashes:          field(row, "n_hashes"),
			WithAbundance:    field(row, "with_abundance"),
			Name:             field(row, "name"),
			Filename:         field(row, "filename"),
		})
	}
	return m, nil
}

// ReadCSVManifestFile opens and parses a manifest CSV from disk.
func ReadCSVManifestFile(path string) (*CSVManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("selection: open manifest %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSVManifest(f)
}

// Write serializes the manifest back to CSV.
func (m *CSVManifest) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, rec := range m.Records {
		row := []string{
			rec.InternalLocation, rec.Md5, rec.Ksize, rec.Moltype, rec.Num,
			rec.Scaled, rec.NHashes, rec.WithAbundance, rec.Name, rec.Filename,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// InternalLocations returns every record's storage location, in order.
func (m *CSVManifest) InternalLocations() []string {
	out := make([]string, len(m.Records))
	for i, rec := range m.Records {
		out[i] = rec.InternalLocation
	}
	return out
}
