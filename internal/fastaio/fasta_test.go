package fastaio

import (
	"strings"
	"testing"
)

func TestReadMultipleRecords(t *testing.T) {
	input := ">seq1 description\nACGT\nACGT\n>seq2\nTTTT\n"
	records, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "seq1 description" || string(records[0].Sequence) != "ACGTACGT" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Name != "seq2" || string(records[1].Sequence) != "TTTT" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestReadRejectsLeadingSequence(t *testing.T) {
	if _, err := Read(strings.NewReader("ACGT\n")); err == nil {
		t.Fatalf("expected error for sequence data before header")
	}
}

func TestReadSkipsBlankLines(t *testing.T) {
	records, err := Read(strings.NewReader(">a\n\nACGT\n\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 || string(records[0].Sequence) != "ACGT" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
