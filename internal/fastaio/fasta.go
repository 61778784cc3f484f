// Package fastaio reads FASTA-formatted sequence records, the input
// format the compute command sketches. No third-party FASTA parser
// appears anywhere in the retrieval pack, and the format itself is a
// handful of lines of line-oriented scanning with no ambiguity the
// standard library's bufio.Scanner doesn't already handle, so this is
// implemented directly against bufio rather than pulled in as a
// dependency.
package fastaio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record is one '>'-delimited FASTA entry.
type Record struct {
	Name     string
	Sequence []byte
}

// Read parses every record in r. Blank lines are skipped; sequence
// lines are concatenated verbatim (including case) until the next '>'
// or EOF.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []Record
	var current *Record
	var seq strings.Builder

	flush := func() {
		if current != nil {
			current.Sequence = []byte(seq.String())
			records = append(records, *current)
			seq.Reset()
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			current = &Record{Name: strings.TrimSpace(line[1:])}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("fastaio: sequence data before first header")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fastaio: scan: %w", err)
	}
	flush()
	return records, nil
}
