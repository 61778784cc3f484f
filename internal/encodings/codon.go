package encodings

// nucCode maps A/C/G/T/N to a small dense index used to address the
// codon lookup table; any other byte maps to -1 (no entry).
var nucCode = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	t['A'] = 0
	t['C'] = 1
	t['G'] = 2
	t['T'] = 3
	t['N'] = 4
	return t
}()

// codonEntry pairs a literal 3-base codon with its translated residue.
// The standard genetic-code table, plus the four-fold-degenerate
// wildcard entries (third position N) from the original encodings
// table, from Peris et al. (2008) / Dayhoff et al. (1978).
type codonEntry struct {
	codon string
	aa    byte
}

var codonEntries = []codonEntry{
	{"TTT", 'F'}, {"TTC", 'F'},
	{"TTA", 'L'}, {"TTG", 'L'},
	{"TCT", 'S'}, {"TCC", 'S'}, {"TCA", 'S'}, {"TCG", 'S'}, {"TCN", 'S'},
	{"TAT", 'Y'}, {"TAC", 'Y'},
	{"TAA", '*'}, {"TAG", '*'},
	{"TGA", '*'},
	{"TGT", 'C'}, {"TGC", 'C'},
	{"TGG", 'W'},
	{"CTT", 'L'}, {"CTC", 'L'}, {"CTA", 'L'}, {"CTG", 'L'}, {"CTN", 'L'},
	{"CCT", 'P'}, {"CCC", 'P'}, {"CCA", 'P'}, {"CCG", 'P'}, {"CCN", 'P'},
	{"CAT", 'H'}, {"CAC", 'H'},
	{"CAA", 'Q'}, {"CAG", 'Q'},
	{"CGT", 'R'}, {"CGC", 'R'}, {"CGA", 'R'}, {"CGG", 'R'}, {"CGN", 'R'},
	{"ATT", 'I'}, {"ATC", 'I'}, {"ATA", 'I'},
	{"ATG", 'M'},
	{"ACT", 'T'}, {"ACC", 'T'}, {"ACA", 'T'}, {"ACG", 'T'}, {"ACN", 'T'},
	{"AAT", 'N'}, {"AAC", 'N'},
	{"AAA", 'K'}, {"AAG", 'K'},
	{"AGT", 'S'}, {"AGC", 'S'},
	{"AGA", 'R'}, {"AGG", 'R'},
	{"GTT", 'V'}, {"GTC", 'V'}, {"GTA", 'V'}, {"GTG", 'V'}, {"GTN", 'V'},
	{"GCT", 'A'}, {"GCC", 'A'}, {"GCA", 'A'}, {"GCG", 'A'}, {"GCN", 'A'},
	{"GAT", 'D'}, {"GAC", 'D'},
	{"GAA", 'E'}, {"GAG", 'E'},
	{"GGT", 'G'}, {"GGC", 'G'}, {"GGA", 'G'}, {"GGG", 'G'}, {"GGN", 'G'},
}

// codonTable is a dense [5][5][5]byte array addressed by nucCode,
// compiled once from codonEntries rather than queried as a map on
// every translation.
var codonTable = func() [5][5][5]byte {
	var t [5][5][5]byte
	for _, e := range codonEntries {
		a, b, c := nucCode[e.codon[0]], nucCode[e.codon[1]], nucCode[e.codon[2]]
		t[a][b][c] = e.aa
	}
	return t
}()

func lookupCodon(codon []byte) (byte, bool) {
	a, b, c := nucCode[codon[0]], nucCode[codon[1]], nucCode[codon[2]]
	if a < 0 || b < 0 || c < 0 {
		return 0, false
	}
	aa := codonTable[a][b][c]
	if aa == 0 {
		return 0, false
	}
	return aa, true
}

// TranslateCodon converts a DNA codon to its amino-acid byte. Codons of
// length 1 translate to 'X'; length 2 is treated as the codon plus a
// trailing 'N' wildcard; length 3 is looked up directly. Any other
// length fails with ErrInvalidCodonLength.
func TranslateCodon(codon []byte) (byte, error) {
	switch len(codon) {
	case 1:
		return 'X', nil
	case 2:
		padded := append(append([]byte{}, codon...), 'N')
		if aa, ok := lookupCodon(padded); ok {
			return aa, nil
		}
		return 'X', nil
	case 3:
		if aa, ok := lookupCodon(codon); ok {
			return aa, nil
		}
		return 'X', nil
	default:
		return 0, ErrInvalidCodonLength
	}
}

// dayhoffTable compresses the 20-amino-acid alphabet (plus stop) to 6
// classes, from Dayhoff, Schwartz & Orcutt (1978) via Peris et al.
// (2008).
var dayhoffTable = func() [256]byte {
	var t [256]byte
	set := func(letter byte, aas string) {
		for i := 0; i < len(aas); i++ {
			t[aas[i]] = letter
		}
	}
	set('a', "C")
	set('b', "AGPST")
	set('c', "DENQ")
	set('d', "HKR")
	set('e', "ILMV")
	set('f', "FWY")
	t['*'] = '*'
	return t
}()

// AAToDayhoff maps an amino-acid byte to its Dayhoff class, or 'X' if
// unrecognized.
func AAToDayhoff(aa byte) byte {
	if d := dayhoffTable[aa]; d != 0 {
		return d
	}
	return 'X'
}

// hpTable compresses the amino-acid alphabet to hydrophobic ('h') /
// hydrophilic ('p'), from Phillips, Kondev & Theriot (2008).
var hpTable = func() [256]byte {
	var t [256]byte
	set := func(letter byte, aas string) {
		for i := 0; i < len(aas); i++ {
			t[aas[i]] = letter
		}
	}
	set('h', "AFGILMPVWY")
	set('p', "NCSTDERHKQ")
	t['*'] = '*'
	return t
}()

// AAToHP maps an amino-acid byte to its hydrophobic/hydrophilic class,
// or 'X' if unrecognized.
func AAToHP(aa byte) byte {
	if p := hpTable[aa]; p != 0 {
		return p
	}
	return 'X'
}

// ToAA translates a DNA byte sequence (read in a single fixed frame,
// i.e. already frame-aligned) to amino acids, applying the Dayhoff or
// HP compression when requested. Trailing partial codons are dropped.
func ToAA(seq []byte, dayhoff, hp bool) ([]byte, error) {
	out := make([]byte, 0, len(seq)/3)
	for i := 0; i+3 <= len(seq); i += 3 {
		residue, err := TranslateCodon(seq[i : i+3])
		if err != nil {
			return nil, err
		}
		switch {
		case dayhoff:
			out = append(out, AAToDayhoff(residue))
		case hp:
			out = append(out, AAToHP(residue))
		default:
			out = append(out, residue)
		}
	}
	return out, nil
}
