package voice

// ChordTable maps a chord-type suffix (as used in "c4'maj7" atoms) to its
// semitone offsets from the root, per spec.md §4.4.
var ChordTable = map[string][]int{
	"maj":   {0, 4, 7},
	"min":   {0, 3, 7},
	"dim":   {0, 3, 6},
	"aug":   {0, 4, 8},
	"sus2":  {0, 2, 7},
	"sus4":  {0, 5, 7},
	"dom7":  {0, 4, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"min7":  {0, 3, 7, 10},
	"dim7":  {0, 3, 6, 9},
	"m7b5":  {0, 3, 6, 10},
	"six":   {0, 4, 7, 9},
	"min6":  {0, 3, 7, 9},
	"add9":  {0, 4, 7, 14},
	"maj9":  {0, 4, 7, 11, 14},
	"min9":  {0, 3, 7, 10, 14},
}

// ExpandChord looks up chordType, returning its semitone offsets from the
// root. ok is false for an unrecognized chord type.
func ExpandChord(chordType string) (offsets []int, ok bool) {
	offsets, ok = ChordTable[chordType]
	return
}
