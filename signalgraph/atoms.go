package signalgraph

import (
	"math"
	"strconv"
	"strings"
)

// resolveNumeric implements spec.md §9's preserved regression fix: a
// pattern atom read through PatternSignal that looks numeric ("110") is tried as a plain
// numeric parse *before* a note-name parse is attempted, never the other
// way around.
func resolveNumeric(atom string) (float32, bool) {
	if f, err := strconv.ParseFloat(strings.TrimSpace(atom), 32); err == nil {
		return float32(f), true
	}
	return resolveNoteName(atom)
}

// noteSemitone maps a natural-letter name to its semitone offset from C.
var noteSemitone = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// resolveNoteName parses scientific pitch notation (c4 == MIDI 60,
// optional 's'/'#' sharp or 'f' flat, optional signed octave) into a
// frequency in Hz. Returns ok=false if atom isn't a recognizable note name.
func resolveNoteName(atom string) (float32, bool) {
	atom = strings.TrimSpace(strings.ToLower(atom))
	if atom == "" {
		return 0, false
	}
	base, ok := noteSemitone[atom[0]]
	if !ok {
		return 0, false
	}
	rest := atom[1:]
	for len(rest) > 0 {
		switch rest[0] {
		case 's', '#':
			base++
			rest = rest[1:]
			continue
		case 'f':
			base--
			rest = rest[1:]
			continue
		}
		break
	}
	octave := 4
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, false
		}
		octave = n
	}
	midi := base + (octave+1)*12
	return MidiToFreq(midi), true
}

// MidiToFreq converts a MIDI note number to Hz using A4=440Hz (MIDI 69).
func MidiToFreq(midi int) float32 {
	return float32(440.0 * math.Pow(2, (float64(midi)-69.0)/12.0))
}

// SplitSampleBank splits a "name:index" sample-pattern atom into its bank
// name and numeric bank index (0 if absent), per spec.md §4.2's `a:i` form.
func SplitSampleBank(atom string) (name string, bank int) {
	if idx := strings.LastIndexByte(atom, ':'); idx >= 0 {
		if n, err := strconv.Atoi(atom[idx+1:]); err == nil {
			return atom[:idx], n
		}
	}
	return atom, 0
}

// SplitChord splits a "<note>'<chordtype>" atom (e.g. "c4'maj7") into its
// root note name and chord type. ok is false if atom has no chord suffix.
func SplitChord(atom string) (note, chordType string, ok bool) {
	idx := strings.IndexByte(atom, '\'')
	if idx < 0 {
		return atom, "", false
	}
	return atom[:idx], atom[idx+1:], true
}
