package song

import (
	"strconv"
	"strings"
)

// Pitch is a canonical note name such as "C4" or "F#3", or Rest.
// Names that could not be parsed are carried verbatim.
type Pitch string

// Rest is the distinguished pitch of a silent note.
const Rest Pitch = "rest"

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParsePitch canonicalises a note name. Flats are rewritten as sharps
// ("Db4" -> "C#4") and enharmonic spellings across the octave boundary are
// normalised ("B#3" -> "C4"). Empty strings and the usual rest spellings map
// to Rest. Anything else unparseable is returned trimmed but otherwise as-is.
func ParsePitch(s string) Pitch {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "rest", "r", "-", "pause", "silence":
		return Rest
	}
	n, ok := semitone(s)
	if !ok {
		return Pitch(s)
	}
	return PitchFromMIDI(n)
}

// PitchFromMIDI returns the canonical name of a MIDI note number (60 = C4).
func PitchFromMIDI(n int) Pitch {
	octave := n/12 - 1
	idx := n % 12
	if idx < 0 {
		idx += 12
		octave--
	}
	return Pitch(noteNames[idx] + strconv.Itoa(octave))
}

// IsRest reports whether p is the rest marker.
func (p Pitch) IsRest() bool { return p == Rest }

// MIDI returns the MIDI note number of p.
func (p Pitch) MIDI() (int, bool) {
	if p.IsRest() {
		return 0, false
	}
	return semitone(string(p))
}

// Matches reports whether q names the same sounding key as p.
// Rests never match anything.
func (p Pitch) Matches(q Pitch) bool {
	if p.IsRest() || q.IsRest() {
		return false
	}
	a, okA := p.MIDI()
	b, okB := q.MIDI()
	if okA && okB {
		return a == b
	}
	return strings.EqualFold(strings.TrimSpace(string(p)), strings.TrimSpace(string(q)))
}

func (p Pitch) String() string { return string(p) }

func semitone(s string) (int, bool) {
	if len(s) < 2 {
		return 0, false
	}
	base, ok := letterOffsets[upper(s[0])]
	if !ok {
		return 0, false
	}
	rest := s[1:]
	acc := 0
	for len(rest) > 0 {
		switch {
		case rest[0] == '#':
			acc++
			rest = rest[1:]
			continue
		case rest[0] == 'b':
			acc--
			rest = rest[1:]
			continue
		case strings.HasPrefix(rest, "♯"):
			acc++
			rest = rest[len("♯"):]
			continue
		case strings.HasPrefix(rest, "♭"):
			acc--
			rest = rest[len("♭"):]
			continue
		}
		break
	}
	if acc < -2 || acc > 2 {
		return 0, false
	}
	octave, err := strconv.Atoi(rest)
	if err != nil || octave < -1 || octave > 9 {
		return 0, false
	}
	return (octave+1)*12 + base + acc, true
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
