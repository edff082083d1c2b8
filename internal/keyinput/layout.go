// Package keyinput maps physical key presses, from a computer keyboard or
// a MIDI controller, to pitches.
package keyinput

import (
	"strings"

	"github.com/ARahim900/Piano-Shaima/internal/song"
)

// Octave bounds for Layout.Shift. The lowest mapped key stays within C1..C7.
const (
	MinOctave = 1
	MaxOctave = 6
)

// rowOffsets is the usual two-row "tracker" layout: the home row plays the
// white keys, the row above plays the black keys.
var rowOffsets = map[string]int{
	"A": 0, "W": 1, "S": 2, "E": 3, "D": 4, "F": 5, "T": 6, "G": 7,
	"Y": 8, "H": 9, "U": 10, "J": 11, "K": 12, "O": 13, "L": 14, "P": 15,
	"SEMICOLON": 16,
}

// Layout maps key names (as printed by ebiten.Key.String, case-insensitive)
// to pitches. The zero value is not usable; call NewLayout.
type Layout struct {
	octave int
}

// NewLayout returns a layout whose home-row A key plays C4.
func NewLayout() *Layout { return &Layout{octave: 4} }

// Octave returns the octave of the A key.
func (l *Layout) Octave() int { return l.octave }

// Shift moves the layout by delta octaves, clamped to the supported range.
func (l *Layout) Shift(delta int) int {
	l.octave = min(MaxOctave, max(MinOctave, l.octave+delta))
	return l.octave
}

// Pitch returns the pitch of key, or false when the key is not part of the
// layout.
func (l *Layout) Pitch(key string) (song.Pitch, bool) {
	off, ok := rowOffsets[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return song.Rest, false
	}
	return song.PitchFromMIDI((l.octave+1)*12 + off), true
}

// Keys returns the layout's key names in pitch order.
func (l *Layout) Keys() []string {
	out := make([]string, len(rowOffsets))
	for k, off := range rowOffsets {
		out[off] = k
	}
	return out
}

// FromMIDI converts a MIDI note number to a pitch. Out-of-range numbers
// report false.
func FromMIDI(note uint8) (song.Pitch, bool) {
	if note > 127 {
		return song.Rest, false
	}
	return song.PitchFromMIDI(int(note)), true
}
