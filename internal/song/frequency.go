package song

import "math"

// FallbackFrequency is used for pitches outside the mapped range (A4).
const FallbackFrequency = 440.0

// Mapped range of the frequency table, C3 through B5.
const (
	LowestMapped  = 48
	HighestMapped = 83
)

var frequencies = buildFrequencyTable()

func buildFrequencyTable() map[Pitch]float64 {
	table := make(map[Pitch]float64, HighestMapped-LowestMapped+1)
	for n := LowestMapped; n <= HighestMapped; n++ {
		table[PitchFromMIDI(n)] = midiToFreq(n)
	}
	return table
}

// Frequency returns the equal-tempered frequency of p in Hz. Rests return 0.
// Pitches the table does not cover fall back to A4 rather than failing,
// since the upstream generator is free to wander out of range.
func Frequency(p Pitch) float64 {
	if p.IsRest() {
		return 0
	}
	if f, ok := frequencies[p]; ok {
		return f
	}
	if f, ok := frequencies[ParsePitch(string(p))]; ok {
		return f
	}
	return FallbackFrequency
}

// Mapped reports whether p is covered by the frequency table.
func Mapped(p Pitch) bool {
	_, ok := frequencies[ParsePitch(string(p))]
	return ok
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}
