package song

import (
	"time"

	"github.com/google/uuid"
)

// Note is one timed event of a song. Start is the absolute offset from the
// beginning of the song, not relative to the previous note.
type Note struct {
	Pitch    Pitch
	Duration time.Duration
	Start    time.Duration
}

// End returns the offset at which the note stops sounding.
func (n Note) End() time.Duration { return n.Start + n.Duration }

// IsRest reports whether the note is silent.
func (n Note) IsRest() bool { return n.Pitch.IsRest() }

// Song is an ordered, immutable note sequence. A new generation replaces the
// whole Song; it is never edited in place.
type Song struct {
	id    string
	title string
	notes []Note
}

// New copies notes into a fresh Song with its own identity.
func New(title string, notes []Note) *Song {
	cp := make([]Note, len(notes))
	copy(cp, notes)
	return &Song{
		id:    uuid.NewString(),
		title: title,
		notes: cp,
	}
}

func (s *Song) ID() string    { return s.id }
func (s *Song) Title() string { return s.title }

// Len returns the number of notes, rests included.
func (s *Song) Len() int {
	if s == nil {
		return 0
	}
	return len(s.notes)
}

// At returns the note at index i.
func (s *Song) At(i int) Note { return s.notes[i] }

// Notes returns a copy of the sequence.
func (s *Song) Notes() []Note {
	if s == nil {
		return nil
	}
	cp := make([]Note, len(s.notes))
	copy(cp, s.notes)
	return cp
}

// End returns the latest end offset of any note.
func (s *Song) End() time.Duration {
	var end time.Duration
	for i := 0; i < s.Len(); i++ {
		if e := s.notes[i].End(); e > end {
			end = e
		}
	}
	return end
}

// FirstPlayable returns the index of the first non-rest note, or Len() when
// the song has none.
func (s *Song) FirstPlayable() int { return s.NextPlayable(0) }

// NextPlayable returns the first index >= i holding a non-rest note, or Len().
func (s *Song) NextPlayable(i int) int {
	if i < 0 {
		i = 0
	}
	for ; i < s.Len(); i++ {
		if !s.notes[i].IsRest() {
			return i
		}
	}
	return s.Len()
}
