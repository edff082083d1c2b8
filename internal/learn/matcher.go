// Package learn implements guided practice: the player must press each
// non-rest note of a song in order before the cursor moves on.
package learn

import "github.com/ARahim900/Piano-Shaima/internal/song"

type Result int

const (
	// Ignored means no target was active (no song, or already complete).
	Ignored Result = iota
	Correct
	Incorrect
	// Complete is a correct press that matched the last target.
	Complete
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Complete:
		return "complete"
	default:
		return "ignored"
	}
}

// Outcome describes one key press. Index and Note name the target that was
// evaluated, not the one the cursor moved to.
type Outcome struct {
	Result Result
	Index  int
	Note   song.Note
}

// Matcher holds the learning cursor. The cursor always points at a non-rest
// note or at Len.
type Matcher struct {
	song   *song.Song
	cursor int
}

func NewMatcher(s *song.Song) *Matcher {
	return &Matcher{song: s}
}

// Start positions the cursor on the first non-rest note.
func (m *Matcher) Start() {
	m.cursor = m.song.FirstPlayable()
}

// Reset is Start under the name used after completion.
func (m *Matcher) Reset() { m.Start() }

// Stop clears the cursor back to 0.
func (m *Matcher) Stop() { m.cursor = 0 }

func (m *Matcher) Cursor() int { return m.cursor }

// Done reports whether every target has been matched.
func (m *Matcher) Done() bool { return m.cursor >= m.song.Len() }

// Target returns the note the player must press next.
func (m *Matcher) Target() (song.Note, bool) {
	m.skipRests()
	if m.Done() {
		return song.Note{}, false
	}
	return m.song.At(m.cursor), true
}

// Press evaluates p against the current target. A match advances past the
// target and any rests that follow it; a mismatch leaves the cursor alone.
func (m *Matcher) Press(p song.Pitch) Outcome {
	target, ok := m.Target()
	if !ok {
		return Outcome{Result: Ignored, Index: m.cursor}
	}
	out := Outcome{Index: m.cursor, Note: target}
	if !target.Pitch.Matches(p) {
		out.Result = Incorrect
		return out
	}
	m.cursor = m.song.NextPlayable(m.cursor + 1)
	if m.Done() {
		out.Result = Complete
	} else {
		out.Result = Correct
	}
	return out
}

// skipRests moves a cursor that somehow landed on a rest forward without
// requiring a press.
func (m *Matcher) skipRests() {
	m.cursor = m.song.NextPlayable(m.cursor)
}
