package piano

import (
	"io"

	"github.com/ARahim900/Piano-Shaima/internal/clock"
	"github.com/ARahim900/Piano-Shaima/internal/song"
)

type (
	Pitch = song.Pitch
	Note  = song.Note
	Song  = song.Song
	Clock = clock.Clock
)

// Rest is the pitch of a silent note.
const Rest = song.Rest

func NewSong(title string, notes []Note) *Song { return song.New(title, notes) }

// DecodeSong reads a generated note sequence from JSON.
func DecodeSong(r io.Reader) (*Song, error) { return song.Decode(r) }

func ParsePitch(s string) Pitch { return song.ParsePitch(s) }
