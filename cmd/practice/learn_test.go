package main

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	piano "github.com/ARahim900/Piano-Shaima"
	"github.com/ARahim900/Piano-Shaima/internal/keyinput"
)

func TestPressWordsLeavesTapSounding(t *testing.T) {
	cfg := piano.DefaultConfig()
	cfg.TapLength = time.Minute
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	e, err := piano.New(piano.WithConfig(cfg), piano.WithBackend(nil), piano.WithLogger(quiet))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.LoadSong(piano.NewSong("", []piano.Note{
		{Pitch: "C4", Duration: 500 * time.Millisecond},
		{Pitch: "E4", Duration: 500 * time.Millisecond, Start: 500 * time.Millisecond},
		{Pitch: "G4", Duration: 500 * time.Millisecond, Start: time.Second},
	})))
	e.EnterLearning()

	layout := keyinput.NewLayout()
	pressWords(e, layout, "a  e4")
	snap := e.Snapshot()
	assert.Equal(t, 2, snap.Cursor, "a maps to C4, then E4 by name")
	assert.Equal(t, []piano.Pitch{"E4"}, snap.Active, "the last tap is still sounding")

	pressWords(e, layout, "x")
	assert.Equal(t, 2, e.Snapshot().Cursor, "unknown words are wrong presses")
}
