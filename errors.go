package piano

import (
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	intaudio "github.com/ARahim900/Piano-Shaima/internal/audio"
)

// Error kinds reported by ErrorKind in addition to the stock ftag kinds.
const (
	KindUnavailable   = intaudio.Unavailable
	KindNothingUsable ftag.Kind = "NOTHING_USABLE"
	KindMisconfigured ftag.Kind = "MISCONFIGURED"
)

var (
	// ErrAudioUnavailable means no audio output could be opened. It is
	// reported once; the engine keeps running silently.
	ErrAudioUnavailable = intaudio.ErrUnavailable
	// ErrNothingUsable means generation finished without a usable song.
	ErrNothingUsable = fault.New("generation returned nothing usable", ftag.With(KindNothingUsable))
	// ErrMisconfigured means the generation service could not be reached
	// as configured (missing key, bad endpoint).
	ErrMisconfigured = fault.New("generation service misconfigured", ftag.With(KindMisconfigured))
	ErrInvalidSpeed  = fault.New("speed multiplier out of range", ftag.With(ftag.InvalidArgument))
)

// ErrorKind classifies err for display.
func ErrorKind(err error) ftag.Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMisconfigured):
		return KindMisconfigured
	case errors.Is(err, ErrNothingUsable):
		return KindNothingUsable
	case errors.Is(err, ErrAudioUnavailable):
		return KindUnavailable
	}
	return ftag.Get(err)
}
