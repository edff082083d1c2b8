package tone

import (
	"fmt"
	"math"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
)

const twoPi = math.Pi * 2

// Waveform selects the oscillator shape used for every Source of a Mixer.
type Waveform int

const (
	WavePiano Waveform = iota
	WaveSine
	WaveTriangle
	WaveSquare
	WaveSaw
)

var waveNames = map[Waveform]string{
	WavePiano:    "piano",
	WaveSine:     "sine",
	WaveTriangle: "triangle",
	WaveSquare:   "square",
	WaveSaw:      "saw",
}

func (w Waveform) String() string {
	if s, ok := waveNames[w]; ok {
		return s
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform maps a configuration name to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return WavePiano, nil
	}
	for w, s := range waveNames {
		if s == name {
			return w, nil
		}
	}
	return WavePiano, fault.New(fmt.Sprintf("unknown waveform %q (expected piano|sine|triangle|square|saw)", name),
		ftag.With(ftag.InvalidArgument))
}

// sample evaluates the waveform at phase in [0, 1). dt is the per-sample
// phase increment, used to band-limit the discontinuous shapes.
func (w Waveform) sample(phase, dt float64) float64 {
	switch w {
	case WaveSine:
		return math.Sin(twoPi * phase)
	case WaveTriangle:
		return 2*math.Abs(2*phase-1) - 1
	case WaveSquare:
		out := -1.0
		if phase < 0.5 {
			out = 1
		}
		out += polyBLEP(phase, dt)
		out -= polyBLEP(math.Mod(phase+0.5, 1), dt)
		return out * 0.5
	case WaveSaw:
		return (2*phase - 1 - polyBLEP(phase, dt)) * 0.6
	default:
		p := twoPi * phase
		return (math.Sin(p) + 0.5*math.Sin(2*p) + 0.2*math.Sin(3*p)) / 1.7
	}
}

// polyBLEP reduces aliasing at waveform discontinuities.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
