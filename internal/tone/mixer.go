// Package tone renders short practice tones onto one shared output. The
// Mixer's rendered frame counter is the audio clock: tones are started and
// stopped at absolute positions on it, ahead of time, and fire independently
// of whatever the caller's goroutines are doing.
package tone

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ARahim900/Piano-Shaima/internal/effects"
	"github.com/ARahim900/Piano-Shaima/internal/song"
)

type Options struct {
	Waveform Waveform
	// FadeIn is the linear attack applied to every tone to avoid clicks.
	FadeIn time.Duration
	// FadeOut is the ramp to silence applied on Stop.
	FadeOut time.Duration
	// Level is the peak gain of a single tone before the master gain.
	Level   float64
	Effects *effects.Chain
}

func DefaultOptions() Options {
	return Options{
		Waveform: WavePiano,
		FadeIn:   10 * time.Millisecond,
		FadeOut:  60 * time.Millisecond,
		Level:    0.25,
	}
}

// Mixer sums every live Source into interleaved stereo float32 frames.
// Each note gets a fresh Source; finished ones are dropped after rendering.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	opts       Options
	fadeIn     int64
	fadeOut    int64
	frame      int64
	sources    []*Source
	created    int64
	masterGain uint64
}

func NewMixer(sampleRate int, opts Options) *Mixer {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	if opts.Level <= 0 {
		opts.Level = DefaultOptions().Level
	}
	m := &Mixer{
		sampleRate: sampleRate,
		opts:       opts,
		masterGain: math.Float64bits(1),
	}
	m.fadeIn = max(1, m.frames(opts.FadeIn))
	m.fadeOut = max(1, m.frames(opts.FadeOut))
	return m
}

func (m *Mixer) SampleRate() int { return m.sampleRate }

// Now returns the audio clock: the position of the next frame to be rendered.
func (m *Mixer) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration(m.frame)
}

// Start creates a Source that begins sounding p at the audio-clock instant
// at (clamped to now). Rests produce no Source and return nil; every method
// of a nil *Source is a no-op.
func (m *Mixer) Start(p song.Pitch, at time.Duration) *Source {
	if p.IsRest() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Source{
		mixer:   m,
		pitch:   p,
		freq:    song.Frequency(p),
		startAt: max(m.frame, m.frames(at)),
		stopAt:  -1,
	}
	m.sources = append(m.sources, s)
	m.created++
	return s
}

// StopAll fades out every live Source starting at the audio-clock instant at.
func (m *Mixer) StopAll(at time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.frames(at)
	n := 0
	for _, s := range m.sources {
		if s.stopLocked(f) {
			n++
		}
	}
	return n
}

// Active returns the number of Sources that are pending or still audible.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sources {
		if s.state != envOff {
			n++
		}
	}
	return n
}

// Created returns how many Sources were ever started on this mixer.
func (m *Mixer) Created() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// SetGain sets the master gain applied after summing. 1.0 is unity.
func (m *Mixer) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&m.masterGain, math.Float64bits(gain))
}

func (m *Mixer) Gain() float64 {
	return math.Float64frombits(atomic.LoadUint64(&m.masterGain))
}

// Process renders len(dst)/2 stereo frames and advances the audio clock.
func (m *Mixer) Process(dst []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gain := m.Gain()
	for i := 0; i+1 < len(dst); i += 2 {
		var sum float64
		for _, s := range m.sources {
			sum += s.render(m.frame)
		}
		v := float32(sum * gain)
		dst[i], dst[i+1] = m.opts.Effects.Process(v, v)
		m.frame++
	}
	m.reapLocked()
}

// FramesFor converts a duration to a whole number of frames.
func (m *Mixer) FramesFor(d time.Duration) int {
	return int(m.frames(d))
}

func (m *Mixer) reapLocked() {
	live := m.sources[:0]
	for _, s := range m.sources {
		if s.state != envOff {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(m.sources); i++ {
		m.sources[i] = nil
	}
	m.sources = live
}

func (m *Mixer) frames(d time.Duration) int64 {
	return int64(math.Round(d.Seconds() * float64(m.sampleRate)))
}

func (m *Mixer) duration(frames int64) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(m.sampleRate)
}
