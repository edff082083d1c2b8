package piano

import (
	"github.com/sirupsen/logrus"

	intaudio "github.com/ARahim900/Piano-Shaima/internal/audio"
	"github.com/ARahim900/Piano-Shaima/internal/clock"
)

// SampleSource renders interleaved stereo float32 frames. The Engine is one.
type SampleSource interface {
	Process(dst []float32)
}

// Backend is a running audio output.
type Backend interface {
	Play()
	Pause()
	Stop() error
}

// BackendFactory opens an output that pulls from src. It is called once, on
// the first interaction that needs sound.
type BackendFactory func(sampleRate int, src SampleSource) (Backend, error)

// DeviceBackend opens the shared system audio output.
func DeviceBackend(sampleRate int, src SampleSource) (Backend, error) {
	return intaudio.NewPlayer(sampleRate, src)
}

type Option func(*options)

type options struct {
	cfg        Config
	clk        clock.Clock
	newBackend BackendFactory
	log        logrus.FieldLogger
	liveProbe  func() bool
}

func defaultOptions() options {
	return options{
		cfg:        DefaultConfig(),
		clk:        clock.Real(),
		newBackend: DeviceBackend,
		log:        logrus.StandardLogger(),
	}
}

func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithClock replaces the wall clock and timers, typically with a clock.Fake.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clk = c
		}
	}
}

// WithBackend replaces the audio output. A nil factory runs the engine with
// no output at all; callers then pull audio through Engine.Process.
func WithBackend(f BackendFactory) Option {
	return func(o *options) {
		o.newBackend = f
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithLiveSession installs a probe reporting whether an external live
// feedback session is capturing audio. While it reports true, playback and
// manual notes are refused. The probe is called with the engine locked and
// must not call back into the engine.
func WithLiveSession(probe func() bool) Option {
	return func(o *options) {
		o.liveProbe = probe
	}
}
