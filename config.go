package piano

import (
	"os"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gopkg.in/yaml.v3"

	"github.com/ARahim900/Piano-Shaima/internal/effects"
	"github.com/ARahim900/Piano-Shaima/internal/tone"
)

// Config tunes the engine. Durations are written as Go duration strings in
// YAML ("10ms", "1.5s").
type Config struct {
	SampleRate int `yaml:"sample_rate"`
	// FadeIn and FadeOut are the click-free ramps applied to every tone.
	FadeIn  time.Duration `yaml:"fade_in"`
	FadeOut time.Duration `yaml:"fade_out"`
	// Trail is how long after the last note ends playback returns to Loaded.
	Trail        time.Duration `yaml:"trail"`
	DefaultSpeed float64       `yaml:"default_speed"`
	MaxSpeed     float64       `yaml:"max_speed"`
	// TapLength is how long a correctly matched note sounds in learning mode.
	TapLength       time.Duration `yaml:"tap_length"`
	PulseLength     time.Duration `yaml:"pulse_length"`
	CompletionDelay time.Duration `yaml:"completion_delay"`
	Waveform        string        `yaml:"waveform"`
	Volume          float64       `yaml:"volume"`
	Limiter         bool          `yaml:"limiter"`
	// Room is the wet level of the master reverb, 0 to disable.
	Room             float64       `yaml:"room"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate:       48000,
		FadeIn:           10 * time.Millisecond,
		FadeOut:          60 * time.Millisecond,
		Trail:            500 * time.Millisecond,
		DefaultSpeed:     1,
		MaxSpeed:         2,
		TapLength:        250 * time.Millisecond,
		PulseLength:      400 * time.Millisecond,
		CompletionDelay:  1500 * time.Millisecond,
		Waveform:         "piano",
		Volume:           0.8,
		Limiter:          true,
		Room:             0,
		ProgressInterval: 16 * time.Millisecond,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Fields missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fault.Wrap(err, fmsg.With("read config "+path))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fault.Wrap(err,
			fmsg.WithDesc("parse config "+path, "The configuration file is not valid YAML."),
			ftag.With(ftag.InvalidArgument))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate replaces out-of-range values with defaults. Only an unknown
// waveform is reported as an error.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.FadeIn <= 0 {
		c.FadeIn = def.FadeIn
	}
	if c.FadeOut <= 0 {
		c.FadeOut = def.FadeOut
	}
	c.Trail = max(c.Trail, 0)
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = def.MaxSpeed
	}
	if c.DefaultSpeed <= 0 || c.DefaultSpeed > c.MaxSpeed {
		c.DefaultSpeed = min(def.DefaultSpeed, c.MaxSpeed)
	}
	if c.TapLength <= 0 {
		c.TapLength = def.TapLength
	}
	if c.PulseLength <= 0 {
		c.PulseLength = def.PulseLength
	}
	c.CompletionDelay = max(c.CompletionDelay, 0)
	c.Volume = min(max(c.Volume, 0), 1)
	c.Room = min(max(c.Room, 0), 1)
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = def.ProgressInterval
	}
	if _, err := tone.ParseWaveform(c.Waveform); err != nil {
		return fault.Wrap(err, fmsg.With("config waveform"), ftag.With(ftag.InvalidArgument))
	}
	return nil
}

func (c Config) toneOptions() tone.Options {
	w, _ := tone.ParseWaveform(c.Waveform)
	opts := tone.DefaultOptions()
	opts.Waveform = w
	opts.FadeIn = c.FadeIn
	opts.FadeOut = c.FadeOut
	opts.Effects = effects.Master(c.SampleRate, float32(c.Room), c.Limiter)
	return opts
}
