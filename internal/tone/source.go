package tone

import (
	"time"

	"github.com/ARahim900/Piano-Shaima/internal/song"
)

type envState int

const (
	envPending envState = iota
	envAttack
	envSustain
	envRelease
	envOff
)

// Source is one tone on a Mixer, alive from its start instant until its
// release ramp reaches zero.
type Source struct {
	mixer       *Mixer
	pitch       song.Pitch
	freq        float64
	startAt     int64
	stopAt      int64
	phase       float64
	env         float64
	releaseStep float64
	state       envState
}

// Pitch returns the note this Source plays.
func (s *Source) Pitch() song.Pitch {
	if s == nil {
		return song.Rest
	}
	return s.pitch
}

// Stop schedules the release ramp to begin at the audio-clock instant at
// (clamped to now). An earlier pending stop wins; a later one is replaced,
// so any stop already scheduled further out is cancelled first. Stopping a
// released or finished Source does nothing.
func (s *Source) Stop(at time.Duration) {
	if s == nil {
		return
	}
	m := s.mixer
	m.mu.Lock()
	defer m.mu.Unlock()
	s.stopLocked(m.frames(at))
}

// Done reports whether the Source has finished its release.
func (s *Source) Done() bool {
	if s == nil {
		return true
	}
	s.mixer.mu.Lock()
	defer s.mixer.mu.Unlock()
	return s.state == envOff
}

func (s *Source) stopLocked(frame int64) bool {
	if s.state == envOff || s.state == envRelease {
		return false
	}
	frame = max(frame, s.mixer.frame)
	if s.stopAt >= 0 && s.stopAt <= frame {
		return false
	}
	s.stopAt = frame
	return true
}

func (s *Source) render(frame int64) float64 {
	m := s.mixer
	switch s.state {
	case envOff:
		return 0
	case envPending:
		if frame < s.startAt {
			if s.stopAt >= 0 && frame >= s.stopAt {
				s.state = envOff
			}
			return 0
		}
		s.state = envAttack
	}
	if s.stopAt >= 0 && frame >= s.stopAt && s.state != envRelease {
		if s.env <= 0 {
			s.state = envOff
			return 0
		}
		s.state = envRelease
		s.releaseStep = s.env / float64(m.fadeOut)
	}
	switch s.state {
	case envAttack:
		s.env += 1 / float64(m.fadeIn)
		if s.env >= 1 {
			s.env = 1
			s.state = envSustain
		}
	case envRelease:
		s.env -= s.releaseStep
		if s.env <= 1e-9 {
			s.env = 0
			s.state = envOff
			return 0
		}
	}
	dt := s.freq / float64(m.sampleRate)
	out := m.opts.Waveform.sample(s.phase, dt) * s.env * m.opts.Level
	s.phase += dt
	if s.phase >= 1 {
		s.phase -= 1
	}
	return out
}
