// Package schedule turns the remaining part of a song into one owned Plan:
// software timers for highlight changes and for the end of playback, plus
// tones pre-armed on the audio clock. Exactly one Plan is live per Builder.
package schedule

import (
	"time"

	"github.com/ARahim900/Piano-Shaima/internal/clock"
	"github.com/ARahim900/Piano-Shaima/internal/song"
	"github.com/ARahim900/Piano-Shaima/internal/tone"
)

type EventKind int

const (
	// EventHighlight fires at a note's onset.
	EventHighlight EventKind = iota
	// EventFinished fires once, trail after the last note ends.
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventHighlight:
		return "highlight"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is delivered to the Builder's sink from timer callbacks. Epoch names
// the Plan that armed it; the receiver must drop events whose epoch is no
// longer live.
type Event struct {
	Kind  EventKind
	Epoch uint64
	Index int
	Note  song.Note
}

// Entry is one scheduled note. At and Until are offsets from the Plan's
// anchor, already divided by the speed multiplier.
type Entry struct {
	Index int
	Note  song.Note
	At    time.Duration
	Until time.Duration
}

// Plan is the set of timers and tones armed by one Build call.
type Plan struct {
	epoch   uint64
	from    time.Duration
	speed   float64
	entries []Entry
	end     time.Duration
	mixer   *tone.Mixer
	timers  clock.Group
	voices  []*tone.Source
	torn    bool
}

func (p *Plan) Epoch() uint64          { return p.epoch }
func (p *Plan) From() time.Duration    { return p.from }
func (p *Plan) Speed() float64         { return p.speed }
func (p *Plan) Entries() []Entry       { return append([]Entry(nil), p.entries...) }
func (p *Plan) End() time.Duration     { return p.end }
func (p *Plan) Empty() bool            { return len(p.entries) == 0 }
func (p *Plan) Active() bool           { return p != nil && !p.torn }
func (p *Plan) Voices() []*tone.Source { return append([]*tone.Source(nil), p.voices...) }

// Teardown cancels every pending timer and fades out every voice that is
// still sounding or not yet started. Calling it again does nothing.
func (p *Plan) Teardown() {
	if p == nil || p.torn {
		return
	}
	p.torn = true
	p.timers.StopAll()
	if p.mixer == nil {
		return
	}
	now := p.mixer.Now()
	for _, v := range p.voices {
		v.Stop(now)
	}
}

// Builder owns the single outstanding Plan. It is not safe for concurrent
// use; the engine calls it under its own lock.
type Builder struct {
	clk     clock.Clock
	mixer   *tone.Mixer
	trail   time.Duration
	sink    func(Event)
	epoch   uint64
	current *Plan
}

// NewBuilder creates a Builder. mixer may be nil, in which case plans carry
// timers only. sink receives every event from the goroutine that fires the
// timer.
func NewBuilder(clk clock.Clock, mixer *tone.Mixer, trail time.Duration, sink func(Event)) *Builder {
	if clk == nil {
		clk = clock.Real()
	}
	if sink == nil {
		sink = func(Event) {}
	}
	return &Builder{clk: clk, mixer: mixer, trail: trail, sink: sink}
}

// SetMixer swaps the mixer used by later plans. The live plan keeps the
// mixer it was built with.
func (b *Builder) SetMixer(m *tone.Mixer) { b.mixer = m }

// Build tears down the outstanding plan and arms a new one for every note of
// s starting at or after from, compressed by speed. The anchor is the moment
// of the call on both clocks. A song with nothing left to play yields an
// Empty plan with no timers; the caller handles that transition itself.
func (b *Builder) Build(s *song.Song, from time.Duration, speed float64) *Plan {
	b.Teardown()
	if speed <= 0 {
		speed = 1
	}
	b.epoch++
	p := &Plan{
		epoch: b.epoch,
		from:  from,
		speed: speed,
		mixer: b.mixer,
	}
	b.current = p

	var last time.Duration
	for i := 0; i < s.Len(); i++ {
		n := s.At(i)
		if n.Start < from {
			continue
		}
		at := scale(n.Start-from, speed)
		p.entries = append(p.entries, Entry{
			Index: i,
			Note:  n,
			At:    at,
			Until: at + scale(n.Duration, speed),
		})
		last = max(last, n.End())
	}
	if len(p.entries) == 0 {
		return p
	}
	p.end = scale(last-from, speed) + b.trail

	var audioAnchor time.Duration
	if b.mixer != nil {
		audioAnchor = b.mixer.Now()
	}
	for _, e := range p.entries {
		ev := Event{Kind: EventHighlight, Epoch: p.epoch, Index: e.Index, Note: e.Note}
		p.timers.Add(b.clk.AfterFunc(e.At, func() { b.sink(ev) }))
		if b.mixer == nil || e.Note.IsRest() {
			continue
		}
		v := b.mixer.Start(e.Note.Pitch, audioAnchor+e.At)
		v.Stop(audioAnchor + e.Until)
		p.voices = append(p.voices, v)
	}
	fin := Event{Kind: EventFinished, Epoch: p.epoch, Index: -1}
	p.timers.Add(b.clk.AfterFunc(p.end, func() { b.sink(fin) }))
	return p
}

// Teardown discards the outstanding plan, if any.
func (b *Builder) Teardown() {
	if b.current == nil {
		return
	}
	b.current.Teardown()
	b.current = nil
}

// Epoch returns the epoch of the most recently built plan.
func (b *Builder) Epoch() uint64 { return b.epoch }

// Current returns the outstanding plan or nil.
func (b *Builder) Current() *Plan { return b.current }

// Live reports whether epoch names the outstanding, untorn plan.
func (b *Builder) Live(epoch uint64) bool {
	return b.current.Active() && b.current.epoch == epoch
}

func scale(d time.Duration, speed float64) time.Duration {
	if speed == 1 {
		return d
	}
	return time.Duration(float64(d) / speed)
}
