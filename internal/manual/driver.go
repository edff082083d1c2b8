// Package manual sounds notes held down by the player, one tone per pitch.
package manual

import (
	"slices"

	"github.com/ARahim900/Piano-Shaima/internal/song"
	"github.com/ARahim900/Piano-Shaima/internal/tone"
)

// Driver tracks held pitches. With a nil mixer it still tracks the Active
// Notes set, which is what the visual keyboard needs.
type Driver struct {
	mixer *tone.Mixer
	held  map[song.Pitch]*tone.Source
}

func New(m *tone.Mixer) *Driver {
	return &Driver{mixer: m, held: make(map[song.Pitch]*tone.Source)}
}

// SetMixer routes later notes to m. Notes already held keep sounding on the
// old mixer until released.
func (d *Driver) SetMixer(m *tone.Mixer) { d.mixer = m }

// NoteDown starts p now. It reports false for rests and already held keys.
func (d *Driver) NoteDown(p song.Pitch) bool {
	if p.IsRest() {
		return false
	}
	if _, ok := d.held[p]; ok {
		return false
	}
	var src *tone.Source
	if d.mixer != nil {
		src = d.mixer.Start(p, d.mixer.Now())
	}
	d.held[p] = src
	return true
}

// NoteUp releases p. It reports false if p was not held.
func (d *Driver) NoteUp(p song.Pitch) bool {
	src, ok := d.held[p]
	if !ok {
		return false
	}
	delete(d.held, p)
	d.release(src)
	return true
}

// StopAll releases every held note and returns how many there were.
func (d *Driver) StopAll() int {
	n := len(d.held)
	for p, src := range d.held {
		d.release(src)
		delete(d.held, p)
	}
	return n
}

// Held reports whether p is down.
func (d *Driver) Held(p song.Pitch) bool {
	_, ok := d.held[p]
	return ok
}

// Active returns the held pitches, lowest first.
func (d *Driver) Active() []song.Pitch {
	out := make([]song.Pitch, 0, len(d.held))
	for p := range d.held {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePitch)
	return out
}

func (d *Driver) Len() int { return len(d.held) }

// release fades src starting at the current frame of its own mixer (Stop
// clamps past instants to now). Any later stop already scheduled on src is
// replaced, so ramps never overlap.
func (d *Driver) release(src *tone.Source) {
	src.Stop(0)
}

func comparePitch(a, b song.Pitch) int {
	ma, okA := a.MIDI()
	mb, okB := b.MIDI()
	switch {
	case okA && okB && ma != mb:
		return ma - mb
	case okA != okB:
		if okA {
			return -1
		}
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
