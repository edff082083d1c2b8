// Package progress derives elapsed song time from a wall-clock anchor.
// The stored offset only changes at transport transitions; while running,
// elapsed time is always computed, never accumulated tick by tick.
package progress

import "time"

// Tracker holds the frozen offset, the anchor of the current run and the
// speed multiplier in force since that anchor. The zero value is a stopped
// tracker at offset zero and speed 1.
type Tracker struct {
	accumulated time.Duration
	anchor      time.Time
	running     bool
	speed       float64
}

// Elapsed returns accumulated + (now - anchor) * speed while running, or the
// frozen offset otherwise.
func (t *Tracker) Elapsed(now time.Time) time.Duration {
	if !t.running {
		return t.accumulated
	}
	return t.accumulated + time.Duration(float64(now.Sub(t.anchor))*t.Speed())
}

// Accumulated returns the offset frozen at the last transition.
func (t *Tracker) Accumulated() time.Duration { return t.accumulated }

func (t *Tracker) Running() bool { return t.running }

func (t *Tracker) Speed() float64 {
	if t.speed <= 0 {
		return 1
	}
	return t.speed
}

// Start anchors a run at now. Starting a running tracker does nothing.
func (t *Tracker) Start(now time.Time) {
	if t.running {
		return
	}
	t.anchor = now
	t.running = true
}

// Pause folds the current run into the frozen offset and returns it.
func (t *Tracker) Pause(now time.Time) time.Duration {
	t.accumulated = t.Elapsed(now)
	t.running = false
	t.anchor = time.Time{}
	return t.accumulated
}

// SetSpeed captures the elapsed time at now and re-anchors, so the derived
// position is continuous across the change and only its rate differs.
func (t *Tracker) SetSpeed(now time.Time, speed float64) {
	if speed <= 0 {
		return
	}
	if t.running {
		t.accumulated = t.Elapsed(now)
		t.anchor = now
	}
	t.speed = speed
}

// Seek moves the frozen offset, re-anchoring a running tracker at now.
func (t *Tracker) Seek(now time.Time, offset time.Duration) {
	t.accumulated = max(offset, 0)
	if t.running {
		t.anchor = now
	}
}

// Reset stops the tracker at offset zero. The speed multiplier is kept.
func (t *Tracker) Reset() {
	t.accumulated = 0
	t.running = false
	t.anchor = time.Time{}
}
