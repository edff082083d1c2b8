// Package clock abstracts wall-clock time and one-shot timers so the engine
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant and one-shot delayed callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine (or, for Fake, inside Advance)
	// once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable one-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped a pending timer; stopping twice is harmless.
	Stop() bool
}

// Real returns a Clock backed by package time.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Group owns a set of armed timers that are cancelled together.
type Group struct {
	mu     sync.Mutex
	timers []Timer
}

// Add records t so StopAll can cancel it.
func (g *Group) Add(t Timer) {
	g.mu.Lock()
	g.timers = append(g.timers, t)
	g.mu.Unlock()
}

// StopAll cancels every timer in the group and empties it. It returns how
// many timers were still pending.
func (g *Group) StopAll() int {
	g.mu.Lock()
	timers := g.timers
	g.timers = nil
	g.mu.Unlock()
	stopped := 0
	for _, t := range timers {
		if t.Stop() {
			stopped++
		}
	}
	return stopped
}

// Len returns the number of timers recorded since the last StopAll.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}
