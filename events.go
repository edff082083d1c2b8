package piano

import (
	"time"
)

// State is the transport state. Exactly one is active at a time.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Playing
	Paused
	Learning
	Error
)

var stateNames = [...]string{"idle", "loading", "loaded", "playing", "paused", "learning", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Highlight is the note the UI should emphasise. The zero value means no
// highlight.
type Highlight struct {
	Valid bool
	Index int
	Pitch Pitch
	Start time.Duration
}

type PulseKind int

const (
	PulseNone PulseKind = iota
	PulseCorrect
	PulseIncorrect
)

func (k PulseKind) String() string {
	switch k {
	case PulseCorrect:
		return "correct"
	case PulseIncorrect:
		return "incorrect"
	default:
		return "none"
	}
}

// Pulse is the transient learning-mode feedback signal. Seq increases with
// every press so two identical pulses in a row are still distinguishable.
type Pulse struct {
	Kind  PulseKind
	Index int
	Seq   uint64
}

type EventKind int

const (
	EventState EventKind = iota
	EventHighlight
	EventProgress
	EventPulse
	EventActiveNotes
	EventLearningComplete
	EventAudioUnavailable
)

var eventNames = [...]string{"state", "highlight", "progress", "pulse", "active-notes", "learning-complete", "audio-unavailable"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is pushed on the Watch channel. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind      EventKind
	State     State
	Highlight Highlight
	Elapsed   time.Duration
	Pulse     Pulse
	Active    []Pitch
	Err       error
}

// Snapshot is a consistent copy of the engine's observable state.
type Snapshot struct {
	State     State
	SongID    string
	Title     string
	Highlight Highlight
	Active    []Pitch
	Elapsed   time.Duration
	Speed     float64
	Cursor    int
	Pulse     Pulse
	// GenerationErr is set in the Error state.
	GenerationErr error
	// AudioErr is set once opening the output failed.
	AudioErr error
	Live     bool
	Volume   float64
}

// Watch returns a channel that receives engine events. The channel is
// buffered; when it is full new events are dropped, so receive in a
// goroutine. Only the most recent Watch channel receives events.
func (e *Engine) Watch() <-chan Event {
	ch := make(chan Event, 64)
	e.eventChMu.Lock()
	e.eventCh = ch
	e.eventChMu.Unlock()
	return ch
}

func (e *Engine) sendEvent(ev Event) {
	e.eventChMu.Lock()
	ch := e.eventCh
	e.eventChMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
		// Channel full; drop event
	}
}
