package progress

import (
	"context"
	"time"
)

// Reporter polls a sampler and forwards each changed value. It stands in for
// an animation-frame callback when no UI loop drives the engine.
type Reporter struct {
	sample func() (time.Duration, bool)
	emit   func(time.Duration)
	last   time.Duration
	primed bool
}

// NewReporter builds a Reporter. sample returns the current elapsed time and
// whether reporting is meaningful right now (typically: is playback running).
func NewReporter(sample func() (time.Duration, bool), emit func(time.Duration)) *Reporter {
	return &Reporter{sample: sample, emit: emit}
}

// Tick samples once and emits if the value moved since the last emission.
func (r *Reporter) Tick() bool {
	v, ok := r.sample()
	if !ok {
		r.primed = false
		return false
	}
	if r.primed && v == r.last {
		return false
	}
	r.last, r.primed = v, true
	r.emit(v)
	return true
}

// Run ticks every interval until ctx is done.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.Tick()
		}
	}
}
