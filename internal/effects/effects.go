// Package effects conditions the mixed practice output before it reaches the
// audio device.
package effects

// Effector processes one stereo frame.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies effects in order. A nil *Chain passes audio through.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	c := &Chain{}
	for _, e := range effects {
		c.Add(e)
	}
	return c
}

// Add appends e; nil effects are skipped.
func (c *Chain) Add(e Effector) {
	if e == nil {
		return
	}
	c.effects = append(c.effects, e)
}

// Len returns the number of effects in the chain.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.effects)
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	if c == nil {
		return l, r
	}
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	if c == nil {
		return
	}
	for _, e := range c.effects {
		e.Reset()
	}
}

// Master builds the output chain for a sample rate: an optional room
// reverb followed by an optional peak limiter.
func Master(sampleRate int, room float32, limit bool) *Chain {
	c := NewChain()
	if room > 0 {
		c.Add(NewRoom(sampleRate, room))
	}
	if limit {
		c.Add(NewLimiter(sampleRate, -3, 2, 120))
	}
	return c
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
