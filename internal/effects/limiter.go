package effects

import "math"

// Limiter keeps overlapping practice tones from clipping. It follows the
// louder channel's peak and applies the same gain to both so the stereo image
// does not wander.
type Limiter struct {
	ceiling float32
	attack  float32
	release float32
	env     float32
}

// NewLimiter creates a limiter with a ceiling in dBFS and attack/release
// times in milliseconds.
func NewLimiter(sampleRate int, ceilingDB, attackMs, releaseMs float32) *Limiter {
	return &Limiter{
		ceiling: float32(math.Pow(10, float64(ceilingDB)/20)),
		attack:  coefficient(sampleRate, attackMs),
		release: coefficient(sampleRate, releaseMs),
	}
}

func coefficient(sampleRate int, ms float32) float32 {
	if ms <= 0 || sampleRate <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}

func (lm *Limiter) Process(l, r float32) (float32, float32) {
	peak := float32(math.Max(math.Abs(float64(l)), math.Abs(float64(r))))
	if peak > lm.env {
		lm.env += lm.attack * (peak - lm.env)
	} else {
		lm.env += lm.release * (peak - lm.env)
	}
	gain := float32(1)
	if lm.env > lm.ceiling {
		gain = lm.ceiling / lm.env
	}
	return clamp(l*gain, -1, 1), clamp(r*gain, -1, 1)
}

func (lm *Limiter) Reset() { lm.env = 0 }
