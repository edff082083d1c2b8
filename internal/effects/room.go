package effects

// Room is a small Schroeder reverb: four parallel combs feeding one allpass.
type Room struct {
	combs [4]delayLine
	diff  delayLine
	wet   float32
}

type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

// NewRoom creates a short room ambience with the given wet mix (0..1).
func NewRoom(sampleRate int, wet float32) *Room {
	base := sampleRate / 40
	if base < 8 {
		base = 8
	}
	rm := &Room{wet: clamp(wet, 0, 1)}
	for i, ratio := range [4]int{1000, 1116, 1277, 1356} {
		rm.combs[i] = delayLine{buf: make([]float32, base*ratio/1000), fb: 0.72}
	}
	rm.diff = delayLine{buf: make([]float32, base/3+1), fb: 0.5}
	return rm
}

func (rm *Room) Process(l, r float32) (float32, float32) {
	in := (l + r) * 0.5
	var sum float32
	for i := range rm.combs {
		sum += rm.combs[i].comb(in)
	}
	out := rm.diff.allpass(sum * 0.25)
	dry := 1 - rm.wet
	return l*dry + out*rm.wet, r*dry + out*rm.wet
}

func (rm *Room) Reset() {
	for i := range rm.combs {
		rm.combs[i].clear()
	}
	rm.diff.clear()
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*d.fb
	d.advance()
	return delayed - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) clear() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
