package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARahim900/Piano-Shaima/internal/clock"
	"github.com/ARahim900/Piano-Shaima/internal/song"
	"github.com/ARahim900/Piano-Shaima/internal/tone"
)

const trail = 500 * time.Millisecond

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func threeNotes() *song.Song {
	return song.New("scale", []song.Note{
		{Pitch: "C4", Duration: ms(500), Start: 0},
		{Pitch: song.Rest, Duration: ms(500), Start: ms(500)},
		{Pitch: "D4", Duration: ms(500), Start: ms(1000)},
	})
}

type recorder struct {
	events []Event
}

func (r *recorder) sink(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// advance moves both clocks together in small steps.
func advance(fc *clock.Fake, m *tone.Mixer, d time.Duration) {
	const step = 5 * time.Millisecond
	for d > 0 {
		s := min(step, d)
		if m != nil {
			m.Process(make([]float32, m.FramesFor(s)*2))
		}
		fc.Advance(s)
		d -= s
	}
}

func TestBuildArmsHighlightsInNoteOrder(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	rec := &recorder{}
	b := NewBuilder(fc, nil, trail, rec.sink)
	p := b.Build(threeNotes(), 0, 1)

	require.Len(t, p.Entries(), 3)
	assert.Equal(t, ms(1500)+trail, p.End())
	assert.Equal(t, 4, fc.Pending())

	advance(fc, nil, ms(499))
	require.Len(t, rec.events, 1)
	assert.Equal(t, song.Pitch("C4"), rec.events[0].Note.Pitch)

	advance(fc, nil, ms(1))
	require.Len(t, rec.events, 2)
	assert.True(t, rec.events[1].Note.IsRest())

	advance(fc, nil, ms(500))
	require.Len(t, rec.events, 3)
	assert.Equal(t, 2, rec.events[2].Index)

	advance(fc, nil, ms(500)+trail-ms(1))
	assert.Len(t, rec.events, 3)
	advance(fc, nil, ms(1))
	assert.Equal(t, []EventKind{EventHighlight, EventHighlight, EventHighlight, EventFinished}, rec.kinds())
	for _, ev := range rec.events {
		assert.Equal(t, p.Epoch(), ev.Epoch)
	}
}

func TestBuildFromOffsetAndSpeed(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	b := NewBuilder(fc, nil, trail, nil)
	p := b.Build(threeNotes(), ms(500), 2)
	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, time.Duration(0), entries[0].At)
	assert.Equal(t, ms(250), entries[0].Until)
	assert.Equal(t, ms(250), entries[1].At)
	assert.Equal(t, ms(500), entries[1].Until)
	assert.Equal(t, ms(500)+trail, p.End())
}

func TestBuildPastEndIsEmpty(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	b := NewBuilder(fc, nil, trail, nil)
	p := b.Build(threeNotes(), ms(1001), 1)
	assert.True(t, p.Empty())
	assert.Zero(t, fc.Pending())

	p = b.Build(song.New("", nil), 0, 1)
	assert.True(t, p.Empty())
	assert.Zero(t, fc.Pending())
}

func TestBuildReplacesOutstandingPlan(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := tone.NewMixer(48000, tone.DefaultOptions())
	rec := &recorder{}
	b := NewBuilder(fc, m, trail, rec.sink)

	first := b.Build(threeNotes(), 0, 1)
	second := b.Build(threeNotes(), 0, 1)
	assert.False(t, first.Active())
	assert.True(t, second.Active())
	assert.False(t, b.Live(first.Epoch()))
	assert.True(t, b.Live(second.Epoch()))
	assert.Equal(t, 4, fc.Pending())
	m.Process(make([]float32, 2))
	for _, v := range first.Voices() {
		assert.True(t, v.Done())
	}
	assert.Len(t, second.Voices(), 2)
}

func TestTeardownLeavesNothingBehind(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := tone.NewMixer(48000, tone.DefaultOptions())
	rec := &recorder{}
	b := NewBuilder(fc, m, trail, rec.sink)
	p := b.Build(threeNotes(), 0, 1)

	advance(fc, m, ms(10))
	require.Len(t, rec.events, 1)
	p.Teardown()
	p.Teardown()
	assert.Zero(t, fc.Pending())

	advance(fc, m, 5*time.Second)
	assert.Len(t, rec.events, 1, "no highlight may fire after teardown")
	assert.Zero(t, m.Active(), "no tone may still be sounding")
	for _, v := range p.Voices() {
		assert.True(t, v.Done())
	}
	b.Teardown()
	assert.Nil(t, b.Current())
}

func TestReplanWithZeroElapsedIsIdentical(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	b := NewBuilder(fc, nil, trail, nil)
	before := b.Build(threeNotes(), ms(250), 1.5).Entries()
	b.Teardown()
	after := b.Build(threeNotes(), ms(250), 1.5).Entries()
	assert.Equal(t, before, after)
}

func TestVoicesFollowAudioClock(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	m := tone.NewMixer(48000, tone.DefaultOptions())
	b := NewBuilder(fc, m, trail, nil)
	p := b.Build(threeNotes(), 0, 1)
	voices := p.Voices()
	require.Len(t, voices, 2)

	advance(fc, m, ms(600))
	assert.True(t, voices[0].Done(), "C4 should have released by 560 ms")
	assert.False(t, voices[1].Done())
	advance(fc, m, ms(1000))
	assert.True(t, voices[1].Done())
}
