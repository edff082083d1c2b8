package tone

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARahim900/Piano-Shaima/internal/song"
)

const testRate = 48000

func render(m *Mixer, d time.Duration) []float32 {
	buf := make([]float32, m.FramesFor(d)*2)
	m.Process(buf)
	return buf
}

func peak(buf []float32) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestSourceSoundsAndAdvancesClock(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	s := m.Start("A4", 0)
	require.NotNil(t, s)
	buf := render(m, 100*time.Millisecond)
	assert.Greater(t, peak(buf), 0.1)
	assert.Equal(t, 100*time.Millisecond, m.Now())
	assert.Equal(t, 1, m.Active())
	assert.False(t, s.Done())
}

func TestSourceFadesIn(t *testing.T) {
	opts := DefaultOptions()
	opts.Waveform = WaveSquare
	m := NewMixer(testRate, opts)
	m.Start("C4", 0)
	buf := render(m, time.Millisecond)
	// 1 ms into a 10 ms attack the envelope is at most a tenth of full level.
	assert.LessOrEqual(t, peak(buf), opts.Level*0.11)
}

func TestStartHonoursFutureInstant(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	m.Start("E4", 50*time.Millisecond)
	first := render(m, 50*time.Millisecond)
	assert.Zero(t, peak(first))
	second := render(m, 50*time.Millisecond)
	assert.Greater(t, peak(second), 0.05)
}

func TestStopRampsToSilenceAndReaps(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	s := m.Start("G4", 0)
	s.Stop(100 * time.Millisecond)
	render(m, 100*time.Millisecond)
	assert.False(t, s.Done(), "release ramp should still be running at the stop instant")
	tail := render(m, 30*time.Millisecond)
	assert.Greater(t, peak(tail), 0.0)
	render(m, 40*time.Millisecond)
	assert.True(t, s.Done())
	assert.Zero(t, m.Active())
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	s := m.Start("D4", 0)
	s.Stop(0)
	s.Stop(0)
	render(m, 100*time.Millisecond)
	require.True(t, s.Done())
	s.Stop(m.Now())
	assert.True(t, s.Done())

	var nilSource *Source
	nilSource.Stop(time.Second)
	assert.True(t, nilSource.Done())
	assert.Equal(t, song.Rest, nilSource.Pitch())
}

func TestEarlierStopReplacesLaterOne(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	s := m.Start("F4", 0)
	s.Stop(time.Second)
	s.Stop(20 * time.Millisecond)
	render(m, 100*time.Millisecond)
	assert.True(t, s.Done())
}

func TestLaterStopDoesNotExtendEarlierOne(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	s := m.Start("F4", 0)
	s.Stop(20 * time.Millisecond)
	s.Stop(time.Second)
	render(m, 100*time.Millisecond)
	assert.True(t, s.Done())
}

func TestPendingSourceStoppedBeforeStartNeverSounds(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	s := m.Start("B4", 500*time.Millisecond)
	s.Stop(m.Now())
	buf := render(m, time.Second)
	assert.Zero(t, peak(buf))
	assert.True(t, s.Done())
	assert.Zero(t, m.Active())
}

func TestStopAllFadesEverything(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	for _, p := range []song.Pitch{"C4", "E4", "G4"} {
		m.Start(p, 0)
	}
	m.Start("C5", time.Second)
	render(m, 50*time.Millisecond)
	assert.Equal(t, 4, m.StopAll(m.Now()))
	render(m, 80*time.Millisecond)
	assert.Zero(t, m.Active())
	assert.EqualValues(t, 4, m.Created())
}

func TestRestAndUnmappedPitches(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	assert.Nil(t, m.Start(song.Rest, 0))
	s := m.Start("C8", 0)
	require.NotNil(t, s)
	assert.Equal(t, song.FallbackFrequency, s.freq)
}

func TestMasterGain(t *testing.T) {
	m := NewMixer(testRate, DefaultOptions())
	m.SetGain(-1)
	assert.Zero(t, m.Gain())
	m.Start("A4", 0)
	assert.Zero(t, peak(render(m, 50*time.Millisecond)))
}

func TestParseWaveform(t *testing.T) {
	w, err := ParseWaveform("Triangle")
	require.NoError(t, err)
	assert.Equal(t, WaveTriangle, w)
	w, err = ParseWaveform("")
	require.NoError(t, err)
	assert.Equal(t, WavePiano, w)
	_, err = ParseWaveform("kazoo")
	assert.Error(t, err)
}

func TestWaveformsStayBounded(t *testing.T) {
	for w := WavePiano; w <= WaveSaw; w++ {
		for i := 0; i < 1000; i++ {
			v := w.sample(float64(i)/1000, 0.01)
			if math.Abs(v) > 1.01 {
				t.Fatalf("%s out of range at %d: %f", w, i, v)
			}
		}
	}
}
