package piano

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSongCoversWholePlayback(t *testing.T) {
	cfg := DefaultConfig()
	samples, err := RenderSong(scenarioSong(), cfg, 1)
	require.NoError(t, err)
	frames := len(samples) / 2
	want := int(math.Round((1500*time.Millisecond + cfg.Trail).Seconds() * float64(cfg.SampleRate)))
	assert.Equal(t, want, frames)

	rms := func(from, to time.Duration) float64 {
		a := int(from.Seconds()*float64(cfg.SampleRate)) * 2
		b := int(to.Seconds()*float64(cfg.SampleRate)) * 2
		var sum float64
		for _, v := range samples[a:b] {
			sum += float64(v) * float64(v)
		}
		return math.Sqrt(sum / float64(b-a))
	}
	assert.Greater(t, rms(100*time.Millisecond, 400*time.Millisecond), 0.01, "C4 should sound")
	assert.Less(t, rms(600*time.Millisecond, 950*time.Millisecond), 1e-4, "rest should be silent")
	assert.Greater(t, rms(1100*time.Millisecond, 1400*time.Millisecond), 0.01, "D4 should sound")
	assert.Less(t, rms(1600*time.Millisecond, 2000*time.Millisecond), 1e-4, "trail should be silent")
}

func TestRenderSongAtDoubleSpeedIsShorter(t *testing.T) {
	cfg := DefaultConfig()
	normal, err := RenderSong(scenarioSong(), cfg, 1)
	require.NoError(t, err)
	fast, err := RenderSong(scenarioSong(), cfg, 2)
	require.NoError(t, err)
	assert.Less(t, len(fast), len(normal))
}

func TestRenderEmptySong(t *testing.T) {
	samples, err := RenderSong(NewSong("", nil), DefaultConfig(), 1)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestEncodeWAVHeader(t *testing.T) {
	wav := EncodeWAVFloat32LE([]float32{0.5, -0.5}, 48000, 2)
	require.Len(t, wav, 44+8)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.EqualValues(t, 3, binary.LittleEndian.Uint16(wav[20:]))
	assert.EqualValues(t, 48000, binary.LittleEndian.Uint32(wav[24:]))
	assert.EqualValues(t, 8, binary.LittleEndian.Uint32(wav[40:]))
	assert.Equal(t, float32(-0.5), math.Float32frombits(binary.LittleEndian.Uint32(wav[48:])))
}
