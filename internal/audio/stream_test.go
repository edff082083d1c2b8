package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rampSource struct{ calls int }

func (s *rampSource) Process(dst []float32) {
	s.calls++
	for i := range dst {
		dst[i] = float32(i) / 10
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	p := make([]byte, 8*3+5)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, 1, src.calls)
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		assert.InDelta(t, float64(i)/10, float64(got), 1e-6)
	}
}

func TestStreamReaderShortBuffer(t *testing.T) {
	src := &rampSource{}
	n, err := NewStreamReader(src).Read(make([]byte, 7))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, src.calls)
}

func TestErrUnavailableIsTagged(t *testing.T) {
	assert.Equal(t, Unavailable, ftag.Get(ErrUnavailable))
}
