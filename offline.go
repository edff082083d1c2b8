package piano

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ARahim900/Piano-Shaima/internal/clock"
	"github.com/ARahim900/Piano-Shaima/internal/schedule"
	"github.com/ARahim900/Piano-Shaima/internal/tone"
)

// RenderSong renders a whole playback of s at speed, trail included, to
// interleaved stereo float32 samples. It uses the same scheduling path as
// live playback against a clock that never fires.
func RenderSong(s *Song, cfg Config, speed float64) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if speed <= 0 {
		speed = cfg.DefaultSpeed
	}
	mixer := tone.NewMixer(cfg.SampleRate, cfg.toneOptions())
	mixer.SetGain(cfg.Volume)
	b := schedule.NewBuilder(clock.NewFake(time.Time{}), mixer, cfg.Trail, nil)
	plan := b.Build(s, 0, speed)
	if plan.Empty() {
		return nil, nil
	}
	out := make([]float32, mixer.FramesFor(plan.End())*2)
	const block = 1024 * 2
	for i := 0; i < len(out); i += block {
		mixer.Process(out[i:min(i+block, len(out))])
	}
	b.Teardown()
	return out, nil
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
