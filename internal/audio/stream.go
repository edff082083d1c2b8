package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Unavailable tags errors raised when no audio output can be created at all.
const Unavailable ftag.Kind = "UNAVAILABLE"

// ErrUnavailable is the cause of every Unavailable error.
var ErrUnavailable = fault.New("audio output unavailable", ftag.With(Unavailable))

// SampleSource fills dst with interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the float32 little-endian byte
// stream expected by the audio device.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Player streams a SampleSource to the shared device context.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

// sharedAudioContext creates the process-wide context on first use. Some
// platforms refuse to open audio before a user gesture, so callers defer
// this until the first interaction.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		defer func() {
			if r := recover(); r != nil {
				audioContextErr = fault.Wrap(ErrUnavailable, fmsg.With(fmt.Sprint(r)))
			}
		}()
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fault.New(fmt.Sprintf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate),
			ftag.With(ftag.InvalidArgument))
	}
	return audioContext, nil
}

// NewPlayer opens (or reuses) the device context and attaches source to it.
// The player starts paused.
func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("create audio player"), ftag.With(Unavailable))
	}
	// Keep device latency near one animation frame so scheduled tones line
	// up with highlight timers.
	pl.SetBufferSize(20 * time.Millisecond)
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns how much audio the listener has actually heard.
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close audio player"))
	}
	return p.reader.Close()
}
