package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	piano "github.com/ARahim900/Piano-Shaima"
	"github.com/ARahim900/Piano-Shaima/internal/keyinput"
)

const (
	windowW    = 1100
	windowH    = 640
	minWindowW = 900
	minWindowH = 560

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	minSpeed  = 0.25
	speedStep = 0.25
	seekStep  = 2 * time.Second
)

type game struct {
	engine *piano.Engine
	events <-chan piano.Event
	cfg    piano.Config
	layout *keyinput.Layout
	midi   *keyinput.MIDIListener

	path  string
	song  *piano.Song
	snap  piano.Snapshot
	keys  []ebiten.Key
	downs map[ebiten.Key]piano.Pitch

	// speed is what the slider shows; the engine catches up once the
	// slider has been still for a moment.
	speedMu     sync.Mutex
	speed       float64
	applySpeed  func(func())
	dragging    int // 0=none, 1=volume, 2=speed
	status      string
	statusErr   bool
	audioFailed bool

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(cfg piano.Config, path string) (*game, error) {
	e, err := piano.New(piano.WithConfig(cfg), piano.WithLogger(log))
	if err != nil {
		return nil, err
	}
	g := &game{
		engine:     e,
		events:     e.Watch(),
		cfg:        cfg,
		layout:     keyinput.NewLayout(),
		path:       path,
		downs:      make(map[ebiten.Key]piano.Pitch),
		speed:      cfg.DefaultSpeed,
		applySpeed: debounce.New(150 * time.Millisecond),
		status:     "Ready",
		textCache:  make(map[string]*ebiten.Image, 256),
		viewW:      windowW,
		viewH:      windowH,
	}
	if flagMIDI {
		g.midi, err = keyinput.ListenMIDI(flagPort, log, func(p piano.Pitch, down bool) {
			if down {
				e.NoteDown(p)
			} else {
				e.NoteUp(p)
			}
		})
		if err != nil {
			log.WithError(err).Warn("continuing without midi")
		}
	}
	g.load()
	return g, nil
}

// load reads the song file through the engine's generation lifecycle so a
// bad file shows up as the Error state.
func (g *game) load() {
	g.engine.BeginGeneration()
	if g.path == "" {
		g.song = demoSong()
		_ = g.engine.LoadSong(g.song)
		g.setStatus("Loaded built-in melody")
		return
	}
	s, err := readSong(g.path)
	if err != nil {
		g.song = nil
		g.engine.FailGeneration(err)
		g.setError(err.Error())
		return
	}
	g.song = s
	if err := g.engine.LoadSong(s); err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus("Loaded " + filepath.Base(g.path))
}

func readSong(path string) (*piano.Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return piano.DecodeSong(f)
}

func demoSong() *piano.Song {
	const beat = 350 * time.Millisecond
	var notes []piano.Note
	at := time.Duration(0)
	for _, name := range strings.Fields("E4 D4 C4 D4 E4 E4 E4 rest D4 D4 D4 rest E4 G4 G4") {
		notes = append(notes, piano.Note{Pitch: piano.ParsePitch(name), Duration: beat, Start: at})
		at += beat
	}
	return piano.NewSong("Mary", notes)
}

func (g *game) Update() error {
	g.engine.Tick()
	g.pollEvents()
	g.handleKeys()
	g.handleMouse()
	g.snap = g.engine.Snapshot()
	return nil
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	outsideW = max(outsideW, minWindowW)
	outsideH = max(outsideH, minWindowH)
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *game) Close() {
	if g.midi != nil {
		_ = g.midi.Close()
	}
	_ = g.engine.Close()
}

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				return
			}
			switch ev.Kind {
			case piano.EventState:
				if ev.State == piano.Loaded && !g.statusErr {
					g.setStatus("Ready")
				}
			case piano.EventLearningComplete:
				g.setStatus("Learning complete. Well done!")
			case piano.EventAudioUnavailable:
				g.audioFailed = true
				g.setError("No audio output: " + ev.Err.Error())
			}
		default:
			return
		}
	}
}

func (g *game) handleKeys() {
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		switch k {
		case ebiten.KeySpace:
			g.togglePlayPause()
		case ebiten.KeyEscape:
			g.stop()
		case ebiten.KeyEnter:
			g.toggleLearning()
		case ebiten.KeyR:
			g.load()
		case ebiten.KeyZ:
			g.setStatus(fmt.Sprintf("Octave %d", g.layout.Shift(-1)))
		case ebiten.KeyX:
			g.setStatus(fmt.Sprintf("Octave %d", g.layout.Shift(1)))
		case ebiten.KeyArrowLeft:
			g.engine.Seek(g.engine.Elapsed() - seekStep)
		case ebiten.KeyArrowRight:
			g.engine.Seek(g.engine.Elapsed() + seekStep)
		case ebiten.KeyArrowUp:
			g.nudgeSpeed(speedStep)
		case ebiten.KeyArrowDown:
			g.nudgeSpeed(-speedStep)
		default:
			if p, ok := g.layout.Pitch(k.String()); ok {
				g.downs[k] = p
				g.engine.NoteDown(p)
			}
		}
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		if p, ok := g.downs[k]; ok {
			delete(g.downs, k)
			g.engine.NoteUp(p)
		}
	}
}

func (g *game) togglePlayPause() {
	switch g.engine.State() {
	case piano.Playing:
		g.engine.Pause()
		g.setStatus("Paused")
	case piano.Loaded, piano.Paused:
		g.engine.Play()
		if g.engine.State() == piano.Playing {
			g.setStatus("Playing")
		}
	}
}

func (g *game) stop() {
	switch g.engine.State() {
	case piano.Learning:
		g.engine.ExitLearning()
	default:
		g.engine.Stop()
	}
}

func (g *game) toggleLearning() {
	if g.engine.State() == piano.Learning {
		g.engine.ExitLearning()
		g.setStatus("Ready")
		return
	}
	g.engine.EnterLearning()
	if g.engine.State() == piano.Learning {
		g.setStatus("Play the highlighted key")
	}
}

func (g *game) currentSpeed() float64 {
	g.speedMu.Lock()
	defer g.speedMu.Unlock()
	return g.speed
}

func (g *game) setSpeed(v float64) {
	v = clamp(v, minSpeed, g.cfg.MaxSpeed)
	g.speedMu.Lock()
	g.speed = v
	g.speedMu.Unlock()
	g.applySpeed(func() {
		if err := g.engine.SetSpeed(v); err != nil {
			log.WithError(err).Warn("speed unchanged")
		}
	})
	g.setStatus(fmt.Sprintf("Speed %.2fx", v))
}

func (g *game) nudgeSpeed(delta float64) {
	g.setSpeed(g.currentSpeed() + delta)
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.play):
			g.togglePlayPause()
		case pointInRect(mx, my, l.stop):
			g.stop()
		case pointInRect(mx, my, l.learn):
			g.toggleLearning()
		case pointInRect(mx, my, l.volume):
			g.dragging = 1
		case pointInRect(mx, my, l.speed):
			g.dragging = 2
		case pointInRect(mx, my, l.progress):
			g.seekFromMouse(mx, l.progress)
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = 0
	}
	switch g.dragging {
	case 1:
		v := sliderValue(mx, l.volume)
		g.engine.SetVolume(v)
		g.setStatus(fmt.Sprintf("Volume %d%%", int(v*100+0.5)))
	case 2:
		frac := sliderValue(mx, l.speed)
		g.setSpeed(minSpeed + frac*(g.cfg.MaxSpeed-minSpeed))
	}
}

func (g *game) seekFromMouse(mx int, rect image.Rectangle) {
	if g.song == nil {
		return
	}
	frac := clamp(float64(mx-rect.Min.X)/float64(max(1, rect.Dx())), 0, 1)
	g.engine.Seek(time.Duration(frac * float64(g.song.End())))
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	if g.audioFailed && g.statusErr {
		return
	}
	g.status = msg
	g.statusErr = false
}
