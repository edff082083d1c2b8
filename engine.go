// Package piano is a practice engine: it plays a generated note sequence
// with a highlight that follows the audio, supports pause, resume, seek and
// speed changes without drift, and runs a guided learning mode that waits
// for the right key before moving on.
package piano

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/sirupsen/logrus"

	"github.com/ARahim900/Piano-Shaima/internal/clock"
	"github.com/ARahim900/Piano-Shaima/internal/learn"
	"github.com/ARahim900/Piano-Shaima/internal/manual"
	"github.com/ARahim900/Piano-Shaima/internal/progress"
	"github.com/ARahim900/Piano-Shaima/internal/schedule"
	"github.com/ARahim900/Piano-Shaima/internal/song"
	"github.com/ARahim900/Piano-Shaima/internal/tone"
)

// driver names who currently owns the highlight. Switching drivers always
// tears the previous one down first.
type driver int

const (
	driverNone driver = iota
	driverPlan
	driverLearning
	driverManual
)

func (d driver) String() string {
	switch d {
	case driverPlan:
		return "plan"
	case driverLearning:
		return "learning"
	case driverManual:
		return "manual"
	default:
		return "none"
	}
}

// Engine owns the transport state machine. All methods are safe for
// concurrent use. Timer callbacks take the same lock and check an epoch
// token, so a callback that lost a race with a teardown does nothing.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	clk        clock.Clock
	log        logrus.FieldLogger
	newBackend BackendFactory
	liveProbe  func() bool

	mixer    *tone.Mixer
	builder  *schedule.Builder
	manual   *manual.Driver
	matcher  *learn.Matcher
	track    progress.Tracker
	reporter *progress.Reporter

	backend       Backend
	backendPaused bool
	audioErr      error

	state     State
	song      *song.Song
	genErr    error
	highlight Highlight
	driver    driver
	live      bool
	volume    float64
	closed    bool

	learnEpoch uint64
	tapSeq     uint64
	tapPitch   Pitch
	tapTimer   clock.Timer
	doneTimer  clock.Timer
	pulse      Pulse
	pulseTimer clock.Timer

	eventCh   chan Event
	eventChMu sync.Mutex
}

// New creates an Engine in the Idle state. No audio output is opened until
// the first interaction that needs one.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        o.cfg,
		clk:        o.clk,
		log:        o.log,
		newBackend: o.newBackend,
		liveProbe:  o.liveProbe,
		volume:     o.cfg.Volume,
	}
	e.mixer = tone.NewMixer(o.cfg.SampleRate, o.cfg.toneOptions())
	e.mixer.SetGain(o.cfg.Volume)
	e.builder = schedule.NewBuilder(o.clk, e.mixer, o.cfg.Trail, e.onPlanEvent)
	e.manual = manual.New(e.mixer)
	e.track.SetSpeed(o.clk.Now(), o.cfg.DefaultSpeed)
	e.reporter = progress.NewReporter(e.sampleProgress, func(d time.Duration) {
		e.sendEvent(Event{Kind: EventProgress, Elapsed: d})
	})
	return e, nil
}

// Process renders the shared output. The audio backend calls it from its
// own goroutine; it never takes the engine lock.
func (e *Engine) Process(dst []float32) {
	e.mixer.Process(dst)
}

// BeginGeneration discards the current song and everything playing from it
// and enters Loading.
func (e *Engine) BeginGeneration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.resetLocked()
	e.song = nil
	e.matcher = nil
	e.genErr = nil
	e.setStateLocked(Loading)
}

// LoadSong installs s and enters Loaded. A nil song counts as a generation
// that returned nothing usable: Loading moves to Error, any other state
// drops back to Idle.
func (e *Engine) LoadSong(s *Song) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if e.state == Error {
		e.ignored("load")
		return nil
	}
	if s == nil {
		if e.state == Loading {
			e.failLocked(ErrNothingUsable)
			return ErrNothingUsable
		}
		e.resetLocked()
		e.song = nil
		e.matcher = nil
		e.setStateLocked(Idle)
		return ErrNothingUsable
	}
	e.resetLocked()
	e.song = s
	e.matcher = learn.NewMatcher(s)
	e.genErr = nil
	log := e.log.WithFields(logrus.Fields{"song": s.ID(), "title": s.Title(), "notes": s.Len()})
	log.Info("song loaded")
	if n := unmapped(s); n > 0 {
		log.WithField("unmapped", n).Warn("pitches outside C3-B5 will sound as A4")
	}
	e.setStateLocked(Loaded)
	return nil
}

// FailGeneration moves Loading to Error. err is classified as either a
// misconfigured service or a generation that produced nothing usable.
func (e *Engine) FailGeneration(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Loading {
		e.ignored("fail")
		return
	}
	switch {
	case err == nil:
		err = ErrNothingUsable
	case ErrorKind(err) == KindMisconfigured, ErrorKind(err) == KindNothingUsable:
	default:
		err = errors.Join(ErrNothingUsable, err)
	}
	e.failLocked(err)
}

func (e *Engine) failLocked(err error) {
	e.genErr = err
	e.song = nil
	e.matcher = nil
	e.log.WithError(err).WithField("kind", ErrorKind(err)).Warn("generation failed")
	e.setStateLocked(Error)
}

// Play starts or resumes scheduled playback from the stored offset.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || (e.state != Loaded && e.state != Paused) || e.liveLocked() {
		e.ignored("play")
		return
	}
	e.ensureAudioLocked()
	e.claimLocked(driverPlan)
	if !e.replanLocked() {
		return
	}
	e.track.Start(e.clk.Now())
	e.setStateLocked(Playing)
}

// Pause freezes the offset and discards the plan. Resuming builds a fresh
// one from the frozen offset.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Playing {
		e.ignored("pause")
		return
	}
	e.pauseLocked()
}

func (e *Engine) pauseLocked() {
	e.track.Pause(e.clk.Now())
	e.claimLocked(driverNone)
	e.setStateLocked(Paused)
}

// Stop returns to Loaded at offset zero.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || (e.state != Playing && e.state != Paused) {
		e.ignored("stop")
		return
	}
	e.finishLocked()
}

// SetSpeed changes the playback multiplier. While Playing the derived
// position is captured and the plan rebuilt from it, so only the rate of
// later events changes. Values outside (0, MaxSpeed] are rejected.
func (e *Engine) SetSpeed(speed float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if !(speed > 0 && speed <= e.cfg.MaxSpeed) {
		return fault.Wrap(ErrInvalidSpeed,
			fmsg.WithDesc(fmt.Sprintf("speed %v", speed),
				fmt.Sprintf("Speed must be above 0 and at most %v.", e.cfg.MaxSpeed)))
	}
	e.track.SetSpeed(e.clk.Now(), speed)
	if e.state == Playing {
		e.replanLocked()
	}
	return nil
}

// Seek moves playback to offset, clamped to the song. While Playing the
// plan is rebuilt from there; otherwise the next Play starts there.
func (e *Engine) Seek(offset time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.closed:
		return
	case e.state == Playing, e.state == Paused, e.state == Loaded:
	default:
		e.ignored("seek")
		return
	}
	offset = min(max(offset, 0), e.song.End())
	e.track.Seek(e.clk.Now(), offset)
	if e.state == Playing {
		e.replanLocked()
	}
}

// replanLocked builds a plan from the tracker's offset and speed. An empty
// plan means there is nothing left to play: the engine finishes and
// replanLocked reports false.
func (e *Engine) replanLocked() bool {
	plan := e.builder.Build(e.song, e.track.Accumulated(), e.track.Speed())
	if plan.Empty() {
		e.finishLocked()
		return false
	}
	return true
}

// finishLocked is the shared end of stop, song end and replan past the end.
func (e *Engine) finishLocked() {
	e.claimLocked(driverNone)
	e.track.Reset()
	e.setHighlightLocked(Highlight{})
	e.setStateLocked(Loaded)
}

func (e *Engine) onPlanEvent(ev schedule.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Playing || !e.builder.Live(ev.Epoch) {
		return
	}
	if e.enforceLiveLocked() {
		return
	}
	switch ev.Kind {
	case schedule.EventHighlight:
		if ev.Note.IsRest() {
			e.setHighlightLocked(Highlight{})
			return
		}
		e.setHighlightLocked(Highlight{Valid: true, Index: ev.Index, Pitch: ev.Note.Pitch, Start: ev.Note.Start})
	case schedule.EventFinished:
		e.log.WithFields(logrus.Fields{"song": e.songID(), "epoch": ev.Epoch}).Debug("plan finished")
		e.finishLocked()
	}
}

// EnterLearning stops playback and manual notes and puts the cursor on the
// first non-rest note. Songs with nothing to press are refused.
func (e *Engine) EnterLearning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.closed:
		return
	case e.state == Loaded, e.state == Paused, e.state == Playing:
	default:
		e.ignored("enter-learning")
		return
	}
	if e.song.FirstPlayable() >= e.song.Len() {
		e.ignored("enter-learning")
		return
	}
	e.ensureAudioLocked()
	e.claimLocked(driverLearning)
	e.track.Reset()
	e.matcher.Start()
	e.setStateLocked(Learning)
	e.highlightTargetLocked()
}

// ExitLearning returns to Loaded and clears the cursor and highlight.
func (e *Engine) ExitLearning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Learning {
		e.ignored("exit-learning")
		return
	}
	e.claimLocked(driverNone)
	e.setHighlightLocked(Highlight{})
	e.setStateLocked(Loaded)
}

// KeyPress checks p against the learning target. It reports the pulse it
// emitted, or PulseNone when no target was active.
func (e *Engine) KeyPress(p Pitch) PulseKind {
	p = song.ParsePitch(string(p))
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Learning || e.matcher.Done() {
		e.ignored("key-press")
		return PulseNone
	}
	e.ensureAudioLocked()
	return e.pressLocked(p)
}

func (e *Engine) pressLocked(p Pitch) PulseKind {
	out := e.matcher.Press(p)
	switch out.Result {
	case learn.Ignored:
		return PulseNone
	case learn.Incorrect:
		e.pulseLocked(PulseIncorrect, out.Index)
		return PulseIncorrect
	}
	e.tapLocked(out.Note.Pitch)
	e.pulseLocked(PulseCorrect, out.Index)
	if out.Result == learn.Complete {
		e.completeLocked()
	} else {
		e.highlightTargetLocked()
	}
	return PulseCorrect
}

// tapLocked sounds a matched note briefly through the manual driver. A new
// tap cuts the previous one short, so a repeated pitch sounds again.
func (e *Engine) tapLocked(p Pitch) {
	if e.liveLocked() {
		return
	}
	e.stopTapLocked()
	if !e.manual.NoteDown(p) {
		return
	}
	e.sendActiveLocked()
	e.tapPitch = p
	e.tapSeq++
	epoch, seq := e.learnEpoch, e.tapSeq
	e.tapTimer = e.clk.AfterFunc(e.cfg.TapLength, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.learnEpoch != epoch || e.tapSeq != seq {
			return
		}
		e.tapTimer = nil
		e.stopTapLocked()
	})
}

// stopTapLocked releases the sounding tap, if any, and disarms its timer.
func (e *Engine) stopTapLocked() {
	if e.tapTimer != nil {
		e.tapTimer.Stop()
		e.tapTimer = nil
	}
	if e.tapPitch == "" {
		return
	}
	if e.manual.NoteUp(e.tapPitch) {
		e.sendActiveLocked()
	}
	e.tapPitch = ""
}

func (e *Engine) completeLocked() {
	e.log.WithField("song", e.songID()).Info("learning complete")
	e.sendEvent(Event{Kind: EventLearningComplete})
	e.setHighlightLocked(Highlight{})
	epoch := e.learnEpoch
	e.doneTimer = e.clk.AfterFunc(e.cfg.CompletionDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.learnEpoch != epoch || e.state != Learning {
			return
		}
		e.doneTimer = nil
		e.claimLocked(driverNone)
		e.matcher.Reset()
		e.setStateLocked(Loaded)
	})
}

func (e *Engine) pulseLocked(kind PulseKind, index int) {
	e.pulse = Pulse{Kind: kind, Index: index, Seq: e.pulse.Seq + 1}
	e.sendEvent(Event{Kind: EventPulse, Pulse: e.pulse})
	if e.pulseTimer != nil {
		e.pulseTimer.Stop()
	}
	seq := e.pulse.Seq
	e.pulseTimer = e.clk.AfterFunc(e.cfg.PulseLength, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.pulse.Seq != seq {
			return
		}
		e.pulse.Kind = PulseNone
		e.sendEvent(Event{Kind: EventPulse, Pulse: e.pulse})
	})
}

func (e *Engine) highlightTargetLocked() {
	target, ok := e.matcher.Target()
	if !ok {
		e.setHighlightLocked(Highlight{})
		return
	}
	e.setHighlightLocked(Highlight{Valid: true, Index: e.matcher.Cursor(), Pitch: target.Pitch, Start: target.Start})
}

// NoteDown starts a manual note. In Learning it is treated as a key press.
// It is refused while Playing, while Loading and during a live session.
func (e *Engine) NoteDown(p Pitch) {
	p = song.ParsePitch(string(p))
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.state == Learning {
		if !e.matcher.Done() {
			e.ensureAudioLocked()
			e.pressLocked(p)
		}
		return
	}
	if e.state == Playing || e.state == Loading || e.liveLocked() {
		e.ignored("note-down")
		return
	}
	if p.IsRest() || e.manual.Held(p) {
		return
	}
	e.ensureAudioLocked()
	e.claimLocked(driverManual)
	e.manual.NoteDown(p)
	e.sendActiveLocked()
}

// NoteUp releases a held note. Releasing is accepted in every state.
func (e *Engine) NoteUp(p Pitch) {
	p = song.ParsePitch(string(p))
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.manual.NoteUp(p) {
		return
	}
	e.sendActiveLocked()
	if e.driver == driverManual && e.manual.Len() == 0 {
		e.driver = driverNone
	}
}

// SetLiveSession records whether an external live session is capturing
// audio. Starting one pauses playback and silences manual notes.
func (e *Engine) SetLiveSession(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.live == active {
		return
	}
	e.live = active
	e.log.WithField("active", active).Info("live session")
	e.enforceLiveLocked()
}

// enforceLiveLocked silences everything while a live session is active:
// playback pauses, manual notes are released and the output is paused
// until the next interaction that needs sound. It reports whether a session
// is active.
func (e *Engine) enforceLiveLocked() bool {
	if !e.liveLocked() {
		return false
	}
	if e.state == Playing {
		e.pauseLocked()
	}
	e.releaseManualLocked()
	if e.driver == driverManual {
		e.driver = driverNone
	}
	if e.backend != nil && !e.backendPaused {
		e.backend.Pause()
		e.backendPaused = true
	}
	return true
}

// SetVolume sets the master volume in [0, 1].
func (e *Engine) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	e.mixer.SetGain(v)
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Tick is the animation-frame hook: while Playing it pushes an
// EventProgress whenever the derived position moved. It also polls the
// live-session probe, so a session that starts mid-song stops the sound.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.enforceLiveLocked()
	e.mu.Unlock()
	e.reporter.Tick()
}

// RunProgress calls Tick every ProgressInterval until ctx is done. Use it
// instead of Tick when no frame loop drives the engine, not both.
func (e *Engine) RunProgress(ctx context.Context) error {
	return e.reporter.Run(ctx, e.cfg.ProgressInterval)
}

func (e *Engine) sampleProgress() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track.Elapsed(e.clk.Now()), e.state == Playing
}

// Elapsed returns the derived song position.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track.Elapsed(e.clk.Now())
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		State:         e.state,
		Highlight:     e.highlight,
		Active:        e.manual.Active(),
		Elapsed:       e.track.Elapsed(e.clk.Now()),
		Speed:         e.track.Speed(),
		Pulse:         e.pulse,
		GenerationErr: e.genErr,
		AudioErr:      e.audioErr,
		Live:          e.liveLocked(),
		Volume:        e.volume,
	}
	if e.song != nil {
		s.SongID = e.song.ID()
		s.Title = e.song.Title()
	}
	if e.matcher != nil {
		s.Cursor = e.matcher.Cursor()
	}
	return s
}

// Close tears everything down and stops the audio output. The engine
// ignores every call afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.resetLocked()
	if e.pulseTimer != nil {
		e.pulseTimer.Stop()
	}
	e.mixer.StopAll(e.mixer.Now())
	e.setStateLocked(Idle)
	e.closed = true
	if e.backend == nil {
		return nil
	}
	err := e.backend.Stop()
	e.backend = nil
	if err != nil {
		return fault.Wrap(err, fmsg.With("stop audio output"))
	}
	return nil
}

// resetLocked tears down every driver and clears progress and highlight.
func (e *Engine) resetLocked() {
	e.claimLocked(driverNone)
	e.releaseManualLocked()
	e.track.Reset()
	e.setHighlightLocked(Highlight{})
}

// claimLocked hands the highlight to d after stopping the audio and timers
// of whichever driver held it.
func (e *Engine) claimLocked(d driver) {
	if e.driver == d {
		return
	}
	switch e.driver {
	case driverPlan:
		e.builder.Teardown()
	case driverLearning:
		e.learnEpoch++
		e.stopTapLocked()
		if e.doneTimer != nil {
			e.doneTimer.Stop()
			e.doneTimer = nil
		}
		e.releaseManualLocked()
		if e.matcher != nil {
			e.matcher.Stop()
		}
	case driverManual:
		e.releaseManualLocked()
	}
	e.log.WithFields(logrus.Fields{"from": e.driver, "to": d}).Debug("highlight driver")
	e.driver = d
}

func (e *Engine) releaseManualLocked() {
	if e.manual.StopAll() > 0 {
		e.sendActiveLocked()
	}
}

func (e *Engine) sendActiveLocked() {
	e.sendEvent(Event{Kind: EventActiveNotes, Active: e.manual.Active()})
}

func (e *Engine) setStateLocked(to State) {
	from := e.state
	if from == to {
		return
	}
	e.state = to
	e.log.WithFields(logrus.Fields{
		"from":  from,
		"to":    to,
		"song":  e.songID(),
		"epoch": e.builder.Epoch(),
	}).Debug("transport transition")
	e.sendEvent(Event{Kind: EventState, State: to})
}

func (e *Engine) setHighlightLocked(h Highlight) {
	if h == e.highlight {
		return
	}
	e.highlight = h
	e.sendEvent(Event{Kind: EventHighlight, Highlight: h})
}

// ensureAudioLocked opens the output on first use. A failure is recorded
// and reported once; the engine then keeps running without sound.
func (e *Engine) ensureAudioLocked() {
	if e.closed || e.audioErr != nil || e.newBackend == nil {
		return
	}
	if e.backend != nil {
		if e.backendPaused {
			e.backend.Play()
			e.backendPaused = false
		}
		return
	}
	b, err := e.newBackend(e.cfg.SampleRate, e)
	if err != nil {
		e.audioErr = fault.Wrap(err,
			fmsg.WithDesc("open audio output", "Audio playback is not available on this device."),
			ftag.With(KindUnavailable))
		e.log.WithError(err).Warn("audio output unavailable")
		// Nothing will pull from the mixer, so stop feeding it.
		e.builder.SetMixer(nil)
		e.manual.SetMixer(nil)
		e.sendEvent(Event{Kind: EventAudioUnavailable, Err: e.audioErr})
		return
	}
	e.backend = b
	b.Play()
}

func (e *Engine) liveLocked() bool {
	return e.live || (e.liveProbe != nil && e.liveProbe())
}

func (e *Engine) ignored(op string) {
	e.log.WithFields(logrus.Fields{"op": op, "state": e.state}).Debug("ignored in current state")
}

func (e *Engine) songID() string {
	if e.song == nil {
		return ""
	}
	return e.song.ID()
}

// unmapped counts the sounding notes of s outside the frequency table.
func unmapped(s *Song) int {
	n := 0
	for _, note := range s.Notes() {
		if !note.IsRest() && !song.Mapped(note.Pitch) {
			n++
		}
	}
	return n
}
