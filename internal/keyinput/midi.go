package keyinput

import (
	"strings"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/ARahim900/Piano-Shaima/internal/song"
)

// NoteFunc receives every note-on (down=true) and note-off from a device.
type NoteFunc func(p song.Pitch, down bool)

// Ports lists the MIDI inputs offered by the registered driver. A driver
// must be registered by a blank import in the main package.
func Ports() []string {
	ins := midi.GetInPorts()
	out := make([]string, 0, len(ins))
	for _, in := range ins {
		out = append(out, in.String())
	}
	return out
}

// MIDIListener forwards note messages from one input port.
type MIDIListener struct {
	mu     sync.Mutex
	in     drivers.In
	stopFn func()
	log    logrus.FieldLogger
}

// ListenMIDI opens the first input whose name contains port
// (case-insensitive), or the first input at all when port is empty.
func ListenMIDI(port string, log logrus.FieldLogger, fn NoteFunc) (*MIDIListener, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	in, err := findPort(port)
	if err != nil {
		return nil, err
	}
	l := &MIDIListener{in: in, log: log.WithField("device", in.String())}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			if p, ok := FromMIDI(key); ok {
				fn(p, true)
			}
		case msg.GetNoteEnd(&ch, &key):
			if p, ok := FromMIDI(key); ok {
				fn(p, false)
			}
		}
	}, midi.HandleError(func(listenErr error) {
		l.log.WithError(listenErr).Warn("midi: listener error")
	}))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("listen to midi input"))
	}
	l.stopFn = stop
	l.log.Info("midi: connected")
	return l, nil
}

// Name returns the device name.
func (l *MIDIListener) Name() string { return l.in.String() }

// Close stops listening and closes the port. Closing twice is harmless.
func (l *MIDIListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopFn == nil {
		return nil
	}
	l.stopFn()
	l.stopFn = nil
	if err := l.in.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close midi input"))
	}
	return nil
}

func findPort(name string) (drivers.In, error) {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		return nil, fault.New("no midi inputs", ftag.With(ftag.NotFound),
			fmsg.WithDesc("no midi inputs", "No MIDI input device is connected."))
	}
	if name == "" {
		return ins[0], nil
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return in, nil
		}
	}
	return nil, fault.New("midi input not found", ftag.With(ftag.NotFound),
		fmsg.WithDesc("midi input "+name+" not found", "No MIDI input matches \""+name+"\"."))
}
