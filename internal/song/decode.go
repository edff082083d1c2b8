package song

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// wireNote is the shape produced by the note generation service. Both the
// explicit millisecond field names and the shorter legacy names are accepted.
type wireNote struct {
	Pitch       *string  `json:"pitch"`
	Note        *string  `json:"note"`
	DurationMs  *float64 `json:"durationMs"`
	Duration    *float64 `json:"duration"`
	StartTimeMs *float64 `json:"startTimeMs"`
	StartTime   *float64 `json:"startTime"`
}

type wireSong struct {
	Title string     `json:"title"`
	Notes []wireNote `json:"notes"`
}

// Decode reads a song from JSON. The input is either a bare array of notes or
// an object with "title" and "notes".
func Decode(r io.Reader) (*Song, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("read song"))
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fault.New("empty song document", ftag.With(ftag.InvalidArgument))
	}

	var doc wireSong
	if raw[0] == '[' {
		err = json.Unmarshal(raw, &doc.Notes)
	} else {
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("decode song", "The note sequence is not valid JSON."),
			ftag.With(ftag.InvalidArgument))
	}

	notes := make([]Note, 0, len(doc.Notes))
	for i, wn := range doc.Notes {
		n, err := wn.note()
		if err != nil {
			return nil, fault.Wrap(err,
				fmsg.With(fmt.Sprintf("note %d", i)),
				ftag.With(ftag.InvalidArgument))
		}
		notes = append(notes, n)
	}
	return New(doc.Title, notes), nil
}

func (w wireNote) note() (Note, error) {
	name := firstString(w.Pitch, w.Note)
	dur, ok := firstFloat(w.DurationMs, w.Duration)
	if !ok {
		return Note{}, fault.New("missing duration")
	}
	if dur <= 0 || math.IsNaN(dur) || math.IsInf(dur, 0) {
		return Note{}, fault.New(fmt.Sprintf("duration must be positive, got %v", dur))
	}
	start, _ := firstFloat(w.StartTimeMs, w.StartTime)
	if start < 0 || math.IsNaN(start) || math.IsInf(start, 0) {
		return Note{}, fault.New(fmt.Sprintf("start time must not be negative, got %v", start))
	}
	return Note{
		Pitch:    ParsePitch(name),
		Duration: millis(dur),
		Start:    millis(start),
	}, nil
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}

func firstFloat(vals ...*float64) (float64, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}
