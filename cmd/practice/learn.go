package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	piano "github.com/ARahim900/Piano-Shaima"
	"github.com/ARahim900/Piano-Shaima/internal/keyinput"
)

var (
	flagMIDI bool
	flagPort string
)

var learnCmd = &cobra.Command{
	Use:   "learn [song.json|-]",
	Short: "Walk through a song one key at a time",
	Long: `learn highlights the next note and waits until it is played.
Keys come from a MIDI keyboard with --midi, otherwise from stdin as pitch
names ("C4", "F#3") or computer-keyboard letters (a w s e d ...).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().BoolVar(&flagMIDI, "midi", false, "read keys from a MIDI input")
	learnCmd.Flags().StringVar(&flagPort, "port", "", "MIDI input name (substring match, default first input)")
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	s, err := loadSong(args)
	if err != nil {
		return err
	}
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	events := e.Watch()
	if err := e.LoadSong(s); err != nil {
		return err
	}

	if flagMIDI {
		l, err := keyinput.ListenMIDI(flagPort, log, func(p piano.Pitch, down bool) {
			if down {
				e.NoteDown(p)
			} else {
				e.NoteUp(p)
			}
		})
		if err != nil {
			return err
		}
		defer l.Close()
		fmt.Printf("listening on %s\n", l.Name())
	} else {
		go readKeys(e)
	}

	e.EnterLearning()
	if e.State() != piano.Learning {
		return fault.New("nothing to learn", fmsg.WithDesc("nothing to learn",
			fmt.Sprintf("%q has no notes to press.", s.Title())))
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return printLearning(ctx, events)
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func printLearning(ctx context.Context, events <-chan piano.Event) error {
	// The queue still holds the load transition; wait for Learning first.
	learning := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Kind {
			case piano.EventHighlight:
				if ev.Highlight.Valid {
					fmt.Printf("next: %s\n", ev.Highlight.Pitch)
				}
			case piano.EventPulse:
				switch ev.Pulse.Kind {
				case piano.PulseCorrect:
					fmt.Println("  ✓")
				case piano.PulseIncorrect:
					fmt.Println("  ✗ try again")
				}
			case piano.EventLearningComplete:
				fmt.Println("well done!")
			case piano.EventState:
				if ev.State == piano.Learning {
					learning = true
				} else if learning {
					return nil
				}
			case piano.EventAudioUnavailable:
				log.WithError(ev.Err).Warn("learning without sound")
			}
		}
	}
}

// readKeys feeds stdin to the engine line by line.
func readKeys(e *piano.Engine) {
	layout := keyinput.NewLayout()
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		pressWords(e, layout, sc.Text())
	}
}

// pressWords presses one key per word. Words are tried as computer-keyboard
// letters first, then as pitch names. Learning taps release themselves, so
// no NoteUp follows.
func pressWords(e *piano.Engine, layout *keyinput.Layout, line string) {
	for _, word := range strings.Fields(line) {
		p, ok := layout.Pitch(word)
		if !ok {
			p = piano.ParsePitch(word)
		}
		e.NoteDown(p)
	}
}
