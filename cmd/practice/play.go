package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	piano "github.com/ARahim900/Piano-Shaima"
)

var flagFrom time.Duration

var playCmd = &cobra.Command{
	Use:   "play [song.json|-]",
	Short: "Play a song with a moving highlight",
	Long: `play plays the song once and prints each highlighted note.
While playing, type a line on stdin to control it:
  p  pause or resume
  s  stop
  +  faster
  -  slower`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().DurationVar(&flagFrom, "from", 0, "start offset into the song")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
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
	if err := e.SetSpeed(speedOrDefault()); err != nil {
		return err
	}
	e.Seek(flagFrom)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	e.Play()
	if e.State() != piano.Playing {
		log.WithField("from", flagFrom).Info("nothing to play")
		return nil
	}
	go readControls(e)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.RunProgress(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return printPlayback(ctx, events)
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// printPlayback prints highlights until playback returns to Loaded.
func printPlayback(ctx context.Context, events <-chan piano.Event) error {
	started := false
	var last time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Kind {
			case piano.EventState:
				fmt.Printf("[%s]\n", ev.State)
				switch ev.State {
				case piano.Playing:
					started = true
				case piano.Loaded:
					if started {
						return nil
					}
				}
			case piano.EventHighlight:
				if ev.Highlight.Valid {
					fmt.Printf("  %3d  %-4s @ %v\n", ev.Highlight.Index, ev.Highlight.Pitch, ev.Highlight.Start)
				}
			case piano.EventProgress:
				if ev.Elapsed-last >= time.Second {
					last = ev.Elapsed.Truncate(time.Second)
					log.WithField("elapsed", last).Debug("progress")
				}
			case piano.EventAudioUnavailable:
				log.WithError(ev.Err).Warn("playing without sound")
			}
		}
	}
}

func readControls(e *piano.Engine) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case "p":
			if e.State() == piano.Playing {
				e.Pause()
			} else {
				e.Play()
			}
		case "s":
			e.Stop()
		case "+":
			adjustSpeed(e, 0.25)
		case "-":
			adjustSpeed(e, -0.25)
		}
	}
}

func adjustSpeed(e *piano.Engine, delta float64) {
	speed := e.Snapshot().Speed + delta
	if err := e.SetSpeed(speed); err != nil {
		log.WithError(err).Warn("speed unchanged")
		return
	}
	log.WithField("speed", speed).Info("speed changed")
}
