package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	piano "github.com/ARahim900/Piano-Shaima"
)

var (
	flagConfig   string
	flagLogLevel string
	flagSpeed    float64

	log = logrus.New()
	cfg = piano.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:          "practice",
	Short:        "Play and practise generated note sequences",
	Long:         `practice plays a note sequence with a moving highlight, or walks through it key by key in learning mode.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(flagLogLevel)
		if err != nil {
			return fault.Wrap(err, fmsg.With("parse --log-level"))
		}
		log.SetLevel(level)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if flagConfig != "" {
			loaded, err := piano.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().Float64Var(&flagSpeed, "speed", 0, "speed multiplier (default from config)")
}

func newEngine(opts ...piano.Option) (*piano.Engine, error) {
	base := []piano.Option{piano.WithConfig(cfg), piano.WithLogger(log)}
	return piano.New(append(base, opts...)...)
}

// loadSong reads a song document from path ("-" for stdin). With no path
// it returns a short built-in melody.
func loadSong(args []string) (*piano.Song, error) {
	if len(args) == 0 {
		return demoSong(), nil
	}
	var r io.Reader
	if args[0] == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fault.Wrap(err, fmsg.WithDesc("open song", "Could not open "+args[0]+"."))
		}
		defer f.Close()
		r = f
	}
	return piano.DecodeSong(r)
}

func demoSong() *piano.Song {
	const beat = 400 * time.Millisecond
	var notes []piano.Note
	at := time.Duration(0)
	for _, name := range strings.Fields("C4 C4 G4 G4 A4 A4 G4 rest F4 F4 E4 E4 D4 D4 C4") {
		notes = append(notes, piano.Note{Pitch: piano.ParsePitch(name), Duration: beat, Start: at})
		at += beat
	}
	return piano.NewSong("Twinkle", notes)
}

func speedOrDefault() float64 {
	if flagSpeed > 0 {
		return flagSpeed
	}
	return cfg.DefaultSpeed
}
