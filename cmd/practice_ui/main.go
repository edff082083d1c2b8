package main

import (
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	piano "github.com/ARahim900/Piano-Shaima"
)

var (
	flagConfig   string
	flagLogLevel string
	flagMIDI     bool
	flagPort     string

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:          "practice_ui [song.json]",
	Short:        "Windowed practice player with an on-screen keyboard",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level: trace|debug|info|warn|error")
	rootCmd.Flags().BoolVar(&flagMIDI, "midi", false, "also take keys from a MIDI input")
	rootCmd.Flags().StringVar(&flagPort, "port", "", "MIDI input name (substring match)")
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(flagLogLevel)
	if err != nil {
		return fault.Wrap(err, fmsg.With("parse --log-level"))
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := piano.DefaultConfig()
	if flagConfig != "" {
		if cfg, err = piano.LoadConfig(flagConfig); err != nil {
			return err
		}
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	g, err := newGame(cfg, path)
	if err != nil {
		return err
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("piano practice")
	return ebiten.RunGame(g)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
