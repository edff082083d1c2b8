package main

import (
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	piano "github.com/ARahim900/Piano-Shaima"
)

var flagOut string

var renderCmd = &cobra.Command{
	Use:   "render [song.json|-]",
	Short: "Render a song to a WAV file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSong(args)
		if err != nil {
			return err
		}
		samples, err := piano.RenderSong(s, cfg, speedOrDefault())
		if err != nil {
			return err
		}
		wav := piano.EncodeWAVFloat32LE(samples, cfg.SampleRate, 2)
		if err := os.WriteFile(flagOut, wav, 0o644); err != nil {
			return fault.Wrap(err, fmsg.With("write "+flagOut))
		}
		log.WithFields(logrus.Fields{
			"file":   flagOut,
			"frames": len(samples) / 2,
			"bytes":  len(wav),
		}).Info("rendered")
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&flagOut, "out", "o", "song.wav", "output WAV path")
	rootCmd.AddCommand(renderCmd)
}
