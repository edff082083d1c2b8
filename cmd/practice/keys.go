package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ARahim900/Piano-Shaima/internal/keyinput"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List MIDI inputs and the computer-keyboard layout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports := keyinput.Ports()
		fmt.Println("MIDI inputs:")
		if len(ports) == 0 {
			fmt.Println("  (none)")
		}
		for i, p := range ports {
			fmt.Printf("  %d: %s\n", i, p)
		}

		layout := keyinput.NewLayout()
		fmt.Printf("\nKeyboard (octave %d):\n", layout.Octave())
		for _, k := range layout.Keys() {
			p, _ := layout.Pitch(k)
			fmt.Printf("  %-9s %s\n", k, p)
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
