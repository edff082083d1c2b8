package main

import (
	"os"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
