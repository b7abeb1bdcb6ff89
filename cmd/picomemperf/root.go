package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "picomemperf",
	Short: "PicoMemPerf brings up a modeled QMI PSRAM and benchmarks the memory map.",
	Long: `PicoMemPerf models the external-memory bring-up of an RP2350-class ` +
		`board: it drives the QMI direct-mode protocol against a modeled quad ` +
		`PSRAM chip, programs the persistent access formats, then measures ` +
		`bandwidth over SRAM, ROM, and the cached and uncached PSRAM windows.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
