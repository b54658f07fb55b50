// Package main provides the entry point for the digitize command.
package main

import (
	"fmt"
	"log"
	"os"

	"graph-digitizer/internal/config"
	"graph-digitizer/internal/version"

	"github.com/spf13/cobra"
)

var prefsPath string

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "digitize",
		Short: "Extract numeric data from images of plotted curves",
		Long: `digitize reads a job file describing a plot image, its axis calibration
and the curves to extract, traces each curve by color and writes the
resulting (x, y) samples as CSV, XLSX or JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Preferences file (default: user config dir)")

	rootCmd.AddCommand(newInitCmd(), newCalibrateCmd(), newAddCmd(), newSnapCmd(), newTraceCmd(), newConvertCmd(), newVersionCmd())
	return rootCmd
}

func loadPrefs() *config.Prefs {
	if prefsPath != "" {
		return config.LoadFrom(prefsPath)
	}
	return config.Load()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
