package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at release time via -ldflags.
var version = "0.3.0-dev"

// cfgFile and dataDirFlag are set by persistent flags and consumed by
// loadConfig.
var (
	cfgFile     string
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "doorsync",
	Short: "Offline-first door inspection data for field work",
	Long: `doorsync keeps a field device's inspection data usable without
connectivity.

Download the working set (customers, doors, inspections) in the morning,
record inspections and photos offline during the day, and upload pending
changes in the evening or automatically whenever connectivity returns.

A typical day:
  doorsync download                              # morning, on wifi
  doorsync create --door door-17 --inspector mk  # in the field
  doorsync photo add <inspection-id> hinge.jpg
  doorsync upload                                # evening, back online

Run 'doorsync daemon' instead to keep a background process syncing
opportunistically and importing photos dropped into an inbox directory.`,
	Version: version,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.doorsync)")
}
