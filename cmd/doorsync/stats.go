package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

// statsView is the machine-format shape for 'doorsync stats'.
type statsView struct {
	Customers      int `json:"customers" yaml:"customers" toml:"customers"`
	Doors          int `json:"doors" yaml:"doors" toml:"doors"`
	Inspections    int `json:"inspections" yaml:"inspections" toml:"inspections"`
	UnsyncedPhotos int `json:"unsynced_photos" yaml:"unsynced_photos" toml:"unsynced_photos"`
	PendingUploads int `json:"pending_uploads" yaml:"pending_uploads" toml:"pending_uploads"`
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "data",
	Short:   "Show local collection counts",
	Long: `Show how many customers, doors, inspections, and unsynced photos the
local store holds.

Example usage:
  doorsync stats
  doorsync stats --format yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		st, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		engine := sync.NewLocal(st, sync.Config{})

		stats, err := engine.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stats: %v\n", err)
			os.Exit(1)
		}

		if format != formatText {
			view := statsView{
				Customers:      stats.Customers,
				Doors:          stats.Doors,
				Inspections:    stats.Inspections,
				UnsyncedPhotos: stats.Photos,
				PendingUploads: stats.PendingUploads,
			}
			if err := renderOutput(view, format); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		fmt.Printf("\n%s Local Store\n\n", ui.RenderAccent("🗄"))
		fmt.Printf("  %s %d\n", ui.RenderMuted("Customers:      "), stats.Customers)
		fmt.Printf("  %s %d\n", ui.RenderMuted("Doors:          "), stats.Doors)
		fmt.Printf("  %s %d\n", ui.RenderMuted("Inspections:    "), stats.Inspections)
		fmt.Printf("  %s %d\n", ui.RenderMuted("Unsynced photos:"), stats.Photos)
		fmt.Printf("  %s %s\n", ui.RenderMuted("Pending uploads:"), renderPending(stats.PendingUploads))
		fmt.Println()
	},
}

func init() {
	statsCmd.Flags().StringP("format", "f", formatText, "Output format: text, json, yaml, or toml")

	rootCmd.AddCommand(statsCmd)
}
