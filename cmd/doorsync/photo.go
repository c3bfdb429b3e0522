package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

var photoCmd = &cobra.Command{
	Use:     "photo",
	GroupID: "data",
	Short:   "Manage inspection photos",
}

var photoAddCmd = &cobra.Command{
	Use:   "add <inspection-id> <file>",
	Short: "Attach a photo to an inspection",
	Long: `Attach a photo file to an inspection.

The photo bytes are stored locally and queued for the next upload. A
daemon running with a photo inbox does the same automatically for files
dropped into <inbox>/<inspection-id>/.

Example usage:
  doorsync photo add 0191f3a2-7c1e-7b42-a5d8-3f9e12ab34cd hinge.jpg`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		inspectionID := args[0]
		path := args[1]

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			os.Exit(1)
		}

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

		engine := sync.NewLocal(st, sync.Config{PhotoBucket: cfg.PhotoBucket})

		id, err := engine.AddPhotoToInspection(context.Background(), inspectionID, filepath.Base(path), data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error adding photo: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Added photo %s (%d bytes) to inspection %s\n",
			ui.RenderPass("✓"), filepath.Base(path), len(data), inspectionID)
		fmt.Printf("   Photo id: %s\n", id)
	},
}

func init() {
	photoCmd.AddCommand(photoAddCmd)
	rootCmd.AddCommand(photoCmd)
}
