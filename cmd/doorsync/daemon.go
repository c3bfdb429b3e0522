package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fieldline/doorsync/internal/daemon"
	"github.com/fieldline/doorsync/internal/dashboard"
	"github.com/fieldline/doorsync/internal/remote"
	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "sync",
	Short:   "Run the background sync daemon",
	Long: `Run doorsync as a long-lived background process.

The daemon uploads pending changes automatically whenever connectivity
allows, watches a photo inbox directory, and optionally serves the
real-time dashboard.

Photos dropped into <inbox>/<inspection-id>/ are imported into the
local store, queued for upload, and removed from the inbox.

Example usage:
  doorsync daemon
  doorsync daemon --interval 1m --inbox /camera/export
  doorsync daemon --dashboard-port 8080
  doorsync daemon --log-file ~/.doorsync/daemon.log`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		inbox, _ := cmd.Flags().GetString("inbox")
		interval, _ := cmd.Flags().GetDuration("interval")
		logFile, _ := cmd.Flags().GetString("log-file")
		dashboardPort, _ := cmd.Flags().GetInt("dashboard-port")

		if inbox == "" {
			inbox = cfg.PhotoInbox
		}
		if interval <= 0 {
			interval = cfg.SyncInterval
		}

		// Daemon logs go to stderr, and through a size-capped rotating
		// file when --log-file is set.
		var out io.Writer = os.Stderr
		if logFile != "" {
			out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			})
		}
		newLogger := func(prefix string) *log.Logger {
			return log.New(out, prefix, log.LstdFlags)
		}

		if cfg.BaseURL == "" {
			fmt.Fprintln(os.Stderr, "Error: no backend configured (run 'doorsync config init' first)")
			os.Exit(1)
		}

		st, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		svc, err := remote.NewClient(remote.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Logger:  newLogger("[remote] "),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating backend client: %v\n", err)
			os.Exit(1)
		}

		engine := sync.New(st, svc, sync.Config{
			PhotoBucket: cfg.PhotoBucket,
			Logger:      newLogger("[sync] "),
		})

		dcfg := daemon.DefaultConfig()
		dcfg.SyncInterval = interval
		dcfg.PhotoInbox = inbox
		dcfg.Logger = newLogger("[daemon] ")

		// With a dashboard port the daemon embeds the WebSocket server
		// and forwards its events to connected clients.
		var server *dashboard.Server
		if dashboardPort > 0 {
			server = dashboard.NewServer(&dashboard.Config{
				Port:   dashboardPort,
				Logger: newLogger("[dashboard] "),
			})
			if err := server.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "Error starting dashboard: %v\n", err)
				os.Exit(1)
			}

			handler := dashboard.NewHandler(server, engine, newLogger("[dashboard] "))
			handler.RefreshStats()
			dcfg.Notify = handler
		}

		d, err := daemon.NewWithConfig(engine, dcfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating daemon: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Starting sync daemon...\n", ui.RenderAccent("🚀"))
		fmt.Printf("   Store: %s\n", cfg.dbPath())
		fmt.Printf("   Backend: %s\n", cfg.BaseURL)
		fmt.Printf("   Inbox: %s\n", inbox)
		fmt.Printf("   Sync interval: %v\n", interval)
		if server != nil {
			fmt.Printf("   Dashboard: ws://%s/ws\n", server.GetAddr())
		}
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = d.Start(ctx)

		if server != nil {
			fmt.Println("\nShutting down dashboard...")
			if stopErr := server.Stop(); stopErr != nil {
				fmt.Fprintf(os.Stderr, "Error during dashboard shutdown: %v\n", stopErr)
			}
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: daemon stopped: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Daemon stopped\n", ui.RenderPass("✓"))
	},
}

func init() {
	daemonCmd.Flags().String("inbox", "", "Photo inbox directory (default <data-dir>/inbox)")
	daemonCmd.Flags().Duration("interval", 0, "Automatic sync interval (default from config, 5m)")
	daemonCmd.Flags().String("log-file", "", "Also write logs to this rotating file")
	daemonCmd.Flags().Int("dashboard-port", 0, "Serve the WebSocket dashboard on this port (0 disables)")

	rootCmd.AddCommand(daemonCmd)
}
