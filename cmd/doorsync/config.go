package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fieldline/doorsync/internal/sync"
	"github.com/fieldline/doorsync/internal/ui"
)

// appConfig is the resolved runtime configuration. Values come from the
// config file, DOORSYNC_* environment variables, and built-in defaults,
// in that order of precedence below the command-line flags.
type appConfig struct {
	BaseURL       string
	APIKey        string
	PhotoBucket   string
	DataDir       string
	PhotoInbox    string
	SyncInterval  time.Duration
	DashboardPort int
}

// dbPath returns the location of the local store inside the data directory.
func (c *appConfig) dbPath() string {
	return filepath.Join(c.DataDir, "doorsync.db")
}

func (c *appConfig) configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(c.DataDir, "config.yaml")
}

// fileConfig is the on-disk YAML shape written by 'doorsync config init'.
type fileConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	PhotoBucket   string `yaml:"photo_bucket,omitempty"`
	PhotoInbox    string `yaml:"photo_inbox,omitempty"`
	SyncInterval  string `yaml:"sync_interval,omitempty"`
	DashboardPort int    `yaml:"dashboard_port,omitempty"`
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".doorsync"), nil
}

// loadConfig reads the config file (if present), applies environment
// overrides, and fills in defaults. A missing config file is not an
// error: first-run commands like 'config init' and offline-only work
// must still function.
func loadConfig() (*appConfig, error) {
	dir := dataDirFlag
	if dir == "" {
		var err error
		dir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DOORSYNC")
	v.AutomaticEnv()

	v.SetDefault("photo_bucket", sync.DefaultPhotoBucket)
	v.SetDefault("sync_interval", "5m")
	v.SetDefault("dashboard_port", 8080)

	// A missing file is fine either way: the search path case reports
	// ConfigFileNotFoundError, an explicit --config path reports
	// fs.ErrNotExist (config init creates it later).
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &appConfig{
		BaseURL:       v.GetString("base_url"),
		APIKey:        v.GetString("api_key"),
		PhotoBucket:   v.GetString("photo_bucket"),
		DataDir:       v.GetString("data_dir"),
		PhotoInbox:    v.GetString("photo_inbox"),
		SyncInterval:  v.GetDuration("sync_interval"),
		DashboardPort: v.GetInt("dashboard_port"),
	}

	// The flag wins over a data_dir key in the file.
	if dataDirFlag != "" || cfg.DataDir == "" {
		cfg.DataDir = dir
	}
	if cfg.PhotoInbox == "" {
		cfg.PhotoInbox = filepath.Join(cfg.DataDir, "inbox")
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = 5 * time.Minute
	}

	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "advanced",
	Short:   "Manage doorsync configuration",
	Long: `Manage the doorsync configuration file.

The config file lives at <data-dir>/config.yaml (default
~/.doorsync/config.yaml). Every key can also be supplied through a
DOORSYNC_* environment variable, e.g. DOORSYNC_BASE_URL.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	Long: `Create the configuration file, prompting for the backend URL and API
key when run interactively.

Example usage:
  doorsync config init
  doorsync config init --base-url https://abc123.supabase.co --api-key KEY`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		baseURL, _ := cmd.Flags().GetString("base-url")
		apiKey, _ := cmd.Flags().GetString("api-key")
		bucket, _ := cmd.Flags().GetString("photo-bucket")
		force, _ := cmd.Flags().GetBool("force")

		path := cfg.configPath()
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
			os.Exit(1)
		}

		if bucket == "" {
			bucket = cfg.PhotoBucket
		}

		// Prompt for anything missing when attached to a terminal.
		if term.IsTerminal(int(os.Stdin.Fd())) && (baseURL == "" || apiKey == "") {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Backend URL").
						Description("Project root, e.g. https://abc123.supabase.co").
						Placeholder("https://").
						Value(&baseURL).
						Validate(func(s string) error {
							if s == "" {
								return errors.New("backend URL is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("API key").
						Description("Service key used for REST and storage calls").
						EchoMode(huh.EchoModePassword).
						Value(&apiKey).
						Validate(func(s string) error {
							if s == "" {
								return errors.New("API key is required")
							}
							return nil
						}),
					huh.NewInput().
						Title("Photo bucket").
						Description("Storage bucket for inspection photos").
						Value(&bucket),
				),
			)
			if err := form.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if baseURL == "" {
			fmt.Fprintln(os.Stderr, "Error: backend URL is required (pass --base-url or run interactively)")
			os.Exit(1)
		}

		fc := fileConfig{
			BaseURL:     baseURL,
			APIKey:      apiKey,
			PhotoBucket: bucket,
		}
		data, err := yaml.Marshal(fc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding config: %v\n", err)
			os.Exit(1)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", filepath.Dir(path), err)
			os.Exit(1)
		}
		// 0600: the file holds the API key.
		if err := os.WriteFile(path, data, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Wrote %s\n", ui.RenderPass("✓"), path)
		fmt.Println("\nNext steps:")
		fmt.Println("  doorsync download    # fetch the working set")
		fmt.Println("  doorsync daemon      # or keep a background sync running")
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s Configuration\n\n", ui.RenderAccent("⚙"))
		fmt.Printf("  %s %s\n", ui.RenderMuted("Config file:   "), describePath(cfg.configPath()))
		fmt.Printf("  %s %s\n", ui.RenderMuted("Backend URL:   "), orUnset(cfg.BaseURL))
		fmt.Printf("  %s %s\n", ui.RenderMuted("API key:       "), redactKey(cfg.APIKey))
		fmt.Printf("  %s %s\n", ui.RenderMuted("Photo bucket:  "), cfg.PhotoBucket)
		fmt.Printf("  %s %s\n", ui.RenderMuted("Data dir:      "), cfg.DataDir)
		fmt.Printf("  %s %s\n", ui.RenderMuted("Photo inbox:   "), cfg.PhotoInbox)
		fmt.Printf("  %s %v\n", ui.RenderMuted("Sync interval: "), cfg.SyncInterval)
		fmt.Printf("  %s %d\n", ui.RenderMuted("Dashboard port:"), cfg.DashboardPort)
		fmt.Println()
	},
}

func describePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " (missing)"
	}
	return path
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// redactKey keeps the first four characters so keys can be told apart
// without exposing them.
func redactKey(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func init() {
	configInitCmd.Flags().String("base-url", "", "Backend project URL")
	configInitCmd.Flags().String("api-key", "", "Backend API key")
	configInitCmd.Flags().String("photo-bucket", "", "Storage bucket for photos")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
