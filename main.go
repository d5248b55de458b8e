// Package main is the entry point for the skycast CLI.
//
// Usage:
//
//	skycast                # Run the dashboard
//	skycast serve          # Serve the weather/news JSON API
//	skycast setup          # Pick the API address and location
//	skycast config         # Print the effective configuration
//	skycast version        # Show version info
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"skycast/client"
	"skycast/config"
	"skycast/ui"
)

// set by the release build via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "skycast",
	Short: "Terminal weather and news dashboard",
	Long: `Skycast keeps a weather panel and a headline list up to date in
your terminal. It polls the skycast API (see 'skycast serve') on two
independent loops, retries failed fetches and can be paused at any time.`,
	SilenceUsage: true,
	RunE:         runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/skycast/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !config.Exists(configPath) {
		if err := runSetup(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog := newFileLogger()
	defer closeLog()
	logger.Info("dashboard starting", "api_url", cfg.APIURL, "config", cfg.Path)

	api := client.New(cfg.APIURL, cfg.FetchTimeout)
	defer api.Close()

	p := tea.NewProgram(
		ui.NewModel(cfg, api, logger),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// newFileLogger logs to ~/.cache/skycast/skycast.log so log lines never
// land on the alt screen. Logging is discarded if the file cannot be opened.
func newFileLogger() (*slog.Logger, func()) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir, err := os.UserCacheDir()
	if err != nil {
		return discard, func() {}
	}
	dir = filepath.Join(dir, "skycast")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "skycast.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discard, func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }
}
