package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"skycast/config"
	"skycast/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose the API address and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.Path)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "# defaults (no config file)")
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(printable(cfg))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skycast %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd, configCmd, versionCmd)
}

// runSetup runs the first-run wizard, starting from whatever config is
// already in effect.
func runSetup() error {
	base, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	path := configPath
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	p := tea.NewProgram(ui.NewSetupModel(base, path), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running setup: %w", err)
	}
	if m, ok := final.(ui.SetupModel); !ok || m.Saved() == nil {
		return errors.New("setup cancelled, nothing saved")
	}
	return nil
}

// printable renders durations as strings ("10m0s") instead of nanoseconds.
func printable(cfg *config.Config) map[string]any {
	return map[string]any{
		"api_url":           cfg.APIURL,
		"weather_interval":  cfg.WeatherInterval.String(),
		"news_interval":     cfg.NewsInterval.String(),
		"retry_delay":       cfg.RetryDelay.String(),
		"max_retries":       cfg.MaxRetries,
		"fetch_timeout":     cfg.FetchTimeout.String(),
		"notify_duration":   cfg.NotifyDuration.String(),
		"listen_addr":       cfg.ListenAddr,
		"location":          cfg.Location,
		"news_feeds":        cfg.NewsFeeds,
		"news_limit":        cfg.NewsLimit,
		"weather_cache_ttl": cfg.WeatherCacheTTL.String(),
		"news_cache_ttl":    cfg.NewsCacheTTL.String(),
	}
}
