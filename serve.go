package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"skycast/config"
	"skycast/feeds"
	"skycast/server"
	"skycast/weather"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the weather and news API",
	Long: `Serve the JSON API the dashboard polls.

Endpoints:
  GET /api/weather                    current conditions (cached)
  GET /api/news[/<source>[/<limit>]]  latest headlines, all feeds or one
                                      feed by name (cached per source and limit)
  GET /api/refresh-all                both at once
  GET /api/status                     health check

Weather comes from Open-Meteo for the configured location, headlines
from the configured RSS feeds. The server runs until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

// newLogger creates a text logger for server use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location
	if !loc.HasCoordinates() {
		geoCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		loc.Latitude, loc.Longitude, err = config.Geocode(geoCtx, loc.City, loc.Country)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to locate %s, %s: %w", loc.City, loc.Country, err)
		}
		logger.Info("geocoded location", "city", loc.City, "lat", loc.Latitude, "lon", loc.Longitude)
	}

	sources := make([]feeds.Source, 0, len(cfg.NewsFeeds))
	for _, f := range cfg.NewsFeeds {
		sources = append(sources, feeds.Source{Name: f.Name, URL: f.URL})
	}

	srv := server.New(cfg.ListenAddr,
		&weather.Provider{City: loc.City, Latitude: loc.Latitude, Longitude: loc.Longitude},
		&feeds.Reader{Sources: sources},
		server.Options{
			WeatherTTL: cfg.WeatherCacheTTL,
			NewsTTL:    cfg.NewsCacheTTL,
			NewsLimit:  cfg.NewsLimit,
			Logger:     logger,
		},
	)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info("serving", "addr", srv.Addr(), "feeds", len(sources))

	<-ctx.Done()
	logger.Info("shutting down")
	if err := srv.Stop(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
